package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/models"
	"github.com/freelancehub/backend/internal/services/lifecycle"
)

type ProposalHandler struct {
	DB        *gorm.DB
	Lifecycle *lifecycle.Service
}

func NewProposalHandler(db *gorm.DB, lc *lifecycle.Service) *ProposalHandler {
	return &ProposalHandler{DB: db, Lifecycle: lc}
}

type SubmitProposalRequest struct {
	Message       string `json:"message"`
	ProposedPrice string `json:"proposed_price"`
}

// Submit creates a proposal against a project. Freelancer role is enforced by
// route middleware and re-checked by the lifecycle engine.
func (h *ProposalHandler) Submit(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid project ID",
		})
	}

	var req SubmitProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	price, err := decimal.NewFromString(strings.TrimSpace(req.ProposedPrice))
	if err != nil {
		errs := FieldErrors{}
		errs.Add("proposed_price", "Price must be a decimal number")
		return validationFail(c, errs)
	}

	proposal, err := h.Lifecycle.SubmitProposal(*user, projectID, req.Message, price)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    proposal,
	})
}

// Accept runs the acceptance cascade for one proposal.
func (h *ProposalHandler) Accept(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid proposal ID",
		})
	}

	if err := h.Lifecycle.AcceptProposal(*user, proposalID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Proposal accepted. Project is now ongoing.",
	})
}

// Reject marks a single proposal rejected.
func (h *ProposalHandler) Reject(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid proposal ID",
		})
	}

	if err := h.Lifecycle.RejectProposal(*user, proposalID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Proposal rejected.",
	})
}

// Mine returns the authenticated freelancer's proposals for the dashboard.
func (h *ProposalHandler) Mine(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	var proposals []models.Proposal
	if err := h.DB.
		Preload("Project").
		Preload("Project.Client").
		Where("freelancer_id = ?", user.ID).
		Order("submitted_at DESC").
		Find(&proposals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch proposals",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": proposals})
}
