package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/services/review"
)

type ReviewHandler struct {
	DB      *gorm.DB
	Reviews *review.Service
}

func NewReviewHandler(db *gorm.DB, rs *review.Service) *ReviewHandler {
	return &ReviewHandler{DB: db, Reviews: rs}
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Submit records the review for an accepted proposal and completes the project.
func (h *ReviewHandler) Submit(c *fiber.Ctx) error {
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

	var req SubmitReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	created, err := h.Reviews.SubmitReview(*user, proposalID, req.Rating, req.Comment)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Review submitted. Project marked as completed.",
		"data":    created,
	})
}

// Received returns the reviews the authenticated freelancer has collected.
func (h *ReviewHandler) Received(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	reviews, err := h.Reviews.ForFreelancer(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch reviews",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": reviews})
}
