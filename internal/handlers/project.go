package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/models"
)

type ProjectHandler struct {
	DB *gorm.DB
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{DB: db}
}

type CreateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Budget      string `json:"budget"`
	SkillIDs    []uint `json:"skill_ids"`
}

type ProjectResponse struct {
	ID          string            `json:"id"`
	ClientID    string            `json:"client_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Budget      string            `json:"budget"`
	Status      string            `json:"status"`
	CreatedAt   string            `json:"created_at"`
	Skills      []models.SkillTag `json:"skills"`
	Client      *UserMini         `json:"client,omitempty"`
}

type UserMini struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

func toProjectResponse(p *models.Project, skills []models.SkillTag) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID.String(),
		ClientID:    p.ClientID.String(),
		Title:       p.Title,
		Description: p.Description,
		Budget:      p.Budget.StringFixed(2),
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Skills:      skills,
	}
	if p.Client != nil {
		resp.Client = &UserMini{
			ID:          p.Client.ID.String(),
			Username:    p.Client.Username,
			DisplayName: p.Client.DisplayName,
		}
	}
	return resp
}

func (h *ProjectHandler) skillsFor(projectID uuid.UUID) []models.SkillTag {
	var skills []models.SkillTag
	h.DB.Model(&models.SkillTag{}).
		Joins("JOIN project_skills ON project_skills.skill_tag_id = skill_tags.id").
		Where("project_skills.project_id = ?", projectID).
		Find(&skills)
	return skills
}

// Create posts a new project. Client role is enforced by route middleware;
// ownership is the caller, immutable afterwards.
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	errs := FieldErrors{}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs.Add("title", "Title is required")
	}

	budget, err := decimal.NewFromString(strings.TrimSpace(req.Budget))
	if err != nil {
		errs.Add("budget", "Budget must be a decimal number")
	} else if budget.IsNegative() {
		errs.Add("budget", "Budget must not be negative")
	}

	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	project := models.Project{
		ClientID:    user.ID,
		Title:       title,
		Description: req.Description,
		Budget:      budget,
		Status:      models.ProjectStatusNew,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		for _, skillID := range req.SkillIDs {
			var tag models.SkillTag
			if err := tx.First(&tag, "id = ?", skillID).Error; err != nil {
				continue // unknown tags are dropped, not fatal
			}
			row := models.ProjectSkill{ProjectID: project.ID, SkillTagID: tag.ID}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Println("Error creating project:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create project",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    toProjectResponse(&project, h.skillsFor(project.ID)),
	})
}

// List returns all projects, newest first, optionally filtered by skill name
// (case-insensitive).
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	skillFilter := strings.TrimSpace(c.Query("skill"))

	q := h.DB.Model(&models.Project{}).Preload("Client")
	if skillFilter != "" {
		q = q.
			Joins("JOIN project_skills ON project_skills.project_id = projects.id").
			Joins("JOIN skill_tags ON skill_tags.id = project_skills.skill_tag_id").
			Where("LOWER(skill_tags.name) = LOWER(?)", skillFilter).
			Distinct()
	}

	var projects []models.Project
	if err := q.Order("created_at DESC").Find(&projects).Error; err != nil {
		log.Println("Error fetching projects:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch projects",
		})
	}

	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectResponse(&projects[i], h.skillsFor(projects[i].ID)))
	}

	return c.JSON(fiber.Map{"success": true, "data": out})
}

// Mine returns the authenticated client's own projects for the dashboard.
func (h *ProjectHandler) Mine(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	var projects []models.Project
	if err := h.DB.
		Where("client_id = ?", user.ID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch projects",
		})
	}

	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectResponse(&projects[i], h.skillsFor(projects[i].ID)))
	}

	return c.JSON(fiber.Map{"success": true, "data": out})
}

// Detail returns one project with its skills and client.
func (h *ProjectHandler) Detail(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid project ID",
		})
	}

	var project models.Project
	if err := h.DB.Preload("Client").First(&project, "id = ?", projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Project not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toProjectResponse(&project, h.skillsFor(project.ID)),
	})
}

// Proposals lists a project's proposals, newest first. Only the owning client
// may see them.
func (h *ProjectHandler) Proposals(c *fiber.Ctx) error {
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

	var project models.Project
	if err := h.DB.First(&project, "id = ?", projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Project not found",
		})
	}

	if project.ClientID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Access denied",
		})
	}

	var proposals []models.Proposal
	if err := h.DB.
		Preload("Freelancer").
		Where("project_id = ?", projectID).
		Order("submitted_at DESC").
		Find(&proposals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch proposals",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": proposals})
}
