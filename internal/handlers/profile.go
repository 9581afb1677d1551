package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/models"
)

type ProfileHandler struct {
	DB *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{DB: db}
}

type ProfileResponse struct {
	ID                string            `json:"id"`
	Username          string            `json:"username"`
	Role              string            `json:"role"`
	DisplayName       string            `json:"display_name"`
	Bio               string            `json:"bio"`
	Location          string            `json:"location"`
	ProfilePictureURL string            `json:"profile_picture_url"`
	Skills            []models.SkillTag `json:"skills"`
}

func (h *ProfileHandler) skillsFor(user *models.User) []models.SkillTag {
	var skills []models.SkillTag
	h.DB.Model(&models.SkillTag{}).
		Joins("JOIN user_skills ON user_skills.skill_tag_id = skill_tags.id").
		Where("user_skills.user_id = ?", user.ID).
		Find(&skills)
	return skills
}

func (h *ProfileHandler) toResponse(user *models.User) ProfileResponse {
	return ProfileResponse{
		ID:                user.ID.String(),
		Username:          user.Username,
		Role:              string(user.Role),
		DisplayName:       user.DisplayName,
		Bio:               user.Bio,
		Location:          user.Location,
		ProfilePictureURL: user.ProfilePictureURL,
		Skills:            h.skillsFor(user),
	}
}

// View returns any user's public profile.
func (h *ProfileHandler) View(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Params("username"))

	var user models.User
	if err := h.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": h.toResponse(&user)})
}

type UpdateProfileRequest struct {
	DisplayName       *string `json:"display_name"`
	Email             *string `json:"email"`
	Bio               *string `json:"bio"`
	Location          *string `json:"location"`
	ProfilePictureURL *string `json:"profile_picture_url"`
	SkillIDs          *[]uint `json:"skill_ids"`
}

// Update edits the authenticated user's own profile. The role is never
// touched here; it is fixed at registration.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = strings.TrimSpace(*req.Location)
	}
	if req.ProfilePictureURL != nil {
		user.ProfilePictureURL = *req.ProfilePictureURL
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}

		if req.SkillIDs != nil {
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserSkill{}).Error; err != nil {
				return err
			}
			for _, skillID := range *req.SkillIDs {
				var tag models.SkillTag
				if err := tx.First(&tag, "id = ?", skillID).Error; err != nil {
					continue
				}
				row := models.UserSkill{UserID: user.ID, SkillTagID: tag.ID}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Println("Error updating profile:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update profile",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": h.toResponse(user)})
}

// BrowseFreelancers lists freelancers, optionally filtered by a free-text
// query over username, location and skill name.
func (h *ProfileHandler) BrowseFreelancers(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))

	q := h.DB.Model(&models.User{}).Where("users.role = ?", models.RoleFreelancer)
	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.
			Joins("LEFT JOIN user_skills ON user_skills.user_id = users.id").
			Joins("LEFT JOIN skill_tags ON skill_tags.id = user_skills.skill_tag_id").
			Where("LOWER(users.username) LIKE ? OR LOWER(users.location) LIKE ? OR LOWER(skill_tags.name) LIKE ?",
				like, like, like).
			Distinct("users.*")
	}

	var freelancers []models.User
	if err := q.Find(&freelancers).Error; err != nil {
		log.Println("Error browsing freelancers:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch freelancers",
		})
	}

	out := make([]ProfileResponse, 0, len(freelancers))
	for i := range freelancers {
		out = append(out, h.toResponse(&freelancers[i]))
	}

	return c.JSON(fiber.Map{"success": true, "data": out})
}

// ListSkills returns every skill tag, for project forms and filters.
func (h *ProfileHandler) ListSkills(c *fiber.Ctx) error {
	var skills []models.SkillTag
	if err := h.DB.Order("name ASC").Find(&skills).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch skills",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": skills})
}
