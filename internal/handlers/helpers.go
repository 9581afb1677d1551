package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/apperrors"
	"github.com/freelancehub/backend/internal/models"
)

func getUserUUID(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals("userId")
	if v == nil {
		return uuid.Nil, fmt.Errorf("unauthorized")
	}

	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		return uuid.Parse(t)
	case []byte:
		return uuid.ParseBytes(t)
	default:
		return uuid.Nil, fmt.Errorf("invalid userId type: %T", v)
	}
}

// currentUser loads the authenticated user row for the request.
func currentUser(c *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	uid, err := getUserUUID(c)
	if err != nil {
		return nil, fiber.ErrUnauthorized
	}

	var user models.User
	if err := db.First(&user, "id = ?", uid).Error; err != nil {
		return nil, fiber.ErrUnauthorized
	}
	return &user, nil
}

// serviceError maps a domain error to the HTTP response the caller sees.
// Duplicate reviews are a warning, not a failure: the request succeeds and the
// caller is told nothing changed.
func serviceError(c *fiber.Ctx, err error) error {
	var ve *apperrors.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation error",
			"errors":  fiber.Map{ve.Field: []string{ve.Message}},
		})
	case errors.Is(err, apperrors.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "You do not have permission to perform this action",
		})
	case errors.Is(err, apperrors.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	case errors.Is(err, apperrors.ErrDuplicateReview):
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"warning": "You've already reviewed this proposal",
		})
	case errors.Is(err, apperrors.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Not found",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}
