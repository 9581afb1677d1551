// Package messaging is the write side of chat: an append-only, per-pair
// message log. Messages are never edited or deleted.
package messaging

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/apperrors"
	"github.com/freelancehub/backend/internal/models"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Send appends a message from sender to receiver. At least one of text and
// attachment must be present; field-level validation beyond that belongs to
// the form layer.
func (s *Service) Send(sender models.User, receiverID uuid.UUID, text, attachmentURL string, projectID *uuid.UUID) (*models.Message, error) {
	if text == "" && attachmentURL == "" {
		return nil, apperrors.NewValidation("text", "message must have text or an attachment")
	}

	var receiver models.User
	if err := s.DB.First(&receiver, "id = ?", receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	msg := models.Message{
		SenderID:      sender.ID,
		ReceiverID:    receiverID,
		ProjectID:     projectID,
		Text:          text,
		AttachmentURL: attachmentURL,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// Conversation returns every message between the unordered pair {a, b},
// oldest first. The result is identical whichever way the pair is passed.
func (s *Service) Conversation(a, b uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}
