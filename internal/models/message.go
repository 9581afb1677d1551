package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a directed message between two users. Messages are immutable once
// created; there is no edit or delete operation. A conversation is always
// derived as the time-ordered messages between an unordered user pair, never
// stored as its own entity.
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null;index" json:"receiver_id"`

	// ProjectID is set on notification messages tied to a lifecycle transition,
	// nil for plain chat.
	ProjectID *uuid.UUID `gorm:"type:uuid;index" json:"project_id,omitempty"`

	Text          string `gorm:"type:text" json:"text"`
	AttachmentURL string `gorm:"type:text" json:"attachment_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Sender   *User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
