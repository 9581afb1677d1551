package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventType string

const (
	EventProposalSubmitted EventType = "proposal_submitted"
	EventProposalAccepted  EventType = "proposal_accepted"
	EventReviewSubmitted   EventType = "review_submitted"
)

// LifecycleEvent is the audit row the notification dispatcher writes for every
// lifecycle transition, in the same transaction as the transition itself.
type LifecycleEvent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Type        EventType      `gorm:"type:varchar(40);not null;index" json:"type"`
	ActorID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_id"`
	RecipientID uuid.UUID      `gorm:"type:uuid;not null;index" json:"recipient_id"`
	ProjectID   *uuid.UUID     `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Payload     datatypes.JSON `json:"payload"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (e *LifecycleEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
