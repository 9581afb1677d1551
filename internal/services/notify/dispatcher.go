package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/models"
)

// Event describes a lifecycle transition. The lifecycle and review services
// emit one per transition; the dispatcher turns it into the notification
// message the counterparty sees, plus an audit row.
type Event struct {
	Type         models.EventType `json:"type"`
	ActorID      uuid.UUID        `json:"actor_id"`
	ActorName    string           `json:"actor_name"`
	RecipientID  uuid.UUID        `json:"recipient_id"`
	ProjectID    *uuid.UUID       `json:"project_id,omitempty"`
	ProjectTitle string           `json:"project_title,omitempty"`
	Price        decimal.Decimal  `json:"price,omitempty"`
	Rating       int              `json:"rating,omitempty"`
	Comment      string           `json:"comment,omitempty"`
}

type Dispatcher struct {
	RDB *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{RDB: rdb}
}

// Record writes the notification Message and the LifecycleEvent audit row.
// It must be called inside the transaction that performs the transition so
// the notification is part of the same atomic unit.
func (d *Dispatcher) Record(tx *gorm.DB, ev Event) error {
	msg := models.Message{
		SenderID:   ev.ActorID,
		ReceiverID: ev.RecipientID,
		ProjectID:  ev.ProjectID,
		Text:       renderText(ev),
	}
	if err := tx.Create(&msg).Error; err != nil {
		return err
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	row := models.LifecycleEvent{
		Type:        ev.Type,
		ActorID:     ev.ActorID,
		RecipientID: ev.RecipientID,
		ProjectID:   ev.ProjectID,
		Payload:     datatypes.JSON(payload),
	}
	return tx.Create(&row).Error
}

// Publish pushes the event to Redis for external consumers. Best effort,
// called after the transaction commits; a failure here never rolls anything
// back.
func (d *Dispatcher) Publish(ev Event) {
	if d.RDB == nil {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Println("Error marshaling lifecycle event:", err)
		return
	}

	channel := "lifecycle:" + ev.RecipientID.String()
	if err := d.RDB.Publish(context.Background(), channel, payload).Err(); err != nil {
		log.Println("Error publishing lifecycle event:", err)
	}
}

func renderText(ev Event) string {
	switch ev.Type {
	case models.EventProposalSubmitted:
		return fmt.Sprintf("%s sent a proposal for \"%s\" (offered %s).",
			ev.ActorName, ev.ProjectTitle, ev.Price.StringFixed(2))
	case models.EventProposalAccepted:
		return fmt.Sprintf("%s accepted your proposal for \"%s\". The project is now ongoing.",
			ev.ActorName, ev.ProjectTitle)
	case models.EventReviewSubmitted:
		if ev.Comment != "" {
			return fmt.Sprintf("%s left a %d-star review on \"%s\": %s",
				ev.ActorName, ev.Rating, ev.ProjectTitle, ev.Comment)
		}
		return fmt.Sprintf("%s left a %d-star review on \"%s\".",
			ev.ActorName, ev.Rating, ev.ProjectTitle)
	default:
		return fmt.Sprintf("Update on \"%s\".", ev.ProjectTitle)
	}
}
