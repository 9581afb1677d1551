package notify

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/models"
)

func TestRecord(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Message{}, &models.LifecycleEvent{}))

	d := NewDispatcher(nil)
	projectID := uuid.New()
	ev := Event{
		Type:         models.EventProposalSubmitted,
		ActorID:      uuid.New(),
		ActorName:    "bob",
		RecipientID:  uuid.New(),
		ProjectID:    &projectID,
		ProjectTitle: "Landing page",
		Price:        decimal.NewFromInt(400),
	}

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return d.Record(tx, ev)
	}))

	var msg models.Message
	require.NoError(t, db.First(&msg).Error)
	assert.Equal(t, ev.ActorID, msg.SenderID)
	assert.Equal(t, ev.RecipientID, msg.ReceiverID)
	require.NotNil(t, msg.ProjectID)
	assert.Equal(t, projectID, *msg.ProjectID)
	assert.Equal(t, `bob sent a proposal for "Landing page" (offered 400.00).`, msg.Text)

	var row models.LifecycleEvent
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, models.EventProposalSubmitted, row.Type)
	assert.NotEmpty(t, row.Payload)
}

func TestRenderText(t *testing.T) {
	base := Event{ActorName: "alice", ProjectTitle: "Logo"}

	accepted := base
	accepted.Type = models.EventProposalAccepted
	assert.Equal(t, `alice accepted your proposal for "Logo". The project is now ongoing.`, renderText(accepted))

	reviewed := base
	reviewed.Type = models.EventReviewSubmitted
	reviewed.Rating = 5
	reviewed.Comment = "great"
	assert.Equal(t, `alice left a 5-star review on "Logo": great`, renderText(reviewed))

	reviewed.Comment = ""
	assert.Equal(t, `alice left a 5-star review on "Logo".`, renderText(reviewed))
}

func TestPublishWithoutRedis(t *testing.T) {
	d := NewDispatcher(nil)
	// must not panic when no client is configured
	d.Publish(Event{Type: models.EventProposalAccepted, RecipientID: uuid.New()})
}
