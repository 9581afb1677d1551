package review

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/apperrors"
	"github.com/freelancehub/backend/internal/models"
	"github.com/freelancehub/backend/internal/services/lifecycle"
	"github.com/freelancehub/backend/internal/services/notify"
)

type fixture struct {
	db         *gorm.DB
	svc        *Service
	client     models.User
	freelancer models.User
	project    models.Project
	proposal   models.Proposal
}

func setup(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Proposal{},
		&models.Review{},
		&models.Message{},
		&models.LifecycleEvent{},
	))

	dispatcher := notify.NewDispatcher(nil)

	client := models.User{Username: "alice", Password: "x", Role: models.RoleClient}
	require.NoError(t, db.Create(&client).Error)
	freelancer := models.User{Username: "bob", Password: "x", Role: models.RoleFreelancer}
	require.NoError(t, db.Create(&freelancer).Error)

	project := models.Project{
		ClientID: client.ID,
		Title:    "Website rebuild",
		Budget:   decimal.NewFromInt(500),
		Status:   models.ProjectStatusNew,
	}
	require.NoError(t, db.Create(&project).Error)

	lc := lifecycle.NewService(db, dispatcher)
	proposal, err := lc.SubmitProposal(freelancer, project.ID, "offer", decimal.NewFromInt(400))
	require.NoError(t, err)

	return &fixture{
		db:         db,
		svc:        NewService(db, dispatcher),
		client:     client,
		freelancer: freelancer,
		project:    project,
		proposal:   *proposal,
	}
}

func (f *fixture) accept(t *testing.T) {
	lc := lifecycle.NewService(f.db, notify.NewDispatcher(nil))
	require.NoError(t, lc.AcceptProposal(f.client, f.proposal.ID))
}

func TestSubmitReview(t *testing.T) {
	t.Run("rejects rating outside 1..5", func(t *testing.T) {
		f := setup(t)
		f.accept(t)

		for _, rating := range []int{0, 6, -1} {
			_, err := f.svc.SubmitReview(f.client, f.proposal.ID, rating, "x")
			assert.True(t, apperrors.IsValidation(err), "rating %d", rating)
		}
	})

	t.Run("only the owning client may review", func(t *testing.T) {
		f := setup(t)
		f.accept(t)

		_, err := f.svc.SubmitReview(f.freelancer, f.proposal.ID, 5, "great")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("requires an accepted proposal", func(t *testing.T) {
		f := setup(t)
		// proposal still pending

		_, err := f.svc.SubmitReview(f.client, f.proposal.ID, 5, "great")
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)

		var proj models.Project
		require.NoError(t, f.db.First(&proj, "id = ?", f.project.ID).Error)
		assert.Equal(t, models.ProjectStatusNew, proj.Status)
	})

	t.Run("creates the review, completes the project and notifies", func(t *testing.T) {
		f := setup(t)
		f.accept(t)

		created, err := f.svc.SubmitReview(f.client, f.proposal.ID, 5, "great")
		require.NoError(t, err)
		assert.Equal(t, 5, created.Rating)
		assert.Equal(t, f.proposal.ID, created.ProposalID)

		var proj models.Project
		require.NoError(t, f.db.First(&proj, "id = ?", f.project.ID).Error)
		assert.Equal(t, models.ProjectStatusCompleted, proj.Status)

		var msgs []models.Message
		require.NoError(t, f.db.
			Where("sender_id = ? AND receiver_id = ?", f.client.ID, f.freelancer.ID).
			Order("created_at ASC").
			Find(&msgs).Error)
		require.NotEmpty(t, msgs)
		lastMsg := msgs[len(msgs)-1]
		assert.Contains(t, lastMsg.Text, "5-star")
		assert.Contains(t, lastMsg.Text, "great")

		var events int64
		require.NoError(t, f.db.Model(&models.LifecycleEvent{}).
			Where("type = ?", models.EventReviewSubmitted).Count(&events).Error)
		assert.EqualValues(t, 1, events)
	})

	t.Run("second review is a duplicate", func(t *testing.T) {
		f := setup(t)
		f.accept(t)

		_, err := f.svc.SubmitReview(f.client, f.proposal.ID, 4, "good")
		require.NoError(t, err)

		_, err = f.svc.SubmitReview(f.client, f.proposal.ID, 1, "changed my mind")
		assert.ErrorIs(t, err, apperrors.ErrDuplicateReview)

		// original review and completed status are untouched
		var rv models.Review
		require.NoError(t, f.db.First(&rv, "proposal_id = ?", f.proposal.ID).Error)
		assert.Equal(t, 4, rv.Rating)

		var count int64
		require.NoError(t, f.db.Model(&models.Review{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("unknown proposal", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.db.Delete(&models.Proposal{}, "id = ?", f.proposal.ID).Error)

		_, err := f.svc.SubmitReview(f.client, f.proposal.ID, 5, "x")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestForFreelancer(t *testing.T) {
	f := setup(t)
	f.accept(t)

	_, err := f.svc.SubmitReview(f.client, f.proposal.ID, 5, "great")
	require.NoError(t, err)

	reviews, err := f.svc.ForFreelancer(f.freelancer.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)

	other := models.User{Username: "carol", Password: "x", Role: models.RoleFreelancer}
	require.NoError(t, f.db.Create(&other).Error)

	reviews, err = f.svc.ForFreelancer(other.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
