package lifecycle

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/apperrors"
	"github.com/freelancehub/backend/internal/models"
	"github.com/freelancehub/backend/internal/services/notify"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.SkillTag{},
		&models.UserSkill{},
		&models.Project{},
		&models.ProjectSkill{},
		&models.Proposal{},
		&models.Review{},
		&models.Message{},
		&models.LifecycleEvent{},
	)
	require.NoError(t, err)

	return db
}

func newUser(t *testing.T, db *gorm.DB, username string, role models.Role) models.User {
	u := models.User{Username: username, Password: "x", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func newProject(t *testing.T, db *gorm.DB, client models.User, title string, budget string) models.Project {
	b, err := decimal.NewFromString(budget)
	require.NoError(t, err)

	p := models.Project{
		ClientID: client.ID,
		Title:    title,
		Budget:   b,
		Status:   models.ProjectStatusNew,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestSubmitProposal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, notify.NewDispatcher(nil))

	client := newUser(t, db, "alice", models.RoleClient)
	freelancer := newUser(t, db, "bob", models.RoleFreelancer)
	project := newProject(t, db, client, "Landing page", "500.00")

	t.Run("creates pending proposal and notifies the client", func(t *testing.T) {
		proposal, err := svc.SubmitProposal(freelancer, project.ID, "I can do this", decimal.NewFromInt(400))
		require.NoError(t, err)

		assert.Equal(t, models.ProposalStatusPending, proposal.Status)
		assert.Equal(t, project.ID, proposal.ProjectID)
		assert.Equal(t, freelancer.ID, proposal.FreelancerID)

		var msgs []models.Message
		require.NoError(t, db.Where("sender_id = ? AND receiver_id = ?", freelancer.ID, client.ID).Find(&msgs).Error)
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0].Text, "Landing page")
		require.NotNil(t, msgs[0].ProjectID)
		assert.Equal(t, project.ID, *msgs[0].ProjectID)

		var events int64
		require.NoError(t, db.Model(&models.LifecycleEvent{}).
			Where("type = ?", models.EventProposalSubmitted).Count(&events).Error)
		assert.EqualValues(t, 1, events)
	})

	t.Run("rejects non-freelancer caller", func(t *testing.T) {
		_, err := svc.SubmitProposal(client, project.ID, "hi", decimal.NewFromInt(100))
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := svc.SubmitProposal(freelancer, project.ID, "hi", decimal.NewFromInt(-1))
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("rejects unknown project", func(t *testing.T) {
		other := newProject(t, db, client, "temp", "1.00")
		require.NoError(t, db.Delete(&models.Project{}, "id = ?", other.ID).Error)

		_, err := svc.SubmitProposal(freelancer, other.ID, "hi", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("rejects proposal on a project that left new", func(t *testing.T) {
		ongoing := newProject(t, db, client, "Ongoing work", "100.00")
		require.NoError(t, db.Model(&models.Project{}).
			Where("id = ?", ongoing.ID).
			Update("status", models.ProjectStatusOngoing).Error)

		_, err := svc.SubmitProposal(freelancer, ongoing.ID, "late", decimal.NewFromInt(50))
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})
}

func TestAcceptProposal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, notify.NewDispatcher(nil))

	client := newUser(t, db, "alice", models.RoleClient)
	f1 := newUser(t, db, "bob", models.RoleFreelancer)
	f2 := newUser(t, db, "carol", models.RoleFreelancer)
	project := newProject(t, db, client, "Logo design", "500.00")

	propA, err := svc.SubmitProposal(f1, project.ID, "offer A", decimal.NewFromInt(400))
	require.NoError(t, err)
	propB, err := svc.SubmitProposal(f2, project.ID, "offer B", decimal.NewFromInt(450))
	require.NoError(t, err)

	// a proposal on an unrelated project must never be touched by the cascade
	otherProject := newProject(t, db, client, "Other project", "200.00")
	otherProp, err := svc.SubmitProposal(f1, otherProject.ID, "unrelated", decimal.NewFromInt(150))
	require.NoError(t, err)

	t.Run("only the owning client may accept", func(t *testing.T) {
		err := svc.AcceptProposal(f1, propA.ID)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("cascade accepts one and rejects siblings", func(t *testing.T) {
		require.NoError(t, svc.AcceptProposal(client, propA.ID))

		var a, b, other models.Proposal
		require.NoError(t, db.First(&a, "id = ?", propA.ID).Error)
		require.NoError(t, db.First(&b, "id = ?", propB.ID).Error)
		require.NoError(t, db.First(&other, "id = ?", otherProp.ID).Error)

		assert.Equal(t, models.ProposalStatusAccepted, a.Status)
		assert.Equal(t, models.ProposalStatusRejected, b.Status)
		assert.Equal(t, models.ProposalStatusPending, other.Status)

		var p models.Project
		require.NoError(t, db.First(&p, "id = ?", project.ID).Error)
		assert.Equal(t, models.ProjectStatusOngoing, p.Status)

		var msgs []models.Message
		require.NoError(t, db.Where("sender_id = ? AND receiver_id = ?", client.ID, f1.ID).Find(&msgs).Error)
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0].Text, "accepted")
	})

	t.Run("second accept on a sibling fails with invalid state", func(t *testing.T) {
		err := svc.AcceptProposal(client, propB.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)

		// first acceptance is untouched
		var a models.Proposal
		require.NoError(t, db.First(&a, "id = ?", propA.ID).Error)
		assert.Equal(t, models.ProposalStatusAccepted, a.Status)
	})

	t.Run("re-accepting the winner also fails once the project left new", func(t *testing.T) {
		err := svc.AcceptProposal(client, propA.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("unknown proposal", func(t *testing.T) {
		require.NoError(t, db.Delete(&models.Proposal{}, "id = ?", otherProp.ID).Error)
		err := svc.AcceptProposal(client, otherProp.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestRejectProposal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, notify.NewDispatcher(nil))

	client := newUser(t, db, "alice", models.RoleClient)
	freelancer := newUser(t, db, "bob", models.RoleFreelancer)
	project := newProject(t, db, client, "Copywriting", "300.00")

	proposal, err := svc.SubmitProposal(freelancer, project.ID, "offer", decimal.NewFromInt(250))
	require.NoError(t, err)

	t.Run("only the owning client may reject", func(t *testing.T) {
		err := svc.RejectProposal(freelancer, proposal.ID)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("sets rejected without touching the project", func(t *testing.T) {
		var before int64
		require.NoError(t, db.Model(&models.Message{}).Count(&before).Error)

		require.NoError(t, svc.RejectProposal(client, proposal.ID))

		var p models.Proposal
		require.NoError(t, db.First(&p, "id = ?", proposal.ID).Error)
		assert.Equal(t, models.ProposalStatusRejected, p.Status)

		var proj models.Project
		require.NoError(t, db.First(&proj, "id = ?", project.ID).Error)
		assert.Equal(t, models.ProjectStatusNew, proj.Status)

		// rejection emits no notification
		var after int64
		require.NoError(t, db.Model(&models.Message{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})
}
