// Package lifecycle enforces the proposal/project state machine:
// projects move new -> ongoing -> completed, proposals move
// pending -> accepted|rejected, and at most one proposal per project is
// ever accepted.
package lifecycle

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/apperrors"
	"github.com/freelancehub/backend/internal/db"
	"github.com/freelancehub/backend/internal/models"
	"github.com/freelancehub/backend/internal/services/notify"
)

type Service struct {
	DB       *gorm.DB
	Notifier *notify.Dispatcher
}

func NewService(db *gorm.DB, notifier *notify.Dispatcher) *Service {
	return &Service{DB: db, Notifier: notifier}
}

// SubmitProposal creates a pending proposal against an open project and
// notifies the project's client. Only freelancers may propose, and only while
// the project is still "new".
func (s *Service) SubmitProposal(actor models.User, projectID uuid.UUID, message string, price decimal.Decimal) (*models.Proposal, error) {
	if !actor.IsFreelancer() {
		return nil, apperrors.ErrUnauthorized
	}
	if price.IsNegative() {
		return nil, apperrors.NewValidation("proposed_price", "must not be negative")
	}

	var proposal models.Proposal
	var ev notify.Event

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := db.ForUpdate(tx).
			First(&project, "id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		if project.Status != models.ProjectStatusNew {
			return apperrors.ErrInvalidState
		}

		proposal = models.Proposal{
			ProjectID:     project.ID,
			FreelancerID:  actor.ID,
			Message:       message,
			ProposedPrice: price,
			Status:        models.ProposalStatusPending,
		}
		if err := tx.Create(&proposal).Error; err != nil {
			return err
		}

		ev = notify.Event{
			Type:         models.EventProposalSubmitted,
			ActorID:      actor.ID,
			ActorName:    actor.Username,
			RecipientID:  project.ClientID,
			ProjectID:    &project.ID,
			ProjectTitle: project.Title,
			Price:        price,
		}
		return s.Notifier.Record(tx, ev)
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Publish(ev)
	return &proposal, nil
}

// AcceptProposal runs the acceptance cascade as one atomic unit: the proposal
// becomes accepted, the project becomes ongoing, every sibling proposal is
// rejected, and the freelancer is notified. The project status is re-read
// under lock inside the transaction; if it already left "new" (e.g. a
// concurrent accept won the race) the caller gets ErrInvalidState and nothing
// is written.
func (s *Service) AcceptProposal(actor models.User, proposalID uuid.UUID) error {
	var ev notify.Event

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var proposal models.Proposal
		if err := tx.First(&proposal, "id = ?", proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		var project models.Project
		if err := db.ForUpdate(tx).
			First(&project, "id = ?", proposal.ProjectID).Error; err != nil {
			return err
		}

		if project.ClientID != actor.ID {
			return apperrors.ErrUnauthorized
		}
		if project.Status != models.ProjectStatusNew {
			return apperrors.ErrInvalidState
		}

		if err := tx.Model(&models.Proposal{}).
			Where("id = ?", proposal.ID).
			Update("status", models.ProposalStatusAccepted).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Project{}).
			Where("id = ?", project.ID).
			Update("status", models.ProjectStatusOngoing).Error; err != nil {
			return err
		}

		// Reject every sibling regardless of its prior status. Proposals on
		// other projects are never touched.
		if err := tx.Model(&models.Proposal{}).
			Where("project_id = ? AND id <> ?", project.ID, proposal.ID).
			Update("status", models.ProposalStatusRejected).Error; err != nil {
			return err
		}

		ev = notify.Event{
			Type:         models.EventProposalAccepted,
			ActorID:      actor.ID,
			ActorName:    actor.Username,
			RecipientID:  proposal.FreelancerID,
			ProjectID:    &project.ID,
			ProjectTitle: project.Title,
		}
		return s.Notifier.Record(tx, ev)
	})
	if err != nil {
		return err
	}

	s.Notifier.Publish(ev)
	return nil
}

// RejectProposal marks a single proposal rejected. No cascade, no
// notification, no project status change.
func (s *Service) RejectProposal(actor models.User, proposalID uuid.UUID) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var proposal models.Proposal
		if err := tx.First(&proposal, "id = ?", proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		var project models.Project
		if err := tx.First(&project, "id = ?", proposal.ProjectID).Error; err != nil {
			return err
		}

		if project.ClientID != actor.ID {
			return apperrors.ErrUnauthorized
		}

		return tx.Model(&models.Proposal{}).
			Where("id = ?", proposal.ID).
			Update("status", models.ProposalStatusRejected).Error
	})
}
