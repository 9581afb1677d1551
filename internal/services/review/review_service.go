// Package review records the one-to-one rating on an accepted proposal and
// completes the owning project.
package review

import (
	"errors"

	"github.com/google/uuid"
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

// SubmitReview creates the review, marks the owning project completed and
// notifies the freelancer, all in one transaction. The proposal must be
// accepted; a second review on the same proposal fails with
// ErrDuplicateReview.
func (s *Service) SubmitReview(actor models.User, proposalID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidation("rating", "must be an integer between 1 and 5")
	}

	var created models.Review
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
		if proposal.Status != models.ProposalStatusAccepted {
			return apperrors.ErrInvalidState
		}

		var count int64
		if err := tx.Model(&models.Review{}).
			Where("proposal_id = ?", proposal.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrDuplicateReview
		}

		created = models.Review{
			ProposalID: proposal.ID,
			Rating:     rating,
			Comment:    comment,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Project{}).
			Where("id = ?", project.ID).
			Update("status", models.ProjectStatusCompleted).Error; err != nil {
			return err
		}

		ev = notify.Event{
			Type:         models.EventReviewSubmitted,
			ActorID:      actor.ID,
			ActorName:    actor.Username,
			RecipientID:  proposal.FreelancerID,
			ProjectID:    &project.ID,
			ProjectTitle: project.Title,
			Rating:       rating,
			Comment:      comment,
		}
		return s.Notifier.Record(tx, ev)
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Publish(ev)
	return &created, nil
}

// ForFreelancer returns the reviews a freelancer has received, newest first.
func (s *Service) ForFreelancer(freelancerID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := s.DB.
		Joins("JOIN proposals ON proposals.id = reviews.proposal_id").
		Where("proposals.freelancer_id = ?", freelancerID).
		Order("reviews.created_at DESC").
		Preload("Proposal").
		Preload("Proposal.Project").
		Find(&reviews).Error
	return reviews, err
}
