// Package inbox derives the conversation list for a user. There is no stored
// conversation entity; partners come from two independent sources (proposal
// history and the raw message log) and are merged here.
package inbox

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/models"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// ConversationSummary is one inbox row: a partner and the time of the latest
// message exchanged with them. LastMessageAt is nil when the relation exists
// only through a proposal and no message has been sent yet.
type ConversationSummary struct {
	Partner       models.User `json:"partner"`
	LastMessageAt *time.Time  `json:"last_message_at"`
}

// ListConversations computes the deduplicated partner set for a user and
// orders it for inbox display: partners with messages first, most recent
// first; partners known only through proposals trail at the end.
func (s *Service) ListConversations(user models.User) ([]ConversationSummary, error) {
	partnerIDs := make(map[uuid.UUID]struct{})

	collect := func(ids []uuid.UUID) {
		for _, id := range ids {
			if id != user.ID {
				partnerIDs[id] = struct{}{}
			}
		}
	}

	var ids []uuid.UUID

	if user.IsClient() {
		// Freelancers who proposed on any project this client owns.
		if err := s.DB.Model(&models.Proposal{}).
			Joins("JOIN projects ON projects.id = proposals.project_id").
			Where("projects.client_id = ?", user.ID).
			Distinct().
			Pluck("proposals.freelancer_id", &ids).Error; err != nil {
			return nil, err
		}
		collect(ids)
	}

	if user.IsFreelancer() {
		// Clients whose projects this freelancer proposed on.
		ids = ids[:0]
		if err := s.DB.Model(&models.Proposal{}).
			Joins("JOIN projects ON projects.id = proposals.project_id").
			Where("proposals.freelancer_id = ?", user.ID).
			Distinct().
			Pluck("projects.client_id", &ids).Error; err != nil {
			return nil, err
		}
		collect(ids)
	}

	ids = ids[:0]
	if err := s.DB.Model(&models.Message{}).
		Where("sender_id = ?", user.ID).
		Distinct().
		Pluck("receiver_id", &ids).Error; err != nil {
		return nil, err
	}
	collect(ids)

	ids = ids[:0]
	if err := s.DB.Model(&models.Message{}).
		Where("receiver_id = ?", user.ID).
		Distinct().
		Pluck("sender_id", &ids).Error; err != nil {
		return nil, err
	}
	collect(ids)

	if len(partnerIDs) == 0 {
		return []ConversationSummary{}, nil
	}

	idList := make([]uuid.UUID, 0, len(partnerIDs))
	for id := range partnerIDs {
		idList = append(idList, id)
	}

	var partners []models.User
	if err := s.DB.Where("id IN ?", idList).Find(&partners).Error; err != nil {
		return nil, err
	}

	out := make([]ConversationSummary, 0, len(partners))
	for _, partner := range partners {
		summary := ConversationSummary{Partner: partner}

		var last models.Message
		err := s.DB.
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				user.ID, partner.ID, partner.ID, user.ID).
			Order("created_at DESC").
			Limit(1).
			First(&last).Error
		switch {
		case err == nil:
			t := last.CreatedAt
			summary.LastMessageAt = &t
		case errors.Is(err, gorm.ErrRecordNotFound):
			// proposal-side partner, nothing exchanged yet
		default:
			return nil, err
		}

		out = append(out, summary)
	}

	// Non-null timestamps first, newest to oldest. Partners with no messages
	// yet keep their underlying order at the tail.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastMessageAt, out[j].LastMessageAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	return out, nil
}
