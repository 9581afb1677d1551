package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// Proposal is a freelancer's bid against a project. At most one proposal per
// project ever holds "accepted"; accepting one rejects all siblings.
type Proposal struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index" json:"freelancer_id"`

	Message       string          `gorm:"type:text" json:"message"`
	ProposedPrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"proposed_price"`
	Status        ProposalStatus  `gorm:"type:varchar(10);not null;default:'pending';index" json:"status"`

	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Project    *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	Freelancer *User    `gorm:"foreignKey:FreelancerID;constraint:OnDelete:CASCADE" json:"freelancer,omitempty"`
	Review     *Review  `gorm:"foreignKey:ProposalID" json:"review,omitempty"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
