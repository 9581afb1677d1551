package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
	// RoleUnset is tolerated on rows predating role selection; no exposed
	// operation produces it.
	RoleUnset Role = ""
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email    string    `gorm:"type:varchar(150);index" json:"email"`
	Password string    `gorm:"not null" json:"-"`

	// Role is chosen once at registration and never changed by any exposed operation.
	Role Role `gorm:"type:varchar(20);not null;index" json:"role"`

	DisplayName       string `gorm:"type:varchar(120)" json:"display_name"`
	Bio               string `gorm:"type:text" json:"bio"`
	Location          string `gorm:"type:varchar(100)" json:"location"`
	ProfilePictureURL string `gorm:"type:text" json:"profile_picture_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

func (u *User) IsClient() bool     { return u.Role == RoleClient }
func (u *User) IsFreelancer() bool { return u.Role == RoleFreelancer }
