package models

import "github.com/google/uuid"

// SkillTag is a uniquely named label shared by users and projects.
// Tags are never renamed once referenced.
type SkillTag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
}

// UserSkill is the explicit bridge row for the user <-> skill relation.
type UserSkill struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	SkillTagID uint      `gorm:"primaryKey" json:"skill_tag_id"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	SkillTag *SkillTag `gorm:"foreignKey:SkillTagID" json:"skill_tag,omitempty"`
}

// ProjectSkill is the explicit bridge row for the project <-> skill relation.
type ProjectSkill struct {
	ProjectID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"project_id"`
	SkillTagID uint      `gorm:"primaryKey" json:"skill_tag_id"`

	Project  *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	SkillTag *SkillTag `gorm:"foreignKey:SkillTagID" json:"skill_tag,omitempty"`
}
