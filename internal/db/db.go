package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/freelancehub/backend/internal/models"
)

func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// ForUpdate adds a SELECT ... FOR UPDATE row lock to the query. SQLite has no
// FOR UPDATE syntax; its single-writer database lock already serializes the
// transactions this guards, so the clause is skipped there.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Migrate creates/updates the schema for every core table.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
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
}
