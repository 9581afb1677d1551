package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/models"
)

func TestForUpdate(t *testing.T) {
	t.Run("postgres emits FOR UPDATE", func(t *testing.T) {
		gdb, err := gorm.Open(postgres.New(postgres.Config{
			DSN:                  "host=localhost",
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			DryRun:               true,
			DisableAutomaticPing: true,
		})
		require.NoError(t, err)

		stmt := ForUpdate(gdb).First(&models.Project{}, "id = ?", uuid.New()).Statement
		assert.Contains(t, stmt.SQL.String(), "FOR UPDATE")
	})

	t.Run("sqlite stays plain", func(t *testing.T) {
		gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)
		require.NoError(t, gdb.AutoMigrate(&models.Project{}))

		stmt := ForUpdate(gdb.Session(&gorm.Session{DryRun: true})).
			First(&models.Project{}, "id = ?", uuid.New()).Statement
		assert.NotContains(t, stmt.SQL.String(), "FOR UPDATE")
	})
}
