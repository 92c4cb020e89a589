package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/domain/identity"
	"github.com/Replicator56/mini-crm/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with the CRM schema.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(name, email, "Secr3t!pass")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Create(context.Background(), user))
	return user
}

func seedClient(t *testing.T, db *gorm.DB, in crm.ClientInput) *crm.Client {
	t.Helper()
	client, err := crm.NewClient(in)
	require.NoError(t, err)
	require.NoError(t, NewGormClientRepository(db).Create(context.Background(), client))
	return client
}

func seedAppointment(t *testing.T, db *gorm.DB, owner uuid.UUID, at time.Time, clientIDs ...uuid.UUID) *crm.Appointment {
	t.Helper()
	appointment, err := crm.NewAppointment(owner, at, "", clientIDs)
	require.NoError(t, err)
	require.NoError(t, NewGormAppointmentRepository(db).Create(context.Background(), appointment))
	return appointment
}

func joinRows(t *testing.T, db *gorm.DB, where string, arg any) []models.AppointmentClientModel {
	t.Helper()
	var rows []models.AppointmentClientModel
	require.NoError(t, db.Where(where, arg).Find(&rows).Error)
	return rows
}
