package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/Replicator56/mini-crm/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormAppointmentRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormAppointmentRepository(db)

	owner := seedUser(t, db, "Olivia", "olivia@example.com")
	zoe := seedClient(t, db, crm.ClientInput{Name: "Zoe"})
	adam := seedClient(t, db, crm.ClientInput{Name: "Adam"})

	at := time.Date(2030, 3, 4, 9, 30, 0, 0, time.UTC)
	created := seedAppointment(t, db, owner.ID, at, zoe.ID, adam.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, found.OwnerID)
	require.NotNil(t, found.Owner)
	assert.Equal(t, "Olivia", found.Owner.Name)
	assert.True(t, found.ScheduledAt.Equal(at))

	require.Len(t, found.Clients, 2)
	assert.Equal(t, "Adam", found.Clients[0].Name)
	assert.Equal(t, "Zoe", found.Clients[1].Name)
	assert.ElementsMatch(t, []uuid.UUID{zoe.ID, adam.ID}, found.ClientIDs)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormAppointmentRepository_FindAllOrdersByDatetime(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormAppointmentRepository(db)

	owner := seedUser(t, db, "Olivia", "olivia@example.com")
	client := seedClient(t, db, crm.ClientInput{Name: "Zoe"})

	base := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	late := seedAppointment(t, db, owner.ID, base.Add(48*time.Hour), client.ID)
	early := seedAppointment(t, db, owner.ID, base, client.ID)
	middle := seedAppointment(t, db, owner.ID, base.Add(2*time.Hour), client.ID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, early.ID, all[0].ID)
	assert.Equal(t, middle.ID, all[1].ID)
	assert.Equal(t, late.ID, all[2].ID)
	for _, a := range all {
		require.NotNil(t, a.Owner)
		assert.Len(t, a.Clients, 1)
	}
}

func TestGormAppointmentRepository_Update(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormAppointmentRepository(db)

	owner := seedUser(t, db, "Olivia", "olivia@example.com")
	intruder := seedUser(t, db, "Ivan", "ivan@example.com")
	c5 := seedClient(t, db, crm.ClientInput{Name: "C5"})
	c6 := seedClient(t, db, crm.ClientInput{Name: "C6"})
	c7 := seedClient(t, db, crm.ClientInput{Name: "C7"})

	appointment := seedAppointment(t, db, owner.ID, time.Date(2030, 5, 1, 14, 0, 0, 0, time.UTC), c5.ID, c6.ID)

	t.Run("replaces the client set wholesale", func(t *testing.T) {
		next := time.Date(2030, 5, 2, 15, 45, 0, 0, time.UTC)
		require.NoError(t, appointment.Reschedule(next, "moved", []uuid.UUID{c7.ID}))
		require.NoError(t, repo.Update(ctx, appointment))

		found, err := repo.FindByID(ctx, appointment.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{c7.ID}, found.ClientIDs)
		assert.Equal(t, "moved", found.Notes)
		assert.True(t, found.ScheduledAt.Equal(next))

		rows := joinRows(t, db, "appointment_id = ?", appointment.ID)
		require.Len(t, rows, 1)
		assert.Equal(t, c7.ID, rows[0].ClientID)
	})

	t.Run("never writes the owner", func(t *testing.T) {
		appointment.OwnerID = intruder.ID
		require.NoError(t, repo.Update(ctx, appointment))

		found, err := repo.FindByID(ctx, appointment.ID)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, found.OwnerID)
	})

	t.Run("missing appointment is not found", func(t *testing.T) {
		ghost, err := crm.NewAppointment(owner.ID, time.Now(), "", []uuid.UUID{c5.ID})
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Update(ctx, ghost), shared.ErrNotFound)
		assert.Empty(t, joinRows(t, db, "appointment_id = ?", ghost.ID))
	})
}

func TestGormAppointmentRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormAppointmentRepository(db)

	owner := seedUser(t, db, "Olivia", "olivia@example.com")
	client := seedClient(t, db, crm.ClientInput{Name: "Zoe"})
	appointment := seedAppointment(t, db, owner.ID, time.Now().Add(time.Hour), client.ID)

	require.NoError(t, repo.Delete(ctx, appointment.ID))

	_, err := repo.FindByID(ctx, appointment.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, joinRows(t, db, "appointment_id = ?", appointment.ID))

	// The client itself survives.
	_, err = NewGormClientRepository(db).FindByID(ctx, client.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, appointment.ID), shared.ErrNotFound)
}

func TestGormAppointmentRepository_CreateRollsBackOnLinkFailure(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormAppointmentRepository(db)

	owner := seedUser(t, db, "Olivia", "olivia@example.com")
	client := seedClient(t, db, crm.ClientInput{Name: "Zoe"})

	// A repeated id violates the join table's composite key on insert.
	appointment, err := crm.NewAppointment(owner.ID, time.Now(), "", []uuid.UUID{client.ID, client.ID})
	require.NoError(t, err)
	require.Error(t, repo.Create(ctx, appointment))

	var count int64
	require.NoError(t, db.Model(&models.AppointmentModel{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, joinRows(t, db, "appointment_id = ?", appointment.ID))
}

func TestGormAppointmentRepository_DeleteRollsBackOnError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	repo := NewGormAppointmentRepository(db)
	id := uuid.New()
	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "appointment_clients"`).
		WithArgs(id).
		WillReturnError(boom)
	mock.ExpectRollback()

	err = repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
