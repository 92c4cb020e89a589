package crm

import (
	"context"
	"testing"
	"time"

	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type appointmentFixture struct {
	svc          *AppointmentService
	appointments *MockAppointmentRepository
	clients      *MockClientRepository
}

func newAppointmentFixture() appointmentFixture {
	appointments := new(MockAppointmentRepository)
	clients := new(MockClientRepository)
	return appointmentFixture{
		svc:          NewAppointmentService(appointments, clients, time.UTC, zap.NewNop()),
		appointments: appointments,
		clients:      clients,
	}
}

func TestAppointmentService_Create(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	client := uuid.New()

	t.Run("owner, datetime and exactly the submitted client", func(t *testing.T) {
		f := newAppointmentFixture()
		f.clients.On("CountByIDs", mock.Anything, []uuid.UUID{client}).Return(int64(1), nil)
		f.appointments.On("Create", mock.Anything, mock.AnythingOfType("*crm.Appointment")).Return(nil)

		a, err := f.svc.Create(ctx, owner, AppointmentInput{
			Date:      "2024-03-01",
			Time:      "09:30",
			ClientIDs: []string{client.String()},
		})
		require.NoError(t, err)
		assert.Equal(t, owner, a.OwnerID)
		assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), a.ScheduledAt)
		assert.Equal(t, []uuid.UUID{client}, a.ClientIDs)
		f.appointments.AssertExpectations(t)
	})

	t.Run("duplicate ids collapse", func(t *testing.T) {
		f := newAppointmentFixture()
		f.clients.On("CountByIDs", mock.Anything, []uuid.UUID{client}).Return(int64(1), nil)
		f.appointments.On("Create", mock.Anything, mock.Anything).Return(nil)

		a, err := f.svc.Create(ctx, owner, AppointmentInput{
			Date:      "2024-03-01",
			Time:      "09:30",
			ClientIDs: []string{client.String(), " " + client.String(), ""},
		})
		require.NoError(t, err)
		assert.Len(t, a.ClientIDs, 1)
	})

	t.Run("empty client selection writes nothing", func(t *testing.T) {
		f := newAppointmentFixture()

		_, err := f.svc.Create(ctx, owner, AppointmentInput{Date: "2024-03-01", Time: "09:30"})
		assert.Equal(t, crm.ErrNoClients, err)
		f.appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("bad datetime", func(t *testing.T) {
		f := newAppointmentFixture()

		for _, in := range []AppointmentInput{
			{Date: "", Time: "09:30"},
			{Date: "2024-03-01", Time: "9"},
			{Date: "2024-02-30", Time: "09:30"},
			{Date: "2024-03-01", Time: "24:00"},
		} {
			in.ClientIDs = []string{client.String()}
			_, err := f.svc.Create(ctx, owner, in)
			assert.Equal(t, crm.ErrInvalidDateTime, err, "%+v", in)
		}
		f.appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown client id", func(t *testing.T) {
		f := newAppointmentFixture()
		ghost := uuid.New()
		f.clients.On("CountByIDs", mock.Anything, []uuid.UUID{client, ghost}).Return(int64(1), nil)

		_, err := f.svc.Create(ctx, owner, AppointmentInput{
			Date:      "2024-03-01",
			Time:      "09:30",
			ClientIDs: []string{client.String(), ghost.String()},
		})
		assert.Equal(t, crm.ErrUnknownClient, err)
		f.appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("malformed client id", func(t *testing.T) {
		f := newAppointmentFixture()

		_, err := f.svc.Create(ctx, owner, AppointmentInput{
			Date: "2024-03-01", Time: "09:30", ClientIDs: []string{"42"},
		})
		assert.True(t, shared.IsCode(err, shared.CodeValidation))
	})
}

func TestAppointmentService_Authorize(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	existing, err := crm.NewAppointment(owner, time.Now(), "", []uuid.UUID{uuid.New()})
	require.NoError(t, err)

	t.Run("owner passes", func(t *testing.T) {
		f := newAppointmentFixture()
		f.appointments.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)

		got, err := f.svc.Authorize(ctx, owner, existing.ID)
		require.NoError(t, err)
		assert.Same(t, existing, got)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f := newAppointmentFixture()
		f.appointments.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)

		_, err := f.svc.Authorize(ctx, stranger, existing.ID)
		assert.Equal(t, ErrNotAppointmentOwner, err)
		assert.True(t, shared.IsCode(err, shared.CodeForbidden))
	})

	t.Run("missing appointment", func(t *testing.T) {
		f := newAppointmentFixture()
		id := uuid.New()
		f.appointments.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Authorize(ctx, owner, id)
		assert.Equal(t, ErrAppointmentNotFound, err)
	})
}

func TestAppointmentService_Update(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	c5, c6, c7 := uuid.New(), uuid.New(), uuid.New()

	t.Run("replaces the client set", func(t *testing.T) {
		f := newAppointmentFixture()
		existing, err := crm.NewAppointment(owner, time.Now(), "", []uuid.UUID{c5, c6})
		require.NoError(t, err)

		f.clients.On("CountByIDs", mock.Anything, []uuid.UUID{c7}).Return(int64(1), nil)
		f.appointments.On("Update", mock.Anything, existing).Return(nil)

		err = f.svc.Update(ctx, existing, AppointmentInput{
			Date: "2024-04-02", Time: "14:00", Notes: " moved ", ClientIDs: []string{c7.String()},
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{c7}, existing.ClientIDs)
		assert.Equal(t, "moved", existing.Notes)
		assert.Equal(t, owner, existing.OwnerID)
	})

	t.Run("invalid input leaves the appointment untouched", func(t *testing.T) {
		f := newAppointmentFixture()
		at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		existing, err := crm.NewAppointment(owner, at, "keep", []uuid.UUID{c5})
		require.NoError(t, err)

		err = f.svc.Update(ctx, existing, AppointmentInput{Date: "2024-04-02", Time: "14:00"})
		assert.Equal(t, crm.ErrNoClients, err)
		assert.Equal(t, at, existing.ScheduledAt)
		assert.Equal(t, []uuid.UUID{c5}, existing.ClientIDs)
		f.appointments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAppointmentService_Delete(t *testing.T) {
	f := newAppointmentFixture()
	existing, err := crm.NewAppointment(uuid.New(), time.Now(), "", []uuid.UUID{uuid.New()})
	require.NoError(t, err)

	f.appointments.On("Delete", mock.Anything, existing.ID).Return(nil).Once()
	require.NoError(t, f.svc.Delete(context.Background(), existing))

	f.appointments.On("Delete", mock.Anything, existing.ID).Return(shared.ErrNotFound).Once()
	assert.Equal(t, ErrAppointmentNotFound, f.svc.Delete(context.Background(), existing))
}
