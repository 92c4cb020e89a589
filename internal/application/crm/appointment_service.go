package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/Replicator56/mini-crm/internal/infrastructure/logger"
	"github.com/Replicator56/mini-crm/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Errors returned by the ownership check
var (
	ErrAppointmentNotFound = shared.NewNotFoundError("Appointment not found.")
	ErrNotAppointmentOwner = shared.NewForbiddenError("You are not allowed to modify this appointment.")
)

// AppointmentInput is the raw appointment form
type AppointmentInput struct {
	Date      string
	Time      string
	Notes     string
	ClientIDs []string
}

// AppointmentService handles appointment use cases. Datetimes are
// interpreted in loc.
type AppointmentService struct {
	appointments crm.AppointmentRepository
	clients      crm.ClientRepository
	loc          *time.Location
	logger       *zap.Logger
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	appointments crm.AppointmentRepository,
	clients crm.ClientRepository,
	loc *time.Location,
	logger *zap.Logger,
) *AppointmentService {
	if loc == nil {
		loc = time.Local
	}
	return &AppointmentService{
		appointments: appointments,
		clients:      clients,
		loc:          loc,
		logger:       logger,
	}
}

// Location returns the zone used to combine and split datetimes
func (s *AppointmentService) Location() *time.Location {
	return s.loc
}

// List returns every appointment with owner and clients, by datetime
func (s *AppointmentService) List(ctx context.Context) ([]*crm.Appointment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "appointment", "list")
	defer span.End()

	appointments, err := s.appointments.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Create books an appointment owned by ownerID
func (s *AppointmentService) Create(ctx context.Context, ownerID uuid.UUID, in AppointmentInput) (*crm.Appointment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "appointment", "create")
	defer span.End()

	scheduledAt, clientIDs, err := s.parse(ctx, in)
	if err != nil {
		return nil, err
	}
	appointment, err := crm.NewAppointment(ownerID, scheduledAt, strings.TrimSpace(in.Notes), clientIDs)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.log(ctx).Info("Appointment created",
		zap.String("appointment_id", appointment.ID.String()),
		zap.Int("clients", len(clientIDs)),
	)
	return appointment, nil
}

// Authorize loads the appointment and checks that userID owns it.
// The result carries owner and clients.
func (s *AppointmentService) Authorize(ctx context.Context, userID, appointmentID uuid.UUID) (*crm.Appointment, error) {
	appointment, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}
	if !appointment.IsOwnedBy(userID) {
		s.log(ctx).Warn("Appointment access denied",
			zap.String("appointment_id", appointmentID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, ErrNotAppointmentOwner
	}
	return appointment, nil
}

// Update reschedules an authorized appointment and replaces its clients
func (s *AppointmentService) Update(ctx context.Context, appointment *crm.Appointment, in AppointmentInput) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "appointment", "update",
		attribute.String("appointment.id", appointment.ID.String()))
	defer span.End()

	scheduledAt, clientIDs, err := s.parse(ctx, in)
	if err != nil {
		return err
	}
	if err := appointment.Reschedule(scheduledAt, strings.TrimSpace(in.Notes), clientIDs); err != nil {
		return err
	}
	if err := s.appointments.Update(ctx, appointment); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	s.log(ctx).Info("Appointment updated", zap.String("appointment_id", appointment.ID.String()))
	return nil
}

// Delete removes an authorized appointment and its client links
func (s *AppointmentService) Delete(ctx context.Context, appointment *crm.Appointment) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "appointment", "delete",
		attribute.String("appointment.id", appointment.ID.String()))
	defer span.End()

	if err := s.appointments.Delete(ctx, appointment.ID); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.log(ctx).Info("Appointment deleted", zap.String("appointment_id", appointment.ID.String()))
	return nil
}

// parse validates the datetime and the client selection. Every id must
// reference an existing client.
func (s *AppointmentService) parse(ctx context.Context, in AppointmentInput) (time.Time, []uuid.UUID, error) {
	scheduledAt, ok := crm.CombineDateTime(in.Date, in.Time, s.loc)
	if !ok {
		return time.Time{}, nil, crm.ErrInvalidDateTime
	}
	clientIDs, err := crm.NormalizeClientIDs(in.ClientIDs)
	if err != nil {
		return time.Time{}, nil, err
	}
	if len(clientIDs) == 0 {
		return time.Time{}, nil, crm.ErrNoClients
	}
	found, err := s.clients.CountByIDs(ctx, clientIDs)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("failed to check clients: %w", err)
	}
	if found != int64(len(clientIDs)) {
		return time.Time{}, nil, crm.ErrUnknownClient
	}
	return scheduledAt, clientIDs, nil
}

func (s *AppointmentService) log(ctx context.Context) *zap.Logger {
	return logger.ForContext(ctx, s.logger)
}
