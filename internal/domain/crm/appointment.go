package crm

import (
	"time"

	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/google/uuid"
)

// Owner is the read-only view of the user who created an appointment.
type Owner struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Appointment links one owning user to one or more clients at a point in time.
// OwnerID is set at creation and never changes.
type Appointment struct {
	shared.BaseEntity
	ScheduledAt time.Time
	Notes       string
	OwnerID     uuid.UUID
	ClientIDs   []uuid.UUID

	// Populated by repositories that load associations.
	Owner   *Owner
	Clients []Client
}

// NewAppointment creates an appointment owned by ownerID.
func NewAppointment(ownerID uuid.UUID, scheduledAt time.Time, notes string, clientIDs []uuid.UUID) (*Appointment, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("An appointment needs an owner.")
	}
	if err := validateSchedule(scheduledAt, clientIDs); err != nil {
		return nil, err
	}
	return &Appointment{
		BaseEntity:  shared.NewBaseEntity(),
		ScheduledAt: scheduledAt,
		Notes:       notes,
		OwnerID:     ownerID,
		ClientIDs:   clientIDs,
	}, nil
}

// Reschedule replaces the datetime, the notes and the whole client set.
func (a *Appointment) Reschedule(scheduledAt time.Time, notes string, clientIDs []uuid.UUID) error {
	if err := validateSchedule(scheduledAt, clientIDs); err != nil {
		return err
	}
	a.ScheduledAt = scheduledAt
	a.Notes = notes
	a.ClientIDs = clientIDs
	a.Touch()
	return nil
}

// IsOwnedBy reports whether userID created the appointment.
func (a *Appointment) IsOwnedBy(userID uuid.UUID) bool {
	return a.OwnerID == userID
}

func validateSchedule(scheduledAt time.Time, clientIDs []uuid.UUID) error {
	if scheduledAt.IsZero() {
		return ErrInvalidDateTime
	}
	if len(clientIDs) == 0 {
		return ErrNoClients
	}
	return nil
}

// Validation errors shared by create and update.
var (
	ErrInvalidDateTime = shared.NewValidationError("Invalid date or time.")
	ErrNoClients       = shared.NewValidationError("Select at least one client.")
	ErrUnknownClient   = shared.NewValidationError("One of the selected clients does not exist.")
)
