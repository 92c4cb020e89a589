package crm

import (
	"context"

	"github.com/google/uuid"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// Create inserts a client
	Create(ctx context.Context, client *Client) error

	// Update overwrites the editable fields; shared.ErrNotFound if missing
	Update(ctx context.Context, client *Client) error

	// Delete removes the client and its appointment links in one transaction;
	// shared.ErrNotFound if missing
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a client by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// Search returns clients whose name, email or phone contains query
	// (case-insensitive), ordered by name. An empty query returns all clients.
	Search(ctx context.Context, query string) ([]*Client, error)

	// CountByIDs counts how many of ids exist
	CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// AppointmentRepository defines the interface for appointment persistence.
// Every write that touches the association table runs in one transaction.
type AppointmentRepository interface {
	// Create inserts the appointment, then its client links
	Create(ctx context.Context, appointment *Appointment) error

	// Update writes datetime and notes, then replaces the client links
	// wholesale. The owner column is never written.
	Update(ctx context.Context, appointment *Appointment) error

	// Delete clears the client links, then removes the appointment
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID loads the appointment with owner and clients attached
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// FindAll loads every appointment with owner and clients, by datetime
	FindAll(ctx context.Context) ([]*Appointment, error)
}
