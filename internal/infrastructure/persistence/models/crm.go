package models

import (
	"time"

	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/google/uuid"
)

// ClientModel is the persistence model for the Client domain entity.
type ClientModel struct {
	Record
	Name  string `gorm:"type:varchar(200);not null;index:idx_clients_name"`
	Email string `gorm:"type:varchar(200)"`
	Phone string `gorm:"type:varchar(50)"`
	Notes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *crm.Client {
	return &crm.Client{
		BaseEntity: m.Entity(),
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Notes:      m.Notes,
	}
}

// ClientModelFromDomain creates a persistence model from a domain Client entity.
func ClientModelFromDomain(c *crm.Client) *ClientModel {
	m := &ClientModel{
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
		Notes: c.Notes,
	}
	m.Record = recordOf(c.BaseEntity)
	return m
}

// AppointmentModel is the persistence model for the Appointment domain entity.
// Owner and Clients are only read through Preload; writes go through
// AppointmentClientModel explicitly.
type AppointmentModel struct {
	Record
	ScheduledAt time.Time     `gorm:"not null;index:idx_appointments_scheduled_at"`
	Notes       string        `gorm:"type:text"`
	OwnerID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_appointments_owner"`
	Owner       UserModel     `gorm:"foreignKey:OwnerID"`
	Clients     []ClientModel `gorm:"many2many:appointment_clients;joinForeignKey:AppointmentID;joinReferences:ClientID"`
}

// TableName returns the table name for GORM
func (AppointmentModel) TableName() string {
	return "appointments"
}

// ToDomain converts the persistence model to a domain Appointment entity.
// Loaded associations are carried over; ClientIDs follows Clients.
func (m *AppointmentModel) ToDomain() *crm.Appointment {
	a := &crm.Appointment{
		BaseEntity:  m.Entity(),
		ScheduledAt: m.ScheduledAt,
		Notes:       m.Notes,
		OwnerID:     m.OwnerID,
		ClientIDs:   make([]uuid.UUID, 0, len(m.Clients)),
		Clients:     make([]crm.Client, 0, len(m.Clients)),
	}
	if m.Owner.ID != uuid.Nil {
		a.Owner = &crm.Owner{ID: m.Owner.ID, Name: m.Owner.Name, Email: m.Owner.Email}
	}
	for i := range m.Clients {
		a.ClientIDs = append(a.ClientIDs, m.Clients[i].ID)
		a.Clients = append(a.Clients, *m.Clients[i].ToDomain())
	}
	return a
}

// AppointmentModelFromDomain creates a persistence model without associations.
func AppointmentModelFromDomain(a *crm.Appointment) *AppointmentModel {
	m := &AppointmentModel{
		ScheduledAt: a.ScheduledAt,
		Notes:       a.Notes,
		OwnerID:     a.OwnerID,
	}
	m.Record = recordOf(a.BaseEntity)
	return m
}

// AppointmentClientModel is one row of the appointment/client join table.
// The composite primary key enforces uniqueness of the pair.
type AppointmentClientModel struct {
	AppointmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientID      uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_appointment_clients_client"`
}

// TableName returns the table name for GORM
func (AppointmentClientModel) TableName() string {
	return "appointment_clients"
}

// AppointmentClientRows builds the join rows for an appointment.
func AppointmentClientRows(appointmentID uuid.UUID, clientIDs []uuid.UUID) []AppointmentClientModel {
	rows := make([]AppointmentClientModel, 0, len(clientIDs))
	for _, id := range clientIDs {
		rows = append(rows, AppointmentClientModel{AppointmentID: appointmentID, ClientID: id})
	}
	return rows
}
