package persistence

import (
	"context"
	"time"

	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAppointmentRepository implements AppointmentRepository using GORM.
// Association rows are written explicitly through AppointmentClientModel
// inside the same transaction as the appointment row.
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewGormAppointmentRepository creates a new GormAppointmentRepository
func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// Create inserts the appointment, then its client links
func (r *GormAppointmentRepository) Create(ctx context.Context, appointment *crm.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.AppointmentModelFromDomain(appointment)
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		return replaceClients(tx, appointment.ID, appointment.ClientIDs)
	})
}

// Update writes datetime and notes, then replaces the client links.
// owner_id is never updated.
func (r *GormAppointmentRepository) Update(ctx context.Context, appointment *crm.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.AppointmentModel{}).
			Where("id = ?", appointment.ID).
			Updates(map[string]any{
				"scheduled_at": appointment.ScheduledAt,
				"notes":        appointment.Notes,
				"updated_at":   time.Now(),
			})
		if err := affected(result); err != nil {
			return err
		}
		return replaceClients(tx, appointment.ID, appointment.ClientIDs)
	})
}

// Delete clears the client links, then removes the appointment
func (r *GormAppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appointment_id = ?", id).Delete(&models.AppointmentClientModel{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&models.AppointmentModel{}, "id = ?", id))
	})
}

// FindByID loads the appointment with owner and clients attached
func (r *GormAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Appointment, error) {
	var model models.AppointmentModel
	if err := r.withAssociations(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindAll loads every appointment ordered by datetime
func (r *GormAppointmentRepository) FindAll(ctx context.Context) ([]*crm.Appointment, error) {
	var rows []models.AppointmentModel
	if err := r.withAssociations(ctx).
		Order("scheduled_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	appointments := make([]*crm.Appointment, len(rows))
	for i := range rows {
		appointments[i] = rows[i].ToDomain()
	}
	return appointments, nil
}

func (r *GormAppointmentRepository) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Clients", func(db *gorm.DB) *gorm.DB {
			return db.Order("clients.name ASC")
		})
}

// replaceClients overwrites the association set of one appointment.
func replaceClients(tx *gorm.DB, appointmentID uuid.UUID, clientIDs []uuid.UUID) error {
	if err := tx.Where("appointment_id = ?", appointmentID).Delete(&models.AppointmentClientModel{}).Error; err != nil {
		return err
	}
	if len(clientIDs) == 0 {
		return nil
	}
	rows := models.AppointmentClientRows(appointmentID, clientIDs)
	return tx.Create(&rows).Error
}

// Ensure GormAppointmentRepository implements AppointmentRepository
var _ crm.AppointmentRepository = (*GormAppointmentRepository)(nil)
