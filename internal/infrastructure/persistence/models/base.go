// Package models holds the GORM row types and their mapping to the domain.
package models

import (
	"time"

	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is the id and timestamp columns shared by users, clients and
// appointments.
type Record struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate fills an id for rows built outside the domain constructors.
func (r *Record) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Entity returns the domain view of the record
func (r *Record) Entity() shared.BaseEntity {
	return shared.BaseEntity{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func recordOf(e shared.BaseEntity) Record {
	return Record{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}
