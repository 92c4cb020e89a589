package shared

import (
	"time"

	"github.com/google/uuid"
)

// Now is the clock used for entity timestamps. Tests may replace it.
var Now = func() time.Time { return time.Now().UTC() }

// BaseEntity is the identity and timestamps every aggregate carries
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity returns a fresh id with both timestamps set to Now
func NewBaseEntity() BaseEntity {
	t := Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: t, UpdatedAt: t}
}

// Touch bumps UpdatedAt.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = Now()
}
