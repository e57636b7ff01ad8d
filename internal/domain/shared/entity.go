package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is a domain object identified by its ID rather than its attributes
type Entity interface {
	GetID() uuid.UUID
	SameAs(other Entity) bool
}

// BaseEntity holds the identity and audit stamps every stored row carries
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity stamps a fresh identity at the current time
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// SameAs reports whether other has the same identity. Entities without an
// ID are never the same as anything.
func (e *BaseEntity) SameAs(other Entity) bool {
	if other == nil || e.ID == uuid.Nil {
		return false
	}
	return e.ID == other.GetID()
}

// Touch moves UpdatedAt to now, never before CreatedAt
func (e *BaseEntity) Touch() {
	now := time.Now()
	if now.Before(e.CreatedAt) {
		now = e.CreatedAt
	}
	e.UpdatedAt = now
}
