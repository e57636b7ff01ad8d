package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// AggregateModel holds the columns every aggregate table shares
type AggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainAggregateRoot copies identity, version and timestamps
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.Version = a.Version
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
}

// ToDomainAggregateRoot rebuilds the domain base without pending events,
// marked as stored at the row's version
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	a := shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
	a.MarkStored()
	return a
}
