package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// UserModel maps the users table
type UserModel struct {
	AggregateModel
	Name         string                      `gorm:"type:varchar(120);not null"`
	Email        string                      `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone        string                      `gorm:"type:varchar(20);not null;default:''"`
	PasswordHash string                      `gorm:"type:varchar(255);not null"`
	Role         identity.Role               `gorm:"type:varchar(20);not null;default:'customer';index"`
	Verified     bool                        `gorm:"not null;default:false"`
	Addresses    JSON[[]valueobject.Address] `gorm:"type:jsonb;not null"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the row to a User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		Verified:          m.Verified,
		Addresses:         nonNil(m.Addresses.V),
		LastLoginAt:       m.LastLoginAt,
	}
}

// UserModelFromDomain builds the row for a User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Verified:     u.Verified,
		Addresses:    NewJSON(nonNil(u.Addresses)),
		LastLoginAt:  u.LastLoginAt,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}

// OTPChallengeModel maps the otp_challenges table
type OTPChallengeModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string    `gorm:"type:varchar(120);not null"`
	Phone        string    `gorm:"type:varchar(20);not null;default:''"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CodeHash     string    `gorm:"type:varchar(255);not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	Attempts     int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OTPChallengeModel) TableName() string {
	return "otp_challenges"
}

// ToDomain converts the row to an OTPChallenge
func (m *OTPChallengeModel) ToDomain() *identity.OTPChallenge {
	return &identity.OTPChallenge{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		Phone:        m.Phone,
		PasswordHash: m.PasswordHash,
		CodeHash:     m.CodeHash,
		ExpiresAt:    m.ExpiresAt,
		Attempts:     m.Attempts,
		CreatedAt:    m.CreatedAt,
	}
}

// OTPChallengeModelFromDomain builds the row for an OTPChallenge
func OTPChallengeModelFromDomain(c *identity.OTPChallenge) *OTPChallengeModel {
	return &OTPChallengeModel{
		ID:           c.ID,
		Email:        c.Email,
		Name:         c.Name,
		Phone:        c.Phone,
		PasswordHash: c.PasswordHash,
		CodeHash:     c.CodeHash,
		ExpiresAt:    c.ExpiresAt,
		Attempts:     c.Attempts,
		CreatedAt:    c.CreatedAt,
	}
}
