package identity

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// EventTypeUserRegistered is emitted after OTP verification creates an account
const EventTypeUserRegistered = "UserRegistered"

// UserRegisteredEvent is published when a user completes signup
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		UserID:          user.ID,
		Email:           user.Email,
		Name:            user.Name,
	}
}

// RecipientID implements shared.UserScopedEvent
func (e *UserRegisteredEvent) RecipientID() *uuid.UUID {
	id := e.UserID
	return &id
}
