package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Kind groups notifications for display
type Kind string

const (
	KindOrderPlaced   Kind = "order_placed"
	KindOrderPaid     Kind = "order_paid"
	KindOrderStatus   Kind = "order_status"
	KindOrderCanceled Kind = "order_canceled"
	KindAccount       Kind = "account"
)

// Notification is an in-app message for one user
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      Kind
	Title     string
	Message   string
	OrderID   *uuid.UUID
	Read      bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

// New builds an unread notification
func New(userID uuid.UUID, kind Kind, title, message string, orderID *uuid.UUID) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("User ID is required", "userId")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewValidationError("Title is required", "title")
	}
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   strings.TrimSpace(message),
		OrderID:   orderID,
		CreatedAt: time.Now(),
	}, nil
}

// MarkRead is idempotent
func (n *Notification) MarkRead(at time.Time) {
	if n.Read {
		return
	}
	n.Read = true
	n.ReadAt = &at
}

// Repository persists notifications
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// FindByUser returns newest first; Filters may hold "unread": true
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// MarkRead returns shared.ErrNotFound when the id does not belong to userID
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}
