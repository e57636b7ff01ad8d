package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/notification"
)

// WishlistItemModel maps one saved product
type WishlistItemModel struct {
	CustomerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WishlistItemModel) TableName() string {
	return "wishlist_items"
}

// NotificationModel maps the notifications table
type NotificationModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Kind      notification.Kind `gorm:"type:varchar(30);not null"`
	Title     string            `gorm:"type:varchar(200);not null"`
	Message   string            `gorm:"type:text;not null;default:''"`
	OrderID   *uuid.UUID        `gorm:"type:uuid"`
	Read      bool              `gorm:"not null;default:false"`
	ReadAt    *time.Time
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the row to a Notification
func (m *NotificationModel) ToDomain() notification.Notification {
	return notification.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Kind:      m.Kind,
		Title:     m.Title,
		Message:   m.Message,
		OrderID:   m.OrderID,
		Read:      m.Read,
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}

// NotificationModelFromDomain builds the row for a Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		OrderID:   n.OrderID,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
