package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	notificationapp "github.com/storefront/backend/internal/application/notification"
	"go.uber.org/zap"
)

// NotificationAPI is the notification part of the backend
type NotificationAPI interface {
	ListNotifications(ctx context.Context, f notificationapp.ListFilter) (*notificationapp.ListResult, error)
	UnreadNotificationCount(ctx context.Context) (int64, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID) error
	MarkAllNotificationsRead(ctx context.Context) (int64, error)
}

// NotificationStore keeps the latest page of notifications and the unread badge
type NotificationStore struct {
	api    NotificationAPI
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	items  []notificationapp.Response
	unread int64
}

// NewNotificationStore creates an empty store
func NewNotificationStore(api NotificationAPI, logger *zap.Logger) *NotificationStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationStore{api: api, logger: logger, now: time.Now}
}

// Fetch loads the first page of notifications
func (s *NotificationStore) Fetch(ctx context.Context, unreadOnly bool) ([]notificationapp.Response, error) {
	res, err := s.api.ListNotifications(ctx, notificationapp.ListFilter{Unread: unreadOnly, Page: 1, PageSize: 50})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.items = res.Items
	s.unread = res.UnreadCount
	s.mu.Unlock()
	return res.Items, nil
}

// Items returns the loaded notifications
func (s *NotificationStore) Items() []notificationapp.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items
}

// UnreadCount refreshes and returns the unread badge
func (s *NotificationStore) UnreadCount(ctx context.Context) (int64, error) {
	n, err := s.api.UnreadNotificationCount(ctx)
	if err != nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.unread, err
	}
	s.mu.Lock()
	s.unread = n
	s.mu.Unlock()
	return n, nil
}

// MarkRead acknowledges one notification
func (s *NotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]notificationapp.Response, len(s.items))
	copy(items, s.items)
	for i := range items {
		if items[i].ID == id && !items[i].Read {
			items[i].Read = true
			items[i].ReadAt = &now
			if s.unread > 0 {
				s.unread--
			}
		}
	}
	s.items = items
	return nil
}

// MarkAllRead acknowledges every notification
func (s *NotificationStore) MarkAllRead(ctx context.Context) error {
	updated, err := s.api.MarkAllNotificationsRead(ctx)
	if err != nil {
		return err
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]notificationapp.Response, len(s.items))
	copy(items, s.items)
	for i := range items {
		if !items[i].Read {
			items[i].Read = true
			items[i].ReadAt = &now
		}
	}
	s.items = items
	s.unread = 0
	s.logger.Debug("notifications marked read", zap.Int64("updated", updated))
	return nil
}
