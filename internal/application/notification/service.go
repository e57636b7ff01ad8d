package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ListFilter filters the caller's notifications
type ListFilter struct {
	Unread   bool `form:"unread"`
	Page     int  `form:"page" binding:"omitempty,min=1"`
	PageSize int  `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// Response is one notification
type Response struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	OrderID   *uuid.UUID `json:"orderId,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ListResult is a page of notifications plus the unread badge count
type ListResult struct {
	Items       []Response `json:"items"`
	UnreadCount int64      `json:"unreadCount"`
	Page        int        `json:"page"`
	PageSize    int        `json:"pageSize"`
}

// MarkAllResult reports how many notifications changed
type MarkAllResult struct {
	Updated int64 `json:"updated"`
}

// Service reads and acknowledges in-app notifications
type Service struct {
	repo   notification.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a notification service
func NewService(repo notification.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// List returns the user's notifications, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, f ListFilter) (*ListResult, error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.Unread {
		filter.Filters["unread"] = true
	}

	items, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Items:       make([]Response, len(items)),
		UnreadCount: unread,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
	}
	for i := range items {
		result.Items[i] = toResponse(&items[i])
	}
	return result, nil
}

// UnreadCount returns the badge count
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead acknowledges one notification owned by the user
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id, s.now())
}

// MarkAllRead acknowledges every unread notification of the user
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (*MarkAllResult, error) {
	n, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Debug("notifications marked read", zap.String("user_id", userID.String()), zap.Int64("count", n))
	return &MarkAllResult{Updated: n}, nil
}

func toResponse(n *notification.Notification) Response {
	return Response{
		ID:        n.ID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		OrderID:   n.OrderID,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
