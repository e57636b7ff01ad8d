package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/wishlist"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWishlistRepository implements wishlist.Repository
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewGormWishlistRepository creates a new GormWishlistRepository
func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// FindByCustomer returns the saved product ids, oldest first. A customer
// with nothing saved gets an empty wishlist.
func (r *GormWishlistRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*wishlist.Wishlist, error) {
	var rows []models.WishlistItemModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	w := wishlist.New(customerID)
	for _, row := range rows {
		w.ProductIDs = append(w.ProductIDs, row.ProductID)
	}
	return w, nil
}

// Add saves a product; saving it twice is a no-op
func (r *GormWishlistRepository) Add(ctx context.Context, customerID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.WishlistItemModel{
			CustomerID: customerID,
			ProductID:  productID,
			CreatedAt:  time.Now(),
		}).Error
}

// Remove deletes a saved product; removing a missing one is a no-op
func (r *GormWishlistRepository) Remove(ctx context.Context, customerID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&models.WishlistItemModel{}).Error
}

// GormNotificationRepository implements notification.Repository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create stores a notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(models.NotificationModelFromDomain(n)).Error
}

// FindByUser lists a user's notifications, newest first
func (r *GormNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]notification.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unread, ok := filter.Filters["unread"].(bool); ok && unread {
		q = q.Where("read = ?", false)
	}
	q = q.Order("created_at DESC").Order("id")
	if filter.PageSize > 0 {
		q = q.Limit(filter.PageSize).Offset(filter.Offset())
	}
	var rows []models.NotificationModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]notification.Notification, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// CountUnread counts a user's unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkRead marks one notification read. Notifications of other users are
// reported as not found.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	var m models.NotificationModel
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if m.Read {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"read": true, "read_at": at}).Error
}

// MarkAllRead marks every unread notification of a user read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]any{"read": true, "read_at": at})
	return result.RowsAffected, result.Error
}
