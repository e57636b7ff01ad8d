package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByGatewayOrderID finds the order a gateway order id was issued for
func (r *GormOrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error) {
	if gatewayOrderID == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "gateway_order_id = ?", gatewayOrderID)
}

// FindByCustomer lists one customer's orders, newest first by default
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	q := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).
		Where("customer_id = ?", customerID)
	return r.list(orderAndPage(q, filter, OrderSortFields, "created_at"))
}

// FindAll lists orders for the admin console
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	q := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	return r.list(orderAndPage(q, filter, OrderSortFields, "created_at"))
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).Count(&n).Error
	return n, err
}

// FindAwaitingPayment returns unpaid, uncancelled orders that have a gateway
// order and were created before the cutoff, oldest first
func (r *GormOrderRepository) FindAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]order.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("payment_status = ? AND status <> ? AND gateway_order_id <> '' AND created_at < ?",
			order.PaymentStatusPending, order.StatusCanceled, createdBefore).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.list(q)
}

// CountByStatus groups order counts by status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[order.Status]int64, error) {
	var rows []struct {
		Status order.Status
		N      int64
	}
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[order.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// SumCompletedRevenue sums the totals of paid orders
func (r *GormOrderRepository) SumCompletedRevenue(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("SUM(total_amount)").
		Where("payment_status = ?", order.PaymentStatusCompleted).
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal.Round(2), nil
}

// Save inserts or replaces the order and its lines
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	m := models.OrderModelFromDomain(o)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", m.ID).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		return tx.Create(&m.Items).Error
	})
	if err != nil {
		return err
	}
	o.MarkStored()
	return nil
}

// SaveWithLock updates the mutable order columns if the row still carries
// the version the order was loaded with. Lines never change after placement.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	expected := lockVersion(o)
	m := models.OrderModelFromDomain(o)
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", o.ID, expected).
		Updates(map[string]any{
			"status":              m.Status,
			"payment_status":      m.PaymentStatus,
			"payment_session_id":  m.PaymentSessionID,
			"gateway_order_id":    m.GatewayOrderID,
			"paid_at":             m.PaidAt,
			"cancel_reason":       m.CancelReason,
			"cancelled_at":        m.CancelledAt,
			"awb":                 m.AWB,
			"pickup_scheduled_at": m.PickupScheduledAt,
			"status_history":      m.StatusHistory,
			"version":             m.Version,
			"updated_at":          m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lockFailure(ctx, r.db, &models.OrderModel{}, o.ID)
	}
	o.MarkStored()
	return nil
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, arg any) (*order.Order, error) {
	var m models.OrderModel
	err := r.db.WithContext(ctx).Preload("Items", byPosition).Where(query, arg).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

func (r *GormOrderRepository) list(q *gorm.DB) ([]order.Order, error) {
	var rows []models.OrderModel
	if err := q.Preload("Items", byPosition).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]order.Order, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormOrderRepository) applyFilter(q *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where(`(LOWER(order_number) LIKE ? ESCAPE '\' OR LOWER(customer_name) LIKE ? ESCAPE '\' OR LOWER(customer_email) LIKE ? ESCAPE '\')`, p, p, p)
	}
	if v, ok := filter.Filters["status"]; ok && fmt.Sprint(v) != "" {
		q = q.Where("status = ?", fmt.Sprint(v))
	}
	if v, ok := filter.Filters["customer_id"]; ok {
		q = q.Where("customer_id = ?", v)
	}
	return q
}
