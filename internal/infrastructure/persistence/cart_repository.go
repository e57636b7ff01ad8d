package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.CartRepository
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByCustomer loads the customer's cart with lines in insertion order
func (r *GormCartRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	var m models.CartModel
	err := r.db.WithContext(ctx).
		Preload("Items", byPosition).
		Where("customer_id = ?", customerID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Save upserts the cart row and replaces its lines
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	m := models.CartModelFromDomain(c)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", m.ID).Delete(&models.CartItemModel{}).Error; err != nil {
			return err
		}
		if len(m.Items) == 0 {
			return nil
		}
		return tx.Create(&m.Items).Error
	})
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
