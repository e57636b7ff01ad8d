package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByIDs loads several products; unknown ids are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindAll lists products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	q := orderAndPage(r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter),
		filter, ProductSortFields, "created_at")
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter).Count(&n).Error
	return n, err
}

// Save inserts or fully updates the product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	if err := r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error; err != nil {
		return err
	}
	product.MarkStored()
	return nil
}

// SaveWithLock updates the product only if the row still carries the
// version it was loaded with.
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	expected := lockVersion(product)
	m := models.ProductModelFromDomain(product)
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND version = ?", product.ID, expected).
		Updates(map[string]any{
			"name":        m.Name,
			"description": m.Description,
			"category":    m.Category,
			"price":       m.Price,
			"weight_kg":   m.WeightKg,
			"images":      m.Images,
			"variants":    m.Variants,
			"status":      m.Status,
			"version":     m.Version,
			"updated_at":  m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lockFailure(ctx, r.db, &models.ProductModel{}, product.ID)
	}
	product.MarkStored()
	return nil
}

func (r *GormProductRepository) applyFilter(q *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}
	if v, ok := filter.Filters["status"]; ok && fmt.Sprint(v) != "" {
		q = q.Where("status = ?", fmt.Sprint(v))
	}
	if v, ok := filter.Filters["category"]; ok && fmt.Sprint(v) != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(fmt.Sprint(v)))
	}
	return q
}

func toProducts(rows []models.ProductModel) []catalog.Product {
	out := make([]catalog.Product, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// lockVersion returns the version the stored row must still carry and makes
// sure the write moves it forward exactly once, however many mutations the
// aggregate went through since it was loaded.
func lockVersion(a shared.AggregateRoot) int {
	stored := a.StoredVersion()
	if a.GetVersion() <= stored {
		a.IncrementVersion()
	}
	return stored
}

// lockFailure distinguishes a missing row from a stale version
func lockFailure(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) error {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}
