package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements identity.UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.findOne(ctx, "email = ?", identity.NormalizeEmail(email))
}

// ExistsByEmail checks whether an account uses the email
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("email = ?", identity.NormalizeEmail(email)).
		Count(&n).Error
	return n > 0, err
}

// FindAll lists users for the admin console
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	var rows []models.UserModel
	q := orderAndPage(r.applyFilter(r.db.WithContext(ctx).Model(&models.UserModel{}), filter),
		filter, UserSortFields, "created_at")
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]identity.User, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts users matching the filter
func (r *GormUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.UserModel{}), filter).Count(&n).Error
	return n, err
}

// Save inserts or fully updates the user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	err := r.db.WithContext(ctx).Save(models.UserModelFromDomain(user)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}
	if err != nil {
		return err
	}
	user.MarkStored()
	return nil
}

// SaveWithLock updates the user if the row is still at the loaded version
func (r *GormUserRepository) SaveWithLock(ctx context.Context, user *identity.User) error {
	expected := lockVersion(user)
	m := models.UserModelFromDomain(user)
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ? AND version = ?", user.ID, expected).
		Updates(map[string]any{
			"name":          m.Name,
			"phone":         m.Phone,
			"password_hash": m.PasswordHash,
			"role":          m.Role,
			"verified":      m.Verified,
			"addresses":     m.Addresses,
			"last_login_at": m.LastLoginAt,
			"version":       m.Version,
			"updated_at":    m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lockFailure(ctx, r.db, &models.UserModel{}, user.ID)
	}
	user.MarkStored()
	return nil
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, arg any) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

func (r *GormUserRepository) applyFilter(q *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, p, p)
	}
	if v, ok := filter.Filters["role"]; ok && fmt.Sprint(v) != "" {
		q = q.Where("role = ?", fmt.Sprint(v))
	}
	return q
}

// GormOTPRepository implements identity.OTPRepository
type GormOTPRepository struct {
	db *gorm.DB
}

// NewGormOTPRepository creates a new GormOTPRepository
func NewGormOTPRepository(db *gorm.DB) *GormOTPRepository {
	return &GormOTPRepository{db: db}
}

// Upsert stores the challenge, replacing any earlier one for the email
func (r *GormOTPRepository) Upsert(ctx context.Context, challenge *identity.OTPChallenge) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			UpdateAll: true,
		}).
		Create(models.OTPChallengeModelFromDomain(challenge)).Error
}

// FindByEmail returns the pending challenge for an email
func (r *GormOTPRepository) FindByEmail(ctx context.Context, email string) (*identity.OTPChallenge, error) {
	var m models.OTPChallengeModel
	err := r.db.WithContext(ctx).Where("email = ?", identity.NormalizeEmail(email)).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Delete removes the challenge for an email
func (r *GormOTPRepository) Delete(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", identity.NormalizeEmail(email)).
		Delete(&models.OTPChallengeModel{}).Error
}

// DeleteExpired purges challenges that expired before the cutoff
func (r *GormOTPRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&models.OTPChallengeModel{})
	return result.RowsAffected, result.Error
}
