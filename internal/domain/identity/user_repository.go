package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail matches the normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindAll supports search on name and email plus a "role" filter
	FindAll(ctx context.Context, filter shared.Filter) ([]User, error)

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	Save(ctx context.Context, user *User) error

	// SaveWithLock fails with CONCURRENT_MODIFICATION on a stale version
	SaveWithLock(ctx context.Context, user *User) error
}

// OTPRepository stores at most one live challenge per email
type OTPRepository interface {
	// Upsert replaces any challenge for the same email
	Upsert(ctx context.Context, challenge *OTPChallenge) error
	FindByEmail(ctx context.Context, email string) (*OTPChallenge, error)
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
