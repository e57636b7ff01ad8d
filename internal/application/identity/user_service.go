package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService serves the profile and the admin user list
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, logger: logger}
}

// GetProfile returns the caller's account
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile replaces name, phone and the saved address book
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(req.Name, req.Phone, req.Addresses); err != nil {
		return nil, err
	}
	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", zap.String("user_id", user.ID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// ListUsers lists accounts for the admin console
func (s *UserService) ListUsers(ctx context.Context, f UserListFilter) (*UserListResult, error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.Search = strings.TrimSpace(f.Search)
	if f.Role != "" {
		role := identity.Role(f.Role)
		if !role.IsValid() {
			return nil, shared.NewValidationError("Unknown role", "role")
		}
		filter.Filters["role"] = string(role)
	}

	users, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = ToUserResponse(&users[i])
	}
	return &UserListResult{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Count counts users; it feeds the admin dashboard
func (s *UserService) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return s.userRepo.Count(ctx, filter)
}
