package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// SignupRequest starts an OTP signup
type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// RequestOTPResult tells the client where the code went and until when it is valid
type RequestOTPResult struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerifyOTPRequest completes a signup
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// LoginRequest contains email/password credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is returned after login and successful signup
type LoginResult struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UpdateProfileRequest replaces the editable profile fields
type UpdateProfileRequest struct {
	Name      string                `json:"name" binding:"required,max=100"`
	Phone     string                `json:"phone" binding:"omitempty,max=20"`
	Addresses []valueobject.Address `json:"addresses" binding:"max=10"`
}

// UserListFilter filters the admin user list
type UserListFilter struct {
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=customer admin"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Phone       string                `json:"phone,omitempty"`
	Role        string                `json:"role"`
	Verified    bool                  `json:"verified"`
	Addresses   []valueobject.Address `json:"addresses"`
	LastLoginAt *time.Time            `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// UserListResult is a page of users
type UserListResult struct {
	Items    []UserResponse `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	addresses := u.Addresses
	if addresses == nil {
		addresses = []valueobject.Address{}
	}
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        string(u.Role),
		Verified:    u.Verified,
		Addresses:   addresses,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
