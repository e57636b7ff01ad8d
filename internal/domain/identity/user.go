package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"golang.org/x/crypto/bcrypt"
)

// Role is the access level of an account
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// IsValid checks the role
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Password cost for bcrypt
const bcryptCost = 12

// maxAddresses bounds the saved address book
const maxAddresses = 10

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetter     = regexp.MustCompile(`[a-zA-Z]`)
	hasNumber     = regexp.MustCompile(`[0-9]`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	ErrBadLogin   = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrEmailTaken = shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
)

// User is a storefront account
type User struct {
	shared.BaseAggregateRoot
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	Verified     bool
	Addresses    []valueobject.Address
	LastLoginAt  *time.Time
}

// NewVerifiedCustomer creates a customer whose email was proven by OTP.
// passwordHash must already be a bcrypt hash.
func NewVerifiedCustomer(name, email, phone, passwordHash string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Name is required", "name")
	}
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, shared.NewValidationError("Password is required", "password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Phone:             strings.TrimSpace(phone),
		PasswordHash:      passwordHash,
		Role:              RoleCustomer,
		Verified:          true,
		Addresses:         make([]valueobject.Address, 0),
	}
	user.AddDomainEvent(NewUserRegisteredEvent(user))
	return user, nil
}

// UpdateProfile changes the editable profile fields
func (u *User) UpdateProfile(name, phone string, addresses []valueobject.Address) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("Name is required", "name")
	}
	phone = strings.TrimSpace(phone)
	if phone != "" && !phoneRegex.MatchString(phone) {
		return shared.NewValidationError("Invalid phone number", "phone")
	}
	if len(addresses) > maxAddresses {
		return shared.NewValidationError("Too many saved addresses", "addresses")
	}

	normalized := make([]valueobject.Address, 0, len(addresses))
	for _, a := range addresses {
		if a.IsEmpty() {
			continue
		}
		normalized = append(normalized, a.Normalize())
	}

	u.Name = name
	u.Phone = phone
	u.Addresses = normalized
	u.Touch()
	u.IncrementVersion()
	return nil
}

// PromoteToAdmin grants admin access
func (u *User) PromoteToAdmin() {
	if u.Role == RoleAdmin {
		return
	}
	u.Role = RoleAdmin
	u.Touch()
	u.IncrementVersion()
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps a successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.Touch()
}

// IsAdmin reports admin access
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanLogin requires a verified account
func (u *User) CanLogin() bool {
	return u.Verified
}

// DefaultAddress returns the first saved address
func (u *User) DefaultAddress() (valueobject.Address, bool) {
	if len(u.Addresses) == 0 {
		return valueobject.Address{}, false
	}
	return u.Addresses[0], true
}

// HashPassword validates and bcrypt-hashes a password
func HashPassword(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}

// NormalizeEmail lowercases and trims an email
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("Password must be at least 8 characters", "password")
	}
	if len(password) > 72 {
		return shared.NewValidationError("Password cannot exceed 72 characters", "password")
	}
	if !hasLetter.MatchString(password) || !hasNumber.MatchString(password) {
		return shared.NewValidationError("Password must contain at least one letter and one number", "password")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("Email is required", "email")
	}
	if len(email) > 200 || !emailRegex.MatchString(email) {
		return shared.NewValidationError("Invalid email format", "email")
	}
	return nil
}
