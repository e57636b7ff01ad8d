package identity

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

const (
	// OTPLength is the number of digits in a signup code
	OTPLength = 6
	// OTPTTL is how long a code stays valid
	OTPTTL = 10 * time.Minute
	// OTPMaxAttempts is how many wrong codes are tolerated
	OTPMaxAttempts = 5
	// otpCost is lower than the password cost; codes are short-lived
	otpCost = 10
)

var (
	ErrOTPExpired         = shared.NewDomainError("OTP_EXPIRED", "Verification code has expired")
	ErrOTPInvalid         = shared.NewDomainError("OTP_INVALID", "Verification code is incorrect")
	ErrOTPTooManyAttempts = shared.NewDomainError("OTP_TOO_MANY_ATTEMPTS", "Too many attempts, request a new code")
)

// OTPChallenge is a pending signup waiting for its email code
type OTPChallenge struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	CodeHash     string
	ExpiresAt    time.Time
	Attempts     int
	CreatedAt    time.Time
}

// NewOTPChallenge creates a challenge and returns it with the plain code
// to deliver. The code itself is never stored.
func NewOTPChallenge(email, name, phone, password string, now time.Time) (*OTPChallenge, string, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(name) == "" {
		return nil, "", shared.NewValidationError("Name is required", "name")
	}
	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	code, err := generateCode(OTPLength)
	if err != nil {
		return nil, "", fmt.Errorf("generate otp: %w", err)
	}
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), otpCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash otp: %w", err)
	}

	return &OTPChallenge{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		PasswordHash: passwordHash,
		CodeHash:     string(codeHash),
		ExpiresAt:    now.Add(OTPTTL),
		CreatedAt:    now,
	}, code, nil
}

// Verify checks a submitted code. Each wrong code counts as an attempt;
// the caller must persist the challenge after a failed Verify.
func (c *OTPChallenge) Verify(code string, now time.Time) error {
	if c.Attempts >= OTPMaxAttempts {
		return ErrOTPTooManyAttempts
	}
	if now.After(c.ExpiresAt) {
		return ErrOTPExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(strings.TrimSpace(code))) != nil {
		c.Attempts++
		if c.Attempts >= OTPMaxAttempts {
			return ErrOTPTooManyAttempts
		}
		return ErrOTPInvalid
	}
	return nil
}

// IsExpired reports whether the code can no longer be used
func (c *OTPChallenge) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt) || c.Attempts >= OTPMaxAttempts
}

func generateCode(digits int) (string, error) {
	var sb strings.Builder
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}
