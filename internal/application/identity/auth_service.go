package identity

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// OTPSender delivers signup codes
type OTPSender interface {
	SendOTP(ctx context.Context, email, name, code string) error
}

// AuthService handles OTP signup, login and logout
type AuthService struct {
	userRepo   identity.UserRepository
	otpRepo    identity.OTPRepository
	jwtService *auth.JWTService
	sender     OTPSender
	blacklist  auth.TokenBlacklist
	publisher  shared.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// AuthServiceOption configures an AuthService
type AuthServiceOption func(*AuthService)

// WithTokenBlacklist enables server-side logout
func WithTokenBlacklist(b auth.TokenBlacklist) AuthServiceOption {
	return func(s *AuthService) { s.blacklist = b }
}

// WithUserEventPublisher publishes UserRegistered
func WithUserEventPublisher(p shared.EventPublisher) AuthServiceOption {
	return func(s *AuthService) { s.publisher = p }
}

// WithAuthClock overrides time.Now
func WithAuthClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	otpRepo identity.OTPRepository,
	jwtService *auth.JWTService,
	sender OTPSender,
	logger *zap.Logger,
	opts ...AuthServiceOption,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{
		userRepo:   userRepo,
		otpRepo:    otpRepo,
		jwtService: jwtService,
		sender:     sender,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestOTP stores a fresh challenge for the email and sends its code.
// Requesting again replaces the previous code.
func (s *AuthService) RequestOTP(ctx context.Context, req SignupRequest) (*RequestOTPResult, error) {
	email := identity.NormalizeEmail(req.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, identity.ErrEmailTaken
	}

	challenge, code, err := identity.NewOTPChallenge(email, req.Name, req.Phone, req.Password, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.otpRepo.Upsert(ctx, challenge); err != nil {
		return nil, err
	}
	if err := s.sender.SendOTP(ctx, challenge.Email, challenge.Name, code); err != nil {
		s.logger.Error("failed to send signup code", zap.String("email", challenge.Email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("signup code issued", zap.String("email", challenge.Email))
	return &RequestOTPResult{Email: challenge.Email, ExpiresAt: challenge.ExpiresAt}, nil
}

// VerifyOTP checks the code, creates the verified account and logs it in
func (s *AuthService) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*LoginResult, error) {
	email := identity.NormalizeEmail(req.Email)
	challenge, err := s.otpRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrOTPExpired
		}
		return nil, err
	}

	if err := challenge.Verify(req.OTP, s.now()); err != nil {
		switch {
		case errors.Is(err, identity.ErrOTPInvalid):
			if saveErr := s.otpRepo.Upsert(ctx, challenge); saveErr != nil {
				s.logger.Error("failed to record otp attempt", zap.String("email", email), zap.Error(saveErr))
			}
		case errors.Is(err, identity.ErrOTPTooManyAttempts), errors.Is(err, identity.ErrOTPExpired):
			if delErr := s.otpRepo.Delete(ctx, email); delErr != nil {
				s.logger.Error("failed to drop otp challenge", zap.String("email", email), zap.Error(delErr))
			}
		}
		s.logger.Warn("signup code rejected",
			zap.String("email", email),
			zap.Int("attempts", challenge.Attempts),
			zap.Error(err))
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, identity.ErrEmailTaken
	}

	user, err := identity.NewVerifiedCustomer(challenge.Name, challenge.Email, challenge.Phone, challenge.PasswordHash)
	if err != nil {
		return nil, err
	}
	user.RecordLogin(s.now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	if err := s.otpRepo.Delete(ctx, email); err != nil {
		s.logger.Warn("failed to delete used otp challenge", zap.String("email", email), zap.Error(err))
	}

	events := user.GetDomainEvents()
	if s.publisher != nil && len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish user events", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
	user.ClearDomainEvents()

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login authenticates with email and password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := identity.NormalizeEmail(req.Email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("login for unknown email", zap.String("email", email))
			return nil, identity.ErrBadLogin
		}
		return nil, err
	}
	if !user.CanLogin() || !user.VerifyPassword(req.Password) {
		s.logger.Warn("invalid login attempt", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrBadLogin
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		// the login itself succeeded
		s.logger.Error("failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Logout revokes a token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, jti string, remaining time.Duration) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	return s.blacklist.AddToBlacklist(ctx, jti, remaining)
}

// PurgeExpiredOTPs deletes challenges that can no longer be verified
func (s *AuthService) PurgeExpiredOTPs(ctx context.Context) (int64, error) {
	n, err := s.otpRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired signup codes purged", zap.Int64("count", n))
	}
	return n, nil
}

func (s *AuthService) issue(user *identity.User) (*LoginResult, error) {
	token, err := s.jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}
	return &LoginResult{
		Token:     token.AccessToken,
		TokenType: token.TokenType,
		ExpiresAt: token.ExpiresAt,
		User:      ToUserResponse(user),
	}, nil
}
