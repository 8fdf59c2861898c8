package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"eventauth/internal/cache"
	apperrors "eventauth/internal/errors"
	"eventauth/internal/mail"
	"eventauth/internal/model"
	"eventauth/internal/repository"
)

const (
	// OTPTTL is how long a sent code stays valid.
	OTPTTL = 300 * time.Second

	otpKeyPrefix = "otp:"
	otpMin       = 100000
	otpSpan      = 900000
)

// OTPLedger keeps at most one live code per email.
type OTPLedger interface {
	// Put stores code for email, replacing any live code. A non-positive ttl
	// leaves no live code behind.
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume deletes the live code for email if it equals code and reports
	// whether it did. At most one concurrent caller observes true.
	Consume(ctx context.Context, email, code string) (bool, error)
}

type redisOTPLedger struct {
	cache *cache.Client
}

// NewRedisOTPLedger stores codes in Redis under otp:<email>.
func NewRedisOTPLedger(c *cache.Client) OTPLedger {
	return &redisOTPLedger{cache: c}
}

func (l *redisOTPLedger) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	if ttl <= 0 {
		return l.cache.Delete(ctx, otpKeyPrefix+email)
	}
	return l.cache.Set(ctx, otpKeyPrefix+email, []byte(code), ttl)
}

func (l *redisOTPLedger) Consume(ctx context.Context, email, code string) (bool, error) {
	return l.cache.CompareAndDelete(ctx, otpKeyPrefix+email, []byte(code))
}

// OTPService sends and verifies emailed one-time passcodes.
type OTPService interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	CheckEmailExists(ctx context.Context, email string) (bool, error)
}

type otpService struct {
	users   repository.UserRepository
	ledger  OTPLedger
	sender  mail.Sender
	ttl     time.Duration
	logger  *slog.Logger
	newCode func() (string, error)
}

// NewOTPService creates the OTP service. sender is nil when mail is not
// configured, in which case SendOTP fails with ErrServiceUnavailable.
func NewOTPService(users repository.UserRepository, ledger OTPLedger, sender mail.Sender, ttl time.Duration, logger *slog.Logger) OTPService {
	if logger == nil {
		logger = slog.Default()
	}
	return &otpService{
		users:   users,
		ledger:  ledger,
		sender:  sender,
		ttl:     ttl,
		logger:  logger,
		newCode: generateOTP,
	}
}

// SendOTP issues a fresh code for email and delivers it. Delivery failure
// fails the call and withdraws the code.
func (s *otpService) SendOTP(ctx context.Context, email string) error {
	if s.sender == nil {
		return apperrors.ErrServiceUnavailable
	}
	email = model.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.ledger.Put(ctx, email, code, s.ttl); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	msg, err := mail.OTPMessage(email, code, int(s.ttl/time.Minute))
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "otp delivery failed", "err", err)
		if _, derr := s.ledger.Consume(ctx, email, code); derr != nil {
			s.logger.WarnContext(ctx, "otp withdrawal failed", "err", derr)
		}
		return apperrors.ErrNotificationFailed
	}

	s.logger.InfoContext(ctx, "otp sent")
	return nil
}

// VerifyOTP consumes the live code for email. Wrong, expired and never-sent
// codes are indistinguishable to the caller.
func (s *otpService) VerifyOTP(ctx context.Context, email, code string) error {
	email = model.NormalizeEmail(email)
	if email == "" || code == "" {
		return apperrors.ErrInvalidOrExpired
	}
	ok, err := s.ledger.Consume(ctx, email, code)
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if !ok {
		return apperrors.ErrInvalidOrExpired
	}
	return nil
}

// CheckEmailExists reports whether an account uses email.
func (s *otpService) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// generateOTP returns a uniformly random code in 100000-999999.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}
