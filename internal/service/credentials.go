package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"eventauth/internal/auth"
	apperrors "eventauth/internal/errors"
	"eventauth/internal/model"
	"eventauth/internal/repository"
)

const bcryptCost = 10

// dummyHash is compared against when the email is unknown so that a missing
// account and a wrong password take comparable time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)

// Assertion is a caller-supplied, not yet verified claim of identity.
type Assertion interface {
	assertion()
}

// PasswordAssertion claims an identity with an email and password.
type PasswordAssertion struct {
	Email    string
	Password string
}

// GoogleAssertion claims an identity with a Google ID token.
type GoogleAssertion struct {
	IDToken string
}

func (PasswordAssertion) assertion() {}
func (GoogleAssertion) assertion()   {}

// Identity is a verified assertion. User is set for password assertions,
// which can only succeed against an existing account.
type Identity struct {
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
	User       *model.User
}

// GoogleTokenVerifier verifies Google ID tokens. *auth.GoogleVerifier satisfies it.
type GoogleTokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.GoogleClaims, error)
}

// CredentialVerifier checks password pairs and Google ID tokens.
type CredentialVerifier struct {
	users  repository.UserRepository
	google GoogleTokenVerifier
}

// NewCredentialVerifier creates a verifier. google may be nil when Google
// sign-in is not configured; Google assertions then fail as invalid tokens.
func NewCredentialVerifier(users repository.UserRepository, google GoogleTokenVerifier) *CredentialVerifier {
	return &CredentialVerifier{users: users, google: google}
}

// Verify dispatches on the assertion kind.
func (v *CredentialVerifier) Verify(ctx context.Context, a Assertion) (*Identity, error) {
	switch a := a.(type) {
	case PasswordAssertion:
		user, err := v.VerifyPassword(ctx, a.Email, a.Password)
		if err != nil {
			return nil, err
		}
		return &Identity{Email: user.Email, GivenName: user.FirstName, FamilyName: user.LastName, User: user}, nil
	case GoogleAssertion:
		claims, err := v.VerifyGoogleToken(ctx, a.IDToken)
		if err != nil {
			return nil, err
		}
		return &Identity{
			Email:      model.NormalizeEmail(claims.Email),
			GivenName:  claims.GivenName,
			FamilyName: claims.FamilyName,
			Picture:    claims.Picture,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported assertion %T", a)
	}
}

// VerifyPassword returns the active user owning email when password matches.
// Unknown email, wrong password and inactive account all yield
// ErrInvalidCredentials; store failures are returned wrapped.
func (v *CredentialVerifier) VerifyPassword(ctx context.Context, email, password string) (*model.User, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.HasUsablePassword() {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// VerifyGoogleToken validates token and returns its claims or ErrInvalidToken.
func (v *CredentialVerifier) VerifyGoogleToken(ctx context.Context, token string) (*auth.GoogleClaims, error) {
	if v.google == nil || token == "" {
		return nil, apperrors.ErrInvalidToken
	}
	claims, err := v.google.Verify(ctx, token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
