package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "eventauth/internal/errors"
)

// GoogleClockSkew is the tolerance applied to iat/exp checks.
const GoogleClockSkew = 10 * time.Second

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// GoogleClaims is the subset of a verified Google ID token the resolver uses.
type GoogleClaims struct {
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
	Issuer     string
	Audience   string
}

type googleTokenClaims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	jwt.RegisteredClaims
}

// GoogleVerifier validates Google ID tokens for one OAuth client id.
type GoogleVerifier struct {
	keys     KeySource
	clientID string
	logger   *slog.Logger
	now      func() time.Time
}

// NewGoogleVerifier builds a verifier backed by Google's published certificates.
func NewGoogleVerifier(clientID string, logger *slog.Logger) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google client id is not configured")
	}
	return NewGoogleVerifierWithKeys(NewGoogleCerts(nil), clientID, logger), nil
}

// NewGoogleVerifierWithKeys builds a verifier around an existing key source.
func NewGoogleVerifierWithKeys(keys KeySource, clientID string, logger *slog.Logger) *GoogleVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleVerifier{keys: keys, clientID: clientID, logger: logger, now: time.Now}
}

// Verify validates token and returns its claims. Every failure is reported as
// apperrors.ErrInvalidToken; the specific reason is only logged.
func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*GoogleClaims, error) {
	if token == "" {
		return nil, g.reject(ctx, "missing token")
	}

	claims := &googleTokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		return g.keys.Key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithLeeway(GoogleClockSkew),
		jwt.WithTimeFunc(g.now),
		jwt.WithAudience(g.clientID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, g.reject(ctx, rejectReason(err), "err", err)
	}

	if !googleIssuers[claims.Issuer] {
		return nil, g.reject(ctx, "wrong issuer", "issuer", claims.Issuer)
	}
	if claims.Email == "" {
		return nil, g.reject(ctx, "no email claim")
	}

	return &GoogleClaims{
		Email:      claims.Email,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		Picture:    claims.Picture,
		Issuer:     claims.Issuer,
		Audience:   g.clientID,
	}, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued), errors.Is(err, jwt.ErrTokenNotValidYet):
		return "token used too early"
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return "audience mismatch"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "signature"
	default:
		return "malformed token"
	}
}

func (g *GoogleVerifier) reject(ctx context.Context, reason string, args ...any) error {
	g.logger.WarnContext(ctx, "google token rejected", append([]any{"reason", reason}, args...)...)
	return apperrors.ErrInvalidToken
}
