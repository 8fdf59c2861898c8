package service

import (
	"context"
	"errors"
	"fmt"

	"eventauth/internal/auth"
	apperrors "eventauth/internal/errors"
	"eventauth/internal/model"
)

// TokenPair is an access/refresh credential pair bound to a user id.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService issues, refreshes and revokes credential pairs.
type TokenService interface {
	Issue(ctx context.Context, user *model.User) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

type tokenService struct {
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewTokenService creates a token service.
func NewTokenService(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) TokenService {
	return &tokenService{jwtService: jwtService, tokenStore: tokenStore}
}

// Issue signs a new pair and records the refresh token ID in Redis.
func (s *tokenService) Issue(ctx context.Context, user *model.User) (*TokenPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh validates a refresh token and returns a new access token.
func (s *tokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if errors.Is(err, auth.ErrRefreshTokenNotFound) {
		return "", apperrors.ErrInvalidRefreshToken
	}
	if err != nil {
		return "", fmt.Errorf("load refresh token: %w", err)
	}
	if storedUserID != claims.UserID {
		return "", apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates a refresh token.
func (s *tokenService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, claims.ID)
}
