package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"eventauth/internal/auth"
	apperrors "eventauth/internal/errors"
	"eventauth/internal/model"
)

func TestCredentialVerifier_Password(t *testing.T) {
	mockRepo := new(MockUserRepository)
	user := &model.User{ID: 1, Email: "a@x.com", FirstName: "Ann", IsActive: true, PasswordHash: hashed(t, "longenough1")}
	mockRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)
	mockRepo.On("FindByEmail", mock.Anything, "gone@x.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("FindByEmail", mock.Anything, "err@x.com").Return(nil, errors.New("db down"))

	v := NewCredentialVerifier(mockRepo, nil)
	ctx := context.Background()

	identity, err := v.Verify(ctx, PasswordAssertion{Email: " A@X.com", Password: "longenough1"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.Equal(t, "Ann", identity.GivenName)
	assert.Same(t, user, identity.User)

	_, err = v.Verify(ctx, PasswordAssertion{Email: "a@x.com", Password: "wrong-password"})
	assert.Equal(t, apperrors.ErrInvalidCredentials, err)

	_, err = v.Verify(ctx, PasswordAssertion{Email: "gone@x.com", Password: "longenough1"})
	assert.Equal(t, apperrors.ErrInvalidCredentials, err)

	_, err = v.Verify(ctx, PasswordAssertion{Email: "err@x.com", Password: "longenough1"})
	assert.Error(t, err)
	assert.NotEqual(t, apperrors.ErrInvalidCredentials, err)
}

func TestCredentialVerifier_Google(t *testing.T) {
	google := &fakeGoogle{claims: map[string]*auth.GoogleClaims{
		"tok": googleClaims("Ada@Example.com", "Ada", "Lovelace", "https://pic.test/ada"),
	}}
	v := NewCredentialVerifier(new(MockUserRepository), google)
	ctx := context.Background()

	identity, err := v.Verify(ctx, GoogleAssertion{IDToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, "Ada", identity.GivenName)
	assert.Equal(t, "Lovelace", identity.FamilyName)
	assert.Equal(t, "https://pic.test/ada", identity.Picture)
	assert.Nil(t, identity.User)

	_, err = v.Verify(ctx, GoogleAssertion{IDToken: "forged"})
	assert.Equal(t, apperrors.ErrInvalidToken, err)

	_, err = v.Verify(ctx, GoogleAssertion{})
	assert.Equal(t, apperrors.ErrInvalidToken, err)
}
