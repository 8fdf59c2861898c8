package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"eventauth/internal/auth"
	apperrors "eventauth/internal/errors"
	"eventauth/internal/mail"
	"eventauth/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, user *model.User, fields ...string) error {
	args := m.Called(ctx, user, fields)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// memUserRepository is an in-memory store with the same uniqueness rule as
// the MySQL unique index.
type memUserRepository struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*model.User
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{byID: map[uint]*model.User{}}
}

func (r *memUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return apperrors.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *memUserRepository) FindByID(_ context.Context, id uint) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *memUserRepository) UpdateFields(_ context.Context, user *model.User, fields ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, f := range fields {
		switch f {
		case "FirstName":
			stored.FirstName = user.FirstName
		case "LastName":
			stored.LastName = user.LastName
		case "ProfilePicture":
			stored.ProfilePicture = user.ProfilePicture
		case "Role":
			stored.Role = user.Role
		case "PhoneNumber":
			stored.PhoneNumber = user.PhoneNumber
		case "Birthday":
			stored.Birthday = user.Birthday
		case "Gender":
			stored.Gender = user.Gender
		case "CompanyName":
			stored.CompanyName = user.CompanyName
		case "CompanyWebsite":
			stored.CompanyWebsite = user.CompanyWebsite
		default:
			panic("unexpected field " + f)
		}
	}
	return nil
}

func (r *memUserRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// fakeGoogle maps raw tokens to claims.
type fakeGoogle struct {
	claims map[string]*auth.GoogleClaims
}

func (f *fakeGoogle) Verify(_ context.Context, token string) (*auth.GoogleClaims, error) {
	c, ok := f.claims[token]
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}
	return c, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []mail.Message
	ok   bool
}

func (f *fakeNotifier) Enqueue(msg mail.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return f.ok
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return f.err
}

func strPtr(s string) *string { return &s }
