package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	apperrors "eventauth/internal/errors"
	"eventauth/internal/mail"
	"eventauth/internal/model"
	"eventauth/internal/repository"
)

const minPasswordLength = 8

// Notifier queues best-effort email. *mail.Dispatcher satisfies it.
type Notifier interface {
	Enqueue(msg mail.Message) bool
}

// RegisterInput is a password signup request.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Role            string
	ProfilePicture  *string
	PhoneNumber     *string
	Birthday        *time.Time
	Gender          *string
	CompanyName     *string
	CompanyWebsite  *string
}

// ProfileUpdate carries the contact fields a user may fill in after signup.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	PhoneNumber *string
	Birthday    *time.Time
	// ClearBirthday removes a stored birthday. Ignored when Birthday is set.
	ClearBirthday  bool
	Gender         *string
	CompanyName    *string
	CompanyWebsite *string
}

// AuthResult is the outcome of a transition that signs the user in.
type AuthResult struct {
	User                   *model.User
	Tokens                 *TokenPair
	NeedsProfileCompletion bool
	// Created is true when the transition inserted a new account.
	Created bool
}

// AccountResolver decides the create/update/reject outcome for each way an
// account can be entered.
type AccountResolver interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GoogleRegister(ctx context.Context, idToken, role string) (*AuthResult, error)
	GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error)
	CompleteProfile(ctx context.Context, userID uint, update ProfileUpdate) (*model.User, error)
	CreateSuperuser(ctx context.Context, email, password string) (*model.User, error)
}

type accountResolver struct {
	users          repository.UserRepository
	verifier       *CredentialVerifier
	tokens         TokenService
	notifier       Notifier
	logger         *slog.Logger
	defaultPicture string
}

// NewAccountResolver wires the resolver. notifier may be nil. verifier and
// tokens may be nil when only CreateSuperuser is used.
func NewAccountResolver(
	users repository.UserRepository,
	verifier *CredentialVerifier,
	tokens TokenService,
	notifier Notifier,
	logger *slog.Logger,
	defaultPicture string,
) AccountResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &accountResolver{
		users:          users,
		verifier:       verifier,
		tokens:         tokens,
		notifier:       notifier,
		logger:         logger,
		defaultPicture: defaultPicture,
	}
}

// Register creates a password account. Uniqueness is enforced by the store:
// there is no existence check before the insert.
func (s *accountResolver) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Password != in.ConfirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}
	email := model.NormalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minPasswordLength)
	}
	role, err := signupRole(in.Role)
	if err != nil {
		return nil, err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:          email,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		ProfilePicture: s.pictureOrDefault(in.ProfilePicture),
		Role:           role,
		IsActive:       true,
		PasswordHash:   hashed,
		PhoneNumber:    in.PhoneNumber,
		Birthday:       in.Birthday,
		Gender:         in.Gender,
		CompanyName:    in.CompanyName,
		CompanyWebsite: in.CompanyWebsite,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.sendWelcome(ctx, user)
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)

	return &AuthResult{
		User:                   user,
		Tokens:                 tokens,
		NeedsProfileCompletion: user.Role == model.RoleClient,
		Created:                true,
	}, nil
}

// Login signs in with a password. The account is never mutated.
func (s *accountResolver) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	identity, err := s.verifier.Verify(ctx, PasswordAssertion{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	user := identity.User

	tokens, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:                   user,
		Tokens:                 tokens,
		NeedsProfileCompletion: loginNeedsCompletion(user),
	}, nil
}

// GoogleRegister creates the account on first sight of the email and
// otherwise refreshes name, picture and role and signs the user in.
func (s *accountResolver) GoogleRegister(ctx context.Context, idToken, role string) (*AuthResult, error) {
	role, err := signupRole(role)
	if err != nil {
		return nil, err
	}
	identity, err := s.verifier.Verify(ctx, GoogleAssertion{IDToken: idToken})
	if err != nil {
		return nil, err
	}

	created := false
	user, err := s.users.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		applyProvenance(user, identity)
		user.Role = role
		if err := s.users.UpdateFields(ctx, user, "FirstName", "LastName", "ProfilePicture", "Role"); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &model.User{
			Email:          identity.Email,
			FirstName:      identity.GivenName,
			LastName:       identity.FamilyName,
			ProfilePicture: s.pictureOrDefault(optional(identity.Picture)),
			Role:           role,
			IsActive:       true,
			PasswordHash:   model.UnusablePassword,
		}
		if err := s.users.Create(ctx, user); err != nil {
			// Lost a race with a concurrent create for the same email.
			if errors.Is(err, apperrors.ErrDuplicateEmail) {
				return nil, apperrors.ErrDuplicateEmail
			}
			return nil, fmt.Errorf("create user: %w", err)
		}
		created = true
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}

	tokens, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "google registration", "user_id", user.ID, "role", user.Role, "created", created)

	return &AuthResult{
		User:                   user,
		Tokens:                 tokens,
		NeedsProfileCompletion: user.Role == model.RoleClient,
		Created:                created,
	}, nil
}

// GoogleLogin signs in an existing account, refreshing name and picture.
func (s *accountResolver) GoogleLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	identity, err := s.verifier.Verify(ctx, GoogleAssertion{IDToken: idToken})
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	applyProvenance(user, identity)
	if err := s.users.UpdateFields(ctx, user, "FirstName", "LastName", "ProfilePicture"); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	tokens, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:                   user,
		Tokens:                 tokens,
		NeedsProfileCompletion: loginNeedsCompletion(user),
	}, nil
}

// CompleteProfile applies a partial update of contact fields. Email and role
// are never touched.
func (s *accountResolver) CompleteProfile(ctx context.Context, userID uint, update ProfileUpdate) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	var fields []string
	if update.PhoneNumber != nil {
		user.PhoneNumber = update.PhoneNumber
		fields = append(fields, "PhoneNumber")
	}
	if update.Birthday != nil || update.ClearBirthday {
		user.Birthday = update.Birthday
		fields = append(fields, "Birthday")
	}
	if update.Gender != nil {
		user.Gender = update.Gender
		fields = append(fields, "Gender")
	}
	if update.CompanyName != nil {
		user.CompanyName = update.CompanyName
		fields = append(fields, "CompanyName")
	}
	if update.CompanyWebsite != nil {
		user.CompanyWebsite = update.CompanyWebsite
		fields = append(fields, "CompanyWebsite")
	}

	if err := s.users.UpdateFields(ctx, user, fields...); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// CreateSuperuser creates an active admin with staff and superuser flags.
func (s *accountResolver) CreateSuperuser(ctx context.Context, email, password string) (*model.User, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minPasswordLength)
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:          email,
		ProfilePicture: s.pictureOrDefault(nil),
		Role:           model.RoleAdmin,
		IsActive:       true,
		IsStaff:        true,
		IsSuperuser:    true,
		PasswordHash:   hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create superuser: %w", err)
	}
	return user, nil
}

func (s *accountResolver) sendWelcome(ctx context.Context, user *model.User) {
	if s.notifier == nil {
		s.logger.WarnContext(ctx, "no notifier configured, welcome email skipped", "user_id", user.ID)
		return
	}
	msg, err := mail.WelcomeMessage(user.Email, user.FullName())
	if err != nil {
		s.logger.WarnContext(ctx, "welcome email not rendered", "user_id", user.ID, "err", err)
		return
	}
	if !s.notifier.Enqueue(msg) {
		s.logger.WarnContext(ctx, "welcome email not queued", "user_id", user.ID)
	}
}

func (s *accountResolver) pictureOrDefault(p *string) *string {
	if p != nil && *p != "" {
		return p
	}
	if s.defaultPicture == "" {
		return nil
	}
	def := s.defaultPicture
	return &def
}

// signupRole resolves the role requested at signup. Admin is never assignable here.
func signupRole(role string) (string, error) {
	switch role {
	case "":
		return model.RoleGuest, nil
	case model.RoleGuest, model.RoleClient:
		return role, nil
	default:
		return "", fmt.Errorf("%w: role must be one of guest, client", apperrors.ErrValidation)
	}
}

// loginNeedsCompletion flags clients whose contact fields are incomplete.
func loginNeedsCompletion(user *model.User) bool {
	return user.Role == model.RoleClient && user.MissingContactFields()
}

// applyProvenance overwrites name and picture with the claims the identity
// provider supplied. Absent claims keep the stored value.
func applyProvenance(user *model.User, identity *Identity) {
	if identity.GivenName != "" {
		user.FirstName = identity.GivenName
	}
	if identity.FamilyName != "" {
		user.LastName = identity.FamilyName
	}
	if identity.Picture != "" {
		pic := identity.Picture
		user.ProfilePicture = &pic
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
