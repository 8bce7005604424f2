package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/nabil-s/appointly/internal/apperr"
	"github.com/nabil-s/appointly/internal/domain"
	"github.com/nabil-s/appointly/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidCredentials covers both unknown userName and wrong password
	// so callers cannot probe which accounts exist.
	ErrInvalidCredentials = apperr.Unauthenticated("Incorrect username or password")

	ErrUserExists             = apperr.Conflict("User already exists")
	ErrInvalidActivationToken = apperr.BadRequest("Invalid activation token")
	ErrAccountInactive        = apperr.Unauthenticated("Account is not activated. Please check your email")
	ErrAccountGone            = apperr.Unauthenticated("The account belonging to this token no longer exists")
	ErrPasswordChanged        = apperr.Unauthenticated("Password was changed recently. Please log in again")
	ErrUserNotFound           = apperr.NotFound("User not found")
)

// activationTokenBytes yields a 160-bit hex token, enough entropy for a
// single-use emailed credential.
const activationTokenBytes = 20

type AuthService struct {
	users  repository.UserRepository
	tokens *TokenService
}

func NewAuthService(users repository.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type SignupInput struct {
	FirstName string
	LastName  string
	UserName  string
	Email     string
	Password  string
	Role      domain.Role
}

// Signup creates an inactive account holding a fresh activation token. The
// caller gets the record back for delivery of the activation email, but no
// session is established until Activate succeeds.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	activationToken, err := generateActivationToken()
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		UserName:        input.UserName,
		Email:           input.Email,
		PasswordHash:    hash,
		Avatar:          domain.DefaultAvatar,
		Role:            input.Role,
		IsActive:        false,
		ActivationToken: activationToken,
		TokenVersion:    0,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Activate flips the account to active and consumes the activation token.
// A second activation attempt finds no matching token and fails.
func (s *AuthService) Activate(ctx context.Context, activationToken string) error {
	user, err := s.users.GetByActivationToken(ctx, activationToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidActivationToken
		}
		return err
	}

	user.IsActive = true
	user.ActivationToken = ""
	return s.users.Update(ctx, user)
}

type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials and issues a session token embedding the
// account's current token version. Inactive accounts cannot authenticate.
func (s *AuthService) Login(ctx context.Context, userName, password string) (*LoginResult, error) {
	user, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout bumps the account's token version, which kills every token issued
// before this call. The increment is atomic at the store so concurrent
// logouts from several devices each land.
func (s *AuthService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.users.IncrementTokenVersion(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountGone
	}
	return err
}

// ResolveToken turns a candidate session token into the live account behind
// it. The check order matters: verify the token, reload the account, compare
// token versions, then compare the password-change timestamp. Each step has
// a more specific failure than the next would, and version/timestamp
// comparisons never run against a missing account.
func (s *AuthService) ResolveToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountGone
		}
		return nil, err
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidToken
	}

	if claims.IssuedAt != nil && user.PasswordChangedAfter(claims.IssuedAt.Time) {
		return nil, ErrPasswordChanged
	}

	return user, nil
}

// Profile returns the account without password material.
func (s *AuthService) Profile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateProfile applies the non-empty fields. Replacing the password also
// stamps PasswordChangedAt, which invalidates tokens issued before the
// change even if their version still matches.
func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Password != "" {
		hash, err := HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		now := time.Now()
		user.PasswordChangedAt = &now
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// DeleteAccount removes the caller's own record.
func (s *AuthService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	err := s.users.Delete(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func generateActivationToken() (string, error) {
	buf := make([]byte, activationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
