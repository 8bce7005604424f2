package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/nabil-s/appointly/internal/domain"
	"github.com/nabil-s/appointly/internal/repository"
	"github.com/nabil-s/appointly/internal/service"
)

// UserBuilder creates test accounts with a builder pattern.
type UserBuilder struct {
	firstName       string
	lastName        string
	userName        string
	email           string
	password        string
	role            domain.Role
	active          bool
	activationToken string
}

// NewUserBuilder returns a builder for an already-activated customer with
// unique userName/email.
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		firstName: "Test",
		lastName:  "User",
		userName:  fmt.Sprintf("testuser_%s", suffix),
		email:     fmt.Sprintf("testuser_%s@example.com", suffix),
		password:  "testpassword123",
		role:      domain.RoleCustomer,
		active:    true,
	}
}

func (b *UserBuilder) WithUserName(name string) *UserBuilder {
	b.userName = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithRole(role domain.Role) *UserBuilder {
	b.role = role
	return b
}

func (b *UserBuilder) Inactive(activationToken string) *UserBuilder {
	b.active = false
	b.activationToken = activationToken
	return b
}

// Build stores the account and returns it together with the raw password.
func (b *UserBuilder) Build(t *testing.T, users repository.UserRepository) (*domain.User, string) {
	t.Helper()

	hash, err := service.HashPassword(b.password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		FirstName:       b.firstName,
		LastName:        b.lastName,
		UserName:        b.userName,
		Email:           b.email,
		PasswordHash:    hash,
		Avatar:          domain.DefaultAvatar,
		Role:            b.role,
		IsActive:        b.active,
		ActivationToken: b.activationToken,
	}

	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// CategoryBuilder creates test categories.
type CategoryBuilder struct {
	name        string
	description string
	active      bool
}

func NewCategoryBuilder() *CategoryBuilder {
	return &CategoryBuilder{
		name:        fmt.Sprintf("category_%s", uuid.New().String()[:8]),
		description: "A test category",
		active:      true,
	}
}

func (b *CategoryBuilder) WithName(name string) *CategoryBuilder {
	b.name = name
	return b
}

func (b *CategoryBuilder) Inactive() *CategoryBuilder {
	b.active = false
	return b
}

func (b *CategoryBuilder) Build(t *testing.T, categories repository.CategoryRepository) *domain.Category {
	t.Helper()

	category := &domain.Category{
		Name:        b.name,
		Description: b.description,
		Image:       domain.DefaultCategoryImage,
		IsActive:    b.active,
	}

	if err := categories.Create(context.Background(), category); err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}
