package repository

import (
	"context"
	"errors"

	"github.com/nabil-s/appointly/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned by every lookup that matches no record.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique field (userName, email, category
// name) would collide.
var ErrDuplicate = errors.New("duplicate record")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByUserName(ctx context.Context, userName string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByActivationToken(ctx context.Context, token string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// IncrementTokenVersion atomically bumps the account's token version and
	// returns the new value. Concurrent calls must never lose an increment.
	IncrementTokenVersion(ctx context.Context, id primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetAll(ctx context.Context) ([]*domain.Category, error)
	GetActive(ctx context.Context) ([]*domain.Category, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Repositories struct {
	User     UserRepository
	Category CategoryRepository
}
