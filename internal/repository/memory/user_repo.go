// Package memory provides mutex-guarded in-process implementations of the
// repository interfaces. They back the test suite so no database daemon is
// needed, and honor the same uniqueness and atomicity guarantees as the
// mongodb package.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nabil-s/appointly/internal/domain"
	"github.com/nabil-s/appointly/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func NewUserRepository() *userRepository {
	return &userRepository{users: make(map[primitive.ObjectID]*domain.User)}
}

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:     NewUserRepository(),
		Category: NewCategoryRepository(),
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.UserName == user.UserName || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetByUserName(ctx context.Context, userName string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.UserName == userName })
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.Email == email })
}

func (r *userRepository) GetByActivationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	return r.findBy(func(u *domain.User) bool { return u.ActivationToken == token })
}

func (r *userRepository) findBy(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}

	for _, u := range r.users {
		if u.ID == user.ID {
			continue
		}
		if u.UserName == user.UserName || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *userRepository) IncrementTokenVersion(ctx context.Context, id primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	u.TokenVersion++
	u.UpdatedAt = time.Now()
	return u.TokenVersion, nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}
