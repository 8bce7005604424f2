package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nabil-s/appointly/internal/domain"
	"github.com/nabil-s/appointly/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type categoryRepository struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]*domain.Category
}

func NewCategoryRepository() *categoryRepository {
	return &categoryRepository{categories: make(map[primitive.ObjectID]*domain.Category)}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if c.Name == category.Name {
			return repository.ErrDuplicate
		}
	}

	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}

	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]*domain.Category, error) {
	return r.find(func(*domain.Category) bool { return true }), nil
}

func (r *categoryRepository) GetActive(ctx context.Context) ([]*domain.Category, error) {
	return r.find(func(c *domain.Category) bool { return c.IsActive }), nil
}

func (r *categoryRepository) find(match func(*domain.Category) bool) []*domain.Category {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*domain.Category{}
	for _, c := range r.categories {
		if match(c) {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *categoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.categories[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.categories[category.ID]
	if !ok {
		return repository.ErrNotFound
	}

	for _, c := range r.categories {
		if c.ID != category.ID && c.Name == category.Name {
			return repository.ErrDuplicate
		}
	}

	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now()
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}
