package service

import (
	"github.com/nabil-s/appointly/internal/config"
	"github.com/nabil-s/appointly/internal/repository"
)

type Services struct {
	Token    *TokenService
	Auth     *AuthService
	Category *CategoryService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	tokens := NewTokenService(cfg)
	return &Services{
		Token:    tokens,
		Auth:     NewAuthService(repos.User, tokens),
		Category: NewCategoryService(repos.Category),
	}
}
