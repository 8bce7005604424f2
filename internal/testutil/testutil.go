package testutil

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/nabil-s/appointly/internal/api"
	"github.com/nabil-s/appointly/internal/config"
	"github.com/nabil-s/appointly/internal/repository"
	"github.com/nabil-s/appointly/internal/repository/memory"
	"github.com/nabil-s/appointly/internal/service"
)

// TestConfig returns a config suitable for tests, no environment needed.
func TestConfig() *config.Config {
	return &config.Config{
		Port:                 "0",
		Environment:          "test",
		JWTSecret:            "test-secret-not-for-production",
		JWTExpirationHours:   24,
		CookieExpirationDays: 1,
		CORSOrigins:          []string{"http://localhost:3000"},
	}
}

// TestServer runs the full router over in-memory repositories.
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Config   *config.Config
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := TestConfig()
	repos := memory.NewRepositories()
	services := service.NewServices(repos, cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := httptest.NewServer(api.NewRouter(services, cfg, logger))
	t.Cleanup(srv.Close)

	return &TestServer{
		Server:   srv,
		Repos:    repos,
		Services: services,
		Config:   cfg,
	}
}

// APIURL builds a URL under the /api/v1 prefix.
func (ts *TestServer) APIURL(path string) string {
	return ts.Server.URL + "/api/v1" + path
}
