package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nabil-s/appointly/internal/domain"
	"github.com/nabil-s/appointly/internal/repository"
	"github.com/nabil-s/appointly/internal/repository/memory"
	"github.com/nabil-s/appointly/internal/service"
	"github.com/nabil-s/appointly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() (*service.AuthService, *service.TokenService, *repository.Repositories) {
	repos := memory.NewRepositories()
	tokens := service.NewTokenService(testutil.TestConfig())
	return service.NewAuthService(repos.User, tokens), tokens, repos
}

func signupInput(userName, email string) service.SignupInput {
	return service.SignupInput{
		FirstName: "Alice",
		LastName:  "Nguyen",
		UserName:  userName,
		Email:     email,
		Password:  "password123",
		Role:      domain.RoleCustomer,
	}
}

func TestAuthService_Signup(t *testing.T) {
	auth, _, _ := newAuthService()
	ctx := context.Background()

	user, err := auth.Signup(ctx, signupInput("alice", "alice@x.com"))
	require.NoError(t, err)

	assert.False(t, user.IsActive)
	assert.Len(t, user.ActivationToken, 40) // 20 random bytes, hex-encoded
	assert.Equal(t, int64(0), user.TokenVersion)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, service.CheckPassword("password123", user.PasswordHash))

	// Duplicate email is a conflict regardless of the other fields.
	_, err = auth.Signup(ctx, signupInput("alice2", "alice@x.com"))
	assert.ErrorIs(t, err, service.ErrUserExists)
}

func TestAuthService_Activate(t *testing.T) {
	auth, _, repos := newAuthService()
	ctx := context.Background()

	user, err := auth.Signup(ctx, signupInput("bob", "bob@x.com"))
	require.NoError(t, err)

	require.NoError(t, auth.Activate(ctx, user.ActivationToken))

	stored, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.Empty(t, stored.ActivationToken)

	// The token is consumed, so a second activation fails.
	err = auth.Activate(ctx, user.ActivationToken)
	assert.ErrorIs(t, err, service.ErrInvalidActivationToken)
}

func TestAuthService_Activate_UnknownToken(t *testing.T) {
	auth, _, _ := newAuthService()

	err := auth.Activate(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, service.ErrInvalidActivationToken)
}

func TestAuthService_Login(t *testing.T) {
	auth, tokens, repos := newAuthService()
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUserName("loginuser").
		WithPassword("correctpassword").
		Build(t, repos.User)

	tests := []struct {
		name     string
		userName string
		password string
		wantErr  error
	}{
		{name: "successful login", userName: "loginuser", password: rawPassword},
		{name: "wrong password", userName: "loginuser", password: "wrongpassword", wantErr: service.ErrInvalidCredentials},
		{name: "non-existent user", userName: "nobody", password: "anypassword", wantErr: service.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := auth.Login(ctx, tt.userName, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, user.ID, result.User.ID)
			assert.Empty(t, result.User.PasswordHash)
			assert.True(t, result.ExpiresAt.After(time.Now()))

			claims, err := tokens.Verify(result.Token)
			require.NoError(t, err)
			assert.Equal(t, user.TokenVersion, claims.TokenVersion)
		})
	}
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	auth, _, _ := newAuthService()
	ctx := context.Background()

	user, err := auth.Signup(ctx, signupInput("carol", "carol@x.com"))
	require.NoError(t, err)

	// Correct credentials, but no session before activation.
	_, err = auth.Login(ctx, "carol", "password123")
	assert.ErrorIs(t, err, service.ErrAccountInactive)

	require.NoError(t, auth.Activate(ctx, user.ActivationToken))

	_, err = auth.Login(ctx, "carol", "password123")
	assert.NoError(t, err)
}

func TestAuthService_ResolveToken(t *testing.T) {
	auth, _, repos := newAuthService()
	ctx := context.Background()

	_, rawPassword := testutil.NewUserBuilder().
		WithUserName("resolver").
		Build(t, repos.User)

	result, err := auth.Login(ctx, "resolver", rawPassword)
	require.NoError(t, err)

	resolved, err := auth.ResolveToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "resolver", resolved.UserName)
}

func TestAuthService_ResolveToken_AfterLogout(t *testing.T) {
	auth, _, repos := newAuthService()
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUserName("logoutuser").
		Build(t, repos.User)

	result, err := auth.Login(ctx, "logoutuser", rawPassword)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, user.ID))

	// The version bump kills the token long before its expiry.
	_, err = auth.ResolveToken(ctx, result.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	// A fresh login embeds the new version and works again.
	result, err = auth.Login(ctx, "logoutuser", rawPassword)
	require.NoError(t, err)
	_, err = auth.ResolveToken(ctx, result.Token)
	assert.NoError(t, err)
}

func TestAuthService_ResolveToken_DeletedAccount(t *testing.T) {
	auth, _, repos := newAuthService()
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUserName("goneuser").
		Build(t, repos.User)

	result, err := auth.Login(ctx, "goneuser", rawPassword)
	require.NoError(t, err)

	require.NoError(t, auth.DeleteAccount(ctx, user.ID))

	_, err = auth.ResolveToken(ctx, result.Token)
	assert.ErrorIs(t, err, service.ErrAccountGone)
}

func TestAuthService_ResolveToken_AfterPasswordChange(t *testing.T) {
	auth, _, repos := newAuthService()
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUserName("rotator").
		Build(t, repos.User)

	oldResult, err := auth.Login(ctx, "rotator", rawPassword)
	require.NoError(t, err)

	// Token issue times have second precision, so the change must land in a
	// later second than the old token's issuance.
	time.Sleep(1100 * time.Millisecond)

	updated, err := auth.UpdateProfile(ctx, user.ID, service.UpdateProfileInput{
		Password: "brandnewpassword",
	})
	require.NoError(t, err)
	assert.NotNil(t, updated)

	stored, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordChangedAt)
	assert.True(t, service.CheckPassword("brandnewpassword", stored.PasswordHash))

	_, err = auth.ResolveToken(ctx, oldResult.Token)
	assert.ErrorIs(t, err, service.ErrPasswordChanged)

	// A token issued after the change resolves fine.
	newResult, err := auth.Login(ctx, "rotator", "brandnewpassword")
	require.NoError(t, err)
	_, err = auth.ResolveToken(ctx, newResult.Token)
	assert.NoError(t, err)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	auth, _, repos := newAuthService()
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUserName("updater").
		Build(t, repos.User)

	updated, err := auth.UpdateProfile(ctx, user.ID, service.UpdateProfileInput{
		FirstName: "Renamed",
		Email:     "renamed@x.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.FirstName)
	assert.Equal(t, user.LastName, updated.LastName)
	assert.Equal(t, "renamed@x.com", updated.Email)
	assert.Empty(t, updated.PasswordHash)

	// No password change means no PasswordChangedAt stamp.
	stored, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PasswordChangedAt)
}

func TestAuthService_Logout_Concurrent(t *testing.T) {
	auth, _, repos := newAuthService()
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUserName("multidevice").
		Build(t, repos.User)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, auth.Logout(ctx, user.ID))
		}()
	}
	wg.Wait()

	stored, err := repos.User.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), stored.TokenVersion)
}

func TestAuthService_DeleteAccount(t *testing.T) {
	auth, _, repos := newAuthService()
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, repos.User)

	require.NoError(t, auth.DeleteAccount(ctx, user.ID))

	_, err := auth.Profile(ctx, user.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	err = auth.DeleteAccount(ctx, user.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
