package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/nabil-s/appointly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	User   struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		UserName string `json:"userName"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	} `json:"user"`
}

func TestAuthHandler_Signup(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
	}{
		{
			name: "successful signup",
			request: map[string]string{
				"firstName": "Alice", "lastName": "Nguyen",
				"userName": "alice", "email": "alice@x.com",
				"password": "password123", "role": "customer",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			request: map[string]string{
				"firstName": "Alice", "lastName": "Prime",
				"userName": "alice2", "email": "alice@x.com",
				"password": "password123", "role": "customer",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "missing first name",
			request: map[string]string{
				"lastName": "Nguyen", "userName": "dave", "email": "dave@x.com",
				"password": "password123", "role": "customer",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid email",
			request: map[string]string{
				"firstName": "Dave", "lastName": "Nguyen",
				"userName": "dave", "email": "not-an-email",
				"password": "password123", "role": "customer",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "short password",
			request: map[string]string{
				"firstName": "Dave", "lastName": "Nguyen",
				"userName": "dave", "email": "dave@x.com",
				"password": "short", "role": "customer",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "admin role not self-assignable",
			request: map[string]string{
				"firstName": "Eve", "lastName": "Dropper",
				"userName": "eve", "email": "eve@x.com",
				"password": "password123", "role": "admin",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/user/users/signup"), "", tt.request)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body := testutil.ReadBody(t, resp)
			if resp.StatusCode == http.StatusCreated {
				testutil.AssertNoPasswordLeak(t, body)
			}
		})
	}
}

func TestAuthHandler_FullLifecycle(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	// Signup
	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/user/users/signup"), "", map[string]string{
		"firstName": "Alice", "lastName": "Nguyen",
		"userName": "alice", "email": "alice@x.com",
		"password": "password123", "role": "customer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Login before activation is rejected.
	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/user/users/login"), "", map[string]string{
		"userName": "alice", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// The activation token is only ever delivered by email; pull it from the
	// store the way the mail would carry it.
	pending, err := ts.Repos.User.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, pending.ActivationToken)
	require.False(t, pending.IsActive)

	resp, err = http.Get(ts.APIURL("/user/users/activate/" + pending.ActivationToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Activating twice fails: the token was consumed.
	resp, err = http.Get(ts.APIURL("/user/users/activate/" + pending.ActivationToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Login now succeeds and leaks no password material.
	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/user/users/login"), "", map[string]string{
		"userName": "alice", "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login loginResponse
	testutil.AssertJSONResponse(t, resp, &login)
	resp.Body.Close()
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "alice", login.User.UserName)
	assert.Equal(t, "Alice Nguyen", login.User.Name)

	// Profile round-trip.
	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/user/users/profile"), login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profileBody := testutil.ReadBody(t, resp)
	resp.Body.Close()
	assert.Contains(t, profileBody, `"userName":"alice"`)
	testutil.AssertNoPasswordLeak(t, profileBody)

	// Update profile.
	resp = testutil.DoJSON(t, http.MethodPut, ts.APIURL("/user/users/profile"), login.Token, map[string]string{
		"firstName": "Alicia",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updatedBody := testutil.ReadBody(t, resp)
	resp.Body.Close()
	assert.Contains(t, updatedBody, `"name":"Alicia Nguyen"`)

	// Logout kills the token immediately.
	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/user/users/logout"), login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/user/users/profile"), login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuthHandler_Login_GenericError(t *testing.T) {
	ts := testutil.NewTestServer(t)

	testutil.NewUserBuilder().
		WithUserName("victim").
		WithPassword("correctpassword").
		Build(t, ts.Repos.User)

	// Wrong password twice: identical status and body both times, and the
	// same again for a user that does not exist at all.
	var bodies []string
	var statuses []int
	for _, creds := range []map[string]string{
		{"userName": "victim", "password": "wrongpassword"},
		{"userName": "victim", "password": "wrongpassword"},
		{"userName": "ghost", "password": "wrongpassword"},
	} {
		resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/user/users/login"), "", creds)
		statuses = append(statuses, resp.StatusCode)
		bodies = append(bodies, testutil.ReadBody(t, resp))
		resp.Body.Close()
	}

	assert.Equal(t, http.StatusUnauthorized, statuses[0])
	assert.Equal(t, statuses[0], statuses[1])
	assert.Equal(t, statuses[0], statuses[2])
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[0], bodies[2])
}

func TestAuthHandler_Login_SetsSessionCookie(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, rawPassword := testutil.NewUserBuilder().
		WithUserName("cookieuser").
		Build(t, ts.Repos.User)

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/user/users/login"), "", map[string]string{
		"userName": "cookieuser", "password": rawPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "jwt" {
			session = c
		}
	}
	require.NotNil(t, session, "login must set the session cookie")
	assert.True(t, session.HttpOnly)
	assert.NotEmpty(t, session.Value)
}

func TestAuthHandler_DeleteAccount(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, rawPassword := testutil.NewUserBuilder().
		WithUserName("leaver").
		Build(t, ts.Repos.User)

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/user/users/login"), "", map[string]string{
		"userName": "leaver", "password": rawPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login loginResponse
	testutil.AssertJSONResponse(t, resp, &login)
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/user/users/account"), login.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The account behind the token is gone now.
	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/user/users/profile"), login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuthHandler_Profile_RequiresAuth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/user/users/profile"), "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
