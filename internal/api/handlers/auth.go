package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/nabil-s/appointly/internal/api/middleware"
	"github.com/nabil-s/appointly/internal/apperr"
	"github.com/nabil-s/appointly/internal/domain"
	"github.com/nabil-s/appointly/internal/service"
)

type AuthHandler struct {
	base
	auth       *service.AuthService
	cookieTTL  time.Duration
	production bool
}

func NewAuthHandler(auth *service.AuthService, cookieTTL time.Duration, logger *slog.Logger, env string) *AuthHandler {
	return &AuthHandler{
		base:       base{logger: logger, env: env},
		auth:       auth,
		cookieTTL:  cookieTTL,
		production: env == "production",
	}
}

type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserName  string `json:"userName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.UserName, validation.Required),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 0)),
		validation.Field(&r.Role, validation.Required,
			validation.In(domain.RoleCustomer.String(), domain.RoleVendor.String())),
	)
}

type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserName, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 0)),
	)
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.EmailFormat),
		validation.Field(&r.Password, validation.Length(6, 0)),
	)
}

// ProfileResponse is the client view of an account. It carries no password
// material by construction.
type ProfileResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func newProfileResponse(user *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:       user.ID.Hex(),
		Name:     user.FullName(),
		UserName: user.UserName,
		Email:    user.Email,
		Role:     user.Role.String(),
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		h.writeError(w, r, apperr.BadRequest("Role must be either customer or vendor"))
		return
	}

	_, err = h.auth.Signup(r.Context(), service.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserName:  req.UserName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      role,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User created successfully. Please check your email to activate your account.",
	})
}

func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "activationToken")

	if err := h.auth.Activate(r.Context(), token); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Account activated successfully. You can now log in.",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"token":  result.Token,
		"user":   newProfileResponse(result.User),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("You are not logged in. Please log in to get access"))
		return
	}

	if err := h.auth.Logout(r.Context(), user.ID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.clearSessionCookie(w)
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Logged out successfully",
	})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("You are not logged in. Please log in to get access"))
		return
	}

	profile, err := h.auth.Profile(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, newProfileResponse(profile))
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("You are not logged in. Please log in to get access"))
		return
	}

	var req UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.auth.UpdateProfile(r.Context(), user.ID, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, newProfileResponse(updated))
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		h.writeError(w, r, apperr.Unauthenticated("You are not logged in. Please log in to get access"))
		return
	}

	if err := h.auth.DeleteAccount(r.Context(), user.ID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.clearSessionCookie(w)
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "User account deleted successfully",
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cookieTTL),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteStrictMode,
	})
}
