// Package apperr defines the operational error taxonomy shared by services
// and handlers. An operational error carries an HTTP status and a message
// that is safe to show to clients; anything else is treated as an internal
// failure and its details are never leaked outside development.
package apperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type Error struct {
	Status  int
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is matches two operational errors on status and message so that sentinel
// errors built with the constructors below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Status == t.Status && e.Message == t.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap attaches an underlying cause that is logged but never rendered.
func Wrap(status int, message string, cause error) *Error {
	return &Error{Status: status, Message: message, err: cause}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func Unauthenticated(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Internal(cause error) *Error {
	return Wrap(http.StatusInternalServerError, "Something went wrong", cause)
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Write renders err as JSON. Operational errors pass their status and
// message through; everything else becomes a 500. In development the
// underlying detail is included, in any other environment it is only logged.
func Write(w http.ResponseWriter, r *http.Request, logger *slog.Logger, env string, err error) {
	resp := errorResponse{Status: "error", Message: "Something went wrong"}
	status := http.StatusInternalServerError

	var opErr *Error
	if errors.As(err, &opErr) {
		status = opErr.Status
		resp.Message = opErr.Message
		if status < http.StatusInternalServerError {
			resp.Status = "fail"
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if env == "development" {
			resp.Detail = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
