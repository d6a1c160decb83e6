package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nouscopy/nouscopy/internal/auth"
)

type credentials struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

// authStatus maps auth errors to HTTP status codes.
func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrPasswordMismatch):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeAuthError(w http.ResponseWriter, op string, err error) {
	status := authStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("auth request failed", "op", op, "error", err)
	}
	writeError(w, status, auth.UserMessage(err))
}

// SignUp handles POST /api/auth/signup. When confirm_password is sent it
// must match password.
func SignUp(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if body.ConfirmPassword != "" && body.ConfirmPassword != body.Password {
			writeAuthError(w, "signup", auth.ErrPasswordMismatch)
			return
		}

		tok, err := svc.SignUp(r.Context(), body.Email, body.Password)
		if err != nil {
			writeAuthError(w, "signup", err)
			return
		}
		writeJSON(w, http.StatusCreated, tok)
	}
}

// SignIn handles POST /api/auth/signin.
func SignIn(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		tok, err := svc.SignIn(r.Context(), body.Email, body.Password)
		if err != nil {
			writeAuthError(w, "signin", err)
			return
		}
		writeJSON(w, http.StatusOK, tok)
	}
}

// SignOut handles POST /api/auth/signout. It revokes the session behind the
// bearer token.
func SignOut(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.SignOut(r.Context(), auth.BearerToken(r)); err != nil {
			writeAuthError(w, "signout", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetSession handles GET /api/auth/session. It returns the signed-in user.
func GetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": auth.UserFromContext(r.Context())})
	}
}
