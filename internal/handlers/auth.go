package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"blogcms/internal/middleware"
	"blogcms/internal/session"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions Sessions
	users    Users
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions Sessions, users Users) *Auth {
	return &Auth{
		sessions: sessions,
		users:    users,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the credentials, starts a session and returns the user.
// Unknown emails and wrong passwords get the same 401.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := a.users.FindByEmail(r.Context(), email)
	if err != nil {
		internalError(w, "login lookup failed", err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		slog.Info("login rejected", "email", email)
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   string(user.Role),
	})
	if err != nil {
		internalError(w, "session create failed", err, "user", user.ID)
		return
	}

	slog.Info("user logged in", "user", user.ID, "role", user.Role)
	writeJSON(w, http.StatusOK, user)
}

// Logout destroys the session and clears the cookie.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		internalError(w, "session destroy failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user. A session whose user no longer exists
// counts as signed out.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		internalError(w, "load current user failed", err, "user", sess.UserID)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
