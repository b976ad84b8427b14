package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytlinks/internal/auth"
	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/shared"
)

// UserHandler serves registration, login, logout and account deletion.
type UserHandler struct {
	users   UserStore
	issuer  *auth.TokenIssuer
	revoker auth.Revoker
	logger  *log.Logger
}

type userRequest struct {
	Email string `json:"email"`
}

type userResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token,omitempty"`
}

func (h *UserHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/api/users", Handler: h.register},
		{Method: http.MethodPost, Path: "/api/users/{$}", Handler: h.register},
		{Method: http.MethodPost, Path: "/api/users/logout", Handler: h.logout, Auth: true},
		{Method: http.MethodPost, Path: "/api/users/{email}", Handler: h.login},
		{Method: http.MethodDelete, Path: "/api/users/{email}", Handler: h.delete, Auth: true},
	}
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, shared.ErrMissingArgument, "Email is required")
		return
	}

	user, err := h.users.Create(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			writeError(w, err, "User already exists")
			return
		}
		writeError(w, err, "")
		return
	}

	token, _, err := h.issuer.Issue(user)
	if err != nil {
		writeError(w, err, "")
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, userResponse{Message: "User created successfully", User: user, Token: token})
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PathValue("email"))
	if email == "" {
		writeError(w, shared.ErrMissingArgument, "Email is required")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err, "User not found")
		return
	}

	token, _, err := h.issuer.Issue(user)
	if err != nil {
		writeError(w, err, "")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Message: "Login successful", User: user, Token: token})
}

func (h *UserHandler) logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())
	if err := h.revoke(r, claims); err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Logged out successfully"})
}

// delete removes the caller's own account. Any other email answers 404.
func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())
	email := shared.NormalizeEmail(r.PathValue("email"))
	if email == "" || email != shared.NormalizeEmail(claims.Email) {
		writeError(w, shared.ErrNotFound, "User not found")
		return
	}

	user, err := h.users.DeleteByEmail(r.Context(), email)
	if err != nil {
		writeError(w, err, "User not found")
		return
	}

	if err := h.revoke(r, claims); err != nil {
		h.logger.Warn("failed to revoke token of deleted user", "user_id", user.ID, "error", err)
	}

	h.logger.Info("user deleted", "user_id", user.ID)
	writeJSON(w, http.StatusOK, userResponse{Message: "User deleted successfully", User: user})
}

func (h *UserHandler) revoke(r *http.Request, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return h.revoker.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time)
}
