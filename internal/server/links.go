package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytlinks/internal/auth"
	"github.com/desertthunder/ytlinks/internal/metrics"
	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/shared"
)

// LinkHandler serves the link CRUD and dispatch routes under /api/tasks.
//
// Every route acts on the authenticated caller's links only. A link or user id
// that belongs to someone else answers exactly like a missing one.
type LinkHandler struct {
	links        LinkStore
	dispatcher   Dispatcher
	autoDispatch bool
	metrics      *metrics.Metrics
	logger       *log.Logger
}

type createLinkRequest struct {
	UserID int64 `json:"user_id"`
	models.LinkInput
}

type statusRequest struct {
	Status string `json:"status"`
}

type resendRequest struct {
	Use string `json:"use"`
}

type linkResponse struct {
	Message string       `json:"message,omitempty"`
	Link    *models.Link `json:"link"`
}

func (h *LinkHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/api/tasks", Handler: h.create, Auth: true},
		{Method: http.MethodGet, Path: "/api/tasks/{userId}", Handler: h.list, Auth: true},
		{Method: http.MethodGet, Path: "/api/tasks/{userId}/summary", Handler: h.summary, Auth: true},
		{Method: http.MethodGet, Path: "/api/tasks/{linkId}/{userId}", Handler: h.get, Auth: true},
		{Method: http.MethodPut, Path: "/api/tasks/{linkId}", Handler: h.update, Auth: true},
		{Method: http.MethodDelete, Path: "/api/tasks/{linkId}", Handler: h.delete, Auth: true},
		{Method: http.MethodPatch, Path: "/api/tasks/{linkId}/status", Handler: h.updateStatus, Auth: true},
		{Method: http.MethodPost, Path: "/api/tasks/{linkId}/{userId}/resend", Handler: h.resend, Auth: true},
	}
}

// caller returns the authenticated claims. Routes are only mounted behind [RequireAuth].
func caller(r *http.Request) *auth.Claims {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		return &auth.Claims{}
	}
	return claims
}

// ownUserID parses the userId path value and rejects anyone but the caller.
func ownUserID(r *http.Request) (int64, error) {
	userID, err := pathID(r, "userId")
	if err != nil {
		return 0, err
	}
	if userID != caller(r).UserID {
		return 0, shared.ErrNotFound
	}
	return userID, nil
}

// notFoundMessage returns msg for not-found errors and "" otherwise.
func notFoundMessage(err error, msg string) string {
	if errors.Is(err, shared.ErrNotFound) {
		return msg
	}
	return ""
}

func (h *LinkHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}

	in := req.LinkInput.Normalize()
	if err := in.Validate(); err != nil {
		writeError(w, err, "")
		return
	}

	claims := caller(r)
	if req.UserID != 0 && req.UserID != claims.UserID {
		writeError(w, shared.ErrNotFound, "User not found")
		return
	}

	link, err := h.links.Create(r.Context(), claims.UserID, in)
	if err != nil {
		writeError(w, err, "")
		return
	}
	h.metrics.ObserveStatus(link.Status.String(), "api")

	if h.autoDispatch && h.dispatcher != nil {
		if queued, err := h.dispatcher.Dispatch(r.Context(), claims.Email, link, models.UseTranscript); err != nil {
			h.logger.Warn("auto dispatch failed", "link", link.ID, "error", err)
		} else {
			link = queued
		}
	}

	writeJSON(w, http.StatusCreated, linkResponse{Message: "Link created successfully", Link: link})
}

func (h *LinkHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := ownUserID(r)
	if err != nil {
		writeError(w, err, notFoundMessage(err, "User not found"))
		return
	}

	var status models.LinkStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" && raw != "all" {
		if status, err = models.ParseLinkStatus(raw); err != nil {
			writeError(w, err, "Unknown status filter")
			return
		}
	}

	links, err := h.links.ListByUser(r.Context(), userID, status)
	if err != nil {
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": links})
}

func (h *LinkHandler) summary(w http.ResponseWriter, r *http.Request) {
	userID, err := ownUserID(r)
	if err != nil {
		writeError(w, err, notFoundMessage(err, "User not found"))
		return
	}

	counts, err := h.links.CountByStatus(r.Context(), userID)
	if err != nil {
		writeError(w, err, "")
		return
	}

	out := make(map[string]int, len(counts)+1)
	total := 0
	for status, n := range counts {
		out[status.String()] = n
		total += n
	}
	out["all"] = total
	writeJSON(w, http.StatusOK, map[string]any{"counts": out})
}

func (h *LinkHandler) get(w http.ResponseWriter, r *http.Request) {
	linkID, err := pathID(r, "linkId")
	if err != nil {
		writeError(w, err, "")
		return
	}
	userID, err := ownUserID(r)
	if err != nil {
		writeError(w, err, notFoundMessage(err, "Link not found"))
		return
	}

	link, err := h.links.Get(r.Context(), linkID, userID)
	if err != nil {
		writeError(w, err, "Link not found")
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{Link: link})
}

func (h *LinkHandler) update(w http.ResponseWriter, r *http.Request) {
	linkID, err := pathID(r, "linkId")
	if err != nil {
		writeError(w, err, "")
		return
	}

	var in models.LinkInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, "")
		return
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		writeError(w, err, "")
		return
	}

	link, err := h.links.Update(r.Context(), linkID, caller(r).UserID, in)
	if err != nil {
		writeError(w, err, "Link not found")
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{Message: "Link updated successfully", Link: link})
}

func (h *LinkHandler) delete(w http.ResponseWriter, r *http.Request) {
	linkID, err := pathID(r, "linkId")
	if err != nil {
		writeError(w, err, "")
		return
	}

	if err := h.links.Delete(r.Context(), linkID, caller(r).UserID); err != nil {
		writeError(w, err, "Link not found")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Link deleted successfully"})
}

func (h *LinkHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	linkID, err := pathID(r, "linkId")
	if err != nil {
		writeError(w, err, "")
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeError(w, shared.ErrMissingArgument, "Status is required")
		return
	}
	status, err := models.ParseLinkStatus(req.Status)
	if err != nil {
		writeError(w, err, "Unknown status")
		return
	}

	link, err := h.links.UpdateStatus(r.Context(), linkID, caller(r).UserID, status)
	if err != nil {
		writeError(w, err, "Link not found")
		return
	}
	h.metrics.ObserveStatus(status.String(), "api")
	writeJSON(w, http.StatusOK, linkResponse{Message: "Link status updated successfully", Link: link})
}

// resend queues the link for delivery by the backend dispatcher.
func (h *LinkHandler) resend(w http.ResponseWriter, r *http.Request) {
	linkID, err := pathID(r, "linkId")
	if err != nil {
		writeError(w, err, "")
		return
	}
	userID, err := ownUserID(r)
	if err != nil {
		writeError(w, err, notFoundMessage(err, "Link not found"))
		return
	}

	var req resendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}
	use, err := models.ParseWebhookUse(req.Use)
	if err != nil {
		writeError(w, err, "")
		return
	}

	if h.dispatcher == nil {
		writeError(w, shared.ErrServiceUnavailable, "Webhook dispatch is not configured")
		return
	}

	link, err := h.links.Get(r.Context(), linkID, userID)
	if err != nil {
		writeError(w, err, "Link not found")
		return
	}

	queued, err := h.dispatcher.Dispatch(r.Context(), caller(r).Email, link, use)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateJob) {
			writeError(w, err, "Link is already queued")
			return
		}
		writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusAccepted, linkResponse{Message: "Link queued for delivery", Link: queued})
}
