package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/ytlinks/internal/shared"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrInvalidToken),
		errors.Is(err, shared.ErrTokenExpired),
		errors.Is(err, shared.ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAlreadyExists), errors.Is(err, shared.ErrDuplicateJob):
		return http.StatusConflict
	case errors.Is(err, shared.ErrServiceUnavailable), errors.Is(err, shared.ErrQueueClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status for err.
//
// Server errors always carry the generic message plus the error text. Client errors
// use message, or the error text without its sentinel prefix when message is empty.
func writeError(w http.ResponseWriter, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		writeJSON(w, status, errorBody{Message: "Server error", Error: err.Error()})
		return
	}
	if message == "" {
		message = clientMessage(err)
	}
	writeJSON(w, status, errorBody{Message: message})
}

func clientMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{shared.ErrInvalidInput, shared.ErrMissingArgument, shared.ErrInvalidArgument} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: malformed JSON body", shared.ErrInvalidInput)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", shared.ErrInvalidArgument, name)
	}
	return id, nil
}
