package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// MsgInternalError is the only message a client sees for infrastructure failures.
const MsgInternalError = "Internal server error"

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, MsgInternalError, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondData writes a successful envelope. message is optional.
func RespondData(w http.ResponseWriter, logger *slog.Logger, status int, message string, data any) {
	RespondJSON(w, logger, status, Envelope{Success: true, Message: message, Data: data})
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, Envelope{Success: false, Message: message})
}

// RespondValidationError reports the failed rules of a validator error per field.
func RespondValidationError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	logger.Warn("Validation errors occurred", "errors", fields)
	RespondJSON(w, logger, http.StatusBadRequest, Envelope{Success: false, Message: "Validation failed", Errors: fields})
}

// DecodeJSON decodes the request body into dst. An empty body leaves dst untouched.
// It responds with 400 and returns false when the body is malformed.
func DecodeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		logger.Warn("Error decoding request body", "error", err)
		RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// ParseID extracts and validates the ID from the request path. Returns the ID and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	pathValueID := r.PathValue("id")
	id, err := uuid.Parse(pathValueID)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", pathValueID))
		return uuid.UUID{}, false
	}
	return id, true
}

// GetIdentity retrieves the caller identity set by one of the auth middlewares.
// Responds with 401 when there is none.
func GetIdentity(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (Identity, bool) {
	identity, ok := IdentityFrom(r.Context())
	if !ok || identity.UserID == uuid.Nil {
		RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: missing or invalid user identity")
		return Identity{}, false
	}
	return identity, true
}
