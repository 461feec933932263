package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pdf-toolbox/internal/domain"
	apperrors "pdf-toolbox/pkg/errors"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

type errorResponse struct {
	Error   string              `json:"error"`
	Kind    apperrors.ErrorType `json:"kind,omitempty"`
	Details string              `json:"details,omitempty"`
}

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeAppError maps err to its HTTP status and writes it.
func writeAppError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error(), Kind: apperrors.KindOf(err)}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Error = appErr.Message
		resp.Details = appErr.Details
	}
	writeJSON(w, apperrors.GetStatusCode(err), resp)
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.NewInvalidArgumentError("invalid request body", err.Error())
	}
	return nil
}
