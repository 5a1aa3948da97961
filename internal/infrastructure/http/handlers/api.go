// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/alchemorsel/mealplan/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplan/internal/infrastructure/security"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// NewErrorWriter renders errors as the JSON error envelope. Anything that is
// not already an AppError is reported as an internal error.
func NewErrorWriter(logger *zap.Logger) middleware.ErrorWriter {
	return func(w http.ResponseWriter, r *http.Request, appErr *errors.AppError) {
		requestID := chimiddleware.GetReqID(r.Context())
		status := appErr.StatusCode()
		if status >= http.StatusInternalServerError {
			logger.Error("Request failed",
				zap.String("request_id", requestID),
				zap.String("code", string(appErr.Code)),
				zap.String("details", appErr.Details),
				zap.Error(appErr.Cause),
			)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(errors.ToErrorResponse(appErr, requestID)); err != nil {
			logger.Error("Failed to encode error response", zap.Error(err))
		}
	}
}

// base carries what every handler group needs
type base struct {
	validator  *security.ValidationService
	writeError middleware.ErrorWriter
	logger     *zap.Logger
}

func newBase(validator *security.ValidationService, logger *zap.Logger) base {
	return base{validator: validator, writeError: NewErrorWriter(logger), logger: logger}
}

// fail converts err and writes it
func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	b.writeError(w, r, errors.Wrap(err, "An unexpected error occurred"))
}

// writeJSON writes a JSON response
func (b base) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data}); err != nil {
		b.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// decode reads a JSON body into dst and validates it. An empty body leaves dst
// at its zero value.
func (b base) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return errors.NewBadRequestError("Invalid JSON payload").WithCause(err)
	}
	return b.validator.ValidateStruct(dst)
}

// owner returns the authenticated caller
func (b base) owner(r *http.Request) (uuid.UUID, error) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		return uuid.Nil, errors.NewUnauthorizedError("")
	}
	return owner, nil
}

// pathID parses a UUID route parameter
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.NewBadRequestError("Invalid "+name).WithMetadata(name, raw)
	}
	return id, nil
}

// pathString returns an unescaped route parameter
func pathString(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
