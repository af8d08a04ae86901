package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/pkg/logger"
	"github.com/go-chi/chi"
)

// SuccessResponse is the envelope of every 2xx JSON response.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the envelope of every non-2xx JSON response.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
	// OnServerError, when set, sees every error answered with a 500.
	OnServerError func(err error, r *http.Request)
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	h.WriteJSON(w, status, SuccessResponse{Success: true, Data: data, Message: message})
}

func (h *BaseHandler) WriteAppError(w http.ResponseWriter, appErr *internal.AppError) {
	h.WriteJSON(w, appErr.StatusCode, ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    string(appErr.Code),
		Details: appErr.Details,
	})
}

// HandleServiceError maps service errors onto the envelope. Anything that is
// not an AppError is logged and reported as a generic 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode < http.StatusInternalServerError {
		logger.From(r.Context()).Warn("request rejected",
			"path", r.URL.Path,
			"code", appErr.Code,
			"status", appErr.StatusCode)
		h.WriteAppError(w, appErr)
		return
	}

	logger.From(r.Context()).Error("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"error", err)
	if h.OnServerError != nil {
		h.OnServerError(err, r)
	}
	h.WriteJSON(w, http.StatusInternalServerError, InternalErrorResponse(r))
}

// InternalErrorResponse is the generic 500 envelope. It carries the request
// id so a caller can quote it when reporting the failure.
func InternalErrorResponse(r *http.Request) ErrorResponse {
	resp := ErrorResponse{
		Success: false,
		Error:   "internal server error",
		Code:    string(internal.ErrCodeInternal),
	}
	if id := internal.RequestIDFromContext(r.Context()); id != "" {
		resp.Details = map[string]string{"requestId": id}
	}
	return resp
}

// DecodeJSON decodes the body into dst. Type mismatches are reported against
// the offending field so that, for example, a string amount is a 400 on
// "amount" rather than a generic parse failure.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) *internal.AppError {
	if r.Body == nil {
		return internal.NewValidationError("request body is required", internal.ErrCodeInvalidBody)
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return internal.NewValidationFieldError(typeErr.Field,
				fmt.Sprintf("%s must be a %s", typeErr.Field, describeKind(typeErr.Type.Kind().String())),
				internal.ErrCodeValidationFailed)
		case errors.Is(err, io.EOF):
			return internal.NewValidationError("request body is required", internal.ErrCodeInvalidBody)
		default:
			return internal.NewValidationError("invalid request body", internal.ErrCodeInvalidBody)
		}
	}
	return nil
}

func describeKind(kind string) string {
	switch {
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"):
		return "whole number"
	case strings.HasPrefix(kind, "float"):
		return "number"
	case kind == "bool":
		return "boolean"
	case kind == "string":
		return "string"
	default:
		return "valid " + kind
	}
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

// URLParamID parses a positive int64 path parameter.
func (h *BaseHandler) URLParamID(r *http.Request, name string) (int64, *internal.AppError) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, fmt.Sprintf("%s must be a positive integer", name), internal.ErrCodeInvalidID)
	}
	return id, nil
}

// Scope returns the caller's tenant scope, writing a 401 when the request
// did not pass through the session middleware.
func (h *BaseHandler) Scope(w http.ResponseWriter, r *http.Request) (tenant.Scope, bool) {
	scope, ok := tenant.ScopeFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrSessionRequired)
	}
	return scope, ok
}

// WantsHTML reports whether the request came from a browser page rather than an API client.
func WantsHTML(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
