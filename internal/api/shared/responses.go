package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/logger"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/redact"
)

// NotAuthorizedMessage is returned for every missing or rejected credential.
const NotAuthorizedMessage = "User is not authorized to access this page."

// MessageResponse is the body of simple success and error responses.
type MessageResponse struct {
	Message string `json:"message"`
	TraceID string `json:"traceId,omitempty"`
}

// ValidationErrorResponse lists every invalid field of a request.
type ValidationErrorResponse struct {
	Errors []domain.FieldError `json:"errors"`
}

// InternalErrorResponse is the body of every 500 response.
type InternalErrorResponse struct {
	Message      string `json:"message"`
	ErrorName    string `json:"errorName"`
	ErrorMessage string `json:"errorMessage"`
	TraceID      string `json:"traceId,omitempty"`
}

// ResponseOption defines a function to customize response behavior.
type ResponseOption func(*responseOptions)

// responseOptions holds configurable options for error responses.
type responseOptions struct {
	elevateLogLevel bool
}

// WithElevatedLogLevel raises the log level of a 4xx response from DEBUG to WARN.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithMessage writes a {message} body.
func RespondWithMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithJSON(w, r, status, MessageResponse{Message: message})
}

// RespondWithError writes a {message} error body carrying the request's trace ID.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	traceID := GetTraceID(r.Context())

	logger.FromContext(r.Context()).Debug("sending error response",
		"status_code", status,
		"message", message,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, MessageResponse{Message: message, TraceID: traceID})
}

// RespondWithValidationErrors writes a 422 listing the invalid fields.
func RespondWithValidationErrors(w http.ResponseWriter, r *http.Request, verr *domain.ValidationError) {
	logger.FromContext(r.Context()).Debug("request failed validation",
		"fields", len(verr.Fields),
		"path", r.URL.Path)

	RespondWithJSON(w, r, http.StatusUnprocessableEntity, ValidationErrorResponse{Errors: verr.Fields})
}

// RespondWithErrorAndLog writes a {message} error body and logs the redacted
// cause. 5xx responses log at ERROR and 4xx at DEBUG unless elevated.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	responseOpts := responseOptions{}
	for _, opt := range opts {
		opt(&responseOpts)
	}

	logLevel := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		logLevel = slog.LevelError
	case responseOpts.elevateLogLevel && status >= http.StatusBadRequest:
		logLevel = slog.LevelWarn
	}

	logger.FromContext(r.Context()).LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, MessageResponse{Message: userMessage, TraceID: traceID})
}

// RespondWithInternalError writes the 500 envelope. The error message is
// redacted before it leaves the process and no stack trace is included.
func RespondWithInternalError(w http.ResponseWriter, r *http.Request, name string, err error) {
	message := ""
	if err != nil {
		message = redact.Error(err)
	}

	logger.FromContext(r.Context()).Error("unhandled error",
		"path", r.URL.Path,
		"method", r.Method,
		"error_name", name,
		"error", message)

	RespondWithJSON(w, r, http.StatusInternalServerError, InternalErrorResponse{
		Message:      "A problem has occurred. Please try again.",
		ErrorName:    name,
		ErrorMessage: message,
		TraceID:      GetTraceID(r.Context()),
	})
}
