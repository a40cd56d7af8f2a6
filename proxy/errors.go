package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Error is a routing decision failure, rendered to the caller as JSON
type Error struct {
	StatusCode int
	Message    string
	// Outcome is the metrics label for this failure
	Outcome string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// MarshalJSON renders the error in the shape the dashboard frontend expects
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StatusCode int    `json:"statusCode"`
		Error      string `json:"error"`
		Message    string `json:"message"`
	}{e.StatusCode, http.StatusText(e.StatusCode), e.Message})
}

const (
	outcomeForwarded     = "forwarded"
	outcomeRateLimited   = "rate_limited"
	outcomeNotFound      = "not_found"
	outcomeUnavailable   = "unavailable"
	outcomeUnauthorized  = "unauthorized"
	outcomeUpstreamError = "upstream_error"
	outcomeInternal      = "internal_error"
)

func notFoundError(kind, name string, cause error, override string) *Error {
	if override == "" {
		override = "not found"
	}
	msg := fmt.Sprintf("%s '%s' %s.", kind, name, override)
	if c := causeMessage(cause); c != "" {
		msg += " " + c
	}
	return &Error{StatusCode: http.StatusNotFound, Message: msg, Outcome: outcomeNotFound, cause: cause}
}

// NotFoundError reports a missing gating resource or plugin
func NotFoundError(kind, name string, cause error) *Error {
	return notFoundError(kind, name, cause, "")
}

// UnavailableError reports a gating resource that failed its readiness predicate
func UnavailableError(kind, name string, cause error) *Error {
	err := notFoundError(kind, name, cause, "service unavailable")
	err.Outcome = outcomeUnavailable
	return err
}

// PluginUnavailableError reports a plugin alias missing from the dashboard configuration
func PluginUnavailableError(alias string) *Error {
	return notFoundError("Plugin", alias, nil, "plugin unavailable")
}

// RateLimitedError reports a caller that exceeded the allowed request rate
func RateLimitedError() *Error {
	return &Error{
		StatusCode: http.StatusTooManyRequests,
		Message:    "Rate limit exceeded, retry later.",
		Outcome:    outcomeRateLimited,
	}
}

// AuthError reports a failure to derive the caller's access token
func AuthError(cause error) *Error {
	return &Error{
		StatusCode: http.StatusUnauthorized,
		Message:    fmt.Sprintf("Unable to authorize request: %v", cause),
		Outcome:    outcomeUnauthorized,
		cause:      cause,
	}
}

// UpstreamError reports a transport failure talking to the upstream
func UpstreamError(cause error) *Error {
	return &Error{
		StatusCode: http.StatusBadGateway,
		Message:    fmt.Sprintf("Upstream request failed: %v", cause),
		Outcome:    outcomeUpstreamError,
		cause:      cause,
	}
}

// causeMessage formats Kubernetes API status errors as "<code>: <message>"
func causeMessage(err error) string {
	if err == nil {
		return ""
	}
	var status apierrors.APIStatus
	if errors.As(err, &status) {
		s := status.Status()
		return fmt.Sprintf("%d: %s", s.Code, s.Message)
	}
	return err.Error()
}

// asError converts any error into a structured error, defaulting to 500
func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Message:    err.Error(),
		Outcome:    outcomeInternal,
		cause:      err,
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	e := asError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(e.StatusCode)
	if err := json.NewEncoder(w).Encode(e); err != nil {
		log.FromContext(ctx).V(1).Info("write error response", "err", err)
	}
}
