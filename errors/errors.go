package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Subscription-phase constructors ---

// NotAcceptable creates an AppError for a client that does not accept the
// event-stream media type.
func NotAcceptable(mediaType string) *AppError {
	return &AppError{
		Code: ErrCodeNotAcceptable, Message: fmt.Sprintf("this endpoint only serves %s", mediaType),
		HTTPStatus: http.StatusNotAcceptable, Retryable: false,
		Details: map[string]any{"media_type": mediaType},
	}
}

// SignatureRequired creates an AppError for a proxied request that is
// missing the required proxy signature.
func SignatureRequired() *AppError {
	return &AppError{
		Code: ErrCodeSignatureRequired, Message: "proxy signature required but not provided",
		HTTPStatus: http.StatusForbidden, Retryable: false,
	}
}

// InvalidResumeMarker creates an AppError for the reserved resume header
// value.
func InvalidResumeMarker() *AppError {
	return &AppError{
		Code: ErrCodeInvalidResumeMarker, Message: "invalid Last-Event-ID",
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// NoChannels creates an AppError for an empty resolved channel set.
// queryParam names the query parameter clients may use to request channels;
// pass the empty string when query-sourcing is disabled.
func NoChannels(queryParam string) *AppError {
	msg := "no channels to subscribe to"
	if queryParam != "" {
		msg = fmt.Sprintf("no channels to subscribe to, provide one or more %q query parameters", queryParam)
	}
	e := &AppError{
		Code: ErrCodeNoChannels, Message: msg,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
	if queryParam != "" {
		e.Details = map[string]any{"query_param": queryParam}
	}
	return e
}

// --- Runtime constructors ---

// DeliveryFailed creates an AppError for a failed external publish leg.
func DeliveryFailed(channel string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDeliveryFailed, Message: fmt.Sprintf("failed to deliver event to channel %q", channel),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"channel": channel},
		Cause:   cause,
	}
}

// PipelineFailed creates an AppError for a downstream connection failure
// during direct delivery.
func PipelineFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodePipelineFailed, Message: "event stream pipeline failed",
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Cause: cause,
	}
}
