package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNotAcceptable(t *testing.T) {
	err := NotAcceptable("text/event-stream")

	if err.Code != ErrCodeNotAcceptable {
		t.Errorf("expected code %s, got %s", ErrCodeNotAcceptable, err.Code)
	}
	if err.HTTPStatus != http.StatusNotAcceptable {
		t.Errorf("expected status 406, got %d", err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("expected non-retryable")
	}
	if !strings.Contains(err.Message, "text/event-stream") {
		t.Errorf("expected media type in message, got %q", err.Message)
	}
}

func TestSignatureRequired(t *testing.T) {
	err := SignatureRequired()

	if err.HTTPStatus != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("expected non-retryable")
	}
}

func TestInvalidResumeMarker(t *testing.T) {
	err := InvalidResumeMarker()

	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", err.HTTPStatus)
	}
}

func TestNoChannels_NamesQueryParam(t *testing.T) {
	err := NoChannels("channel")

	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", err.HTTPStatus)
	}
	if !strings.Contains(err.Message, `"channel"`) {
		t.Errorf("expected query param name in message, got %q", err.Message)
	}
	if err.Details["query_param"] != "channel" {
		t.Errorf("expected query_param detail, got %v", err.Details)
	}
}

func TestNoChannels_NoQueryParam(t *testing.T) {
	err := NoChannels("")

	if strings.Contains(err.Message, "query") {
		t.Errorf("expected no query param mention, got %q", err.Message)
	}
	if err.Details != nil {
		t.Errorf("expected no details, got %v", err.Details)
	}
}

func TestDeliveryFailed(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := DeliveryFailed("orders", cause)

	if err.Code != ErrCodeDeliveryFailed {
		t.Errorf("expected code %s, got %s", ErrCodeDeliveryFailed, err.Code)
	}
	if !err.Retryable {
		t.Error("expected delivery failure to be retryable")
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be wrapped")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected cause in error string, got %q", err.Error())
	}
}

func TestPipelineFailed(t *testing.T) {
	cause := stderrors.New("broken pipe")
	err := PipelineFailed(cause)

	if err.Code != ErrCodePipelineFailed {
		t.Errorf("expected code %s, got %s", ErrCodePipelineFailed, err.Code)
	}
	if err.Retryable {
		t.Error("expected non-retryable")
	}
	if stderrors.Unwrap(err) != cause {
		t.Error("expected Unwrap to return cause")
	}
}

func TestAsAppError(t *testing.T) {
	inner := DeliveryFailed("a", stderrors.New("x"))
	wrapped := fmt.Errorf("write failed: %w", inner)

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AppError through wrapping")
	}
	if appErr.Code != ErrCodeDeliveryFailed {
		t.Errorf("expected code %s, got %s", ErrCodeDeliveryFailed, appErr.Code)
	}

	if IsAppError(stderrors.New("plain")) {
		t.Error("expected plain error to not be an AppError")
	}
}

func TestToResponse(t *testing.T) {
	err := NoChannels("channel")
	resp := err.ToResponse()

	if resp.Error.Code != ErrCodeNoChannels {
		t.Errorf("expected code %s, got %s", ErrCodeNoChannels, resp.Error.Code)
	}
	if resp.Error.Message != err.Message {
		t.Errorf("expected message %q, got %q", err.Message, resp.Error.Message)
	}
}

func TestWithDetailAndCause(t *testing.T) {
	err := New(ErrCodeDeliveryFailed, "delivery failed", http.StatusBadGateway).
		WithDetail("channel", "a").
		WithCause(stderrors.New("timeout"))

	if !err.Retryable {
		t.Error("expected New to derive retryable from code")
	}
	if err.Details["channel"] != "a" {
		t.Errorf("expected detail, got %v", err.Details)
	}
	if err.Cause == nil {
		t.Error("expected cause to be set")
	}
}
