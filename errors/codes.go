package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Subscription-phase errors. These terminate the request with an HTTP
// status before any bus interaction.
const (
	// ErrCodeNotAcceptable indicates the client does not accept the
	// event-stream media type.
	ErrCodeNotAcceptable ErrorCode = "NOT_ACCEPTABLE"
	// ErrCodeSignatureRequired indicates a proxied request is missing the
	// required proxy signature.
	ErrCodeSignatureRequired ErrorCode = "SIGNATURE_REQUIRED"
	// ErrCodeInvalidResumeMarker indicates the resume header carried the
	// reserved error value.
	ErrCodeInvalidResumeMarker ErrorCode = "INVALID_RESUME_MARKER"
	// ErrCodeNoChannels indicates the resolved channel set is empty.
	ErrCodeNoChannels ErrorCode = "NO_CHANNELS"
)

// Runtime errors. These cross component boundaries as values after a
// subscription is established.
const (
	// ErrCodeDeliveryFailed indicates the external publish leg failed.
	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"
	// ErrCodePipelineFailed indicates the downstream connection failed
	// during direct delivery.
	ErrCodePipelineFailed ErrorCode = "PIPELINE_FAILED"
)

var retryableCodes = map[ErrorCode]bool{
	// Retry policy for a failed delivery belongs to the producer; the code
	// is marked retryable so producers can make that call.
	ErrCodeDeliveryFailed: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
