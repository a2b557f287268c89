package errors

import "errors"

var (
	// Input errors
	ErrEmptyInput       = errors.New("text or url is required")
	ErrInvalidURL       = errors.New("invalid url provided")
	ErrInputTooLarge    = errors.New("input exceeds maximum request size")
	ErrBatchTooLarge    = errors.New("too many items in batch")
	ErrEmptyBatch       = errors.New("batch cannot be empty")
	ErrInvalidClientID  = errors.New("invalid client ID")
	ErrInvalidDateRange = errors.New("invalid date range")

	// Rule store errors
	ErrInvalidRuleDocument = errors.New("invalid rule document")

	// Rate limit errors
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// WebSocket errors
	ErrInvalidMessageType = errors.New("invalid message type")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStatsDisabled      = errors.New("statistics storage not configured")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
	}
}
