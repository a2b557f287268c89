package validator

import (
	"regexp"
	"strings"

	"github.com/askwhyharsh/scamcheck/internal/urlutil"
	apperrors "github.com/askwhyharsh/scamcheck/pkg/errors"
)

const (
	MaxTextBytes = 100_000
	MaxURLBytes  = 2048
	MaxBatchSize = 20
)

type Validator interface {
	ValidateAnalyzeRequest(text, url string) error
	ValidateText(text string) error
	ValidateURL(url string) error
	ValidateBatch(n int) error
	ValidateClientID(clientID string) error
}

type validator struct {
	clientIDRegex *regexp.Regexp
}

func NewValidator() Validator {
	return &validator{
		clientIDRegex: regexp.MustCompile(`^[a-zA-Z0-9_-]{8,64}$`),
	}
}

// ValidateAnalyzeRequest requires at least one of text or url.
func (v *validator) ValidateAnalyzeRequest(text, url string) error {
	if strings.TrimSpace(text) == "" && strings.TrimSpace(url) == "" {
		return apperrors.ErrEmptyInput
	}

	if len(text) > MaxTextBytes {
		return apperrors.ErrInputTooLarge
	}

	if strings.TrimSpace(url) != "" {
		return v.ValidateURL(url)
	}

	return nil
}

func (v *validator) ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.ErrEmptyInput
	}

	if len(text) > MaxTextBytes {
		return apperrors.ErrInputTooLarge
	}

	return nil
}

// ValidateURL accepts a single http or https link with a host.
func (v *validator) ValidateURL(url string) error {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return apperrors.ErrEmptyInput
	}

	if len(trimmed) > MaxURLBytes {
		return apperrors.ErrInputTooLarge
	}

	if strings.ContainsAny(trimmed, " \t\r\n") {
		return apperrors.ErrInvalidURL
	}

	if !urlutil.IsValid(trimmed) {
		return apperrors.ErrInvalidURL
	}

	return nil
}

func (v *validator) ValidateBatch(n int) error {
	if n == 0 {
		return apperrors.ErrEmptyBatch
	}

	if n > MaxBatchSize {
		return apperrors.ErrBatchTooLarge
	}

	return nil
}

func (v *validator) ValidateClientID(clientID string) error {
	if !v.clientIDRegex.MatchString(clientID) {
		return apperrors.ErrInvalidClientID
	}

	return nil
}
