package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/askwhyharsh/scamcheck/pkg/errors"
)

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{apperrors.ErrEmptyInput, http.StatusBadRequest, "EMPTY_INPUT"},
	{apperrors.ErrInvalidURL, http.StatusBadRequest, "INVALID_URL"},
	{apperrors.ErrInputTooLarge, http.StatusRequestEntityTooLarge, "INPUT_TOO_LARGE"},
	{apperrors.ErrBatchTooLarge, http.StatusBadRequest, "BATCH_TOO_LARGE"},
	{apperrors.ErrEmptyBatch, http.StatusBadRequest, "EMPTY_BATCH"},
	{apperrors.ErrInvalidClientID, http.StatusBadRequest, "INVALID_CLIENT_ID"},
	{apperrors.ErrInvalidDateRange, http.StatusBadRequest, "INVALID_DATE_RANGE"},
	{apperrors.ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT"},
	{apperrors.ErrStatsDisabled, http.StatusServiceUnavailable, "STATS_DISABLED"},
	{apperrors.ErrStorageUnavailable, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
}

// toAppError maps an error to the status and code sent to clients.
func toAppError(err error) (*apperrors.AppError, string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		for _, e := range errorCodes {
			if errors.Is(appErr.Err, e.err) {
				return appErr, e.code
			}
		}
		return appErr, "INTERNAL_ERROR"
	}

	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return apperrors.NewAppError(err, e.err.Error(), e.status), e.code
		}
	}

	return apperrors.NewAppError(err, "Internal server error", http.StatusInternalServerError), "INTERNAL_ERROR"
}

func respondError(c *gin.Context, err error) {
	appErr, code := toAppError(err)
	c.JSON(appErr.StatusCode, ErrorResponse(appErr.Error(), code))
}
