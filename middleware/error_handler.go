package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/pingcrm/common"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		apiErr := ToAPIError(c.Errors.Last().Err)
		if apiErr.Status >= http.StatusInternalServerError {
			slog.ErrorContext(c.Request.Context(), "request failed",
				slog.String("request_id", GetRequestID(c)),
				slog.Any("error", c.Errors.Last().Err),
			)
		}

		response := gin.H{"error": apiErr.Message}
		if apiErr.Fields != nil {
			response["fields"] = apiErr.Fields
		}
		c.JSON(apiErr.Status, response)
	}
}

// ToAPIError maps an error to the HTTP error returned to clients.
func ToAPIError(err error) common.APIError {
	var (
		apiErr common.APIError
		serErr *queue.SerializationError
		perErr *queue.PersistenceError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return common.ErrRequestTimeout
	case errors.As(err, &serErr):
		return common.Errf(http.StatusBadRequest, "invalid payload: %v", serErr.Err)
	case errors.Is(err, queue.ErrNotFound):
		return common.Errf(http.StatusNotFound, "job not found")
	case errors.Is(err, queue.ErrInvalidState):
		return common.Errf(http.StatusConflict, "job is not in a valid state for this operation")
	case errors.As(err, &perErr):
		return common.Wrap(http.StatusServiceUnavailable, err, "job store unavailable")
	}

	return common.Wrap(http.StatusInternalServerError, err, "internal server error")
}
