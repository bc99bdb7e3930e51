package handlers

import (
	"errors"
	"net/http"

	"food-ordering-api/middleware"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ── Response envelope ─────────────────────────────────────────────
// Every JSON response is {success, data?, message?, total?}.

func respondData(c *gin.Context, status int, data any, message string) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func respondList(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "total": total})
}

func respondFailure(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// respondError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondFailure(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrMissingRequiredOption),
		errors.Is(err, models.ErrItemUnavailable):
		respondFailure(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		respondFailure(c, http.StatusUnprocessableEntity, err.Error())
	default:
		_ = c.Error(err)
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		respondFailure(c, http.StatusInternalServerError, "Internal server error")
	}
}

func badRequest(c *gin.Context, message string) {
	respondFailure(c, http.StatusBadRequest, message)
}
