package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/repository"
	"github.com/yourusername/codetrack/scraper-service/internal/service"
	"github.com/yourusername/codetrack/scraper-service/internal/verification"
	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

// Response types

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components"`
}

func badRequest(c *gin.Context, err error) {
	logger.Error("Invalid request", zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request",
		Message: err.Error(),
	})
}

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, summary string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, verification.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrUnknownMetric), errors.Is(err, service.ErrEmptyUsername):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.Error(summary, zap.Error(err))
	} else {
		logger.Warn(summary, zap.Error(err))
	}
	c.JSON(status, ErrorResponse{
		Error:   summary,
		Message: err.Error(),
	})
}

// platformParam reads and validates the :platform path segment
func platformParam(c *gin.Context) (models.Platform, bool) {
	platform, ok := models.ParsePlatform(c.Param("platform"))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: "unknown platform " + c.Param("platform"),
		})
		return "", false
	}
	return platform, true
}
