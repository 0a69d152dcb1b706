package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
	"github.com/yourusername/codetrack/scraper-service/internal/service"
)

// RankingHandler serves student rankings
type RankingHandler struct {
	service *service.RankingService
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(service *service.RankingService) *RankingHandler {
	return &RankingHandler{service: service}
}

// RankingQuery combines the filter and page query parameters
type RankingQuery struct {
	models.RankingFilter
	service.PageRequest
}

// GetRanking computes the ranking and returns one page of it
// @Summary Get ranking
// @Description Rank students by weighted score; filters narrow the population without changing scores
// @Tags ranking
// @Produce json
// @Param department query string false "Department"
// @Param year query int false "Year"
// @Param section query string false "Section"
// @Param search query string false "Name or ID substring"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} service.RankingPage
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/rankings [get]
func (h *RankingHandler) GetRanking(c *gin.Context) {
	var q RankingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	page, err := h.service.ComputeRanking(c.Request.Context(), q.RankingFilter, q.PageRequest)
	if err != nil {
		respondError(c, "Failed to compute ranking", err)
		return
	}

	c.JSON(http.StatusOK, page)
}
