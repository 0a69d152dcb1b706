package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/codetrack/scraper-service/internal/service"
)

// RuleHandler administers grading rules
type RuleHandler struct {
	service *service.RuleService
}

// NewRuleHandler creates a new grading rule handler
func NewRuleHandler(service *service.RuleService) *RuleHandler {
	return &RuleHandler{service: service}
}

// UpsertRuleRequest sets the points of one metric
type UpsertRuleRequest struct {
	Points    *int   `json:"points" binding:"required"`
	UpdatedBy string `json:"updated_by"`
}

// ListRules returns every grading rule
// @Summary List grading rules
// @Tags admin
// @Produce json
// @Success 200 {array} models.GradingRule
// @Router /api/v1/admin/grading-rules [get]
func (h *RuleHandler) ListRules(c *gin.Context) {
	rules, err := h.service.ListRules(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to list grading rules", err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// UpsertRule sets the points of a metric
// @Summary Update grading rule
// @Tags admin
// @Accept json
// @Produce json
// @Param metric path string true "Metric name"
// @Param request body UpsertRuleRequest true "Points"
// @Success 200 {object} models.GradingRule
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/admin/grading-rules/{metric} [put]
func (h *RuleHandler) UpsertRule(c *gin.Context) {
	var req UpsertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	rule, err := h.service.UpsertRule(c.Request.Context(), c.Param("metric"), *req.Points, req.UpdatedBy)
	if err != nil {
		respondError(c, "Failed to update grading rule", err)
		return
	}
	c.JSON(http.StatusOK, rule)
}
