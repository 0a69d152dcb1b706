package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/codetrack/scraper-service/internal/service"
)

// ProfileHandler handles coding profile submission and review
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// SubmitProfileRequest carries a new username for a platform
type SubmitProfileRequest struct {
	Username string `json:"username" binding:"required"`
}

// ReviewProfileRequest carries a faculty decision
type ReviewProfileRequest struct {
	Action   string `json:"action" binding:"required,oneof=accept reject suspend"`
	Verifier string `json:"verifier" binding:"required"`
}

// SubmitProfile stores a username and resets the link to pending
// @Summary Submit profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param platform path string true "Platform"
// @Param request body SubmitProfileRequest true "Username"
// @Success 200 {object} models.CodingProfile
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/students/{id}/profiles/{platform} [put]
func (h *ProfileHandler) SubmitProfile(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}
	var req SubmitProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.service.Resubmit(c.Request.Context(), c.Param("id"), platform, req.Username)
	if err != nil {
		respondError(c, "Failed to submit profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ReviewProfile applies a faculty accept, reject or suspend
// @Summary Review profile
// @Description Accepting scrapes the profile immediately and may demote it on repeated failure
// @Tags profiles
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param platform path string true "Platform"
// @Param request body ReviewProfileRequest true "Decision"
// @Success 200 {object} service.ReviewResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/students/{id}/profiles/{platform}/review [post]
func (h *ProfileHandler) ReviewProfile(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}
	var req ReviewProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.service.Review(c.Request.Context(), c.Param("id"), platform, req.Action, req.Verifier)
	if err != nil {
		respondError(c, "Failed to review profile", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RefreshProfile re-scrapes the stored username
// @Summary Refresh profile
// @Tags profiles
// @Produce json
// @Param id path string true "Student ID"
// @Param platform path string true "Platform"
// @Success 200 {object} service.Outcome
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/students/{id}/profiles/{platform}/refresh [post]
func (h *ProfileHandler) RefreshProfile(c *gin.Context) {
	platform, ok := platformParam(c)
	if !ok {
		return
	}

	outcome, err := h.service.Refresh(c.Request.Context(), c.Param("id"), platform)
	if err != nil {
		respondError(c, "Failed to refresh profile", err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}
