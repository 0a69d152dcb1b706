package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/codetrack/scraper-service/internal/service"
)

// StudentHandler serves per-student views
type StudentHandler struct {
	service *service.StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(service *service.StudentService) *StudentHandler {
	return &StudentHandler{service: service}
}

// GetStudent returns a student's links, metrics and current score
// @Summary Get student
// @Tags students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} service.StudentSummary
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/students/{id} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to get student", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
