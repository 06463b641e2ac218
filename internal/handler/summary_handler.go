package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-portal-api/internal/service"
	"github.com/noah-isme/college-portal-api/pkg/response"
)

// SummaryHandler serves the derived academic and fee snapshot per student.
type SummaryHandler struct {
	summaries *service.SummaryService
}

// NewSummaryHandler constructs SummaryHandler.
func NewSummaryHandler(summaries *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries}
}

// Get godoc
// @Summary Get student academic and fee summary
// @Description Derives branch, admission type, study year, semester and fee
// @Description status from the roll number and the scholarship ledger.
// @Tags Students
// @Produce json
// @Param roll path string true "Roll number"
// @Param academic_year query string false "Academic year label, defaults to the student's current year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /students/{roll}/summary [get]
func (h *SummaryHandler) Get(c *gin.Context) {
	summary, err := h.summaries.GetStudentSummary(c.Request.Context(), c.Param("roll"), c.Query("academic_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
