package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/service"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
	"github.com/noah-isme/college-portal-api/pkg/response"
)

// ScholarshipHandler exposes the per-student scholarship ledger.
type ScholarshipHandler struct {
	scholarships *service.ScholarshipService
}

// NewScholarshipHandler constructs ScholarshipHandler.
func NewScholarshipHandler(scholarships *service.ScholarshipService) *ScholarshipHandler {
	return &ScholarshipHandler{scholarships: scholarships}
}

// RecordSanction godoc
// @Summary Record a scholarship sanction event
// @Description Upserts the sanction row for the student and academic year.
// @Tags Scholarships
// @Accept json
// @Produce json
// @Param roll path string true "Roll number"
// @Param payload body dto.RecordSanctionRequest true "Sanction payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/{roll}/scholarship/sanction [post]
func (h *ScholarshipHandler) RecordSanction(c *gin.Context) {
	var req dto.RecordSanctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sanction payload"))
		return
	}

	sanction, err := h.scholarships.RecordSanction(c.Request.Context(), c.Param("roll"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sanction, nil)
}

// RecordPayment godoc
// @Summary Record a student fee payment
// @Tags Scholarships
// @Accept json
// @Produce json
// @Param roll path string true "Roll number"
// @Param payload body dto.RecordPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/{roll}/scholarship/payment [post]
func (h *ScholarshipHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	payment, err := h.scholarships.RecordPayment(c.Request.Context(), c.Param("roll"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// GetLedger godoc
// @Summary Get the scholarship ledger for one academic year
// @Tags Scholarships
// @Produce json
// @Param roll path string true "Roll number"
// @Param academic_year query string false "Academic year label, defaults to the student's current year"
// @Success 200 {object} response.Envelope
// @Router /students/{roll}/scholarship [get]
func (h *ScholarshipHandler) GetLedger(c *gin.Context) {
	ledger, err := h.scholarships.GetLedger(c.Request.Context(), c.Param("roll"), c.Query("academic_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger, nil)
}
