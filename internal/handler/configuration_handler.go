package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/service"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
	"github.com/noah-isme/college-portal-api/pkg/response"
)

// ConfigurationHandler manages the academic calendar and fee settings.
type ConfigurationHandler struct {
	configs   *service.ConfigurationService
	dashboard *service.DashboardService
}

// NewConfigurationHandler constructs ConfigurationHandler.
func NewConfigurationHandler(configs *service.ConfigurationService, dashboard *service.DashboardService) *ConfigurationHandler {
	return &ConfigurationHandler{configs: configs, dashboard: dashboard}
}

// Effective godoc
// @Summary Get effective calendar and fee configuration
// @Description Returns the stored overrides merged over the defaults.
// @Tags Configuration
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /configuration [get]
func (h *ConfigurationHandler) Effective(c *gin.Context) {
	cfg, err := h.configs.Effective(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// Get godoc
// @Summary Get one configuration entry
// @Tags Configuration
// @Produce json
// @Param key path string true "Configuration key"
// @Success 200 {object} response.Envelope
// @Router /configuration/{key} [get]
func (h *ConfigurationHandler) Get(c *gin.Context) {
	item, err := h.configs.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// UpdateCalendar godoc
// @Summary Update the semester anchors and fee totals
// @Description Derived positions and the dashboard change immediately, so the
// @Description dashboard cache is invalidated on success.
// @Tags Configuration
// @Accept json
// @Produce json
// @Param payload body dto.UpdateCalendarConfigRequest true "Configuration payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /configuration [put]
func (h *ConfigurationHandler) UpdateCalendar(c *gin.Context) {
	var req dto.UpdateCalendarConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid configuration payload"))
		return
	}

	cfg, err := h.configs.UpdateCalendar(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.dashboard != nil {
		h.dashboard.InvalidateCache(c.Request.Context())
	}

	response.JSON(c, http.StatusOK, cfg, nil)
}
