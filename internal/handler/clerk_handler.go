package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-portal-api/internal/dto"
	"github.com/noah-isme/college-portal-api/internal/models"
	"github.com/noah-isme/college-portal-api/internal/service"
	appErrors "github.com/noah-isme/college-portal-api/pkg/errors"
	"github.com/noah-isme/college-portal-api/pkg/response"
)

// ClerkHandler manages clerk accounts. Admin only; the router enforces that.
type ClerkHandler struct {
	users *service.UserService
}

// NewClerkHandler constructs ClerkHandler.
func NewClerkHandler(users *service.UserService) *ClerkHandler {
	return &ClerkHandler{users: users}
}

// List godoc
// @Summary List clerk accounts
// @Tags Clerks
// @Produce json
// @Param search query string false "Search by name or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /clerks [get]
func (h *ClerkHandler) List(c *gin.Context) {
	var filter models.UserFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if active := c.Query("active"); active != "" {
		if active == "true" {
			v := true
			filter.Active = &v
		} else if active == "false" {
			v := false
			filter.Active = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	list, err := h.users.ListClerks(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list.Clerks, &list.Pagination)
}

// Get godoc
// @Summary Get clerk account
// @Tags Clerks
// @Produce json
// @Param id path string true "Clerk ID"
// @Success 200 {object} response.Envelope
// @Router /clerks/{id} [get]
func (h *ClerkHandler) Get(c *gin.Context) {
	clerk, err := h.users.GetClerk(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clerk, nil)
}

// Create godoc
// @Summary Create clerk account
// @Tags Clerks
// @Accept json
// @Produce json
// @Param payload body dto.CreateClerkRequest true "Clerk payload"
// @Success 201 {object} response.Envelope
// @Router /clerks [post]
func (h *ClerkHandler) Create(c *gin.Context) {
	var req dto.CreateClerkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid clerk payload"))
		return
	}
	clerk, err := h.users.CreateClerk(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, clerk)
}

// Update godoc
// @Summary Update clerk account
// @Tags Clerks
// @Accept json
// @Produce json
// @Param id path string true "Clerk ID"
// @Param payload body dto.UpdateClerkRequest true "Clerk payload"
// @Success 200 {object} response.Envelope
// @Router /clerks/{id} [put]
func (h *ClerkHandler) Update(c *gin.Context) {
	var req dto.UpdateClerkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid clerk payload"))
		return
	}
	clerk, err := h.users.UpdateClerk(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clerk, nil)
}

// Delete godoc
// @Summary Deactivate clerk account
// @Tags Clerks
// @Produce json
// @Param id path string true "Clerk ID"
// @Success 204 {object} response.Envelope
// @Router /clerks/{id} [delete]
func (h *ClerkHandler) Delete(c *gin.Context) {
	if err := h.users.DeleteClerk(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
