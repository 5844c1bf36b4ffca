package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/internal/service"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
	"github.com/noah-isme/timetable-admin-api/pkg/response"
)

// EntityHandler exposes registry CRUD endpoints.
type EntityHandler struct {
	service *service.EntityService
}

// NewEntityHandler constructs an entity handler.
func NewEntityHandler(svc *service.EntityService) *EntityHandler {
	return &EntityHandler{service: svc}
}

// List godoc
// @Summary List class and teacher profiles
// @Tags Entities
// @Produce json
// @Param type query string false "Filter by type (CLASS or TEACHER)"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /entities [get]
func (h *EntityHandler) List(c *gin.Context) {
	var filter models.EntityFilter
	filter.Type = models.EntityType(strings.ToUpper(c.Query("type")))
	if filter.Type != "" && !filter.Type.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "type must be CLASS or TEACHER"))
		return
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	entities, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entities, pagination)
}

// Get godoc
// @Summary Get one profile
// @Tags Entities
// @Produce json
// @Param id path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Router /entities/{id} [get]
func (h *EntityHandler) Get(c *gin.Context) {
	entity, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entity, nil)
}

// Create godoc
// @Summary Register a class or teacher profile
// @Tags Entities
// @Accept json
// @Produce json
// @Param payload body service.CreateEntityRequest true "Entity payload"
// @Success 201 {object} response.Envelope
// @Security AdminToken
// @Router /entities [post]
func (h *EntityHandler) Create(c *gin.Context) {
	var req service.CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entity, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entity)
}

// Update godoc
// @Summary Update a profile
// @Tags Entities
// @Accept json
// @Produce json
// @Param id path string true "Entity ID"
// @Param payload body service.UpdateEntityRequest true "Entity payload"
// @Success 200 {object} response.Envelope
// @Security AdminToken
// @Router /entities/{id} [put]
func (h *EntityHandler) Update(c *gin.Context) {
	var req service.UpdateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entity, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entity, nil)
}

// Delete godoc
// @Summary Delete a profile and its schedule
// @Tags Entities
// @Produce json
// @Param id path string true "Entity ID"
// @Success 204
// @Security AdminToken
// @Router /entities/{id} [delete]
func (h *EntityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
