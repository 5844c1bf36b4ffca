package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-admin-api/internal/service"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
	"github.com/noah-isme/timetable-admin-api/pkg/response"
)

// DashboardHandler exposes the landing-page summary and the assistant.
type DashboardHandler struct {
	dashboard *service.DashboardService
	assistant *service.AssistantService
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(dashboard *service.DashboardService, assistant *service.AssistantService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, assistant: assistant}
}

// Summary godoc
// @Summary Get the dashboard summary
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask godoc
// @Summary Ask the dashboard assistant a question
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body askRequest true "Question"
// @Success 200 {object} response.Envelope
// @Router /dashboard/assistant [post]
func (h *DashboardHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	answer, err := h.assistant.Ask(c.Request.Context(), req.Question)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"answer": answer}, nil)
}
