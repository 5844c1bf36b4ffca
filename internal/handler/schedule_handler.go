package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-admin-api/internal/service"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
	"github.com/noah-isme/timetable-admin-api/pkg/export"
	"github.com/noah-isme/timetable-admin-api/pkg/response"
)

// ScheduleHandler exposes grid reads and cell edits.
type ScheduleHandler struct {
	service *service.ScheduleService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(svc *service.ScheduleService, csv *export.CSVExporter, pdf *export.PDFExporter) *ScheduleHandler {
	return &ScheduleHandler{service: svc, csv: csv, pdf: pdf}
}

// Grid godoc
// @Summary Get the weekly timetable grid for one profile
// @Tags Schedule
// @Produce json
// @Param id path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Router /entities/{id}/timetable [get]
func (h *ScheduleHandler) Grid(c *gin.Context) {
	grid, err := h.service.Grid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// SetCell godoc
// @Summary Set one timetable cell
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Entity ID"
// @Param payload body service.SetCellRequest true "Cell payload"
// @Success 200 {object} response.Envelope
// @Security AdminToken
// @Router /entities/{id}/timetable/cells [put]
func (h *ScheduleHandler) SetCell(c *gin.Context) {
	var req service.SetCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cell, err := h.service.SetCell(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cell, nil)
}

// ClearCell godoc
// @Summary Clear one timetable cell
// @Tags Schedule
// @Produce json
// @Param id path string true "Entity ID"
// @Param day path string true "Day (Mon..Sun)"
// @Param period path int true "Period number"
// @Success 204
// @Security AdminToken
// @Router /entities/{id}/timetable/cells/{day}/{period} [delete]
func (h *ScheduleHandler) ClearCell(c *gin.Context) {
	period, err := strconv.Atoi(c.Param("period"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "period must be a number"))
		return
	}
	if err := h.service.ClearCell(c.Request.Context(), c.Param("id"), c.Param("day"), period); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download one profile's timetable as CSV or PDF
// @Tags Schedule
// @Produce octet-stream
// @Param id path string true "Entity ID"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200
// @Router /entities/{id}/timetable/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	entityID := c.Param("id")
	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		data, err := h.service.ExportGridPDF(c.Request.Context(), entityID, h.pdf)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetable-%s.pdf", entityID))
		c.Data(http.StatusOK, "application/pdf", data)
	case "csv":
		data, err := h.service.ExportGridCSV(c.Request.Context(), entityID, h.csv)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetable-%s.csv", entityID))
		c.Data(http.StatusOK, "text/csv", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
