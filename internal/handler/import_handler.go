package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-admin-api/internal/service"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
	"github.com/noah-isme/timetable-admin-api/pkg/response"
	"github.com/noah-isme/timetable-admin-api/pkg/storage"
)

// ImportHandler exposes the AI import session flow.
type ImportHandler struct {
	service *service.ImportService
	uploads *storage.LocalStorage
	signer  *storage.SignedURLSigner
}

// NewImportHandler constructs an import handler.
func NewImportHandler(svc *service.ImportService, uploads *storage.LocalStorage, signer *storage.SignedURLSigner) *ImportHandler {
	return &ImportHandler{service: svc, uploads: uploads, signer: signer}
}

type startTextImportRequest struct {
	Text string `json:"text" binding:"required"`
}

// StartText godoc
// @Summary Start an AI import from pasted timetable text
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body startTextImportRequest true "Timetable text"
// @Success 202 {object} response.Envelope
// @Security AdminToken
// @Router /imports/text [post]
func (h *ImportHandler) StartText(c *gin.Context) {
	var req startTextImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.service.StartText(c.Request.Context(), req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, session, nil)
}

// StartDocument godoc
// @Summary Start an AI import from an uploaded document
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF or image of the timetable"
// @Success 202 {object} response.Envelope
// @Security AdminToken
// @Router /imports/document [post]
func (h *ImportHandler) StartDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}

	session, err := h.service.StartDocument(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, session, nil)
}

// Get godoc
// @Summary Get the current import session
// @Tags Imports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /imports/session [get]
func (h *ImportHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if session == nil {
		response.JSON(c, http.StatusOK, gin.H{"status": "IDLE"}, nil)
		return
	}

	meta := map[string]interface{}{}
	if session.SourceFile != "" && h.signer != nil {
		if token, expires, err := h.signer.Generate(session.ID, session.SourceFile); err == nil {
			meta["source_download_token"] = token
			meta["source_download_expires_at"] = expires
		}
	}
	response.JSON(c, http.StatusOK, session, nil, meta)
}

// Finalize godoc
// @Summary Merge the reviewed import into the schedule store
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body service.FinalizeImportRequest true "Reconciliation mappings"
// @Success 200 {object} response.Envelope
// @Security AdminToken
// @Router /imports/finalize [post]
func (h *ImportHandler) Finalize(c *gin.Context) {
	var req service.FinalizeImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	summary, err := h.service.Finalize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Cancel godoc
// @Summary Cancel the current import session
// @Tags Imports
// @Produce json
// @Success 204
// @Security AdminToken
// @Router /imports/session [delete]
func (h *ImportHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadSource godoc
// @Summary Download the stored source document via a signed token
// @Tags Imports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200
// @Router /imports/source [get]
func (h *ImportHandler) DownloadSource(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	_, relPath, _, err := h.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrSignatureInvalid, ""))
		return
	}
	file, err := h.uploads.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "source file not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	size := int64(-1)
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}
	c.Header("Content-Disposition", "attachment; filename="+relPath)
	c.DataFromReader(http.StatusOK, size, "application/octet-stream", file, nil)
}
