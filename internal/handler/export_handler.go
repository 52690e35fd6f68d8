package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thilinahansana/university-scheduler-console/internal/dto"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/service"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
	"github.com/thilinahansana/university-scheduler-console/pkg/response"
)

type exportJobService interface {
	CreateJob(ctx context.Context, req dto.ExportRequest, actorID string, role models.UserRole) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler exposes asynchronous grid exports.
type ExportHandler struct {
	exports exportJobService
}

// NewExportHandler constructs the export handler.
func NewExportHandler(exports exportJobService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Create godoc
// @Summary Queue a timetable export
// @Description Administrators export full grids; students and faculty export their personal grid. Formats: csv, pdf, xlsx, ics.
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportRequest true "Export"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	job, err := h.exports.CreateJob(backendContext(c), req, claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job)
}

// Status godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	status, err := h.exports.GetStatus(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// Download godoc
// @Summary Download a finished export
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.exports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", download.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), download.Format.ContentType(), download.File, nil)
}
