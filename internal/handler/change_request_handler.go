package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thilinahansana/university-scheduler-console/internal/dto"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
	"github.com/thilinahansana/university-scheduler-console/pkg/response"
)

type changeRequestService interface {
	Submit(ctx context.Context, req dto.CreateChangeRequest) (*models.ChangeRequest, error)
	ListMine(ctx context.Context) ([]models.ChangeRequest, error)
	ListForAdmin(ctx context.Context, status string) ([]models.ChangeRequest, error)
	Review(ctx context.Context, id string, req dto.ReviewChangeRequest) (*dto.ReviewChangeRequestResponse, error)
}

// ChangeRequestHandler exposes the faculty change request workflow.
type ChangeRequestHandler struct {
	service changeRequestService
}

// NewChangeRequestHandler constructs the handler.
func NewChangeRequestHandler(svc changeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{service: svc}
}

// Create godoc
// @Summary Submit a change request
// @Tags ChangeRequests
// @Accept json
// @Produce json
// @Param payload body dto.CreateChangeRequest true "Change request"
// @Success 201 {object} response.Envelope
// @Router /change-requests [post]
func (h *ChangeRequestHandler) Create(c *gin.Context) {
	var req dto.CreateChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	created, err := h.service.Submit(backendContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List godoc
// @Summary List change requests
// @Description Faculty see their own requests; administrators see all, optionally filtered by status.
// @Tags ChangeRequests
// @Produce json
// @Param status query string false "pending|approved|rejected"
// @Success 200 {object} response.Envelope
// @Router /change-requests [get]
func (h *ChangeRequestHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var (
		items []models.ChangeRequest
		err   error
	)
	if claims.Role == models.RoleAdmin {
		items, err = h.service.ListForAdmin(backendContext(c), c.Query("status"))
	} else {
		items, err = h.service.ListMine(backendContext(c))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Review godoc
// @Summary Approve or reject a change request
// @Tags ChangeRequests
// @Accept json
// @Produce json
// @Param id path string true "Change request ID"
// @Param payload body dto.ReviewChangeRequest true "Review"
// @Success 200 {object} response.Envelope
// @Router /change-requests/{id} [put]
func (h *ChangeRequestHandler) Review(c *gin.Context) {
	var req dto.ReviewChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	resp, err := h.service.Review(backendContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}
