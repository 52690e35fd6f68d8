package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thilinahansana/university-scheduler-console/internal/dto"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/projection"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
	"github.com/thilinahansana/university-scheduler-console/pkg/response"
)

type gridService interface {
	AdminGrids(ctx context.Context, scope string) (*dto.AdminGridsResponse, bool, error)
	SelectCell(ctx context.Context, scope, timetableID, period, day string, index int, withSpaces bool) (*dto.CellSelectionResponse, error)
	AvailableSpaces(ctx context.Context, scope, day string, periods []string, excludeSessionID string) ([]models.Space, error)
	MyTimetable(ctx context.Context, role models.UserRole) (*dto.PersonalTimetableResponse, bool, error)
	FacultyAgenda(ctx context.Context) (*projection.FacultyAgenda, error)
	Explain(ctx context.Context, sessionID string) (*dto.ExplainResponse, error)
}

type activityEditor interface {
	EditActivity(ctx context.Context, timetableID, sessionID string, req dto.EditActivityRequest) (*models.EditResult, error)
}

type cellChangeRequester interface {
	SubmitFromCell(ctx context.Context, period, day string, req dto.CellChangeRequest) (*models.ChangeRequest, error)
}

// TimetableHandler exposes the administrative and personal grid endpoints.
type TimetableHandler struct {
	grids    gridService
	editor   activityEditor
	requests cellChangeRequester
}

// NewTimetableHandler constructs the timetable handler.
func NewTimetableHandler(grids gridService, editor activityEditor, requests cellChangeRequester) *TimetableHandler {
	return &TimetableHandler{grids: grids, editor: editor, requests: requests}
}

// AdminGrids godoc
// @Summary Administrative timetable grids
// @Description Projects every semester timetable of the scope into a day by period grid.
// @Tags Timetables
// @Produce json
// @Param scope query string false "published or algorithm:GA|CO|RL|BC|PSO"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/grids [get]
func (h *TimetableHandler) AdminGrids(c *gin.Context) {
	start := time.Now()
	resp, hit, err := h.grids.AdminGrids(backendContext(c), c.Query("scope"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, http.StatusOK, resp, resp.Scope, hit, start)
}

// SelectCell godoc
// @Summary Select an activity in a grid cell
// @Tags Timetables
// @Produce json
// @Param timetableId path string true "Semester timetable ID"
// @Param period path string true "Period code"
// @Param day path string true "Day code"
// @Param index path int true "Chip index inside the cell"
// @Param scope query string false "Scope"
// @Param spaces query bool false "Include available rooms"
// @Success 200 {object} response.Envelope
// @Router /timetables/{timetableId}/cells/{period}/{day}/{index} [get]
func (h *TimetableHandler) SelectCell(c *gin.Context) {
	index, err := parseIndex(c.Param("index"))
	if err != nil {
		response.Error(c, err)
		return
	}
	withSpaces := c.Query("spaces") == "true"
	resp, err := h.grids.SelectCell(backendContext(c), c.Query("scope"), c.Param("timetableId"), c.Param("period"), c.Param("day"), index, withSpaces)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// AvailableSpaces godoc
// @Summary Rooms free at a day and periods
// @Tags Timetables
// @Produce json
// @Param scope query string false "Scope"
// @Param day query string true "Day code"
// @Param periods query string true "Comma separated period codes"
// @Param exclude query string false "Session ID to ignore"
// @Success 200 {object} response.Envelope
// @Router /timetables/available-spaces [get]
func (h *TimetableHandler) AvailableSpaces(c *gin.Context) {
	spaces, err := h.grids.AvailableSpaces(backendContext(c), c.Query("scope"), c.Query("day"), splitList(c.Query("periods")), c.Query("exclude"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, spaces)
}

// EditActivity godoc
// @Summary Edit a scheduled activity
// @Description Forwards the edit to the timetable backend. Scheduling conflicts come back as 409 with the backend's conflict list.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param timetableId path string true "Semester timetable ID"
// @Param sessionId path string true "Session ID"
// @Param payload body dto.EditActivityRequest true "Activity"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/{timetableId}/activities/{sessionId} [patch]
func (h *TimetableHandler) EditActivity(c *gin.Context) {
	var req dto.EditActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	if req.Scope == "" {
		req.Scope = c.Query("scope")
	}
	result, err := h.editor.EditActivity(backendContext(c), c.Param("timetableId"), c.Param("sessionId"), req)
	if err != nil {
		var conflictErr *models.ConflictError
		if errors.As(err, &conflictErr) {
			response.ErrorWithData(c, err, dto.ConflictResponse{Conflicts: conflictErr.Conflicts})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// MyTimetable godoc
// @Summary Personal timetable of the caller
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/timetable [get]
func (h *TimetableHandler) MyTimetable(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	start := time.Now()
	resp, hit, err := h.grids.MyTimetable(backendContext(c), claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, http.StatusOK, resp, models.ScopePublished, hit, start)
}

// Agenda godoc
// @Summary Weekly teaching agenda of the calling faculty member
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/timetable/agenda [get]
func (h *TimetableHandler) Agenda(c *gin.Context) {
	agenda, err := h.grids.FacultyAgenda(backendContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, agenda)
}

// Explain godoc
// @Summary Explain why an activity is or is not on the caller's grid
// @Tags Me
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /me/timetable/explain/{sessionId} [get]
func (h *TimetableHandler) Explain(c *gin.Context) {
	resp, err := h.grids.Explain(backendContext(c), c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// RequestCellChange godoc
// @Summary Request a change for the caller's activity in a cell
// @Tags Me
// @Accept json
// @Produce json
// @Param period path string true "Period code"
// @Param day path string true "Day code"
// @Param payload body dto.CellChangeRequest true "Change"
// @Success 201 {object} response.Envelope
// @Router /me/timetable/cells/{period}/{day}/change-request [post]
func (h *TimetableHandler) RequestCellChange(c *gin.Context) {
	var req dto.CellChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	created, err := h.requests.SubmitFromCell(backendContext(c), c.Param("period"), c.Param("day"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}
