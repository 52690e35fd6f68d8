package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thilinahansana/university-scheduler-console/internal/dto"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

type changeRequestServiceMock struct {
	adminStatus string
	adminCalls  int
	mineCalls   int
	reviewedID  string
	review      dto.ReviewChangeRequest
}

func (m *changeRequestServiceMock) Submit(ctx context.Context, req dto.CreateChangeRequest) (*models.ChangeRequest, error) {
	return &models.ChangeRequest{ID: "cr-1", Type: req.Type, Status: models.ChangeRequestPending}, nil
}

func (m *changeRequestServiceMock) ListMine(ctx context.Context) ([]models.ChangeRequest, error) {
	m.mineCalls++
	return []models.ChangeRequest{}, nil
}

func (m *changeRequestServiceMock) ListForAdmin(ctx context.Context, status string) ([]models.ChangeRequest, error) {
	m.adminCalls++
	m.adminStatus = status
	return []models.ChangeRequest{{ID: "cr-1"}}, nil
}

func (m *changeRequestServiceMock) Review(ctx context.Context, id string, req dto.ReviewChangeRequest) (*dto.ReviewChangeRequestResponse, error) {
	m.reviewedID = id
	m.review = req
	return &dto.ReviewChangeRequestResponse{Request: models.ChangeRequest{ID: id, Status: models.ChangeRequestApproved}}, nil
}

func TestChangeRequestHandlerListByRole(t *testing.T) {
	svc := &changeRequestServiceMock{}
	h := NewChangeRequestHandler(svc)

	c, w := newGinContext(http.MethodGet, "/change-requests?status=pending", nil)
	withUser(c, "admin-1", models.RoleAdmin)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.adminCalls)
	assert.Equal(t, "pending", svc.adminStatus)

	c, w = newGinContext(http.MethodGet, "/change-requests", nil)
	withUser(c, "fa-1", models.RoleFaculty)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.mineCalls)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestChangeRequestHandlerCreate(t *testing.T) {
	h := NewChangeRequestHandler(&changeRequestServiceMock{})

	body := dto.CreateChangeRequest{Type: models.ChangeRequestSubstitute, TimetableID: "tt-1", SessionID: "s-1", Reason: "leave", SubstituteID: "FA0002"}
	c, w := newGinContext(http.MethodPost, "/change-requests", body)
	withUser(c, "fa-1", models.RoleFaculty)
	h.Create(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newGinContext(http.MethodPost, "/change-requests", nil)
	c.Request.Body = http.NoBody
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangeRequestHandlerReview(t *testing.T) {
	svc := &changeRequestServiceMock{}
	h := NewChangeRequestHandler(svc)

	c, w := newGinContext(http.MethodPut, "/change-requests/cr-7", dto.ReviewChangeRequest{Action: "approve", Apply: true})
	c.Params = gin.Params{{Key: "id", Value: "cr-7"}}
	withUser(c, "admin-1", models.RoleAdmin)
	h.Review(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cr-7", svc.reviewedID)
	assert.True(t, svc.review.Apply)
}
