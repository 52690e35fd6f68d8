package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thilinahansana/university-scheduler-console/internal/dto"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/upstream"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
)

type stubChangeBackend struct {
	submitted   []models.ChangeRequest
	statusQuery models.ChangeRequestStatus
	reviewed    models.ChangeRequest
	reviewErr   error
	listed      []models.ChangeRequest
}

func (s *stubChangeBackend) SubmitChangeRequest(ctx context.Context, req models.ChangeRequest) (models.ChangeRequest, error) {
	s.submitted = append(s.submitted, req)
	req.ID = "cr-1"
	return req, nil
}

func (s *stubChangeBackend) FacultyChangeRequests(ctx context.Context) ([]models.ChangeRequest, error) {
	return s.listed, nil
}

func (s *stubChangeBackend) AdminChangeRequests(ctx context.Context, status models.ChangeRequestStatus) ([]models.ChangeRequest, error) {
	s.statusQuery = status
	return s.listed, nil
}

func (s *stubChangeBackend) ReviewChangeRequest(ctx context.Context, id string, status models.ChangeRequestStatus, note string) (models.ChangeRequest, error) {
	if s.reviewErr != nil {
		return models.ChangeRequest{}, s.reviewErr
	}
	out := s.reviewed
	out.ID = id
	out.Status = status
	out.AdminNote = note
	return out, nil
}

type stubApplier struct {
	applied []models.ChangeRequest
}

func (s *stubApplier) ApplyChangeRequest(ctx context.Context, cr models.ChangeRequest) (*models.EditResult, error) {
	s.applied = append(s.applied, cr)
	return &models.EditResult{Message: "applied"}, nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	return nil
}

func newChangeRequestServiceForTest(backend *stubChangeBackend, identity *stubIdentity, applier changeApplier, inv *countingInvalidator, enabled bool) *ChangeRequestService {
	projector := newProjectionServiceForTest(&stubSnapshots{snapshot: fixtureSnapshot()}, identity, nil)
	return NewChangeRequestService(backend, projector, applier, inv, ChangeRequestConfig{Enabled: enabled}, nil, nil)
}

func validFaculty(id string) *stubIdentity {
	return &stubIdentity{faculty: models.FacultyValidation{Valid: true, FacultyInfo: &models.FacultyInfo{ID: id}}}
}

func TestChangeRequestServiceSubmit(t *testing.T) {
	backend := &stubChangeBackend{}
	svc := newChangeRequestServiceForTest(backend, validFaculty("FA0001"), nil, &countingInvalidator{}, true)

	created, err := svc.Submit(context.Background(), dto.CreateChangeRequest{
		Type:         models.ChangeRequestSubstitute,
		TimetableID:  "tt-1",
		SessionID:    "s-1",
		Reason:       "  conference  ",
		SubstituteID: "FA0002",
	})
	require.NoError(t, err)
	assert.Equal(t, "cr-1", created.ID)
	require.Len(t, backend.submitted, 1)
	assert.Equal(t, "FA0001", backend.submitted[0].FacultyID)
	assert.Equal(t, "conference", backend.submitted[0].Reason)
	assert.Equal(t, models.ChangeRequestPending, backend.submitted[0].Status)
}

func TestChangeRequestServiceSubmitValidation(t *testing.T) {
	svc := newChangeRequestServiceForTest(&stubChangeBackend{}, validFaculty("FA0001"), nil, nil, true)

	cases := []dto.CreateChangeRequest{
		{Type: models.ChangeRequestSubstitute, TimetableID: "tt-1", SessionID: "s-1", Reason: "x"},
		{Type: models.ChangeRequestRoomChange, TimetableID: "tt-1", SessionID: "s-1", Reason: "x"},
		{Type: models.ChangeRequestTimeChange, TimetableID: "tt-1", SessionID: "s-1", Reason: "x", NewDay: "TUE"},
		{Type: "swap", TimetableID: "tt-1", SessionID: "s-1", Reason: "x"},
	}
	for _, req := range cases {
		_, err := svc.Submit(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code, string(req.Type))
	}
}

func TestChangeRequestServiceDisabled(t *testing.T) {
	svc := newChangeRequestServiceForTest(&stubChangeBackend{}, validFaculty("FA0001"), nil, nil, false)

	_, err := svc.ListMine(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, appErrors.FromError(err).Status)
}

func TestChangeRequestServiceSubmitUnresolvedFaculty(t *testing.T) {
	identity := &stubIdentity{faculty: models.FacultyValidation{Valid: false, Message: "unknown faculty"}}
	svc := newChangeRequestServiceForTest(&stubChangeBackend{}, identity, nil, nil, true)

	_, err := svc.Submit(context.Background(), dto.CreateChangeRequest{
		Type: models.ChangeRequestRoomChange, TimetableID: "tt-1", SessionID: "s-1", Reason: "x", NewRoom: "B201",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrIdentityUnresolved.Code, appErr.Code)
	assert.Equal(t, "unknown faculty", appErr.Message)
}

func TestChangeRequestServiceSubmitFromCell(t *testing.T) {
	backend := &stubChangeBackend{}
	svc := newChangeRequestServiceForTest(backend, validFaculty("FA0001"), nil, nil, true)

	_, err := svc.SubmitFromCell(context.Background(), "P1", "MON", dto.CellChangeRequest{
		Type: models.ChangeRequestRoomChange, Reason: "projector broken", NewRoom: "B201",
	})
	require.NoError(t, err)
	require.Len(t, backend.submitted, 1)
	assert.Equal(t, "s-1", backend.submitted[0].SessionID)
	assert.Equal(t, "tt-1", backend.submitted[0].TimetableID)
	assert.Equal(t, "Y1S1", backend.submitted[0].Semester)

	_, err = svc.SubmitFromCell(context.Background(), "P2", "MON", dto.CellChangeRequest{
		Type: models.ChangeRequestRoomChange, Reason: "x", NewRoom: "B201",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestServiceListForAdmin(t *testing.T) {
	backend := &stubChangeBackend{}
	svc := newChangeRequestServiceForTest(backend, validFaculty("FA0001"), nil, nil, true)

	items, err := svc.ListForAdmin(context.Background(), "Pending")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Equal(t, models.ChangeRequestPending, backend.statusQuery)

	_, err = svc.ListForAdmin(context.Background(), "archived")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestServiceReview(t *testing.T) {
	t.Run("approve invalidates", func(t *testing.T) {
		inv := &countingInvalidator{}
		svc := newChangeRequestServiceForTest(&stubChangeBackend{}, validFaculty("FA0001"), nil, inv, true)

		resp, err := svc.Review(context.Background(), "cr-1", dto.ReviewChangeRequest{Action: "approve", Note: "ok"})
		require.NoError(t, err)
		assert.Equal(t, models.ChangeRequestApproved, resp.Request.Status)
		assert.Equal(t, "ok", resp.Request.AdminNote)
		assert.Nil(t, resp.Applied)
		assert.Equal(t, 1, inv.calls)
	})

	t.Run("approve and apply", func(t *testing.T) {
		applier := &stubApplier{}
		backend := &stubChangeBackend{reviewed: models.ChangeRequest{Type: models.ChangeRequestRoomChange, SessionID: "s-1", NewRoom: "B201"}}
		svc := newChangeRequestServiceForTest(backend, validFaculty("FA0001"), applier, &countingInvalidator{}, true)

		resp, err := svc.Review(context.Background(), "cr-1", dto.ReviewChangeRequest{Action: "approved", Apply: true})
		require.NoError(t, err)
		require.NotNil(t, resp.Applied)
		require.Len(t, applier.applied, 1)
		assert.Equal(t, "B201", applier.applied[0].NewRoom)
	})

	t.Run("reject leaves cache", func(t *testing.T) {
		inv := &countingInvalidator{}
		applier := &stubApplier{}
		svc := newChangeRequestServiceForTest(&stubChangeBackend{}, validFaculty("FA0001"), applier, inv, true)

		resp, err := svc.Review(context.Background(), "cr-1", dto.ReviewChangeRequest{Action: "reject", Apply: true})
		require.NoError(t, err)
		assert.Equal(t, models.ChangeRequestRejected, resp.Request.Status)
		assert.Zero(t, inv.calls)
		assert.Empty(t, applier.applied)
	})

	t.Run("backend not found", func(t *testing.T) {
		backend := &stubChangeBackend{reviewErr: &upstream.StatusError{Status: http.StatusNotFound, Message: "Change request not found"}}
		svc := newChangeRequestServiceForTest(backend, validFaculty("FA0001"), nil, nil, true)

		_, err := svc.Review(context.Background(), "cr-9", dto.ReviewChangeRequest{Action: "approve"})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
	})
}
