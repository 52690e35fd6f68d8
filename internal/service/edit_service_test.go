package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thilinahansana/university-scheduler-console/internal/dto"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
)

type stubSnapshotStore struct {
	stubSnapshots
	invalidations int
}

func (s *stubSnapshotStore) Invalidate(ctx context.Context) error {
	s.invalidations++
	return nil
}

type stubEditor struct {
	timetableID string
	sessionID   string
	update      models.ActivityUpdate
	result      models.EditResult
	err         error
	calls       int
}

func (s *stubEditor) EditActivity(ctx context.Context, timetableID, sessionID string, update models.ActivityUpdate) (models.EditResult, error) {
	s.calls++
	s.timetableID = timetableID
	s.sessionID = sessionID
	s.update = update
	return s.result, s.err
}

func validEditRequest() dto.EditActivityRequest {
	return dto.EditActivityRequest{
		Scope:      "published",
		ActivityID: "AC-1",
		Subject:    "IT1010",
		Teacher:    "FA0002",
		Room:       "B201",
		Day:        "TUE",
		Periods:    []string{"P1", "P2"},
	}
}

func TestEditServiceEditActivityResolvesTaxonomy(t *testing.T) {
	store := &stubSnapshotStore{stubSnapshots: stubSnapshots{snapshot: fixtureSnapshot()}}
	editor := &stubEditor{result: models.EditResult{Message: "updated"}}
	svc := NewEditService(editor, store, nil, nil)

	result, err := svc.EditActivity(context.Background(), "tt-1", "s-1", validEditRequest())
	require.NoError(t, err)
	assert.Equal(t, "updated", result.Message)
	assert.Equal(t, 1, store.invalidations)

	update := editor.update
	assert.Equal(t, "tt-1", editor.timetableID)
	assert.Equal(t, "s-1", update.SessionID)
	assert.Equal(t, "Tuesday", update.Day.LongName)
	require.Len(t, update.Periods, 2)
	assert.Equal(t, "08:30 - 09:30", update.Periods[0].LongName)
	assert.Equal(t, 120, update.Room.Capacity)
	assert.Equal(t, 2, update.Duration)
	assert.Equal(t, []string{"Y1S1.SE.1"}, update.Subgroups)
	assert.Equal(t, "Lab", update.ActivityType)
}

func TestEditServiceEditActivityRejectsUnknownValues(t *testing.T) {
	cases := map[string]func(*dto.EditActivityRequest){
		"day":      func(r *dto.EditActivityRequest) { r.Day = "SUN" },
		"period":   func(r *dto.EditActivityRequest) { r.Periods = []string{"P9"} },
		"room":     func(r *dto.EditActivityRequest) { r.Room = "Z999" },
		"teacher":  func(r *dto.EditActivityRequest) { r.Teacher = "FA9999" },
		"subject":  func(r *dto.EditActivityRequest) { r.Subject = "XX0000" },
		"payload":  func(r *dto.EditActivityRequest) { r.Periods = nil },
		"duration": func(r *dto.EditActivityRequest) { r.Duration = 3 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			store := &stubSnapshotStore{stubSnapshots: stubSnapshots{snapshot: fixtureSnapshot()}}
			editor := &stubEditor{}
			svc := NewEditService(editor, store, nil, nil)

			req := validEditRequest()
			mutate(&req)
			_, err := svc.EditActivity(context.Background(), "tt-1", "s-1", req)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Zero(t, editor.calls)
		})
	}
}

func TestEditServiceEditActivityAcceptsMatchingDuration(t *testing.T) {
	store := &stubSnapshotStore{stubSnapshots: stubSnapshots{snapshot: fixtureSnapshot()}}
	editor := &stubEditor{result: models.EditResult{Message: "updated"}}
	svc := NewEditService(editor, store, nil, nil)

	req := validEditRequest()
	req.Duration = 2
	_, err := svc.EditActivity(context.Background(), "tt-1", "s-1", req)
	require.NoError(t, err)
	assert.Equal(t, 2, editor.update.Duration)
	assert.Len(t, editor.update.Periods, editor.update.Duration)
}

func TestEditServiceEditActivityUnknownActivity(t *testing.T) {
	store := &stubSnapshotStore{stubSnapshots: stubSnapshots{snapshot: fixtureSnapshot()}}
	svc := NewEditService(&stubEditor{}, store, nil, nil)

	_, err := svc.EditActivity(context.Background(), "tt-1", "missing", validEditRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.EditActivity(context.Background(), "tt-9", "s-1", validEditRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEditServiceEditActivityKeepsConflicts(t *testing.T) {
	store := &stubSnapshotStore{stubSnapshots: stubSnapshots{snapshot: fixtureSnapshot()}}
	conflict := &models.ConflictError{
		Message:   "Conflicts detected",
		Conflicts: []models.Conflict{{Type: "room", Description: "B201 is taken"}},
	}
	svc := NewEditService(&stubEditor{err: conflict}, store, nil, nil)

	_, err := svc.EditActivity(context.Background(), "tt-1", "s-1", validEditRequest())
	require.Error(t, err)

	var target *models.ConflictError
	require.True(t, errors.As(err, &target))
	assert.Len(t, target.Conflicts, 1)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Zero(t, store.invalidations)
}

func TestEditServiceApplyChangeRequest(t *testing.T) {
	cases := []struct {
		name   string
		cr     models.ChangeRequest
		verify func(t *testing.T, u models.ActivityUpdate)
	}{
		{
			name: "substitute",
			cr:   models.ChangeRequest{Type: models.ChangeRequestSubstitute, SessionID: "s-1", TimetableID: "tt-1", SubstituteID: "FA0002", Reason: "leave"},
			verify: func(t *testing.T, u models.ActivityUpdate) {
				assert.Equal(t, "FA0002", u.Teacher)
				assert.True(t, u.IsSubstitute)
				assert.Equal(t, "leave", u.SubstituteReason)
				assert.Equal(t, "MON", u.Day.Name)
			},
		},
		{
			name: "room change",
			cr:   models.ChangeRequest{Type: models.ChangeRequestRoomChange, SessionID: "s-1", TimetableID: "tt-1", NewRoom: "B201"},
			verify: func(t *testing.T, u models.ActivityUpdate) {
				assert.Equal(t, "B201", u.Room.Name)
				assert.Equal(t, "FA0001", u.Teacher)
			},
		},
		{
			name: "time change",
			cr:   models.ChangeRequest{Type: models.ChangeRequestTimeChange, SessionID: "s-1", NewDay: "TUE", NewPeriods: []string{"P2"}},
			verify: func(t *testing.T, u models.ActivityUpdate) {
				assert.Equal(t, "TUE", u.Day.Name)
				require.Len(t, u.Periods, 1)
				assert.Equal(t, "P2", u.Periods[0].Name)
				assert.Equal(t, 1, u.Duration)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubSnapshotStore{stubSnapshots: stubSnapshots{snapshot: fixtureSnapshot()}}
			editor := &stubEditor{}
			svc := NewEditService(editor, store, nil, nil)

			_, err := svc.ApplyChangeRequest(context.Background(), tc.cr)
			require.NoError(t, err)
			assert.Equal(t, "tt-1", editor.timetableID)
			tc.verify(t, editor.update)
		})
	}
}
