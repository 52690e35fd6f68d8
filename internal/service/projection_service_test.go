package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/projection"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
)

type stubSnapshots struct {
	snapshot *models.TimetableSnapshot
	hit      bool
	err      error
	scopes   []string
}

func (s *stubSnapshots) Get(ctx context.Context, scope string) (*models.TimetableSnapshot, bool, error) {
	s.scopes = append(s.scopes, scope)
	if s.err != nil {
		return nil, false, s.err
	}
	return s.snapshot, s.hit, nil
}

type stubIdentity struct {
	student    models.StudentValidation
	faculty    models.FacultyValidation
	studentErr error
	facultyErr error
}

func (s *stubIdentity) ValidateStudent(ctx context.Context) (models.StudentValidation, error) {
	return s.student, s.studentErr
}

func (s *stubIdentity) ValidateFaculty(ctx context.Context) (models.FacultyValidation, error) {
	return s.faculty, s.facultyErr
}

type stubSpaces struct {
	spaces []models.Space
	err    error
	calls  int
}

func (s *stubSpaces) AvailableSpaces(ctx context.Context, algorithm, day string, periods []string, excludeSessionID string) ([]models.Space, error) {
	s.calls++
	return s.spaces, s.err
}

func validStudent(yearGroup string) models.StudentValidation {
	return models.StudentValidation{Valid: true, StudentInfo: &models.StudentInfo{YearGroup: yearGroup}}
}

func newProjectionServiceForTest(snaps *stubSnapshots, identity *stubIdentity, spaces spaceFinder) *ProjectionService {
	svc := NewProjectionService(snaps, identity, spaces, ProjectionConfig{DefaultSpecialization: "SE", WeekdaysOnly: true}, NewMetricsService(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 8, 45, 0, 0, time.UTC) }
	return svc
}

func TestProjectionServiceAdminGrids(t *testing.T) {
	snaps := &stubSnapshots{snapshot: fixtureSnapshot(), hit: true}
	svc := newProjectionServiceForTest(snaps, &stubIdentity{}, nil)

	resp, hit, err := svc.AdminGrids(context.Background(), "published")
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, resp.Grids, 1)
	grid := resp.Grids[0].Grid
	assert.Equal(t, models.GridModeAdmin, grid.Mode)
	assert.Equal(t, "MON", grid.Days[0].Name)
	assert.Equal(t, "P1", grid.Periods[0].Name)
	assert.Equal(t, 3, grid.EntryCount())
}

func TestProjectionServiceStudentGrid(t *testing.T) {
	snaps := &stubSnapshots{snapshot: fixtureSnapshot()}
	svc := newProjectionServiceForTest(snaps, &stubIdentity{student: validStudent("Y1S1.SE.1")}, nil)

	resp, _, err := svc.MyTimetable(context.Background(), models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, models.ViewerKindStudent, resp.Viewer)
	assert.Equal(t, "Y1S1", resp.Semester)
	assert.Empty(t, resp.View.Message)

	mon, ok := resp.View.Grid.Cell("P1", "MON")
	require.True(t, ok)
	require.Len(t, mon.Entries, 1)
	assert.Equal(t, "s-1", mon.Entries[0].SessionID)

	tue, ok := resp.View.Grid.Cell("P1", "TUE")
	require.True(t, ok)
	assert.True(t, tue.Empty(), "sibling class lab is excluded")

	lecture, ok := resp.View.Grid.Cell("P2", "TUE")
	require.True(t, ok)
	require.Len(t, lecture.Entries, 1)
	assert.Equal(t, "s-2", lecture.Entries[0].SessionID)

	require.NotNil(t, resp.Today)
	assert.Equal(t, "MON", resp.Today.Name)
	require.NotNil(t, resp.CurrentPeriod)
	assert.Equal(t, "P1", resp.CurrentPeriod.Name)
	assert.Equal(t, []string{models.ScopePublished}, snaps.scopes)
}

func TestProjectionServiceUnresolvedStudent(t *testing.T) {
	cases := map[string]*stubIdentity{
		"invalid":       {student: models.StudentValidation{Valid: false, Message: "Year group missing"}},
		"backend error": {studentErr: errors.New("boom")},
	}
	for name, identity := range cases {
		identity := identity
		t.Run(name, func(t *testing.T) {
			svc := newProjectionServiceForTest(&stubSnapshots{snapshot: fixtureSnapshot()}, identity, nil)
			resp, _, err := svc.MyTimetable(context.Background(), models.RoleStudent)
			require.NoError(t, err)
			assert.NotEmpty(t, resp.View.Message)
			assert.Equal(t, 0, resp.View.Grid.EntryCount())
			assert.Len(t, resp.View.Grid.Rows, 2)
		})
	}
}

func TestProjectionServiceAdminHasNoPersonalGrid(t *testing.T) {
	svc := newProjectionServiceForTest(&stubSnapshots{snapshot: fixtureSnapshot()}, &stubIdentity{}, nil)
	_, _, err := svc.MyTimetable(context.Background(), models.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestProjectionServiceFacultyGridAndAgenda(t *testing.T) {
	identity := &stubIdentity{faculty: models.FacultyValidation{Valid: true, FacultyInfo: &models.FacultyInfo{ID: "FA0001"}}}
	svc := newProjectionServiceForTest(&stubSnapshots{snapshot: fixtureSnapshot()}, identity, nil)

	resp, _, err := svc.MyTimetable(context.Background(), models.RoleFaculty)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.View.Grid.EntryCount())

	agenda, err := svc.FacultyAgenda(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, agenda.TotalHours)
	require.Len(t, agenda.ByDay, 2)
	assert.Equal(t, "MON", agenda.ByDay[0].Day.Name)
	require.Len(t, agenda.BySubject, 1)
	assert.Equal(t, "Introduction to Programming", agenda.BySubject[0].SubjectName)

	identity.faculty = models.FacultyValidation{Valid: false}
	_, err = svc.FacultyAgenda(context.Background())
	assert.Equal(t, appErrors.ErrIdentityUnresolved.Code, appErrors.FromError(err).Code)
}

func TestProjectionServiceSelectCell(t *testing.T) {
	spaces := &stubSpaces{spaces: []models.Space{{Name: "C101"}}}
	svc := newProjectionServiceForTest(&stubSnapshots{snapshot: fixtureSnapshot()}, &stubIdentity{}, spaces)

	resp, err := svc.SelectCell(context.Background(), "published", "tt-1", "P1", "MON", 0, true)
	require.NoError(t, err)
	assert.Equal(t, "tt-1", resp.TimetableID)
	assert.Equal(t, "s-1", resp.Activity.SessionID)
	assert.Equal(t, "tt-1", resp.Activity.TimetableID)
	assert.Len(t, resp.AvailableSpaces, 1)

	_, err = svc.SelectCell(context.Background(), "published", "tt-1", "P1", "MON", 4, false)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.SelectCell(context.Background(), "published", "tt-9", "P1", "MON", 0, false)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	spaces.err = errors.New("down")
	resp, err = svc.SelectCell(context.Background(), "published", "tt-1", "P1", "MON", 0, true)
	require.NoError(t, err)
	assert.Empty(t, resp.AvailableSpaces)
}

func TestProjectionServiceExplain(t *testing.T) {
	svc := newProjectionServiceForTest(&stubSnapshots{snapshot: fixtureSnapshot()}, &stubIdentity{student: validStudent("Y1S1.SE.1")}, nil)

	resp, err := svc.Explain(context.Background(), "s-3")
	require.NoError(t, err)
	assert.False(t, resp.Matched)
	assert.Equal(t, projection.RuleSiblingClassExclusion, resp.Rule)

	resp, err = svc.Explain(context.Background(), "s-2")
	require.NoError(t, err)
	assert.True(t, resp.Matched)
	assert.Equal(t, projection.RuleSemesterBroadcast, resp.Rule)

	_, err = svc.Explain(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProjectionServiceAvailableSpaces(t *testing.T) {
	spaces := &stubSpaces{spaces: []models.Space{{Name: "C101"}}}
	svc := newProjectionServiceForTest(&stubSnapshots{snapshot: fixtureSnapshot()}, &stubIdentity{}, spaces)

	got, err := svc.AvailableSpaces(context.Background(), "published", "MON", []string{"P1"}, "s-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "C101", got[0].Name)

	_, err = svc.AvailableSpaces(context.Background(), "published", "", nil, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	disabled := newProjectionServiceForTest(&stubSnapshots{snapshot: fixtureSnapshot()}, &stubIdentity{}, nil)
	_, err = disabled.AvailableSpaces(context.Background(), "published", "MON", []string{"P1"}, "")
	require.Error(t, err)
}
