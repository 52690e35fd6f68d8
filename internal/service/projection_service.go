package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thilinahansana/university-scheduler-console/internal/dto"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/projection"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
)

type snapshotProvider interface {
	Get(ctx context.Context, scope string) (*models.TimetableSnapshot, bool, error)
}

type identityResolver interface {
	ValidateStudent(ctx context.Context) (models.StudentValidation, error)
	ValidateFaculty(ctx context.Context) (models.FacultyValidation, error)
}

type spaceFinder interface {
	AvailableSpaces(ctx context.Context, algorithm, day string, periods []string, excludeSessionID string) ([]models.Space, error)
}

const (
	msgStudentUnresolved = "Your student profile could not be verified. Contact the faculty office to update your year group."
	msgFacultyUnresolved = "Your faculty profile could not be verified. Contact an administrator."
)

// ProjectionConfig tunes projection behaviour.
type ProjectionConfig struct {
	DefaultSpecialization string
	WeekdaysOnly          bool
}

// ProjectionService renders administrative and personal grids from cached snapshots.
type ProjectionService struct {
	snapshots snapshotProvider
	identity  identityResolver
	spaces    spaceFinder
	matcher   projection.Matcher
	opts      projection.Options
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewProjectionService constructs the projection service. spaces may be nil when the
// source cannot answer availability queries.
func NewProjectionService(snapshots snapshotProvider, identity identityResolver, spaces spaceFinder, cfg ProjectionConfig, metrics *MetricsService, logger *zap.Logger) *ProjectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	matcher := projection.NewMatcher(cfg.DefaultSpecialization)
	return &ProjectionService{
		snapshots: snapshots,
		identity:  identity,
		spaces:    spaces,
		matcher:   matcher,
		opts:      projection.Options{Matcher: matcher, WeekdaysOnly: cfg.WeekdaysOnly},
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Matcher exposes the configured eligibility matcher.
func (s *ProjectionService) Matcher() projection.Matcher {
	return s.matcher
}

// AdminGrids projects every semester timetable of the scope. The bool reports a cache hit.
func (s *ProjectionService) AdminGrids(ctx context.Context, scope string) (*dto.AdminGridsResponse, bool, error) {
	snap, hit, err := s.snapshots.Get(ctx, scope)
	if err != nil {
		return nil, false, err
	}
	start := time.Now()
	grids := make([]projection.AdminView, 0, len(snap.Timetables))
	entries := 0
	for _, tt := range snap.Timetables {
		view := projection.NewAdminView(tt, snap.Days, snap.Periods, snap.References, s.opts)
		entries += view.Grid.EntryCount()
		grids = append(grids, view)
	}
	s.metrics.ObserveProjection(models.GridModeAdmin, entries, time.Since(start))
	return &dto.AdminGridsResponse{Scope: snap.Scope, Algorithm: snap.Algorithm, Grids: grids}, hit, nil
}

// AdminGrid projects one semester timetable of the scope.
func (s *ProjectionService) AdminGrid(ctx context.Context, scope, timetableID string) (projection.AdminView, *models.TimetableSnapshot, error) {
	snap, _, err := s.snapshots.Get(ctx, scope)
	if err != nil {
		return projection.AdminView{}, nil, err
	}
	tt, ok := snap.Timetable(timetableID)
	if !ok {
		return projection.AdminView{}, nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	return projection.NewAdminView(*tt, snap.Days, snap.Periods, snap.References, s.opts), snap, nil
}

// SelectCell returns the activity behind a cell chip, optionally with the rooms free at
// the same time. This is the administrator's cell-selected callback.
func (s *ProjectionService) SelectCell(ctx context.Context, scope, timetableID, period, day string, index int, withSpaces bool) (*dto.CellSelectionResponse, error) {
	view, snap, err := s.AdminGrid(ctx, scope, timetableID)
	if err != nil {
		return nil, err
	}
	activity, err := view.Select(period, day, index)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, err.Error())
	}
	resp := &dto.CellSelectionResponse{TimetableID: view.TimetableID, Activity: activity}
	if withSpaces && s.spaces != nil {
		spaces, err := s.spaces.AvailableSpaces(ctx, snap.Algorithm, activity.Day.Name, activity.PeriodNames(), activity.SessionID)
		if err != nil {
			s.logger.Warn("available spaces lookup failed", zap.String("session_id", activity.SessionID), zap.Error(err))
		} else {
			resp.AvailableSpaces = spaces
		}
	}
	return resp, nil
}

// AvailableSpaces lists the rooms free at the given day and periods under the scope's
// algorithm. excludeSessionID keeps the activity being moved from blocking its own room.
func (s *ProjectionService) AvailableSpaces(ctx context.Context, scope, day string, periods []string, excludeSessionID string) ([]models.Space, error) {
	if s.spaces == nil {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "room availability is not supported by the configured source")
	}
	if day == "" || len(periods) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day and periods are required")
	}
	snap, _, err := s.snapshots.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	spaces, err := s.spaces.AvailableSpaces(ctx, snap.Algorithm, day, periods, excludeSessionID)
	if err != nil {
		return nil, mapBackendError(err, "failed to load available spaces")
	}
	if spaces == nil {
		spaces = []models.Space{}
	}
	return spaces, nil
}

// ResolveViewer asks the backend who the caller is. A nil viewer with a message means the
// identity could not be resolved; that is not an error.
func (s *ProjectionService) ResolveViewer(ctx context.Context, role models.UserRole) (models.Viewer, string, error) {
	switch role {
	case models.RoleStudent:
		result, err := s.identity.ValidateStudent(ctx)
		if err != nil {
			s.logger.Warn("student identity check failed", zap.Error(err))
			return nil, msgStudentUnresolved, nil
		}
		if !result.Valid || result.StudentInfo == nil || result.StudentInfo.YearGroup == "" {
			return nil, firstNonEmpty(result.Message, msgStudentUnresolved), nil
		}
		info := result.StudentInfo
		return projection.NewStudentViewer(info.YearGroup, info.Specialization, info.Subjects, s.matcher.DefaultSpecialization), "", nil
	case models.RoleFaculty:
		result, err := s.identity.ValidateFaculty(ctx)
		if err != nil {
			s.logger.Warn("faculty identity check failed", zap.Error(err))
			return nil, msgFacultyUnresolved, nil
		}
		if !result.Valid || result.FacultyInfo == nil || result.FacultyInfo.ID == "" {
			return nil, firstNonEmpty(result.Message, msgFacultyUnresolved), nil
		}
		return models.FacultyViewer{ID: result.FacultyInfo.ID}, "", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "personal timetables are available to students and faculty")
	}
}

// MyTimetable renders the caller's personal grid from the published snapshot.
func (s *ProjectionService) MyTimetable(ctx context.Context, role models.UserRole) (*dto.PersonalTimetableResponse, bool, error) {
	viewer, message, err := s.ResolveViewer(ctx, role)
	if err != nil {
		return nil, false, err
	}
	snap, hit, err := s.snapshots.Get(ctx, models.ScopePublished)
	if err != nil {
		return nil, false, err
	}

	resp := &dto.PersonalTimetableResponse{}
	if viewer == nil {
		resp.View = projection.UnresolvedPersonalView(snap.Days, snap.Periods, message, s.opts)
	} else {
		resp.Viewer = viewer.Kind()
		resp.View = s.project(snap, viewer)
		if student, ok := viewer.(models.StudentViewer); ok {
			resp.Semester = projection.SemesterPart(student.YearGroup)
		}
	}

	now := s.now()
	if day, ok := projection.Today(resp.View.Grid.Days, now); ok {
		resp.Today = &day
		if period, ok := projection.CurrentPeriod(resp.View.Grid.Periods, now); ok {
			resp.CurrentPeriod = &period
		}
	}
	return resp, hit, nil
}

// PersonalView projects the published snapshot for an already resolved viewer.
func (s *ProjectionService) PersonalView(ctx context.Context, scope string, viewer models.Viewer) (projection.PersonalView, error) {
	snap, _, err := s.snapshots.Get(ctx, scope)
	if err != nil {
		return projection.PersonalView{}, err
	}
	return s.project(snap, viewer), nil
}

// FacultyAgenda groups the caller's teaching load by day and subject.
func (s *ProjectionService) FacultyAgenda(ctx context.Context) (*projection.FacultyAgenda, error) {
	viewer, message, err := s.ResolveViewer(ctx, models.RoleFaculty)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, appErrors.Clone(appErrors.ErrIdentityUnresolved, message)
	}
	snap, _, err := s.snapshots.Get(ctx, models.ScopePublished)
	if err != nil {
		return nil, err
	}
	agenda := projection.NewFacultyAgenda(snap.Assignments(), snap.Days, snap.Periods, viewer.(models.FacultyViewer), snap.References, s.matcher)
	return &agenda, nil
}

// Explain reports which eligibility rule placed or kept an activity off the caller's grid.
func (s *ProjectionService) Explain(ctx context.Context, sessionID string) (*dto.ExplainResponse, error) {
	viewer, message, err := s.ResolveViewer(ctx, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, appErrors.Clone(appErrors.ErrIdentityUnresolved, message)
	}
	snap, _, err := s.snapshots.Get(ctx, models.ScopePublished)
	if err != nil {
		return nil, err
	}
	for _, a := range snap.Assignments() {
		if a.SessionID != sessionID {
			continue
		}
		decision := s.matcher.Explain(a, viewer)
		s.metrics.RecordDecisions([]projection.Decision{decision})
		return &dto.ExplainResponse{
			SessionID: sessionID,
			Matched:   decision.Matched,
			Rule:      decision.Rule,
			Subgroups: append([]string{}, a.Subgroups...),
			YearGroup: viewer.(models.StudentViewer).YearGroup,
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
}

func (s *ProjectionService) project(snap *models.TimetableSnapshot, viewer models.Viewer) projection.PersonalView {
	start := time.Now()
	assignments := snap.Assignments()
	view := projection.NewPersonalView(assignments, snap.Days, snap.Periods, viewer, snap.References, s.opts)
	s.metrics.ObserveProjection(models.GridModePersonal, view.Grid.EntryCount(), time.Since(start))
	if s.metrics != nil {
		decisions := make([]projection.Decision, 0, len(assignments))
		for _, a := range assignments {
			decisions = append(decisions, s.matcher.Explain(a, viewer))
		}
		s.metrics.RecordDecisions(decisions)
	}
	return view
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
