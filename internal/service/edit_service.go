package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/thilinahansana/university-scheduler-console/internal/dto"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
)

type activityEditor interface {
	EditActivity(ctx context.Context, timetableID, sessionID string, update models.ActivityUpdate) (models.EditResult, error)
}

type snapshotStore interface {
	snapshotProvider
	Invalidate(ctx context.Context) error
}

// EditService forwards administrator edits to the backend. Conflict detection stays with
// the backend; its conflict list is returned unchanged.
type EditService struct {
	editor    activityEditor
	snapshots snapshotStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEditService constructs the edit service.
func NewEditService(editor activityEditor, snapshots snapshotStore, validate *validator.Validate, logger *zap.Logger) *EditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EditService{editor: editor, snapshots: snapshots, validator: validate, logger: logger}
}

// EditActivity resolves the named day, periods and room against the snapshot taxonomy and
// sends the full activity to the backend.
func (s *EditService) EditActivity(ctx context.Context, timetableID, sessionID string, req dto.EditActivityRequest) (*models.EditResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	snap, _, err := s.snapshots.Get(ctx, req.Scope)
	if err != nil {
		return nil, err
	}
	tt, ok := snap.Timetable(timetableID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	var current *models.Assignment
	for i := range tt.Assignments {
		if tt.Assignments[i].SessionID == sessionID {
			current = &tt.Assignments[i]
			break
		}
	}
	if current == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
	}

	update, err := buildActivityUpdate(snap, *current, req)
	if err != nil {
		return nil, err
	}

	result, err := s.editor.EditActivity(ctx, timetableID, sessionID, update)
	if err != nil {
		mapped := mapBackendError(err, "failed to update activity")
		s.logger.Info("activity edit rejected",
			zap.String("timetable_id", timetableID),
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil, mapped
	}
	if err := s.snapshots.Invalidate(ctx); err != nil {
		s.logger.Warn("snapshot invalidation after edit failed", zap.Error(err))
	}
	s.logger.Info("activity edited", zap.String("timetable_id", timetableID), zap.String("session_id", sessionID))
	return &result, nil
}

// ApplyChangeRequest turns an approved change request into an edit of the published
// timetable.
func (s *EditService) ApplyChangeRequest(ctx context.Context, cr models.ChangeRequest) (*models.EditResult, error) {
	snap, _, err := s.snapshots.Get(ctx, models.ScopePublished)
	if err != nil {
		return nil, err
	}
	current, ok := findAssignment(snap, cr.TimetableID, cr.SessionID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "activity of the change request not found")
	}

	req := dto.EditActivityRequest{
		Scope:        models.ScopePublished,
		ActivityID:   current.ActivityID,
		Subject:      current.Subject,
		Teacher:      current.Teacher.ID,
		Room:         current.Room.Name,
		Day:          current.Day.Name,
		Periods:      current.PeriodNames(),
		Subgroups:    append([]string{}, current.Subgroups...),
		ActivityType: current.ActivityType,
	}
	switch cr.Type {
	case models.ChangeRequestSubstitute:
		req.Teacher = cr.SubstituteID
		req.IsSubstitute = true
		req.SubstituteReason = cr.Reason
	case models.ChangeRequestRoomChange:
		req.Room = cr.NewRoom
	case models.ChangeRequestTimeChange:
		req.Day = cr.NewDay
		req.Periods = append([]string{}, cr.NewPeriods...)
		if cr.NewRoom != "" {
			req.Room = cr.NewRoom
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported change request type %q", cr.Type))
	}
	timetableID := firstNonEmpty(cr.TimetableID, current.TimetableID)
	return s.EditActivity(ctx, timetableID, cr.SessionID, req)
}

func findAssignment(snap *models.TimetableSnapshot, timetableID, sessionID string) (models.Assignment, bool) {
	for _, a := range snap.Assignments() {
		if a.SessionID != sessionID {
			continue
		}
		if timetableID == "" || a.TimetableID == timetableID {
			return a, true
		}
	}
	return models.Assignment{}, false
}

func buildActivityUpdate(snap *models.TimetableSnapshot, current models.Assignment, req dto.EditActivityRequest) (models.ActivityUpdate, error) {
	day, ok := lookupDay(snap.Days, req.Day)
	if !ok {
		return models.ActivityUpdate{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", req.Day))
	}
	periods := make([]models.Period, 0, len(req.Periods))
	for _, name := range req.Periods {
		period, ok := lookupPeriod(snap.Periods, name)
		if !ok {
			return models.ActivityUpdate{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown period %q", name))
		}
		periods = append(periods, period)
	}

	room := models.Room{Name: req.Room}
	if len(snap.References.Spaces) > 0 {
		space, ok := lookupSpace(snap.References.Spaces, req.Room)
		if !ok {
			return models.ActivityUpdate{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown room %q", req.Room))
		}
		room = models.Room{Name: space.Name, LongName: space.LongName, Code: space.Code, Capacity: space.Capacity}
	}
	if len(snap.References.Teachers) > 0 && !hasTeacher(snap.References.Teachers, req.Teacher) {
		return models.ActivityUpdate{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown teacher %q", req.Teacher))
	}
	if len(snap.References.Subjects) > 0 && !hasSubject(snap.References.Subjects, req.Subject) {
		return models.ActivityUpdate{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown subject %q", req.Subject))
	}

	duration := len(periods)
	if req.Duration != 0 && req.Duration != duration {
		return models.ActivityUpdate{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duration %d does not match %d periods", req.Duration, duration))
	}
	subgroups := req.Subgroups
	if len(subgroups) == 0 {
		subgroups = append([]string{}, current.Subgroups...)
	}
	return models.ActivityUpdate{
		ActivityID:       firstNonEmpty(req.ActivityID, current.ActivityID),
		SessionID:        current.SessionID,
		Subject:          req.Subject,
		Teacher:          req.Teacher,
		Room:             room,
		Day:              day,
		Periods:          periods,
		Duration:         duration,
		Subgroups:        subgroups,
		ActivityType:     firstNonEmpty(req.ActivityType, current.ActivityType),
		IsSubstitute:     req.IsSubstitute,
		SubstituteReason: strings.TrimSpace(req.SubstituteReason),
	}, nil
}

func lookupDay(days []models.Day, name string) (models.Day, bool) {
	for _, d := range days {
		if strings.EqualFold(d.Name, name) || (d.LongName != "" && strings.EqualFold(d.LongName, name)) {
			return d, true
		}
	}
	return models.Day{}, false
}

func lookupPeriod(periods []models.Period, name string) (models.Period, bool) {
	for _, p := range periods {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return models.Period{}, false
}

func lookupSpace(spaces []models.Space, name string) (models.Space, bool) {
	for _, s := range spaces {
		if s.Name == name || (s.Code != "" && s.Code == name) {
			return s, true
		}
	}
	return models.Space{}, false
}

func hasTeacher(teachers []models.Teacher, id string) bool {
	for _, t := range teachers {
		if t.ID == id {
			return true
		}
	}
	return false
}

func hasSubject(subjects []models.Subject, code string) bool {
	for _, s := range subjects {
		if s.Code == code {
			return true
		}
	}
	return false
}
