package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/thilinahansana/university-scheduler-console/internal/dto"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/projection"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
)

type changeRequestBackend interface {
	SubmitChangeRequest(ctx context.Context, req models.ChangeRequest) (models.ChangeRequest, error)
	FacultyChangeRequests(ctx context.Context) ([]models.ChangeRequest, error)
	AdminChangeRequests(ctx context.Context, status models.ChangeRequestStatus) ([]models.ChangeRequest, error)
	ReviewChangeRequest(ctx context.Context, id string, status models.ChangeRequestStatus, note string) (models.ChangeRequest, error)
}

type viewerProjector interface {
	ResolveViewer(ctx context.Context, role models.UserRole) (models.Viewer, string, error)
	PersonalView(ctx context.Context, scope string, viewer models.Viewer) (projection.PersonalView, error)
}

type changeApplier interface {
	ApplyChangeRequest(ctx context.Context, cr models.ChangeRequest) (*models.EditResult, error)
}

type snapshotInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ChangeRequestConfig toggles the change request workflow.
type ChangeRequestConfig struct {
	Enabled bool
}

// ChangeRequestService lets faculty ask for substitutions, room or time changes and lets
// administrators review them. Storage lives in the backend.
type ChangeRequestService struct {
	backend     changeRequestBackend
	viewers     viewerProjector
	applier     changeApplier
	invalidator snapshotInvalidator
	cfg         ChangeRequestConfig
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewChangeRequestService constructs the change request service.
func NewChangeRequestService(backend changeRequestBackend, viewers viewerProjector, applier changeApplier, invalidator snapshotInvalidator, cfg ChangeRequestConfig, validate *validator.Validate, logger *zap.Logger) *ChangeRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ChangeRequestService{
		backend:     backend,
		viewers:     viewers,
		applier:     applier,
		invalidator: invalidator,
		cfg:         cfg,
		validator:   validate,
		logger:      logger,
	}
}

// Submit files a change request on behalf of the calling faculty member.
func (s *ChangeRequestService) Submit(ctx context.Context, req dto.CreateChangeRequest) (*models.ChangeRequest, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change request payload")
	}
	if err := validateChangeFields(req.Type, req.SubstituteID, req.NewRoom, req.NewDay, req.NewPeriods); err != nil {
		return nil, err
	}
	faculty, err := s.resolveFaculty(ctx)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, models.ChangeRequest{
		Type:         req.Type,
		Status:       models.ChangeRequestPending,
		TimetableID:  req.TimetableID,
		SessionID:    req.SessionID,
		Semester:     req.Semester,
		FacultyID:    faculty.ID,
		Reason:       strings.TrimSpace(req.Reason),
		SubstituteID: req.SubstituteID,
		NewRoom:      req.NewRoom,
		NewDay:       req.NewDay,
		NewPeriods:   req.NewPeriods,
	})
}

// SubmitFromCell files a change request for the caller's activity in the selected cell of
// their personal grid.
func (s *ChangeRequestService) SubmitFromCell(ctx context.Context, period, day string, req dto.CellChangeRequest) (*models.ChangeRequest, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change request payload")
	}
	if err := validateChangeFields(req.Type, req.SubstituteID, req.NewRoom, req.NewDay, req.NewPeriods); err != nil {
		return nil, err
	}
	faculty, err := s.resolveFaculty(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.viewers.PersonalView(ctx, models.ScopePublished, faculty)
	if err != nil {
		return nil, err
	}
	assignment, err := view.RequestChange(period, day)
	if err != nil {
		return nil, mapCellError(err)
	}
	return s.submit(ctx, models.ChangeRequest{
		Type:         req.Type,
		Status:       models.ChangeRequestPending,
		TimetableID:  assignment.TimetableID,
		SessionID:    assignment.SessionID,
		Semester:     assignment.Semester,
		FacultyID:    faculty.ID,
		Reason:       strings.TrimSpace(req.Reason),
		SubstituteID: req.SubstituteID,
		NewRoom:      req.NewRoom,
		NewDay:       req.NewDay,
		NewPeriods:   req.NewPeriods,
	})
}

// ListMine returns the calling faculty member's requests.
func (s *ChangeRequestService) ListMine(ctx context.Context) ([]models.ChangeRequest, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	items, err := s.backend.FacultyChangeRequests(ctx)
	if err != nil {
		return nil, mapBackendError(err, "failed to load change requests")
	}
	if items == nil {
		items = []models.ChangeRequest{}
	}
	return items, nil
}

// ListForAdmin returns every request, optionally filtered by status.
func (s *ChangeRequestService) ListForAdmin(ctx context.Context, status string) ([]models.ChangeRequest, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	filter := models.ChangeRequestStatus(strings.ToLower(strings.TrimSpace(status)))
	switch filter {
	case "", models.ChangeRequestPending, models.ChangeRequestApproved, models.ChangeRequestRejected:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved or rejected")
	}
	items, err := s.backend.AdminChangeRequests(ctx, filter)
	if err != nil {
		return nil, mapBackendError(err, "failed to load change requests")
	}
	if items == nil {
		items = []models.ChangeRequest{}
	}
	return items, nil
}

// Review approves or rejects a request. Approved requests invalidate the snapshot cache and,
// when asked, are applied to the published timetable.
func (s *ChangeRequestService) Review(ctx context.Context, id string, req dto.ReviewChangeRequest) (*dto.ReviewChangeRequestResponse, error) {
	if err := s.ensureEnabled(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "change request id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	status := reviewStatus(req.Action)
	reviewed, err := s.backend.ReviewChangeRequest(ctx, id, status, strings.TrimSpace(req.Note))
	if err != nil {
		return nil, mapBackendError(err, "failed to review change request")
	}
	if reviewed.ID == "" {
		reviewed.ID = id
	}
	if reviewed.Status == "" {
		reviewed.Status = status
	}
	resp := &dto.ReviewChangeRequestResponse{Request: reviewed}
	s.logger.Info("change request reviewed", zap.String("change_request_id", id), zap.String("status", string(status)))

	if status != models.ChangeRequestApproved {
		return resp, nil
	}
	if req.Apply && s.applier != nil {
		applied, err := s.applier.ApplyChangeRequest(ctx, reviewed)
		if err != nil {
			return nil, err
		}
		resp.Applied = applied
		return resp, nil
	}
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil {
			s.logger.Warn("snapshot invalidation after approval failed", zap.Error(err))
		}
	}
	return resp, nil
}

func (s *ChangeRequestService) submit(ctx context.Context, cr models.ChangeRequest) (*models.ChangeRequest, error) {
	created, err := s.backend.SubmitChangeRequest(ctx, cr)
	if err != nil {
		return nil, mapBackendError(err, "failed to submit change request")
	}
	if created.Type == "" {
		created = cr
	}
	s.logger.Info("change request submitted",
		zap.String("faculty_id", cr.FacultyID),
		zap.String("session_id", cr.SessionID),
		zap.String("type", string(cr.Type)),
	)
	return &created, nil
}

func (s *ChangeRequestService) ensureEnabled() error {
	if !s.cfg.Enabled {
		return appErrors.Clone(appErrors.ErrFeatureDisabled, "change requests are disabled")
	}
	return nil
}

func (s *ChangeRequestService) resolveFaculty(ctx context.Context) (models.FacultyViewer, error) {
	viewer, message, err := s.viewers.ResolveViewer(ctx, models.RoleFaculty)
	if err != nil {
		return models.FacultyViewer{}, err
	}
	faculty, ok := viewer.(models.FacultyViewer)
	if !ok {
		return models.FacultyViewer{}, appErrors.Clone(appErrors.ErrIdentityUnresolved, firstNonEmpty(message, msgFacultyUnresolved))
	}
	return faculty, nil
}

func validateChangeFields(kind models.ChangeRequestType, substituteID, newRoom, newDay string, newPeriods []string) error {
	switch kind {
	case models.ChangeRequestSubstitute:
		if strings.TrimSpace(substituteID) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "substitute_id is required for substitute requests")
		}
	case models.ChangeRequestRoomChange:
		if strings.TrimSpace(newRoom) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "new_room is required for room changes")
		}
	case models.ChangeRequestTimeChange:
		if strings.TrimSpace(newDay) == "" || len(newPeriods) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "new_day and new_periods are required for time changes")
		}
	}
	return nil
}

func reviewStatus(action string) models.ChangeRequestStatus {
	switch strings.ToLower(action) {
	case "approve", "approved":
		return models.ChangeRequestApproved
	default:
		return models.ChangeRequestRejected
	}
}

func mapCellError(err error) error {
	switch {
	case errors.Is(err, projection.ErrChangeNotAllowed):
		return appErrors.Clone(appErrors.ErrForbidden, err.Error())
	case errors.Is(err, projection.ErrCellNotFound), errors.Is(err, projection.ErrEntryNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, err.Error())
	default:
		return err
	}
}
