package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thilinahansana/university-scheduler-console/internal/dto"
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
	"github.com/thilinahansana/university-scheduler-console/pkg/export"
	"github.com/thilinahansana/university-scheduler-console/pkg/jobs"
)

// ExportJobType is the queue job type of grid exports.
const ExportJobType = "export"

type exportJobStore interface {
	Save(ctx context.Context, job *models.ExportJob) error
	Get(ctx context.Context, id string) (*models.ExportJob, error)
}

type viewerResolver interface {
	ResolveViewer(ctx context.Context, role models.UserRole) (models.Viewer, string, error)
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error)
}

// ExportJobConfig governs cleanup and retries.
type ExportJobConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	MaxRetries      int
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	Format    export.Format
	ExpiresAt time.Time
}

// ExportJobService orchestrates the export job lifecycle.
type ExportJobService struct {
	store     exportJobStore
	viewers   viewerResolver
	queue     jobDispatcher
	exporter  *ExportService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportJobConfig
	now       func() time.Time
}

// NewExportJobService constructs the export job service.
func NewExportJobService(store exportJobStore, viewers viewerResolver, queue jobDispatcher, exporter *ExportService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ExportJobConfig) *ExportJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &ExportJobService{
		store:     store,
		viewers:   viewers,
		queue:     queue,
		exporter:  exporter,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// CreateJob validates the request, resolves the viewer for personal exports, persists the
// job and enqueues it.
func (s *ExportJobService) CreateJob(ctx context.Context, req dto.ExportRequest, actorID string, role models.UserRole) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}
	scope, err := models.NormalizeScope(req.Scope)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	mode := req.Mode
	if mode == "" {
		mode = models.ExportModePersonal
		if role == models.RoleAdmin {
			mode = models.ExportModeAdmin
		}
	}
	if mode == models.ExportModeAdmin && role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can export full timetables")
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		Format:      req.Format,
		Scope:       scope,
		Mode:        mode,
		TimetableID: req.TimetableID,
		Weeks:       req.Weeks,
		Status:      models.ExportStatusQueued,
		CreatedBy:   actorID,
		CreatedAt:   s.now().UTC(),
	}
	if req.StartsOn != "" {
		startsOn, err := time.Parse("2006-01-02", req.StartsOn)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "starts_on must be YYYY-MM-DD")
		}
		job.StartsOn = &startsOn
	}
	if mode == models.ExportModePersonal {
		if err := s.attachViewer(ctx, job, role); err != nil {
			return nil, err
		}
	}

	if err := s.store.Save(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType}); err != nil {
		s.finish(ctx, job, models.ExportStatusFailed, "", "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	s.metrics.RecordExportJob(job.Format, models.ExportStatusQueued)
	s.logger.Info("export job queued",
		zap.String("job_id", job.ID),
		zap.String("format", job.Format),
		zap.String("mode", string(job.Mode)),
		zap.String("scope", job.Scope),
	)
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

func (s *ExportJobService) attachViewer(ctx context.Context, job *models.ExportJob, role models.UserRole) error {
	viewer, message, err := s.viewers.ResolveViewer(ctx, role)
	if err != nil {
		return err
	}
	switch v := viewer.(type) {
	case models.StudentViewer:
		job.Student = &v
	case models.FacultyViewer:
		job.Faculty = &v
	default:
		return appErrors.Clone(appErrors.ErrIdentityUnresolved, firstNonEmpty(message, "viewer identity could not be resolved"))
	}
	return nil
}

// GetStatus exposes job metadata. Non-admins only see their own jobs.
func (s *ExportJobService) GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && job.CreatedBy != actorID {
		return nil, appErrors.ErrForbidden
	}
	return &dto.ExportStatusResponse{
		ID:         job.ID,
		Format:     job.Format,
		Status:     job.Status,
		Progress:   job.Progress,
		ResultURL:  job.ResultURL,
		Error:      job.Error,
		FinishedAt: job.FinishedAt,
	}, nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	grant, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.load(ctx, grant.JobID)
	if err != nil {
		return nil, err
	}
	if job.ResultURL == "" || !strings.HasSuffix(job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.exporter.Open(grant.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:      file,
		Filename:  filepath.Base(grant.Path),
		Format:    export.Format(job.Format),
		ExpiresAt: grant.ExpiresAt,
	}, nil
}

// MarkFailed records a job that exhausted its retries. It is wired as the queue's failure
// handler.
func (s *ExportJobService) MarkFailed(ctx context.Context, queued jobs.Job, cause error) {
	job, err := s.store.Get(ctx, queued.ID)
	if err != nil {
		s.logger.Warn("failed to load export job for failure", zap.String("job_id", queued.ID), zap.Error(err))
		return
	}
	msg := "export failed"
	if cause != nil {
		msg = cause.Error()
	}
	s.finish(ctx, job, models.ExportStatusFailed, "", msg)
}

// StartCleanup boots a goroutine that purges expired export files periodically.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.exporter.Cleanup(s.cfg.ResultTTL)
				if err != nil {
					s.logger.Warn("export cleanup failed", zap.Error(err))
					continue
				}
				if len(removed) > 0 {
					s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
				}
			}
		}
	}()
}

func (s *ExportJobService) load(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	return job, nil
}

func (s *ExportJobService) finish(ctx context.Context, job *models.ExportJob, status models.ExportStatus, url, msg string) {
	now := s.now().UTC()
	job.Status = status
	job.Progress = 100
	job.ResultURL = url
	job.Error = msg
	job.FinishedAt = &now
	if err := s.store.Save(ctx, job); err != nil {
		s.logger.Warn("failed to update export job", zap.String("job_id", job.ID), zap.Error(err))
	}
	s.metrics.RecordExportJob(job.Format, status)
}

// ExportWorker bridges queue jobs to ExportService.
type ExportWorker struct {
	store      exportJobStore
	exporter   exportGenerator
	metrics    *MetricsService
	logger     *zap.Logger
	maxRetries int
}

// NewExportWorker constructs a worker.
func NewExportWorker(store exportJobStore, exporter exportGenerator, metrics *MetricsService, maxRetries int, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ExportWorker{store: store, exporter: exporter, metrics: metrics, logger: logger, maxRetries: maxRetries}
}

// Handle processes a queue job.
func (w *ExportWorker) Handle(ctx context.Context, queued jobs.Job) error {
	job, err := w.store.Get(ctx, queued.ID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", queued.ID, err)
	}
	job.Status = models.ExportStatusProcessing
	job.Progress = 10
	job.Attempts = queued.Attempt + 1
	if err := w.store.Save(ctx, job); err != nil {
		return err
	}

	result, err := w.exporter.Generate(ctx, job)
	if err != nil {
		job.Error = err.Error()
		if queued.Attempt >= w.maxRetries {
			now := time.Now().UTC()
			job.Status = models.ExportStatusFailed
			job.Progress = 100
			job.FinishedAt = &now
			w.metrics.RecordExportJob(job.Format, models.ExportStatusFailed)
		} else {
			job.Status = models.ExportStatusQueued
			job.Progress = 0
		}
		if saveErr := w.store.Save(ctx, job); saveErr != nil {
			w.logger.Warn("failed to record export failure", zap.String("job_id", job.ID), zap.Error(saveErr))
		}
		return err
	}

	now := time.Now().UTC()
	job.Status = models.ExportStatusFinished
	job.Progress = 100
	job.ResultURL = result.URL
	job.Error = ""
	job.FinishedAt = &now
	if err := w.store.Save(ctx, job); err != nil {
		w.logger.Warn("failed to mark export finished", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	w.metrics.RecordExportJob(job.Format, models.ExportStatusFinished)
	w.logger.Info("export job finished", zap.String("job_id", job.ID), zap.String("path", result.RelativePath))
	return nil
}
