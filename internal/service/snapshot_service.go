package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/projection"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
	"github.com/thilinahansana/university-scheduler-console/pkg/jobs"
)

const (
	snapshotKeyPrefix = "timetable:snapshot:"
	// RefreshJobType tags snapshot refresh jobs on the background queue.
	RefreshJobType = "snapshot_refresh"
)

type timetableSource interface {
	Snapshot(ctx context.Context, scope string) (*models.TimetableSnapshot, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// SnapshotService loads timetable snapshots from the configured source and keeps them in
// the cache for the projection TTL.
type SnapshotService struct {
	source  timetableSource
	cache   *CacheService
	queue   jobDispatcher
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewSnapshotService constructs the snapshot service. queue may be nil, in which case
// refreshes run inline.
func NewSnapshotService(source timetableSource, cache *CacheService, queue jobDispatcher, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{source: source, cache: cache, queue: queue, metrics: metrics, ttl: ttl, logger: logger}
}

// SnapshotKey returns the cache key of a scope.
func SnapshotKey(scope string) string {
	return snapshotKeyPrefix + scope
}

// Get returns the snapshot for scope and whether it came from the cache.
func (s *SnapshotService) Get(ctx context.Context, scope string) (*models.TimetableSnapshot, bool, error) {
	normalized, err := models.NormalizeScope(scope)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	var cached models.TimetableSnapshot
	if hit, err := s.cache.Get(ctx, SnapshotKey(normalized), &cached); err == nil && hit {
		return &cached, true, nil
	}

	snapshot, err := s.load(ctx, normalized)
	if err != nil {
		return nil, false, err
	}
	_ = s.cache.Set(ctx, SnapshotKey(normalized), snapshot, s.ttl)
	return snapshot, false, nil
}

// Refresh reloads a scope from the source and overwrites its cache entry.
func (s *SnapshotService) Refresh(ctx context.Context, scope string) error {
	normalized, err := models.NormalizeScope(scope)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	snapshot, err := s.load(ctx, normalized)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, SnapshotKey(normalized), snapshot, s.ttl)
}

// Invalidate drops every cached snapshot. Edits and approved change requests call it.
func (s *SnapshotService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, snapshotKeyPrefix+"*")
}

// ScheduleRefresh enqueues a background refresh of scope.
func (s *SnapshotService) ScheduleRefresh(scope string) error {
	if s.queue == nil {
		return s.Refresh(context.Background(), scope)
	}
	return s.queue.Enqueue(jobs.Job{
		ID:      fmt.Sprintf("refresh-%s-%d", scope, time.Now().UnixNano()),
		Type:    RefreshJobType,
		Payload: scope,
	})
}

// HandleRefresh is the queue handler for refresh jobs.
func (s *SnapshotService) HandleRefresh(ctx context.Context, job jobs.Job) error {
	scope, _ := job.Payload.(string)
	if err := s.Refresh(ctx, scope); err != nil {
		s.logger.Warn("snapshot refresh failed", zap.String("scope", scope), zap.Int("attempt", job.Attempt), zap.Error(err))
		return err
	}
	s.logger.Debug("snapshot refreshed", zap.String("scope", scope))
	return nil
}

// StartPeriodicRefresh keeps the published snapshot warm until ctx is done.
func (s *SnapshotService) StartPeriodicRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 || !s.cache.Enabled() {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.ScheduleRefresh(models.ScopePublished); err != nil {
					s.logger.Warn("failed to schedule snapshot refresh", zap.Error(err))
				}
			}
		}
	}()
}

func (s *SnapshotService) load(ctx context.Context, scope string) (*models.TimetableSnapshot, error) {
	start := time.Now()
	snapshot, err := s.source.Snapshot(ctx, scope)
	s.metrics.ObserveBackend("snapshot", err, time.Since(start))
	if err != nil {
		return nil, mapBackendError(err, "failed to load timetable snapshot")
	}
	if snapshot == nil {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "backend returned an empty snapshot")
	}
	if len(snapshot.Days) == 0 || len(snapshot.Periods) == 0 {
		days, periods := projection.ExtractTaxonomy(snapshot.Assignments())
		if len(snapshot.Days) == 0 {
			snapshot.Days = days
		}
		if len(snapshot.Periods) == 0 {
			snapshot.Periods = periods
		}
		s.logger.Warn("backend taxonomy missing, derived from assignments",
			zap.String("scope", scope),
			zap.Int("days", len(snapshot.Days)),
			zap.Int("periods", len(snapshot.Periods)),
		)
	}
	return snapshot, nil
}
