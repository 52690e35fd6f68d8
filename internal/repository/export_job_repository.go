package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
)

const exportJobKeyPrefix = "timetable:export:"

// ExportJobRepository keeps export job state in Redis. Without a client it falls back to
// process memory, which is enough for single-instance deployments and tests.
type ExportJobRepository struct {
	client *redis.Client
	ttl    time.Duration

	mu     sync.RWMutex
	memory map[string]models.ExportJob
}

// NewExportJobRepository constructs the repository. ttl bounds how long job records live.
func NewExportJobRepository(client *redis.Client, ttl time.Duration) *ExportJobRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ExportJobRepository{client: client, ttl: ttl, memory: make(map[string]models.ExportJob)}
}

// Save creates or replaces a job record.
func (r *ExportJobRepository) Save(ctx context.Context, job *models.ExportJob) error {
	if job == nil || job.ID == "" {
		return fmt.Errorf("export job id is required")
	}
	if r.client == nil {
		r.mu.Lock()
		r.memory[job.ID] = *job
		r.mu.Unlock()
		return nil
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal export job %s: %w", job.ID, err)
	}
	if err := r.client.Set(ctx, exportJobKeyPrefix+job.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set export job %s: %w", job.ID, err)
	}
	return nil
}

// Get loads a job record, returning ErrNotFound when it does not exist or has expired.
func (r *ExportJobRepository) Get(ctx context.Context, id string) (*models.ExportJob, error) {
	if r.client == nil {
		r.mu.RLock()
		job, ok := r.memory[id]
		r.mu.RUnlock()
		if !ok {
			return nil, appErrors.ErrNotFound
		}
		return &job, nil
	}
	raw, err := r.client.Get(ctx, exportJobKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get export job %s: %w", id, err)
	}
	var job models.ExportJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("unmarshal export job %s: %w", id, err)
	}
	return &job, nil
}
