package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
)

func TestExportJobRepositoryMemoryFallback(t *testing.T) {
	repo := NewExportJobRepository(nil, time.Hour)
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	job := &models.ExportJob{ID: "job-1", Format: "csv", Status: models.ExportStatusQueued}
	require.NoError(t, repo.Save(ctx, job))

	job.Status = models.ExportStatusFinished
	loaded, err := repo.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, loaded.Status, "stored copy is independent of the caller's struct")

	require.Error(t, repo.Save(ctx, &models.ExportJob{}))
}

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest map[string]string
	err := repo.Get(context.Background(), "k", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(context.Background(), "k", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "k*"))
	assert.NoError(t, repo.Close())
}
