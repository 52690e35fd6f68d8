package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/upstream"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
	"github.com/thilinahansana/university-scheduler-console/pkg/jobs"
)

func newSnapshotServiceForTest(source *stubSource, repo *stubCacheRepo, queue jobDispatcher) *SnapshotService {
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	return NewSnapshotService(source, cache, queue, nil, time.Minute, zap.NewNop())
}

func TestSnapshotServiceCachesByScope(t *testing.T) {
	source := &stubSource{snapshot: fixtureSnapshot()}
	repo := newStubCacheRepo()
	svc := newSnapshotServiceForTest(source, repo, nil)

	snap, hit, err := svc.Get(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "GA", snap.Algorithm)

	_, hit, err = svc.Get(context.Background(), "published")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, source.calls)

	_, hit, err = svc.Get(context.Background(), "algorithm:co")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"published", "algorithm:CO"}, source.scopes)
}

func TestSnapshotServiceInvalidate(t *testing.T) {
	source := &stubSource{snapshot: fixtureSnapshot()}
	repo := newStubCacheRepo()
	svc := newSnapshotServiceForTest(source, repo, nil)

	_, _, err := svc.Get(context.Background(), "published")
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(context.Background()))
	assert.Equal(t, []string{"timetable:snapshot:*"}, repo.invalidated)

	_, hit, err := svc.Get(context.Background(), "published")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, source.calls)
}

func TestSnapshotServiceRejectsUnknownScope(t *testing.T) {
	svc := newSnapshotServiceForTest(&stubSource{snapshot: fixtureSnapshot()}, newStubCacheRepo(), nil)
	_, _, err := svc.Get(context.Background(), "draft")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSnapshotServiceMapsBackendErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"nothing published", models.ErrNothingPublished, appErrors.ErrNotFound.Code},
		{"unauthorized", &upstream.StatusError{Status: http.StatusUnauthorized, Message: "expired"}, appErrors.ErrUnauthorized.Code},
		{"timeout", context.DeadlineExceeded, appErrors.ErrUpstreamTimeout.Code},
		{"other", errors.New("connection refused"), appErrors.ErrUpstream.Code},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc := newSnapshotServiceForTest(&stubSource{err: tc.err}, newStubCacheRepo(), nil)
			_, _, err := svc.Get(context.Background(), "published")
			require.Error(t, err)
			assert.Equal(t, tc.code, appErrors.FromError(err).Code)
		})
	}
}

func TestSnapshotServiceRefreshJob(t *testing.T) {
	source := &stubSource{snapshot: fixtureSnapshot()}
	repo := newStubCacheRepo()
	queue := &stubQueue{}
	svc := newSnapshotServiceForTest(source, repo, queue)

	require.NoError(t, svc.ScheduleRefresh(models.ScopePublished))
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, RefreshJobType, queue.jobs[0].Type)

	require.NoError(t, svc.HandleRefresh(context.Background(), queue.jobs[0]))
	_, hit, err := svc.Get(context.Background(), models.ScopePublished)
	require.NoError(t, err)
	assert.True(t, hit)

	failing := newSnapshotServiceForTest(&stubSource{err: errors.New("down")}, newStubCacheRepo(), nil)
	assert.Error(t, failing.HandleRefresh(context.Background(), jobs.Job{Payload: "published"}))
}

func TestSnapshotServiceDerivesMissingTaxonomy(t *testing.T) {
	snapshot := fixtureSnapshot()
	snapshot.Days = nil
	snapshot.Periods = nil
	svc := newSnapshotServiceForTest(&stubSource{snapshot: snapshot}, newStubCacheRepo(), nil)

	snap, _, err := svc.Get(context.Background(), "published")
	require.NoError(t, err)

	days := make([]string, 0, len(snap.Days))
	for _, d := range snap.Days {
		days = append(days, d.Name)
	}
	assert.ElementsMatch(t, []string{"MON", "TUE"}, days)
	assert.Len(t, snap.Periods, 2)
}
