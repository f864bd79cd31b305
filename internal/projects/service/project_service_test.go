package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/natah-genesis/portfolio-api/internal/metrics"
	"github.com/natah-genesis/portfolio-api/internal/projects/domain"
	"github.com/natah-genesis/portfolio-api/internal/projects/repository"
)

type fakeMedia struct {
	mu       sync.Mutex
	err      error
	calls    []string
	srcs     []string
	deadline bool
}

func (f *fakeMedia) Destroy(ctx context.Context, publicID, src string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, publicID)
	f.srcs = append(f.srcs, src)
	_, f.deadline = ctx.Deadline()
	return f.err
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, media MediaHost) (*ProjectService, *fixedClock, *observer.ObservedLogs) {
	store := repository.NewFileStore(filepath.Join(t.TempDir(), "projects.json"))
	clock := &fixedClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	core, logs := observer.New(zapcore.InfoLevel)

	svc := NewProjectService(store, media, zap.New(core),
		WithClock(clock.Now),
		WithDestroyTimeout(2*time.Second),
	)
	return svc, clock, logs
}

func TestProjectService_CreateDefaults(t *testing.T) {
	svc, clock, _ := newTestService(t, nil)

	p, err := svc.Create(context.Background(), domain.CreateInput{})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, domain.DefaultTitle, p.Title)
	assert.Equal(t, "", p.Src)
	assert.Nil(t, p.CloudinaryPublicID)
	assert.False(t, p.IsPublished)
	assert.Zero(t, p.SortOrder)
	assert.True(t, clock.Now().Equal(p.CreatedAt))
	assert.True(t, p.CreatedAt.Equal(p.UpdatedAt))
}

func TestProjectService_ListSortsDescendingAndStable(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	for _, in := range []domain.CreateInput{
		{Title: "low", SortOrder: 1},
		{Title: "tie-first", SortOrder: 5},
		{Title: "high", SortOrder: 9},
		{Title: "tie-second", SortOrder: 5},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 4)

	var titles []string
	for _, p := range items {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"high", "tie-first", "tie-second", "low"}, titles)
}

func TestProjectService_UpdateRefreshesUpdatedAt(t *testing.T) {
	svc, clock, _ := newTestService(t, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, domain.CreateInput{Title: "demo", Description: "keep me"})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	updated, err := svc.Update(ctx, p.ID, domain.Patch{
		"is_published": json.RawMessage(`true`),
		"id":           json.RawMessage(`"hijack"`),
		"created_at":   json.RawMessage(`"1999-01-01T00:00:00Z"`),
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.True(t, p.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, "keep me", updated.Description)
	assert.True(t, updated.IsPublished)
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))

	_, err = svc.Update(ctx, "missing", domain.Patch{})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

// Create, publish, list, delete with the remote asset removed.
func TestProjectService_Lifecycle(t *testing.T) {
	media := &fakeMedia{}
	svc, _, logs := newTestService(t, media)
	ctx := context.Background()

	src := "https://res.cloudinary.com/demo/video/upload/v1/projects/reel.mp4"
	p, err := svc.Create(ctx, domain.CreateInput{
		Title:              "Reel",
		Src:                src,
		CloudinaryPublicID: "projects/reel",
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, domain.Patch{"is_published": json.RawMessage(`true`)})
	require.NoError(t, err)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsPublished)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Equal(t, []string{"projects/reel"}, media.calls)
	assert.Equal(t, []string{src}, media.srcs)
	assert.True(t, media.deadline, "destroy must run under a timeout")
	assert.Zero(t, logs.FilterMessage("remote media delete failed").Len())

	items, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, svc.Delete(ctx, p.ID), domain.ErrProjectNotFound)
}

func TestProjectService_DeleteSurvivesMediaFailure(t *testing.T) {
	media := &fakeMedia{err: errors.New("cloudinary unreachable")}
	svc, _, logs := newTestService(t, media)
	ctx := context.Background()

	p, err := svc.Create(ctx, domain.CreateInput{Title: "demo", CloudinaryPublicID: "x"})
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.MediaDestroyFailures)
	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.MediaDestroyFailures))

	warnings := logs.FilterMessage("remote media delete failed").All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.Equal(t, p.ID, fields["project_id"])
	assert.Equal(t, "x", fields["public_id"])
	assert.Equal(t, "cloudinary unreachable", fields["error"])

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProjectService_DeleteWithoutPublicIDSkipsMedia(t *testing.T) {
	media := &fakeMedia{}
	svc, _, _ := newTestService(t, media)
	ctx := context.Background()

	p, err := svc.Create(ctx, domain.CreateInput{Title: "demo"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Empty(t, media.calls)
}

type failingStore struct {
	repository.Store
	err error
}

func (f failingStore) List(ctx context.Context) ([]domain.Project, error) { return nil, f.err }
func (f failingStore) Insert(ctx context.Context, p domain.Project) error { return f.err }

func TestProjectService_StoreErrorsPropagate(t *testing.T) {
	svc := NewProjectService(failingStore{err: domain.ErrStorageWrite}, nil, nil)

	_, err := svc.Create(context.Background(), domain.CreateInput{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrStorageWrite)

	_, err = svc.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageWrite)
}
