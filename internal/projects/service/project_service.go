package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/natah-genesis/portfolio-api/internal/logging"
	"github.com/natah-genesis/portfolio-api/internal/metrics"
	"github.com/natah-genesis/portfolio-api/internal/projects/domain"
	"github.com/natah-genesis/portfolio-api/internal/projects/repository"
)

const defaultDestroyTimeout = 10 * time.Second

// MediaHost deletes remote media assets. src lets the host pick the asset kind.
type MediaHost interface {
	Destroy(ctx context.Context, publicID, src string) error
}

// ProjectService handles project business logic on top of a Store
type ProjectService struct {
	store          repository.Store
	media          MediaHost
	logger         *zap.Logger
	destroyTimeout time.Duration
	now            func() time.Time
}

type Option func(*ProjectService)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ProjectService) { s.now = now }
}

// WithDestroyTimeout bounds each remote media deletion.
func WithDestroyTimeout(d time.Duration) Option {
	return func(s *ProjectService) {
		if d > 0 {
			s.destroyTimeout = d
		}
	}
}

// NewProjectService creates a new project service. media may be nil, in which
// case deletes never touch remote assets.
func NewProjectService(store repository.Store, media MediaHost, logger *zap.Logger, opts ...Option) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ProjectService{
		store:          store,
		media:          media,
		logger:         logger,
		destroyTimeout: defaultDestroyTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every project, highest sort_order first; ties keep storage order.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SortOrder > items[j].SortOrder
	})
	return items, nil
}

// Create stores a new project built from the client input.
func (s *ProjectService) Create(ctx context.Context, in domain.CreateInput) (domain.Project, error) {
	p := domain.NewProject(in, s.now())
	if err := s.store.Insert(ctx, p); err != nil {
		return domain.Project{}, err
	}

	metrics.IncrementProjectMutation("create")
	logging.WithRequest(ctx, s.logger).Info("project created",
		zap.String("project_id", p.ID),
		zap.String("title", p.Title),
	)
	return p, nil
}

// Update shallow-merges patch into the stored project.
func (s *ProjectService) Update(ctx context.Context, id string, patch domain.Patch) (domain.Project, error) {
	p, err := s.store.Update(ctx, id, patch, s.now())
	if err != nil {
		return domain.Project{}, err
	}

	metrics.IncrementProjectMutation("update")
	return p, nil
}

// Delete removes the project locally, then deletes its remote media.
// A remote failure is logged and counted but never returned.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return err
	}
	metrics.IncrementProjectMutation("delete")

	publicID := removed.MediaPublicID()
	if publicID == "" {
		return nil
	}

	log := logging.WithRequest(ctx, s.logger).With(
		zap.String("project_id", removed.ID),
		zap.String("public_id", publicID),
	)
	if s.media == nil {
		log.Warn("media host not configured, remote asset kept")
		metrics.IncrementMediaDestroyFailure()
		return nil
	}

	destroyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.destroyTimeout)
	defer cancel()

	if err := s.media.Destroy(destroyCtx, publicID, removed.Src); err != nil {
		log.Warn("remote media delete failed", zap.Error(err))
		metrics.IncrementMediaDestroyFailure()
	}
	return nil
}
