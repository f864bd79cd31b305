package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const snapshotTimeout = 30 * time.Second

// Scheduler runs snapshots on a cron spec with a seconds field,
// e.g. "0 0 3 * * *" for 03:00 every day.
type Scheduler struct {
	cron   *cron.Cron
	snap   *Snapshotter
	logger *zap.Logger
}

func NewScheduler(spec string, snap *Snapshotter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		snap:   snap,
		logger: logger,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("failed to schedule backups %q: %w", spec, err)
	}
	return s, nil
}

// Start initializes cron tasks
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("backup scheduler started", zap.String("dir", s.snap.dir), zap.Int("keep", s.snap.keep))
}

// Stop halts scheduling and waits for a running snapshot.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	path, err := s.snap.Snapshot(ctx)
	if err != nil {
		s.logger.Error("backup failed", zap.Error(err))
		return
	}
	s.logger.Info("backup written", zap.String("path", path))
}
