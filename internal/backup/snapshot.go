package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natah-genesis/portfolio-api/internal/projects/domain"
)

const (
	filePrefix  = "projects-"
	fileSuffix  = ".json"
	stampLayout = "20060102T150405.000Z"

	maxNameAttempts = 1000
)

// Lister is the read side of a project store.
type Lister interface {
	List(ctx context.Context) ([]domain.Project, error)
}

// Snapshotter writes point-in-time copies of the project collection and keeps
// only the newest few.
type Snapshotter struct {
	store Lister
	dir   string
	keep  int
	now   func() time.Time
}

func NewSnapshotter(store Lister, dir string, keep int) *Snapshotter {
	return &Snapshotter{store: store, dir: dir, keep: keep, now: time.Now}
}

// Snapshot exports the collection to dir/projects-<UTC stamp>.json and prunes
// old snapshots. It returns the written path.
func (s *Snapshotter) Snapshot(ctx context.Context) (string, error) {
	projects, err := s.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read projects: %w", err)
	}

	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	path, err := s.write(data)
	if err != nil {
		return "", err
	}

	if err := s.prune(); err != nil {
		return path, err
	}
	return path, nil
}

// write never replaces an existing snapshot. A taken name moves the stamp
// forward a millisecond so names keep sorting by time.
func (s *Snapshotter) write(data []byte) (string, error) {
	stamp := s.now().UTC().Truncate(time.Millisecond)
	for i := 0; i < maxNameAttempts; i++ {
		path := filepath.Join(s.dir, filePrefix+stamp.Format(stampLayout)+fileSuffix)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			stamp = stamp.Add(time.Millisecond)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create snapshot: %w", err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("failed to write snapshot: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("failed to write snapshot: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("failed to write snapshot: no free name after %s", stamp.Format(stampLayout))
}

// Snapshots lists snapshot file names, oldest first.
func (s *Snapshotter) Snapshots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		names = append(names, name)
	}
	// the stamp sorts lexically
	sort.Strings(names)
	return names, nil
}

func (s *Snapshotter) prune() error {
	if s.keep <= 0 {
		return nil
	}

	names, err := s.Snapshots()
	if err != nil {
		return err
	}
	for len(names) > s.keep {
		if err := os.Remove(filepath.Join(s.dir, names[0])); err != nil {
			return fmt.Errorf("failed to prune snapshot %s: %w", names[0], err)
		}
		names = names[1:]
	}
	return nil
}
