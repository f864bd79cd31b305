package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natah-genesis/portfolio-api/internal/projects/domain"
)

// FileStore keeps every project in one pretty-printed JSON array.
// Each mutation rewrites the whole file. The mutex serializes writers inside
// this process only; two processes sharing the file can still lose updates.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) List(ctx context.Context) ([]domain.Project, error) {
	return s.read()
}

func (s *FileStore) Insert(ctx context.Context, p domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.read()
	if err != nil {
		return err
	}
	if indexOf(projects, p.ID) >= 0 {
		return domain.ErrProjectExists
	}

	return s.write(append(projects, p))
}

func (s *FileStore) Update(ctx context.Context, id string, patch domain.Patch, now time.Time) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.read()
	if err != nil {
		return domain.Project{}, err
	}
	idx := indexOf(projects, id)
	if idx < 0 {
		return domain.Project{}, domain.ErrProjectNotFound
	}

	updated, err := projects[idx].Merge(patch, now)
	if err != nil {
		return domain.Project{}, err
	}
	projects[idx] = updated

	if err := s.write(projects); err != nil {
		return domain.Project{}, err
	}
	return updated, nil
}

func (s *FileStore) Remove(ctx context.Context, id string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.read()
	if err != nil {
		return domain.Project{}, err
	}
	idx := indexOf(projects, id)
	if idx < 0 {
		return domain.Project{}, domain.ErrProjectNotFound
	}

	removed := projects[idx]
	projects = append(projects[:idx], projects[idx+1:]...)

	if err := s.write(projects); err != nil {
		return domain.Project{}, err
	}
	return removed, nil
}

// read treats a missing or empty file as an empty collection.
func (s *FileStore) read() ([]domain.Project, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if len(raw) == 0 {
		return []domain.Project{}, nil
	}

	var projects []domain.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", domain.ErrStorageUnavailable, s.path, err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

func (s *FileStore) write(projects []domain.Project) error {
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}

	tmp, err := os.CreateTemp(dir, ".projects-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}
