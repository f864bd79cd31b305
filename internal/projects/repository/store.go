package repository

import (
	"context"
	"time"

	"github.com/natah-genesis/portfolio-api/internal/projects/domain"
)

// Store is the durable collection of project records.
// List returns records in storage (insertion) order; callers sort for display.
type Store interface {
	List(ctx context.Context) ([]domain.Project, error)
	Insert(ctx context.Context, p domain.Project) error
	Update(ctx context.Context, id string, patch domain.Patch, now time.Time) (domain.Project, error)
	Remove(ctx context.Context, id string) (domain.Project, error)
}

func indexOf(projects []domain.Project, id string) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}
