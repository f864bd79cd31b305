package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/natah-genesis/portfolio-api/internal/projects/domain"
)

const projectsSchema = `
CREATE TABLE IF NOT EXISTS portfolio_projects (
	seq        BIGSERIAL,
	id         TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// PostgresStore keeps each project as a JSONB document; seq preserves insertion order.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the projects table if it is missing.
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, projectsSchema); err != nil {
		return fmt.Errorf("failed to create projects table: %w", err)
	}
	return nil
}

func (r *PostgresStore) List(ctx context.Context) ([]domain.Project, error) {
	const q = `SELECT doc FROM portfolio_projects ORDER BY seq ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		var p domain.Project
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("%w: failed to unmarshal project: %v", domain.ErrStorageUnavailable, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return out, nil
}

func (r *PostgresStore) Insert(ctx context.Context, p domain.Project) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal project: %v", domain.ErrStorageWrite, err)
	}

	const q = `
INSERT INTO portfolio_projects (id, doc, created_at, updated_at)
VALUES ($1, $2, $3, $4);
`
	_, err = r.db.ExecContext(ctx, q, p.ID, string(doc), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		// unique violation on id
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrProjectExists
		}
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

func (r *PostgresStore) Update(ctx context.Context, id string, patch domain.Patch, now time.Time) (domain.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	var doc []byte
	err = tx.QueryRowContext(ctx, `SELECT doc FROM portfolio_projects WHERE id = $1 FOR UPDATE`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	if err != nil {
		return domain.Project{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	var existing domain.Project
	if err := json.Unmarshal(doc, &existing); err != nil {
		return domain.Project{}, fmt.Errorf("%w: failed to unmarshal project: %v", domain.ErrStorageUnavailable, err)
	}

	updated, err := existing.Merge(patch, now)
	if err != nil {
		return domain.Project{}, err
	}
	newDoc, err := json.Marshal(updated)
	if err != nil {
		return domain.Project{}, fmt.Errorf("%w: failed to marshal project: %v", domain.ErrStorageWrite, err)
	}

	const q = `UPDATE portfolio_projects SET doc = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, q, id, string(newDoc), updated.UpdatedAt); err != nil {
		return domain.Project{}, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Project{}, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return updated, nil
}

func (r *PostgresStore) Remove(ctx context.Context, id string) (domain.Project, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx, `DELETE FROM portfolio_projects WHERE id = $1 RETURNING doc`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	if err != nil {
		return domain.Project{}, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}

	var removed domain.Project
	if err := json.Unmarshal(doc, &removed); err != nil {
		return domain.Project{}, fmt.Errorf("%w: failed to unmarshal project: %v", domain.ErrStorageUnavailable, err)
	}
	return removed, nil
}
