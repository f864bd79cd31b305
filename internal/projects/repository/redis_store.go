package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/natah-genesis/portfolio-api/internal/projects/domain"
	"github.com/redis/go-redis/v9"
)

const (
	projectKeyPrefix = "portfolio:project:"       // Record data: portfolio:project:{id}
	projectOrderKey  = "portfolio:projects:order" // Insertion order of project IDs

	maxTxAttempts = 5
)

// RedisStore keeps one JSON value per project keyed by ID, plus a list that
// remembers insertion order.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) List(ctx context.Context) ([]domain.Project, error) {
	ids, err := r.client.LRange(ctx, projectOrderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list project ids: %v", domain.ErrStorageUnavailable, err)
	}
	if len(ids) == 0 {
		return []domain.Project{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.projectKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load projects: %v", domain.ErrStorageUnavailable, err)
	}

	out := make([]domain.Project, 0, len(values))
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			// order entry without a record; skip it
			continue
		}
		var p domain.Project
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("%w: failed to unmarshal project %s: %v", domain.ErrStorageUnavailable, ids[i], err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *RedisStore) Insert(ctx context.Context, p domain.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal project: %v", domain.ErrStorageWrite, err)
	}

	created, err := r.client.SetNX(ctx, r.projectKey(p.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to create project: %v", domain.ErrStorageWrite, err)
	}
	if !created {
		return domain.ErrProjectExists
	}

	if err := r.client.RPush(ctx, projectOrderKey, p.ID).Err(); err != nil {
		return fmt.Errorf("%w: failed to index project: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

func (r *RedisStore) Update(ctx context.Context, id string, patch domain.Patch, now time.Time) (domain.Project, error) {
	key := r.projectKey(id)

	var updated domain.Project
	err := r.watch(ctx, key, func(tx *redis.Tx) error {
		existing, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}

		updated, err = existing.Merge(patch, now)
		if err != nil {
			return err
		}

		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("%w: failed to marshal project: %v", domain.ErrStorageWrite, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetXX(ctx, key, data, 0)
			return nil
		})
		return err
	})
	if err != nil {
		return domain.Project{}, err
	}
	return updated, nil
}

func (r *RedisStore) Remove(ctx context.Context, id string) (domain.Project, error) {
	key := r.projectKey(id)

	var existing domain.Project
	err := r.watch(ctx, key, func(tx *redis.Tx) error {
		var err error
		existing, err = r.get(ctx, tx, id)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.LRem(ctx, projectOrderKey, 0, id)
			return nil
		})
		return err
	})
	if err != nil {
		return domain.Project{}, err
	}
	return existing, nil
}

// watch runs fn as an optimistic transaction on key. When another client
// changes the key first, fn runs again against the fresh value.
func (r *RedisStore) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxTxAttempts; i++ {
		err := r.client.Watch(ctx, fn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !isDomainError(err) {
			return fmt.Errorf("%w: failed to write project: %v", domain.ErrStorageWrite, err)
		}
		return err
	}
	return fmt.Errorf("%w: project %s kept changing during write", domain.ErrStorageWrite, key)
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrProjectNotFound) ||
		errors.Is(err, domain.ErrInvalidPatch) ||
		errors.Is(err, domain.ErrStorageUnavailable) ||
		errors.Is(err, domain.ErrStorageWrite)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) get(ctx context.Context, c stringGetter, id string) (domain.Project, error) {
	data, err := c.Get(ctx, r.projectKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	if err != nil {
		return domain.Project{}, fmt.Errorf("%w: failed to get project: %v", domain.ErrStorageUnavailable, err)
	}

	var p domain.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return domain.Project{}, fmt.Errorf("%w: failed to unmarshal project: %v", domain.ErrStorageUnavailable, err)
	}
	return p, nil
}

func (r *RedisStore) projectKey(id string) string {
	return fmt.Sprintf("%s%s", projectKeyPrefix, id)
}
