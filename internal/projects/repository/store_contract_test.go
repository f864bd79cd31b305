package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/natah-genesis/portfolio-api/internal/projects/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var timeFixture = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestProject(title string, sortOrder float64, at time.Time) domain.Project {
	return domain.NewProject(domain.CreateInput{
		Title:     title,
		Src:       "https://res.cloudinary.com/demo/video/upload/" + title + ".mp4",
		SortOrder: sortOrder,
	}, at)
}

// runStoreContract checks the behaviour every Store backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty store lists nothing", func(t *testing.T) {
		store := newStore(t)
		items, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("insert then list returns the record", func(t *testing.T) {
		store := newStore(t)
		p := newTestProject("demo", 2, base)
		require.NoError(t, store.Insert(ctx, p))

		items, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, p.ID, items[0].ID)
		assert.Equal(t, p.Title, items[0].Title)
		assert.Equal(t, p.Src, items[0].Src)
		assert.Equal(t, p.SortOrder, items[0].SortOrder)
		assert.True(t, p.CreatedAt.Equal(items[0].CreatedAt))
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		store := newStore(t)
		var ids []string
		for i, title := range []string{"a", "b", "c"} {
			p := newTestProject(title, float64(i), base)
			ids = append(ids, p.ID)
			require.NoError(t, store.Insert(ctx, p))
		}

		items, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 3)
		for i := range ids {
			assert.Equal(t, ids[i], items[i].ID)
		}
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		store := newStore(t)
		p := newTestProject("demo", 0, base)
		require.NoError(t, store.Insert(ctx, p))
		assert.ErrorIs(t, store.Insert(ctx, p), domain.ErrProjectExists)
	})

	t.Run("update merges and refreshes updated_at", func(t *testing.T) {
		store := newStore(t)
		p := newTestProject("demo", 1, base)
		require.NoError(t, store.Insert(ctx, p))

		later := base.Add(time.Hour)
		updated, err := store.Update(ctx, p.ID, domain.Patch{
			"is_published": json.RawMessage(`true`),
			"client":       json.RawMessage(`"ACME"`),
		}, later)
		require.NoError(t, err)
		assert.True(t, updated.IsPublished)
		assert.Equal(t, p.Title, updated.Title)
		assert.True(t, later.Equal(updated.UpdatedAt))

		items, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].IsPublished)
		assert.Equal(t, p.Description, items[0].Description)
		assert.Equal(t, p.Src, items[0].Src)
		assert.True(t, p.CreatedAt.Equal(items[0].CreatedAt))
		assert.False(t, items[0].UpdatedAt.Before(p.UpdatedAt))
		assert.JSONEq(t, `"ACME"`, string(items[0].Extra["client"]))
	})

	t.Run("update of unknown id", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Update(ctx, "missing", domain.Patch{"title": json.RawMessage(`"x"`)}, base)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("update with bad field types leaves record untouched", func(t *testing.T) {
		store := newStore(t)
		p := newTestProject("demo", 1, base)
		require.NoError(t, store.Insert(ctx, p))

		_, err := store.Update(ctx, p.ID, domain.Patch{"is_published": json.RawMessage(`"yes"`)}, base)
		assert.ErrorIs(t, err, domain.ErrInvalidPatch)

		items, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.False(t, items[0].IsPublished)
	})

	t.Run("remove then list and remove again", func(t *testing.T) {
		store := newStore(t)
		keep := newTestProject("keep", 0, base)
		drop := newTestProject("drop", 0, base)
		require.NoError(t, store.Insert(ctx, keep))
		require.NoError(t, store.Insert(ctx, drop))

		removed, err := store.Remove(ctx, drop.ID)
		require.NoError(t, err)
		assert.Equal(t, drop.ID, removed.ID)
		assert.Equal(t, drop.Src, removed.Src)

		items, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, keep.ID, items[0].ID)

		_, err = store.Remove(ctx, drop.ID)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})
}
