// Package storetest holds behavior tests shared by every ports.QuoteStore
// implementation.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EcMscS/Footnote/internal/domain"
	"github.com/EcMscS/Footnote/internal/ports"
)

// Run exercises store behavior against stores built by newStore. Each
// subtest gets a fresh, empty store.
func Run(t *testing.T, newStore func(t *testing.T) ports.QuoteStore) {
	t.Helper()

	t.Run("create assigns id and get returns it", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, domain.Quote{
			Text:        domain.Ptr("Carpe diem"),
			Author:      domain.Ptr("Horace"),
			MediaType:   int(domain.MediaSpeech),
			DateCreated: at(1),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Carpe diem", got.TextOrEmpty())
		assert.Equal(t, "Horace", got.AuthorOrEmpty())
		assert.Nil(t, got.Title)
		assert.Equal(t, domain.MediaSpeech, got.Media())
		assert.True(t, got.DateCreated.Equal(at(1)))
	})

	t.Run("absent and empty fields are distinct", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, domain.Quote{Text: domain.Ptr(""), Title: nil})
		require.NoError(t, err)

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Text)
		assert.Empty(t, *got.Text)
		assert.Nil(t, got.Title)
		assert.Nil(t, got.Author)
		assert.False(t, got.HasDate())
	})

	t.Run("caller supplied id is kept and duplicates conflict", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, domain.Quote{ID: "q-1", Text: domain.Ptr("a")})
		require.NoError(t, err)
		assert.Equal(t, "q-1", created.ID)

		_, err = s.Create(ctx, domain.Quote{ID: "q-1", Text: domain.Ptr("b")})
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("list orders newest first with insertion tie break", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		mustCreate(t, s, "old", at(1))
		mustCreate(t, s, "undated", time.Time{})
		mustCreate(t, s, "new", at(3))
		mustCreate(t, s, "tie-first", at(2))
		mustCreate(t, s, "tie-second", at(2))

		quotes, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"new", "tie-second", "tie-first", "old", "undated"}, ids(quotes))
	})

	t.Run("empty store lists nothing", func(t *testing.T) {
		s := newStore(t)

		quotes, err := s.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, quotes)
	})

	t.Run("delete removes and reports missing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		mustCreate(t, s, "a", at(1))
		mustCreate(t, s, "b", at(2))

		require.NoError(t, s.Delete(ctx, "a"))

		quotes, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, ids(quotes))

		_, err = s.Get(ctx, "a")
		assert.True(t, domain.IsNotFound(err))
		assert.True(t, domain.IsNotFound(s.Delete(ctx, "a")))
	})

	t.Run("listeners see committed state", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var seen []int
		unsubscribe := s.Subscribe(func(ctx context.Context) {
			quotes, err := s.List(ctx)
			assert.NoError(t, err)
			seen = append(seen, len(quotes))
		})

		mustCreate(t, s, "a", at(1))
		mustCreate(t, s, "b", at(2))
		require.NoError(t, s.Delete(ctx, "a"))

		unsubscribe()
		mustCreate(t, s, "c", at(3))

		assert.Equal(t, []int{1, 2, 1}, seen)
	})

	t.Run("failed mutations do not notify", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		calls := 0
		s.Subscribe(func(context.Context) { calls++ })

		assert.Error(t, s.Delete(ctx, "missing"))
		assert.Equal(t, 0, calls)
	})

	t.Run("concurrent creates", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const n = 20

		var wg sync.WaitGroup
		for range n {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := s.Create(ctx, domain.Quote{Text: domain.Ptr("x"), DateCreated: at(1)})
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		quotes, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, quotes, n)
	})
}

func at(day int) time.Time {
	return time.Date(2024, time.March, day, 9, 30, 0, 0, time.UTC)
}

func mustCreate(t *testing.T, s ports.QuoteStore, id string, date time.Time) {
	t.Helper()

	_, err := s.Create(context.Background(), domain.Quote{ID: id, Text: domain.Ptr(id), DateCreated: date})
	require.NoError(t, err)
}

func ids(quotes []domain.Quote) []string {
	out := make([]string, len(quotes))
	for i, q := range quotes {
		out[i] = q.ID
	}

	return out
}
