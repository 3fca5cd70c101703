package postgres

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/comment"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

// testStore connects to SB_TEST_DATABASE_URL and empties the tables.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("SB_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SB_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.pool.Exec(ctx, `TRUNCATE suggestion_comments, suggestions, api_keys RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return s
}

func TestSuggestionLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	created, err := s.CreateSuggestion(ctx, suggestion.Draft{Name: "Alice", Message: "Add benches", Category: "ecology"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), created.Likes)
	assert.Equal(t, suggestion.StatusNew, created.Status)
	assert.Equal(t, suggestion.PriorityUnset, created.Priority)
	assert.Equal(t, suggestion.CategoryEcology, created.Category)

	got, err := s.GetSuggestion(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	require.NoError(t, s.DeleteSuggestion(ctx, created.ID))
	assert.True(t, apperr.Is(s.DeleteSuggestion(ctx, created.ID), apperr.KindNotFound))
	_, err = s.GetSuggestion(ctx, created.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestConcurrentLikes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	created, err := s.CreateSuggestion(ctx, suggestion.Draft{Name: "a", Message: "b"})
	require.NoError(t, err)

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.IncrementLikes(ctx, created.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetSuggestion(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.Likes)

	_, err = s.IncrementLikes(ctx, created.ID+1000)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestModerationChangeDetection(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	created, err := s.CreateSuggestion(ctx, suggestion.Draft{Name: "a", Message: "b"})
	require.NoError(t, err)

	updated, changed, err := s.SetPriority(ctx, created.ID, suggestion.PriorityHigh)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, suggestion.PriorityHigh, updated.Priority)

	_, changed, err = s.SetPriority(ctx, created.ID, suggestion.PriorityHigh)
	require.NoError(t, err)
	assert.False(t, changed)

	_, changed, err = s.SetPriority(ctx, created.ID, suggestion.PriorityUnset)
	require.NoError(t, err)
	assert.True(t, changed)

	_, _, err = s.SetStatus(ctx, created.ID+1000, suggestion.StatusResolved)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCommentsAndSnapshot(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a, err := s.CreateSuggestion(ctx, suggestion.Draft{Name: "a", Message: "b"})
	require.NoError(t, err)

	_, err = s.AddComment(ctx, a.ID, comment.Draft{Author: "Bob", Text: "first"})
	require.NoError(t, err)
	_, err = s.AddComment(ctx, a.ID, comment.Draft{Author: "Bob", Text: "second"})
	require.NoError(t, err)

	_, err = s.AddComment(ctx, a.ID+1000, comment.Draft{Author: "Bob", Text: "orphan"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	comments, err := s.CommentsFor(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)

	suggestions, all, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, suggestions, 1)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeleteSuggestion(ctx, a.ID))
	_, err = s.CommentsFor(ctx, a.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, all, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "comments cascade with their suggestion")
}
