package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/comment"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

func TestCreateUsesClock(t *testing.T) {
	at := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	store := testStore(t, WithClock(func() time.Time { return at }))

	s, err := store.CreateSuggestion(context.Background(), suggestion.Draft{Name: "a", Message: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !s.Date.Equal(at) {
		t.Errorf("date = %v, want %v", s.Date, at)
	}

	c, err := store.AddComment(context.Background(), s.ID, comment.Draft{Author: "x", Text: "y"})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if !c.Date.Equal(at) {
		t.Errorf("comment date = %v, want %v", c.Date, at)
	}
}

func TestCommentsFor(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	s, err := store.CreateSuggestion(ctx, suggestion.Draft{Name: "a", Message: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	comments, err := store.CommentsFor(ctx, s.ID)
	if err != nil {
		t.Fatalf("comments for: %v", err)
	}
	if comments == nil || len(comments) != 0 {
		t.Errorf("got %v, want empty slice", comments)
	}

	if _, err := store.AddComment(ctx, s.ID, comment.Draft{Author: "x", Text: "y"}); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	comments, err = store.CommentsFor(ctx, s.ID)
	if err != nil {
		t.Fatalf("comments for: %v", err)
	}
	if len(comments) != 1 {
		t.Errorf("got %d comments, want 1", len(comments))
	}

	if err := store.DeleteSuggestion(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.CommentsFor(ctx, s.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("after delete err = %v, want not found", err)
	}
}

func TestSnapshot(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	a, err := store.CreateSuggestion(ctx, suggestion.Draft{Name: "a", Message: "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateSuggestion(ctx, suggestion.Draft{Name: "c", Message: "d"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.AddComment(ctx, a.ID, comment.Draft{Author: "x", Text: "y"}); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	suggestions, comments, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(suggestions) != 2 {
		t.Errorf("got %d suggestions, want 2", len(suggestions))
	}
	if len(comments) != 1 || comments[0].SuggestionID != a.ID {
		t.Errorf("comments = %+v", comments)
	}
}

func TestSnapshotCancelled(t *testing.T) {
	store := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.Snapshot(ctx)
	if !apperr.Is(err, apperr.KindTimeout) {
		t.Errorf("err = %v, want timeout", err)
	}
}

func testStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}
