package comment

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/db"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestAddAndListBySuggestionID(t *testing.T) {
	repo, sugID := testSetup(t)
	ctx := context.Background()

	c, err := repo.Add(ctx, sugID, Draft{Author: "Bob", Text: "Agreed"}, epoch)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if c.SuggestionID != sugID {
		t.Errorf("suggestion_id = %d, want %d", c.SuggestionID, sugID)
	}
	if c.Text != "Agreed" {
		t.Errorf("text = %q, want %q", c.Text, "Agreed")
	}
	if !c.Date.Equal(epoch) {
		t.Errorf("date = %v, want %v", c.Date, epoch)
	}

	comments, err := repo.ListBySuggestionID(ctx, sugID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(comments))
	}
	if comments[0].Author != "Bob" {
		t.Errorf("author = %q, want %q", comments[0].Author, "Bob")
	}
}

func TestAddMissingSuggestion(t *testing.T) {
	repo, _ := testSetup(t)

	_, err := repo.Add(context.Background(), 9999, Draft{Author: "Bob", Text: "?"}, epoch)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestListBySuggestionIDEmpty(t *testing.T) {
	repo, _ := testSetup(t)

	comments, err := repo.ListBySuggestionID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if comments == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(comments) != 0 {
		t.Errorf("got %d comments, want 0", len(comments))
	}
}

func TestListOrderOldestFirst(t *testing.T) {
	repo, sugID := testSetup(t)
	ctx := context.Background()

	// Inserted out of date order; the two at epoch tie and fall back to id.
	for _, tc := range []struct {
		text string
		at   time.Time
	}{
		{"second", epoch.Add(time.Minute)},
		{"first-a", epoch},
		{"first-b", epoch},
	} {
		if _, err := repo.Add(ctx, sugID, Draft{Author: "x", Text: tc.text}, tc.at); err != nil {
			t.Fatalf("add %s: %v", tc.text, err)
		}
	}

	comments, err := repo.ListBySuggestionID(ctx, sugID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, c := range comments {
		got = append(got, c.Text)
	}
	if strings.Join(got, ",") != "first-a,first-b,second" {
		t.Errorf("order = %v", got)
	}
}

func TestListAll(t *testing.T) {
	d := openDB(t)
	repo := NewRepository(d)
	ctx := context.Background()

	a := insertSuggestion(t, d, "a")
	b := insertSuggestion(t, d, "b")
	for _, id := range []int64{a, b, a} {
		if _, err := repo.Add(ctx, id, Draft{Author: "x", Text: "y"}, epoch); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d comments, want 3", len(all))
	}
}

func TestCommentsDeletedWithSuggestion(t *testing.T) {
	d := openDB(t)
	repo := NewRepository(d)
	ctx := context.Background()
	id := insertSuggestion(t, d, "a")

	if _, err := repo.Add(ctx, id, Draft{Author: "x", Text: "y"}, epoch); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := d.Exec("DELETE FROM suggestions WHERE id = ?", id); err != nil {
		t.Fatalf("delete suggestion: %v", err)
	}

	comments, err := repo.ListBySuggestionID(ctx, id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("got %d comments after delete, want 0", len(comments))
	}
}

func TestDraftNormalize(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		problem string
	}{
		{"valid", Draft{Author: " Bob ", Text: " hi "}, ""},
		{"missing author", Draft{Author: "  ", Text: "hi"}, "author is required"},
		{"missing text", Draft{Author: "Bob", Text: ""}, "text is required"},
		{"long author", Draft{Author: strings.Repeat("a", MaxAuthorLen+1), Text: "hi"}, "author is too long"},
		{"long text", Draft{Author: "Bob", Text: strings.Repeat("я", MaxTextLen+1)}, "text is too long"},
		{"text at limit", Draft{Author: "Bob", Text: strings.Repeat("я", MaxTextLen)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, problem := tt.draft.Normalize()
			if problem != tt.problem {
				t.Errorf("problem = %q, want %q", problem, tt.problem)
			}
			if problem == "" && (got.Author != strings.TrimSpace(tt.draft.Author) || got.Text != strings.TrimSpace(tt.draft.Text)) {
				t.Errorf("draft not trimmed: %+v", got)
			}
		})
	}
}

func TestCommentJSONFields(t *testing.T) {
	c := Comment{ID: 1, SuggestionID: 2, Author: "a", Text: "b", Date: epoch}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "suggestionId", "author", "text", "date"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func testSetup(t *testing.T) (*Repository, int64) {
	t.Helper()
	d := openDB(t)
	return NewRepository(d), insertSuggestion(t, d, "Alice")
}

func insertSuggestion(t *testing.T, d *sql.DB, name string) int64 {
	t.Helper()
	res, err := d.Exec(
		"INSERT INTO suggestions (name, message, created_at) VALUES (?, ?, ?)",
		name, "message from "+name, epoch.UnixNano(),
	)
	if err != nil {
		t.Fatalf("insert suggestion: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return d
}
