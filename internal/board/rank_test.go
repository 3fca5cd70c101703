package board

import (
	"testing"
	"time"

	"github.com/evcraddock/suggestion-board/internal/comment"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

var base = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func sug(id int64, minutes int, pinned bool, p suggestion.Priority) *suggestion.Suggestion {
	return &suggestion.Suggestion{
		ID:       id,
		Name:     "n",
		Message:  "m",
		Date:     base.Add(time.Duration(minutes) * time.Minute),
		Status:   suggestion.StatusNew,
		IsPinned: pinned,
		Priority: p,
		Category: suggestion.CategoryOther,
	}
}

func ids(views []View) []int64 {
	out := make([]int64, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRankOrder(t *testing.T) {
	tests := []struct {
		name  string
		input []*suggestion.Suggestion
		want  []int64
	}{
		{
			name:  "newest first",
			input: []*suggestion.Suggestion{sug(1, 0, false, ""), sug(2, 5, false, ""), sug(3, 2, false, "")},
			want:  []int64{2, 3, 1},
		},
		{
			name: "pinned above high priority",
			input: []*suggestion.Suggestion{
				sug(1, 0, true, ""),
				sug(2, 9, false, suggestion.PriorityHigh),
				sug(3, 10, false, ""),
			},
			want: []int64{1, 2, 3},
		},
		{
			name: "normal and low rank like unset",
			input: []*suggestion.Suggestion{
				sug(1, 1, false, suggestion.PriorityLow),
				sug(2, 2, false, ""),
				sug(3, 3, false, suggestion.PriorityNormal),
			},
			want: []int64{3, 2, 1},
		},
		{
			name: "high priority within pinned",
			input: []*suggestion.Suggestion{
				sug(1, 5, true, ""),
				sug(2, 1, true, suggestion.PriorityHigh),
			},
			want: []int64{2, 1},
		},
		{
			name:  "equal dates break by id descending",
			input: []*suggestion.Suggestion{sug(4, 0, false, ""), sug(9, 0, false, ""), sug(6, 0, false, "")},
			want:  []int64{9, 6, 4},
		},
		{
			name:  "empty",
			input: nil,
			want:  []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Rank(tt.input, nil))
			if !equalIDs(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankDeterministic(t *testing.T) {
	forward := []*suggestion.Suggestion{
		sug(1, 0, false, ""), sug(2, 0, true, ""), sug(3, 0, false, suggestion.PriorityHigh), sug(4, 0, false, ""),
	}
	reversed := []*suggestion.Suggestion{forward[3], forward[2], forward[1], forward[0]}

	a, b := ids(Rank(forward, nil)), ids(Rank(reversed, nil))
	if !equalIDs(a, b) {
		t.Errorf("order depends on input order: %v vs %v", a, b)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	input := []*suggestion.Suggestion{sug(1, 0, false, ""), sug(2, 5, false, "")}
	Rank(input, nil)
	if input[0].ID != 1 || input[1].ID != 2 {
		t.Error("input slice was reordered")
	}
}

func TestRankNestsComments(t *testing.T) {
	suggestions := []*suggestion.Suggestion{sug(1, 0, false, ""), sug(2, 1, false, "")}
	comments := []*comment.Comment{
		{ID: 10, SuggestionID: 1, Text: "later", Date: base.Add(time.Hour)},
		{ID: 11, SuggestionID: 1, Text: "earlier", Date: base},
		{ID: 9, SuggestionID: 1, Text: "tie-lower-id", Date: base},
		{ID: 12, SuggestionID: 99, Text: "orphan", Date: base},
	}

	views := Rank(suggestions, comments)

	byID := map[int64]View{}
	for _, v := range views {
		byID[v.ID] = v
	}

	got := byID[1].Comments
	if len(got) != 3 {
		t.Fatalf("got %d comments on 1, want 3", len(got))
	}
	if got[0].ID != 9 || got[1].ID != 11 || got[2].ID != 10 {
		t.Errorf("comment order = %d,%d,%d; want 9,11,10", got[0].ID, got[1].ID, got[2].ID)
	}
	if byID[2].Comments == nil || len(byID[2].Comments) != 0 {
		t.Errorf("suggestion 2 comments = %v, want empty", byID[2].Comments)
	}
}

func TestRankCopiesFields(t *testing.T) {
	s := sug(1, 0, true, suggestion.PriorityLow)
	s.Likes = 4
	s.Status = suggestion.StatusReviewed
	s.Category = suggestion.CategorySafety

	v := Rank([]*suggestion.Suggestion{s}, nil)[0]
	if v.Likes != 4 || v.Status != suggestion.StatusReviewed || !v.IsPinned ||
		v.Priority != suggestion.PriorityLow || v.Category != suggestion.CategorySafety || !v.Date.Equal(s.Date) {
		t.Errorf("view = %+v", v)
	}
}
