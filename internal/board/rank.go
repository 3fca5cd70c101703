package board

import (
	"cmp"
	"slices"
	"time"

	"github.com/evcraddock/suggestion-board/internal/comment"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

// View is a suggestion with its comments nested, as listed on the board.
type View struct {
	ID       int64               `json:"id"`
	Name     string              `json:"name"`
	Message  string              `json:"message"`
	Date     time.Time           `json:"date"`
	Likes    int64               `json:"likes"`
	Status   suggestion.Status   `json:"status"`
	IsPinned bool                `json:"isPinned"`
	Priority suggestion.Priority `json:"priority"`
	Category suggestion.Category `json:"category"`
	Comments []*comment.Comment  `json:"comments"`
}

// ViewOf builds the listing view of s with the given comments, oldest
// first. A nil comment list becomes empty.
func ViewOf(s *suggestion.Suggestion, comments []*comment.Comment) View {
	return View{
		ID:       s.ID,
		Name:     s.Name,
		Message:  s.Message,
		Date:     s.Date,
		Likes:    s.Likes,
		Status:   s.Status,
		IsPinned: s.IsPinned,
		Priority: s.Priority,
		Category: s.Category,
		Comments: sortComments(comments),
	}
}

// Rank orders suggestions for display and nests each one's comments.
// Pinned suggestions come first, then high priority, then newest, with id
// as the final tie-break. Comments are oldest first. Comments whose
// suggestion is not in the list are dropped. Rank does not modify its
// inputs.
func Rank(suggestions []*suggestion.Suggestion, comments []*comment.Comment) []View {
	byID := make(map[int64][]*comment.Comment, len(suggestions))
	for _, s := range suggestions {
		byID[s.ID] = nil
	}
	for _, c := range comments {
		if list, ok := byID[c.SuggestionID]; ok {
			byID[c.SuggestionID] = append(list, c)
		}
	}

	ordered := slices.Clone(suggestions)
	slices.SortFunc(ordered, compareSuggestions)

	views := make([]View, 0, len(ordered))
	for _, s := range ordered {
		views = append(views, ViewOf(s, byID[s.ID]))
	}
	return views
}

func compareSuggestions(a, b *suggestion.Suggestion) int {
	if a.IsPinned != b.IsPinned {
		if a.IsPinned {
			return -1
		}
		return 1
	}
	if a.Priority.IsHigh() != b.Priority.IsHigh() {
		if a.Priority.IsHigh() {
			return -1
		}
		return 1
	}
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func sortComments(comments []*comment.Comment) []*comment.Comment {
	out := slices.Clone(comments)
	if out == nil {
		out = []*comment.Comment{}
	}
	slices.SortFunc(out, func(a, b *comment.Comment) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
