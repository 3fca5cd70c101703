package board

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/events"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

// Field is the moderation attribute a Transition changes.
type Field string

const (
	FieldPinned   Field = "isPinned"
	FieldPriority Field = "priority"
	FieldStatus   Field = "status"
)

// Transition is one moderation change with its target value. Build it
// with PinTransition, ParsePriorityTransition or ParseStatusTransition.
type Transition struct {
	field    Field
	pinned   bool
	priority suggestion.Priority
	status   suggestion.Status
}

// PinTransition pins or unpins a suggestion.
func PinTransition(pinned bool) Transition {
	return Transition{field: FieldPinned, pinned: pinned}
}

// ParsePriorityTransition parses a priority name. Empty, "none" and
// "unset" clear the priority.
func ParsePriorityTransition(s string) (Transition, error) {
	p, ok := suggestion.ParsePriority(s)
	if !ok {
		return Transition{}, apperr.Validation("board.priority", "invalid priority %q", s)
	}
	return Transition{field: FieldPriority, priority: p}, nil
}

// ParseStatusTransition parses a status name.
func ParseStatusTransition(s string) (Transition, error) {
	st, ok := suggestion.ParseStatus(s)
	if !ok {
		return Transition{}, apperr.Validation("board.status", "invalid status %q", s)
	}
	return Transition{field: FieldStatus, status: st}, nil
}

// Field returns the attribute t changes.
func (t Transition) Field() Field { return t.field }

// Value returns the target value in its JSON form.
func (t Transition) Value() any {
	switch t.field {
	case FieldPinned:
		return t.pinned
	case FieldPriority:
		if t.priority == suggestion.PriorityUnset {
			return nil
		}
		return t.priority
	case FieldStatus:
		return t.status
	}
	return nil
}

func (t Transition) String() string {
	return fmt.Sprintf("%s=%v", t.field, t.Value())
}

// Result is the outcome of a moderation call.
type Result struct {
	Suggestion *suggestion.Suggestion
	Changed    bool
}

// Moderate applies t to suggestion id. Repeating a transition is a no-op
// that returns the current record with Changed false.
func (s *Service) Moderate(ctx context.Context, id int64, t Transition) (Result, error) {
	op := "board.moderate." + string(t.field)

	if !s.isModerator(ctx) {
		return Result{}, apperr.Unauthorized(op, "moderator capability required")
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	var (
		updated *suggestion.Suggestion
		changed bool
		err     error
	)
	switch t.field {
	case FieldPinned:
		updated, changed, err = s.store.SetPinned(ctx, id, t.pinned)
	case FieldPriority:
		updated, changed, err = s.store.SetPriority(ctx, id, t.priority)
	case FieldStatus:
		updated, changed, err = s.store.SetStatus(ctx, id, t.status)
	default:
		return Result{}, apperr.Validation(op, "unknown moderation field %q", t.field)
	}
	if err != nil {
		return Result{}, apperr.FromContext(op, err)
	}

	if changed {
		s.log.Info("suggestion moderated",
			zap.Int64("id", id),
			zap.Stringer("transition", t),
		)
		s.publish(ctx, events.New(events.SuggestionModerated, id, events.Moderation{
			Field: string(t.field),
			Value: t.Value(),
		}))
	}

	return Result{Suggestion: updated, Changed: changed}, nil
}

// SetPinned pins or unpins a suggestion.
func (s *Service) SetPinned(ctx context.Context, id int64, pinned bool) (Result, error) {
	return s.Moderate(ctx, id, PinTransition(pinned))
}

// SetPriority sets a suggestion's priority from its name.
func (s *Service) SetPriority(ctx context.Context, id int64, priority string) (Result, error) {
	if !s.isModerator(ctx) {
		return Result{}, apperr.Unauthorized("board.moderate.priority", "moderator capability required")
	}
	t, err := ParsePriorityTransition(priority)
	if err != nil {
		return Result{}, err
	}
	return s.Moderate(ctx, id, t)
}

// SetStatus sets a suggestion's status from its name.
func (s *Service) SetStatus(ctx context.Context, id int64, status string) (Result, error) {
	if !s.isModerator(ctx) {
		return Result{}, apperr.Unauthorized("board.moderate.status", "moderator capability required")
	}
	t, err := ParseStatusTransition(status)
	if err != nil {
		return Result{}, err
	}
	return s.Moderate(ctx, id, t)
}
