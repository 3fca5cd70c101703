// Package board implements the suggestion board core: suggestion
// lifecycle, likes, comments, moderation and the ranked listing.
package board

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/comment"
	"github.com/evcraddock/suggestion-board/internal/events"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

// DefaultTimeout bounds each store call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Store is the persistent state behind the board. Moderation setters
// report whether the stored value changed.
type Store interface {
	CreateSuggestion(ctx context.Context, d suggestion.Draft) (*suggestion.Suggestion, error)
	GetSuggestion(ctx context.Context, id int64) (*suggestion.Suggestion, error)
	DeleteSuggestion(ctx context.Context, id int64) error
	IncrementLikes(ctx context.Context, id int64) (int64, error)
	SetPinned(ctx context.Context, id int64, pinned bool) (*suggestion.Suggestion, bool, error)
	SetPriority(ctx context.Context, id int64, p suggestion.Priority) (*suggestion.Suggestion, bool, error)
	SetStatus(ctx context.Context, id int64, st suggestion.Status) (*suggestion.Suggestion, bool, error)
	AddComment(ctx context.Context, suggestionID int64, d comment.Draft) (*comment.Comment, error)

	// CommentsFor fails with NotFound when the suggestion does not exist.
	CommentsFor(ctx context.Context, suggestionID int64) ([]*comment.Comment, error)

	// Snapshot reads every suggestion and comment from one consistent
	// view of the store.
	Snapshot(ctx context.Context) ([]*suggestion.Suggestion, []*comment.Comment, error)
}

// Authorizer decides whether the caller in ctx may moderate.
type Authorizer interface {
	IsModerator(ctx context.Context) bool
}

// Publisher receives domain events after a mutation succeeds. It must not
// block the caller.
type Publisher interface {
	Publish(ctx context.Context, e events.Event)
}

// Service is the board's entry point for reads and writes.
type Service struct {
	store     Store
	authz     Authorizer
	publisher Publisher
	log       *zap.Logger
	timeout   time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithAuthorizer sets the moderator check. Without one every moderation
// call is rejected.
func WithAuthorizer(a Authorizer) Option {
	return func(s *Service) { s.authz = a }
}

// WithPublisher sets where domain events go.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTimeout bounds each store call.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService creates a board service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		log:     zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new suggestion.
func (s *Service) Create(ctx context.Context, d suggestion.Draft) (*suggestion.Suggestion, error) {
	const op = "board.create"

	d, problem := d.Normalize()
	if problem != "" {
		return nil, apperr.Validation(op, "%s", problem)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	created, err := s.store.CreateSuggestion(ctx, d)
	if err != nil {
		return nil, apperr.FromContext(op, err)
	}

	s.log.Info("suggestion created",
		zap.Int64("id", created.ID),
		zap.String("category", string(created.Category)),
	)
	s.publish(ctx, events.New(events.SuggestionCreated, created.ID, created))
	return created, nil
}

// Delete removes a suggestion and its comments. Only moderators may delete.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "board.delete"

	if !s.isModerator(ctx) {
		return apperr.Unauthorized(op, "moderator capability required")
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.store.DeleteSuggestion(ctx, id); err != nil {
		return apperr.FromContext(op, err)
	}

	s.log.Info("suggestion deleted", zap.Int64("id", id))
	s.publish(ctx, events.New(events.SuggestionDeleted, id, nil))
	return nil
}

// GetAll returns every suggestion in display order with its comments.
func (s *Service) GetAll(ctx context.Context) ([]View, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	suggestions, comments, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, apperr.FromContext("board.get_all", err)
	}
	return Rank(suggestions, comments), nil
}

// Get returns one suggestion with its comments.
func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	const op = "board.get"

	ctx, cancel := s.bound(ctx)
	defer cancel()

	sug, err := s.store.GetSuggestion(ctx, id)
	if err != nil {
		return nil, apperr.FromContext(op, err)
	}
	comments, err := s.store.CommentsFor(ctx, id)
	if err != nil {
		return nil, apperr.FromContext(op, err)
	}

	v := ViewOf(sug, comments)
	return &v, nil
}

// Like adds one like and returns the new count.
func (s *Service) Like(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	likes, err := s.store.IncrementLikes(ctx, id)
	if err != nil {
		return 0, apperr.FromContext("board.like", err)
	}

	s.publish(ctx, events.New(events.SuggestionLiked, id, events.Likes{Likes: likes}))
	return likes, nil
}

// AddComment attaches a comment to a suggestion. Retrying a call whose
// outcome is unknown may store the comment twice.
func (s *Service) AddComment(ctx context.Context, suggestionID int64, d comment.Draft) (*comment.Comment, error) {
	const op = "board.add_comment"

	d, problem := d.Normalize()
	if problem != "" {
		return nil, apperr.Validation(op, "%s", problem)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	c, err := s.store.AddComment(ctx, suggestionID, d)
	if err != nil {
		return nil, apperr.FromContext(op, err)
	}

	s.log.Info("comment added",
		zap.Int64("suggestion_id", suggestionID),
		zap.Int64("comment_id", c.ID),
	)
	s.publish(ctx, events.New(events.CommentAdded, suggestionID, c))
	return c, nil
}

// CommentsFor returns a suggestion's comments, oldest first.
func (s *Service) CommentsFor(ctx context.Context, suggestionID int64) ([]*comment.Comment, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	comments, err := s.store.CommentsFor(ctx, suggestionID)
	if err != nil {
		return nil, apperr.FromContext("board.comments_for", err)
	}
	if comments == nil {
		comments = []*comment.Comment{}
	}
	return comments, nil
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) isModerator(ctx context.Context) bool {
	return s.authz != nil && s.authz.IsModerator(ctx)
}

// publish hands e to the publisher. The mutation has already committed,
// so the caller's deadline no longer applies.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(context.WithoutCancel(ctx), e)
}
