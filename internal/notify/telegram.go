// Package notify sends board events and contact form messages to
// Telegram chats.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/evcraddock/suggestion-board/internal/comment"
	"github.com/evcraddock/suggestion-board/internal/contact"
	"github.com/evcraddock/suggestion-board/internal/events"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

// BotAPI is the part of *telego.Bot the notifier uses.
type BotAPI interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// sendsPerSecond stays under Telegram's bot broadcast limit.
const sendsPerSecond = 20

// Telegram posts new suggestions and comments to a fixed set of chats.
type Telegram struct {
	bot     BotAPI
	chatIDs []int64
	limiter ratelimit.Limiter
	log     *zap.Logger
}

// NewTelegram creates a notifier. It sends nothing when chatIDs is empty.
func NewTelegram(bot BotAPI, chatIDs []int64, log *zap.Logger) *Telegram {
	if log == nil {
		log = zap.NewNop()
	}
	return &Telegram{
		bot:     bot,
		chatIDs: chatIDs,
		limiter: ratelimit.New(sendsPerSecond),
		log:     log,
	}
}

// NewBot creates a telego bot from a token.
func NewBot(token string) (*telego.Bot, error) {
	bot, err := telego.NewBot(token, telego.WithDefaultLogger(false, false))
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return bot, nil
}

// Handle implements events.Handler. Events other than new suggestions and
// new comments are ignored.
func (t *Telegram) Handle(ctx context.Context, e events.Event) error {
	text, ok := render(e)
	if !ok {
		return nil
	}
	return t.broadcast(ctx, text, string(e.Type))
}

// SendContact forwards a contact form submission to every chat.
func (t *Telegram) SendContact(ctx context.Context, m contact.Message) error {
	if len(t.chatIDs) == 0 {
		return errors.New("no telegram chats configured")
	}
	return t.broadcast(ctx, renderContact(m), "contact")
}

func (t *Telegram) broadcast(ctx context.Context, text, kind string) error {
	var errs []error
	for _, id := range t.chatIDs {
		t.limiter.Take()
		msg := tu.Message(tu.ID(id), text).WithParseMode(telego.ModeHTML)
		if _, err := t.bot.SendMessage(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
			continue
		}
		t.log.Debug("telegram notification sent",
			zap.Int64("chat_id", id),
			zap.String("type", kind),
		)
	}
	return errors.Join(errs...)
}

func renderContact(m contact.Message) string {
	var b strings.Builder
	b.WriteString("📨 <b>New message from the contact form</b>\n\n")
	fmt.Fprintf(&b, "<b>Name:</b> %s\n", html.EscapeString(m.Name))
	fmt.Fprintf(&b, "<b>Contact:</b> %s\n", html.EscapeString(m.ReplyTo))
	fmt.Fprintf(&b, "<b>Message:</b> %s\n", html.EscapeString(m.Message))
	fmt.Fprintf(&b, "<b>Date:</b> %s", m.Received.Format("2006-01-02 15:04 MST"))
	return b.String()
}

func render(e events.Event) (string, bool) {
	switch e.Type {
	case events.SuggestionCreated:
		s, ok := e.Payload.(*suggestion.Suggestion)
		if !ok {
			return "", false
		}
		var b strings.Builder
		b.WriteString("💡 <b>New suggestion</b>\n\n")
		fmt.Fprintf(&b, "<b>From:</b> %s\n", html.EscapeString(s.Name))
		fmt.Fprintf(&b, "<b>Category:</b> %s\n", html.EscapeString(string(s.Category)))
		fmt.Fprintf(&b, "<b>Message:</b> %s\n", html.EscapeString(s.Message))
		fmt.Fprintf(&b, "<b>Date:</b> %s", s.Date.Format("2006-01-02 15:04 MST"))
		return b.String(), true

	case events.CommentAdded:
		c, ok := e.Payload.(*comment.Comment)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("💬 <b>New comment</b> on suggestion #%d\n\n<b>%s:</b> %s",
			c.SuggestionID, html.EscapeString(c.Author), html.EscapeString(c.Text)), true
	}
	return "", false
}
