// Package client provides an HTTP client for the suggestion board REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/evcraddock/suggestion-board/internal/board"
	"github.com/evcraddock/suggestion-board/internal/comment"
	"github.com/evcraddock/suggestion-board/internal/contact"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

// Client is an HTTP client for the suggestion board API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. token may be empty for anonymous calls.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Error is a structured error returned by the server.
type Error struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s (%s, request %s)", e.Message, e.Code, e.RequestID)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// ModerationResult is the response to a pin, priority or status change.
type ModerationResult struct {
	Changed    bool                   `json:"changed"`
	Suggestion *suggestion.Suggestion `json:"suggestion"`
}

// User is the admin identity returned by login and verify.
type User struct {
	Login string `json:"login"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

// LoginResponse is the response from POST /api/auth/admin/login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	User      User   `json:"user"`
}

func suggestionPath(id int64, suffix string) string {
	return fmt.Sprintf("/api/suggestions/%d%s", id, suffix)
}

// ListSuggestions returns every suggestion in display order.
func (c *Client) ListSuggestions(ctx context.Context) ([]board.View, error) {
	var views []board.View
	if err := c.get(ctx, "/api/suggestions", &views); err != nil {
		return nil, err
	}
	return views, nil
}

// GetSuggestion returns a suggestion with its comments.
func (c *Client) GetSuggestion(ctx context.Context, id int64) (*board.View, error) {
	var v board.View
	if err := c.get(ctx, suggestionPath(id, ""), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateSuggestion submits a new suggestion.
func (c *Client) CreateSuggestion(ctx context.Context, d suggestion.Draft) (*board.View, error) {
	body := map[string]string{"name": d.Name, "message": d.Message}
	if d.Category != "" {
		body["category"] = d.Category
	}
	var v board.View
	if err := c.send(ctx, "POST", "/api/suggestions", body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteSuggestion removes a suggestion and its comments.
func (c *Client) DeleteSuggestion(ctx context.Context, id int64) error {
	return c.send(ctx, "DELETE", suggestionPath(id, ""), nil, nil)
}

// Like adds one like and returns the new count.
func (c *Client) Like(ctx context.Context, id int64) (int64, error) {
	var resp struct {
		Likes int64 `json:"likes"`
	}
	if err := c.send(ctx, "POST", suggestionPath(id, "/like"), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Likes, nil
}

// SetPinned pins or unpins a suggestion.
func (c *Client) SetPinned(ctx context.Context, id int64, pinned bool) (*ModerationResult, error) {
	return c.moderate(ctx, id, "/pin", map[string]bool{"isPinned": pinned})
}

// SetPriority sets a suggestion's priority. An empty priority clears it.
func (c *Client) SetPriority(ctx context.Context, id int64, priority string) (*ModerationResult, error) {
	return c.moderate(ctx, id, "/priority", map[string]string{"priority": priority})
}

// SetStatus moves a suggestion to a new status.
func (c *Client) SetStatus(ctx context.Context, id int64, status string) (*ModerationResult, error) {
	return c.moderate(ctx, id, "/status", map[string]string{"status": status})
}

func (c *Client) moderate(ctx context.Context, id int64, suffix string, body any) (*ModerationResult, error) {
	var res ModerationResult
	if err := c.send(ctx, "PUT", suggestionPath(id, suffix), body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AddComment adds a comment to a suggestion. A retry after an ambiguous
// failure may store the comment twice.
func (c *Client) AddComment(ctx context.Context, id int64, d comment.Draft) (*comment.Comment, error) {
	var resp struct {
		Comment *comment.Comment `json:"comment"`
	}
	body := map[string]string{"author": d.Author, "text": d.Text}
	if err := c.send(ctx, "POST", suggestionPath(id, "/comments"), body, &resp); err != nil {
		return nil, err
	}
	return resp.Comment, nil
}

// ListComments returns a suggestion's comments, oldest first.
func (c *Client) ListComments(ctx context.Context, id int64) ([]*comment.Comment, error) {
	var comments []*comment.Comment
	if err := c.get(ctx, suggestionPath(id, "/comments"), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Login exchanges the admin credential for a bearer token.
func (c *Client) Login(ctx context.Context, login, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"login": login, "password": password}
	if err := c.send(ctx, "POST", "/api/auth/admin/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verify returns the identity behind the client's token.
func (c *Client) Verify(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.get(ctx, "/api/auth/admin/verify", &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// SendContact forwards a contact form message to the board's moderators.
func (c *Client) SendContact(ctx context.Context, m contact.Message) error {
	body := map[string]string{"name": m.Name, "contact": m.ReplyTo, "message": m.Message}
	return c.send(ctx, "POST", "/api/contact", body, nil)
}

// Health checks that the server is running.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/api/health", nil)
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.send(ctx, "GET", path, nil, result)
}

// send performs a request with an optional JSON body and decodes the
// response into result.
func (c *Client) send(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, result)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error struct {
				Code      string `json:"code"`
				Message   string `json:"message"`
				RequestID string `json:"requestId"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return &Error{
				Status:    resp.StatusCode,
				Code:      errResp.Error.Code,
				Message:   errResp.Error.Message,
				RequestID: errResp.Error.RequestID,
			}
		}
		return &Error{
			Status:  resp.StatusCode,
			Code:    "HTTP_" + fmt.Sprint(resp.StatusCode),
			Message: "server error: " + http.StatusText(resp.StatusCode),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
