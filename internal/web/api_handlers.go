package web

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/evcraddock/suggestion-board/internal/board"
	"github.com/evcraddock/suggestion-board/internal/comment"
	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

// apiHealth reports that the server is up. It does not touch storage.
func (s *Server) apiHealth(w http.ResponseWriter, _ *http.Request) {
	apiJSON(w, map[string]string{
		"status":  "OK",
		"message": "suggestion board is running",
	}, http.StatusOK)
}

// apiListSuggestions returns every suggestion in display order.
func (s *Server) apiListSuggestions(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.GetAll(r.Context())
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	apiJSON(w, views, http.StatusOK)
}

// apiCreateSuggestion stores a new suggestion.
func (s *Server) apiCreateSuggestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Message  string `json:"message"`
		Category string `json:"category"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.apiError(w, r, err)
		return
	}

	created, err := s.svc.Create(r.Context(), suggestion.Draft{
		Name:     req.Name,
		Message:  req.Message,
		Category: req.Category,
	})
	if err != nil {
		s.apiError(w, r, err)
		return
	}

	apiJSON(w, board.ViewOf(created, nil), http.StatusCreated)
}

// apiGetSuggestion returns one suggestion with its comments.
func (s *Server) apiGetSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	v, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	apiJSON(w, v, http.StatusOK)
}

// apiDeleteSuggestion removes a suggestion and its comments.
func (s *Server) apiDeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		s.apiError(w, r, err)
		return
	}
	apiJSON(w, map[string]any{"success": true, "deletedId": id}, http.StatusOK)
}

// apiLikeSuggestion adds one like.
func (s *Server) apiLikeSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	likes, err := s.svc.Like(r.Context(), id)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	apiJSON(w, map[string]any{"success": true, "likes": likes}, http.StatusOK)
}

// apiPinSuggestion pins or unpins a suggestion.
func (s *Server) apiPinSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	var req struct {
		IsPinned *bool `json:"isPinned"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.apiError(w, r, err)
		return
	}
	if req.IsPinned == nil {
		s.apiError(w, r, validation("isPinned is required"))
		return
	}

	res, err := s.svc.SetPinned(r.Context(), id, *req.IsPinned)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	apiJSON(w, map[string]any{
		"success":    true,
		"isPinned":   res.Suggestion.IsPinned,
		"changed":    res.Changed,
		"suggestion": res.Suggestion,
	}, http.StatusOK)
}

// apiPrioritizeSuggestion sets or clears a suggestion's priority. The
// priority key is required; an explicit null (or "none") clears it.
func (s *Server) apiPrioritizeSuggestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	var req struct {
		Priority json.RawMessage `json:"priority"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.apiError(w, r, err)
		return
	}
	priority, err := priorityValue(req.Priority)
	if err != nil {
		s.apiError(w, r, err)
		return
	}

	res, err := s.svc.SetPriority(r.Context(), id, priority)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	apiJSON(w, map[string]any{
		"success":    true,
		"priority":   res.Suggestion.Priority,
		"changed":    res.Changed,
		"suggestion": res.Suggestion,
	}, http.StatusOK)
}

// apiSetStatus moves a suggestion to a new workflow status.
func (s *Server) apiSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.apiError(w, r, err)
		return
	}

	res, err := s.svc.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	apiJSON(w, map[string]any{
		"success":    true,
		"status":     res.Suggestion.Status,
		"changed":    res.Changed,
		"suggestion": res.Suggestion,
	}, http.StatusOK)
}

// apiListComments returns a suggestion's comments, oldest first.
func (s *Server) apiListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	comments, err := s.svc.CommentsFor(r.Context(), id)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	apiJSON(w, comments, http.StatusOK)
}

// apiAddComment attaches a comment to a suggestion.
func (s *Server) apiAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	var req struct {
		Author string `json:"author"`
		Text   string `json:"text"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.apiError(w, r, err)
		return
	}

	c, err := s.svc.AddComment(r.Context(), id, comment.Draft{Author: req.Author, Text: req.Text})
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	apiJSON(w, map[string]any{"success": true, "comment": c}, http.StatusCreated)
}

// priorityValue reads the raw priority field. A missing key leaves raw
// empty; JSON null decodes to the empty string, which clears.
func priorityValue(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", validation("priority is required")
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", nil
	}
	var p string
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", validation("priority must be a string or null")
	}
	return p, nil
}
