package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/auth"
)

// requireModerator writes an error and returns false unless the caller
// may manage keys.
func (s *Server) requireModerator(w http.ResponseWriter, r *http.Request) bool {
	if s.keys == nil {
		writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "api keys are not available")
		return false
	}
	p, ok := auth.FromContext(r.Context())
	if !ok || !p.IsModerator() {
		s.apiError(w, r, apperr.Unauthorized("web.keys", "moderator capability required"))
		return false
	}
	return true
}

// apiListKeys returns every API key without its secret.
func (s *Server) apiListKeys(w http.ResponseWriter, r *http.Request) {
	if !s.requireModerator(w, r) {
		return
	}
	keys, err := s.keys.List(r.Context())
	if err != nil {
		s.apiError(w, r, apperr.FromContext("web.keys.list", err))
		return
	}
	if keys == nil {
		keys = []auth.APIKey{}
	}
	apiJSON(w, keys, http.StatusOK)
}

// apiCreateKey generates a new API key. The raw key is in the response
// and is never shown again.
func (s *Server) apiCreateKey(w http.ResponseWriter, r *http.Request) {
	if !s.requireModerator(w, r) {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.apiError(w, r, err)
		return
	}

	raw, key, err := s.keys.Create(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		s.apiError(w, r, apperr.FromContext("web.keys.create", err))
		return
	}

	s.log.Info("api key created", zap.Int64("key_id", key.ID), zap.String("name", key.Name))
	apiJSON(w, map[string]any{"key": raw, "apiKey": key}, http.StatusCreated)
}

// apiRevokeKey deletes an API key.
func (s *Server) apiRevokeKey(w http.ResponseWriter, r *http.Request) {
	if !s.requireModerator(w, r) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.apiError(w, r, validation("invalid key id"))
		return
	}
	if err := s.keys.Delete(r.Context(), id); err != nil {
		s.apiError(w, r, apperr.FromContext("web.keys.revoke", err))
		return
	}

	s.log.Info("api key revoked", zap.Int64("key_id", id))
	apiJSON(w, map[string]any{"success": true, "revokedId": id}, http.StatusOK)
}
