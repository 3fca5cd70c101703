package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/auth"
)

type adminUser struct {
	Login string    `json:"login"`
	Role  auth.Role `json:"role"`
	Name  string    `json:"name"`
}

func userFor(p auth.Principal) adminUser {
	return adminUser{
		Login: strings.TrimPrefix(p.Subject, "key:"),
		Role:  p.Role,
		Name:  "Administrator",
	}
}

// apiAdminLogin exchanges the admin credential for a bearer token.
func (s *Server) apiAdminLogin(w http.ResponseWriter, r *http.Request) {
	if s.tokens == nil || !s.admin.Enabled() {
		writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "admin login is not configured")
		return
	}

	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.apiError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Login) == "" || req.Password == "" {
		s.apiError(w, r, validation("login and password are required"))
		return
	}

	if s.authn.Blocked(r) {
		writeError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many failed attempts")
		return
	}
	if err := s.admin.Check(req.Login, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.authn.RecordFailure(r)
			s.log.Warn("admin login failed", zap.String("ip", r.RemoteAddr))
			writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid login or password")
			return
		}
		s.apiError(w, r, apperr.Internal("web.login", err))
		return
	}

	token, expires, err := s.tokens.Issue(req.Login, auth.RoleAdmin)
	if err != nil {
		s.apiError(w, r, apperr.Internal("web.login", err))
		return
	}

	s.log.Info("admin logged in", zap.String("login", req.Login))
	apiJSON(w, map[string]any{
		"success":   true,
		"token":     token,
		"expiresAt": expires.Format(time.RFC3339),
		"user":      adminUser{Login: req.Login, Role: auth.RoleAdmin, Name: "Administrator"},
	}, http.StatusOK)
}

// apiAdminVerify reports who the presented bearer token belongs to.
func (s *Server) apiAdminVerify(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		if rej, rejected := auth.RejectionFrom(r.Context()); rejected {
			writeError(w, r, rej.Status, rej.Code, rej.Message)
			return
		}
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "bearer token required")
		return
	}
	if !p.IsModerator() {
		s.apiError(w, r, apperr.Unauthorized("web.verify", "moderator capability required"))
		return
	}
	apiJSON(w, map[string]any{"success": true, "user": userFor(p)}, http.StatusOK)
}

// apiAdminLogout acknowledges a logout. Tokens are stateless, so the
// client discards its copy.
func (s *Server) apiAdminLogout(w http.ResponseWriter, _ *http.Request) {
	apiJSON(w, map[string]any{"success": true, "message": "logged out"}, http.StatusOK)
}
