package web

import (
	"net/http"
	"time"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/contact"
)

// apiSendContact forwards a contact form message to the moderators' chats.
func (s *Server) apiSendContact(w http.ResponseWriter, r *http.Request) {
	if s.contact == nil {
		writeError(w, r, http.StatusServiceUnavailable, apperr.KindUnavailable.String(), "contact form is not configured")
		return
	}

	var req contact.Message
	if err := decodeJSON(w, r, &req); err != nil {
		s.apiError(w, r, err)
		return
	}
	m, problem := req.Normalize()
	if problem != "" {
		s.apiError(w, r, validation(problem))
		return
	}
	m.Received = time.Now().UTC()

	if err := s.contact.SendContact(r.Context(), m); err != nil {
		s.apiError(w, r, &apperr.Error{
			Kind:    apperr.KindUnavailable,
			Op:      "web.contact",
			Message: "message could not be delivered",
			Err:     err,
		})
		return
	}
	apiJSON(w, map[string]any{"success": true, "message": "message sent"}, http.StatusOK)
}
