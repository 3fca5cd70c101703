package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/evcraddock/suggestion-board/internal/apperr"
	"github.com/evcraddock/suggestion-board/internal/auth"
	"github.com/evcraddock/suggestion-board/internal/logging"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	apiJSON(w, errorBody{Error: errorDetail{
		Code:      code,
		Message:   message,
		RequestID: logging.RequestIDFrom(r.Context()),
	}}, status)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// apiError writes err as a structured error response. Internal errors are
// logged with the request id and reported to Sentry when enabled; their
// cause is never sent to the caller.
func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindAuthorization {
		// A refused credential is reported as such, not as a missing
		// capability.
		if rej, ok := auth.RejectionFrom(r.Context()); ok {
			writeError(w, r, rej.Status, rej.Code, rej.Message)
			return
		}
	}
	status := statusFor(kind)
	requestID := logging.RequestIDFrom(r.Context())

	switch {
	case kind == apperr.KindInternal:
		s.log.Error("request failed",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
		)
		s.capture(r, err)
	case status >= 500:
		s.log.Warn("dependency failure",
			zap.Error(err),
			zap.String("kind", kind.String()),
			zap.String("request_id", requestID),
		)
	}

	writeError(w, r, status, kind.String(), apperr.MessageOf(err))
}

func (s *Server) capture(r *http.Request, err error) {
	if !s.reportErrors {
		return
	}
	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("request_id", logging.RequestIDFrom(r.Context()))
		scope.SetTag("path", r.URL.Path)
		hub.CaptureException(err)
	})
}

// recoverer turns a handler panic into a 500 response.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.apiError(w, r, apperr.Internal("web.panic", fmt.Errorf("panic: %v", rec)))
		}()
		next.ServeHTTP(w, r)
	})
}

// decodeJSON reads a JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperr.Validation("web.decode", "request body too large")
		case errors.Is(err, io.EOF):
			return apperr.Validation("web.decode", "request body is required")
		default:
			return apperr.Validation("web.decode", "invalid JSON body")
		}
	}
	return nil
}

func validation(message string) error {
	return apperr.Validation("web.request", "%s", message)
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("web.path", "invalid id %q", raw)
	}
	return id, nil
}
