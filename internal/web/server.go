// Package web provides the JSON HTTP API for the suggestion board.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/evcraddock/suggestion-board/internal/auth"
	"github.com/evcraddock/suggestion-board/internal/board"
	"github.com/evcraddock/suggestion-board/internal/contact"
	"github.com/evcraddock/suggestion-board/internal/logging"
)

// maxBodyBytes caps request bodies. The largest valid body is a
// suggestion message of a few kilobytes.
const maxBodyBytes = 64 << 10

// Options wires the server's dependencies. Service is required; the rest
// may be left zero to disable the feature they back.
type Options struct {
	Service     *board.Service
	Tokens      *auth.Tokens
	Admin       auth.AdminLogin
	Keys        *auth.APIKeyStore
	Contact     ContactSender
	CORSOrigins []string
	Logger      *zap.Logger

	// ReportErrors sends internal errors to Sentry. Set it only after
	// sentry.Init has succeeded.
	ReportErrors bool
}

// ContactSender delivers contact form messages to the moderators.
type ContactSender interface {
	SendContact(ctx context.Context, m contact.Message) error
}

// Server is the board's HTTP API.
type Server struct {
	svc          *board.Service
	tokens       *auth.Tokens
	admin        auth.AdminLogin
	keys         *auth.APIKeyStore
	contact      ContactSender
	authn        *auth.Authenticator
	log          *zap.Logger
	reportErrors bool
	router       chi.Router
}

// NewServer creates the API server and registers its routes.
func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		svc:          opts.Service,
		tokens:       opts.Tokens,
		admin:        opts.Admin,
		keys:         opts.Keys,
		contact:      opts.Contact,
		authn:        auth.NewAuthenticator(opts.Tokens, opts.Keys, log),
		log:          log,
		reportErrors: opts.ReportErrors,
		router:       chi.NewRouter(),
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := s.router
	r.Use(logging.RequestID)
	r.Use(logging.RequestLogger(log))
	r.Use(s.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", logging.RequestIDHeader},
		ExposedHeaders: []string{logging.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(s.authn.Authenticate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.apiHealth)
		r.Post("/contact", s.apiSendContact)

		r.Route("/suggestions", func(r chi.Router) {
			r.Get("/", s.apiListSuggestions)
			r.Post("/", s.apiCreateSuggestion)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.apiGetSuggestion)
				r.Delete("/", s.apiDeleteSuggestion)
				r.Post("/like", s.apiLikeSuggestion)
				r.Put("/pin", s.apiPinSuggestion)
				r.Put("/priority", s.apiPrioritizeSuggestion)
				r.Put("/status", s.apiSetStatus)
				r.Get("/comments", s.apiListComments)
				r.Post("/comments", s.apiAddComment)
			})
		})

		r.Route("/auth/admin", func(r chi.Router) {
			r.Post("/login", s.apiAdminLogin)
			r.Get("/verify", s.apiAdminVerify)
			r.Post("/logout", s.apiAdminLogout)
		})

		r.Route("/keys", func(r chi.Router) {
			r.Get("/", s.apiListKeys)
			r.Post("/", s.apiCreateKey)
			r.Delete("/{id}", s.apiRevokeKey)
		})
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
