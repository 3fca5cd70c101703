package auth

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/evcraddock/suggestion-board/internal/logging"
)

// rateLimiter tracks failed credential attempts per IP.
type rateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	maxFail  int
	now      func() time.Time
}

const (
	rateLimitWindow  = 1 * time.Minute
	rateLimitMaxFail = 10
)

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		attempts: make(map[string][]time.Time),
		window:   rateLimitWindow,
		maxFail:  rateLimitMaxFail,
		now:      time.Now,
	}
}

// prune drops attempts outside the window. Callers hold mu.
func (rl *rateLimiter) prune(ip string) []time.Time {
	cutoff := rl.now().Add(-rl.window)
	valid := rl.attempts[ip][:0]
	for _, t := range rl.attempts[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(rl.attempts, ip)
		return nil
	}
	rl.attempts[ip] = valid
	return valid
}

// blocked reports whether ip has used up its failures for the window.
func (rl *rateLimiter) blocked(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.prune(ip)) >= rl.maxFail
}

// recordFailure records a failed attempt.
func (rl *rateLimiter) recordFailure(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.attempts[ip] = append(rl.prune(ip), rl.now())
}

// Authenticator resolves bearer credentials into a Principal.
type Authenticator struct {
	tokens  *Tokens
	keys    *APIKeyStore
	limiter *rateLimiter
	log     *zap.Logger
}

// NewAuthenticator creates an authenticator. Either source may be nil.
func NewAuthenticator(tokens *Tokens, keys *APIKeyStore, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{tokens: tokens, keys: keys, limiter: newRateLimiter(), log: log}
}

var (
	rejectMalformed = Rejection{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "malformed authorization header"}
	rejectInvalid   = Rejection{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "invalid or expired credential"}
	rejectLimited   = Rejection{Status: http.StatusTooManyRequests, Code: "RATE_LIMITED", Message: "too many failed attempts"}
)

// Authenticate is middleware that places the caller's Principal in the
// request context. Requests without an Authorization header continue as
// anonymous. So do requests whose credential fails to verify, carrying a
// Rejection so that moderator routes answer 401 (or 429 for an IP with
// too many recent failures) while public routes keep working.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		reject := func(rej Rejection) {
			next.ServeHTTP(w, r.WithContext(withRejection(r.Context(), rej)))
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			reject(rejectMalformed)
			return
		}
		credential := strings.TrimSpace(parts[1])

		if a.Blocked(r) {
			reject(rejectLimited)
			return
		}

		p, ok, err := a.resolve(r, credential)
		if err != nil {
			a.log.Error("validating credential", zap.Error(err),
				zap.String("request_id", logging.RequestIDFrom(r.Context())))
			writeAuthError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "could not validate credential")
			return
		}
		if !ok {
			a.RecordFailure(r)
			a.log.Debug("credential rejected",
				zap.String("ip", clientIP(r)),
				zap.String("request_id", logging.RequestIDFrom(r.Context())))
			reject(rejectInvalid)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// Blocked reports whether the client IP of r has used up its failed
// credential attempts for the current window.
func (a *Authenticator) Blocked(r *http.Request) bool {
	return a.limiter.blocked(clientIP(r))
}

// RecordFailure counts a failed credential attempt from the client IP of r.
// The admin login handler reports bad passwords here too.
func (a *Authenticator) RecordFailure(r *http.Request) {
	a.limiter.recordFailure(clientIP(r))
}

func (a *Authenticator) resolve(r *http.Request, credential string) (Principal, bool, error) {
	if looksLikeJWT(credential) {
		if a.tokens == nil {
			return Principal{}, false, nil
		}
		claims, err := a.tokens.Parse(credential)
		if err != nil {
			return Principal{}, false, nil
		}
		return Principal{Subject: claims.Subject, Role: claims.Role, Via: "jwt"}, true, nil
	}

	if a.keys == nil || !strings.HasPrefix(credential, apiKeyPrefix) {
		return Principal{}, false, nil
	}
	name, err := a.keys.Validate(r.Context(), credential)
	if err != nil {
		return Principal{}, false, err
	}
	if name == "" {
		return Principal{}, false, nil
	}
	return Principal{Subject: "key:" + name, Role: RoleAdmin, Via: "apikey"}, true, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeAuthError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": logging.RequestIDFrom(r.Context()),
		},
	})
}
