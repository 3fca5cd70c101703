// Package auth identifies callers and decides who may moderate the board.
//
// Moderators authenticate with a bearer token: either a JWT issued by the
// admin login, or a hashed API key created with `sb key create`.
package auth

import (
	"context"
	"strings"
)

// Role is the capability granted to a principal.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAnonymous Role = ""
)

// Principal is the authenticated caller of a request.
type Principal struct {
	Subject string
	Role    Role
	Via     string // "jwt" or "apikey"
}

// IsModerator reports whether p may moderate.
func (p Principal) IsModerator() bool { return p.Role == RoleAdmin }

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal in ctx and whether one was set.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Rejection describes a presented credential that did not verify. The
// request still runs as anonymous; handlers that need a principal answer
// with Status instead of 403.
type Rejection struct {
	Status  int
	Code    string
	Message string
}

type rejectionKey struct{}

func withRejection(ctx context.Context, rej Rejection) context.Context {
	return context.WithValue(ctx, rejectionKey{}, rej)
}

// RejectionFrom returns why the request's credential was refused, if it
// presented one that was.
func RejectionFrom(ctx context.Context) (Rejection, bool) {
	rej, ok := ctx.Value(rejectionKey{}).(Rejection)
	return rej, ok
}

// ContextAuthorizer grants moderation to admin principals placed in the
// context by Authenticate.
type ContextAuthorizer struct{}

// IsModerator implements board.Authorizer.
func (ContextAuthorizer) IsModerator(ctx context.Context) bool {
	p, ok := FromContext(ctx)
	return ok && p.IsModerator()
}

// CredentialKind names the kind of bearer credential s looks like:
// "jwt", "api key" or "" when it is neither.
func CredentialKind(s string) string {
	switch {
	case looksLikeJWT(s):
		return "jwt"
	case strings.HasPrefix(s, apiKeyPrefix):
		return "api key"
	default:
		return ""
	}
}
