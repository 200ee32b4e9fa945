package auth

import (
	"context"
	"net/http"
	"strings"
)

// Principal is the authenticated caller as seen by the identity provider.
// The zero value is an anonymous caller.
type Principal struct {
	UserID string
	Email  string
}

func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached to ctx, or the
// anonymous principal.
func PrincipalFromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Principal{}
}

// Identify extracts a principal from the bearer token, falling back to the
// admin cookie. Requests without a valid token yield the anonymous principal.
func (m *JWTManager) Identify(r *http.Request, cookieName string) Principal {
	if m == nil || r == nil {
		return Principal{}
	}

	token, err := TokenFromHeader(r.Header.Get("Authorization"))
	if err != nil && cookieName != "" {
		if cookie, cerr := r.Cookie(cookieName); cerr == nil {
			token = strings.TrimSpace(cookie.Value)
		}
	}

	claims, err := m.Validate(token)
	if err != nil {
		return Principal{}
	}
	return Principal{UserID: claims.Subject, Email: claims.Email}
}
