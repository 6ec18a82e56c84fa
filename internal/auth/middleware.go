package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package.
// A package-private key type means only this package can read or write
// the identity value — no other package can collide with or shadow it.
type contextKey string

const identityKey contextKey = "identity"

// Gate outcomes are binary: PASS attaches the verified identity to the
// request context and continues; REJECT terminates with 401. A request
// with no credential at all, or a malformed Authorization header, is
// rejected before Validate is ever invoked.

// RequireAuth enforces authentication on protected routes.
//
// TOKEN SOURCES (in order):
//  1. Authorization: Bearer <token> header
//  2. the "token" HttpOnly cookie set at sign-in/sign-up
//
// The header takes precedence so API clients can override a stale
// browser cookie. The 401 body distinguishes "token expired" from the
// generic "invalid token" and says nothing further.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := extractToken(r)
			if !ok {
				writeUnauthorized(w, "unauthorized")
				return
			}

			id, err := tokens.Validate(raw)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					writeUnauthorized(w, "token expired")
				} else {
					writeUnauthorized(w, "invalid token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the authenticated identity placed in
// the context by RequireAuth. Returns (nil, false) on anonymous
// requests — which on a RequireAuth-protected route should never
// happen, but handlers check anyway rather than panic.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// extractToken finds the raw token string without validating it.
// Returns false when no well-formed credential is present: missing
// header AND missing cookie, a header without the "Bearer " prefix, or
// an empty token value.
func extractToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		// Case-insensitive scheme match per RFC 7235.
		const prefix = "Bearer "
		if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
			return "", false
		}
		token := strings.TrimSpace(h[len(prefix):])
		return token, token != ""
	}

	cookie, err := r.Cookie("token")
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// writeUnauthorized emits the 401 envelope directly. The middleware
// can't use handler.writeError without an import cycle, so it mirrors
// the {message} shape with its own marshal — proper JSON encoding, so
// a message carrying quotes or other specials stays well-formed.
func writeUnauthorized(w http.ResponseWriter, message string) {
	body, err := json.Marshal(struct {
		Message string `json:"message"`
	}{message})
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write 401 response", slog.String("error", err.Error()))
	}
}
