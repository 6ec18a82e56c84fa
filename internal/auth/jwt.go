// Package auth provides JWT session tokens, bcrypt password hashing,
// and the request-authentication middleware.
//
// SESSION MODEL:
// Sessions are stateless — the signed token IS the session. The payload
// carries a minimal identity snapshot {id, email, name} copied verbatim
// from the User row at issuance, plus standard iat/exp claims. There is
// no revocation list: expiry (7 days for login sessions) is the only
// invalidation mechanism, and the snapshot goes stale if the user row
// changes afterwards.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/authd/internal/model"
)

// SessionTTL is the lifetime of tokens issued on sign-up and sign-in.
const SessionTTL = 7 * 24 * time.Hour

const issuer = "authd"

// ErrTokenExpired classifies a verification failure as expiry rather
// than tampering. Callers may surface "token expired" for this case
// and a generic "invalid token" for everything else — never more.
var ErrTokenExpired = errors.New("auth: token expired")

// Identity is the payload a verified token yields.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// claims embeds the registered claims (iat, exp, iss, sub) and adds
// the identity snapshot. Subject duplicates ID for interoperability
// with tooling that only looks at "sub".
type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session tokens with an HMAC secret.
// The same secret handles both operations; it comes from config, never
// from package-level state.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// Secrets shorter than 16 characters are rejected outright — HS256
// with a short secret is brute-forceable offline.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue creates a signed token for the given user with the given
// lifetime. The identity fields are copied from the user at this
// instant; nothing refreshes them later.
func (s *TokenService) Issue(user *model.User, ttl time.Duration) (string, error) {
	if user == nil {
		return "", errors.New("auth: user must not be nil")
	}

	now := time.Now()
	c := claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string, returning the identity
// it carries.
//
// Checks performed by the jwt library: signature, expiry, issuer, and
// algorithm. Pinning the algorithm to HS256 via WithValidMethods blocks
// algorithm-confusion attacks (e.g. a token claiming "none").
//
// Failure modes: ErrTokenExpired when the only problem is expiry;
// an opaque error for every other cause.
func (s *TokenService) Validate(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &Identity{
		ID:    c.Subject,
		Email: c.Email,
		Name:  c.Name,
	}, nil
}
