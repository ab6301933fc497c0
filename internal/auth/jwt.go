// Package auth verifies the bearer tokens issued by the registration
// service and resolves them to identities. The chat core never sees
// credentials; it receives the Identity this package produces, or the
// connection is refused before the WebSocket upgrade.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TVLlam/CHAT-AES/internal/identity"
)

// ErrUnauthenticated is returned for missing, malformed, expired, or
// otherwise invalid tokens, and for tokens whose subject no longer exists
// in the user directory.
var ErrUnauthenticated = errors.New("auth: unauthenticated")

// Authenticator validates HS256 tokens and resolves their subject against
// the user directory.
type Authenticator struct {
	secret    []byte
	directory identity.Directory
}

// NewAuthenticator creates an Authenticator with the shared signing
// secret and the directory used to resolve token subjects.
func NewAuthenticator(secret []byte, dir identity.Directory) *Authenticator {
	return &Authenticator{secret: secret, directory: dir}
}

// Authenticate extracts the token from an upgrade request (Authorization
// bearer header, falling back to a "token" query parameter for browser
// WebSocket clients that cannot set headers) and returns the resolved
// identity. Any failure maps to ErrUnauthenticated.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (*identity.Identity, error) {
	token := tokenFromRequest(r)
	if token == "" {
		return nil, ErrUnauthenticated
	}

	userID, err := a.validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	ident, err := a.directory.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: subject %d not in directory", ErrUnauthenticated, userID)
	}
	return ident, nil
}

// validate parses and verifies the token signature and returns the
// subject identity id.
func (a *Authenticator) validate(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token")
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, errors.New("missing or invalid subject claim")
	}
	return int64(sub), nil
}

// tokenFromRequest pulls the bearer token from the Authorization header
// or the "token" query parameter.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimPrefix(h, "Bearer ")
		}
	}
	return r.URL.Query().Get("token")
}
