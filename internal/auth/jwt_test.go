package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TVLlam/CHAT-AES/internal/identity"
)

var testSecret = []byte("test-secret")

type staticDirectory struct {
	idents map[int64]identity.Identity
}

func (d *staticDirectory) FindByID(ctx context.Context, id int64) (*identity.Identity, error) {
	ident, ok := d.idents[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return &ident, nil
}

func (d *staticDirectory) FindByUsername(ctx context.Context, username string) (*identity.Identity, error) {
	for _, ident := range d.idents {
		if ident.Username == username {
			out := ident
			return &out, nil
		}
	}
	return nil, identity.ErrNotFound
}

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func newAuthenticator() *Authenticator {
	dir := &staticDirectory{idents: map[int64]identity.Identity{
		1: {ID: 1, Username: "testuser"},
	}}
	return NewAuthenticator(testSecret, dir)
}

func TestAuthenticate_ValidBearerToken(t *testing.T) {
	a := newAuthenticator()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": 1,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	ident, err := a.Authenticate(context.Background(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ident.ID != 1 || ident.Username != "testuser" {
		t.Errorf("unexpected identity: %+v", ident)
	}
}

func TestAuthenticate_QueryParamFallback(t *testing.T) {
	a := newAuthenticator()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": 1,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	r := httptest.NewRequest("GET", "/ws?token="+token, nil)

	ident, err := a.Authenticate(context.Background(), r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ident.ID != 1 {
		t.Errorf("expected identity 1, got %d", ident.ID)
	}
}

func TestAuthenticate_MissingToken(t *testing.T) {
	a := newAuthenticator()
	r := httptest.NewRequest("GET", "/ws", nil)

	if _, err := a.Authenticate(context.Background(), r); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	a := newAuthenticator()
	token := signToken(t, []byte("other-secret"), jwt.MapClaims{
		"sub": 1,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	r := httptest.NewRequest("GET", "/ws?token="+token, nil)

	if _, err := a.Authenticate(context.Background(), r); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	a := newAuthenticator()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": 1,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	r := httptest.NewRequest("GET", "/ws?token="+token, nil)

	if _, err := a.Authenticate(context.Background(), r); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticate_UnknownSubject(t *testing.T) {
	a := newAuthenticator()
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": 42,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	r := httptest.NewRequest("GET", "/ws?token="+token, nil)

	if _, err := a.Authenticate(context.Background(), r); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for deleted user, got %v", err)
	}
}
