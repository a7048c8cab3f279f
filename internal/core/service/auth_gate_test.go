package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authpractice/todo-service/internal/core/domain"
)

func newTestGate(t *testing.T) *AuthGate {
	t.Helper()
	g, err := NewAuthGate(AuthGateConfig{
		Username:  "admin",
		Password:  "password123",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	})
	if err != nil {
		t.Fatalf("NewAuthGate: %v", err)
	}
	return g
}

func TestNewAuthGate_RequiresSecretAndCredentials(t *testing.T) {
	cases := []AuthGateConfig{
		{Username: "", Password: "p", JWTSecret: "s"},
		{Username: "u", Password: "", JWTSecret: "s"},
		{Username: "u", Password: "p", JWTSecret: ""},
	}
	for _, cfg := range cases {
		if _, err := NewAuthGate(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestAuthGate_Authorize(t *testing.T) {
	g := newTestGate(t)

	tests := []struct {
		name     string
		username string
		password string
		ok       bool
	}{
		{name: "valid", username: "admin", password: "password123", ok: true},
		{name: "wrong password", username: "admin", password: "nope"},
		{name: "wrong username", username: "root", password: "password123"},
		{name: "missing username", password: "password123"},
		{name: "missing password", username: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := g.Authorize(tt.username, tt.password)
			if tt.ok && id == nil {
				t.Fatalf("expected identity")
			}
			if !tt.ok && id != nil {
				t.Fatalf("expected nil identity, got %+v", id)
			}
			if tt.ok && (id.ID != "1" || id.Username != "admin" || id.Email != "admin@example.com") {
				t.Fatalf("unexpected identity: %+v", id)
			}
		})
	}
}

func TestAuthGate_TokenRoundTrip(t *testing.T) {
	g := newTestGate(t)
	id := g.Authorize("admin", "password123")

	token, expiresAt, err := g.IssueToken(*id)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiry must be in the future")
	}

	session, err := g.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if session.ID != "1" || session.Username != "admin" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestAuthGate_ParseToken_Expired(t *testing.T) {
	g := newTestGate(t)
	issuedAt := time.Now().Add(-2 * time.Hour)
	g.now = func() time.Time { return issuedAt }

	token, _, err := g.IssueToken(domain.Identity{ID: "1", Username: "admin"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	g.now = time.Now
	if _, err := g.ParseToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthGate_ParseToken_Rejects(t *testing.T) {
	g := newTestGate(t)
	other, err := NewAuthGate(AuthGateConfig{Username: "admin", Password: "password123", JWTSecret: "other"})
	if err != nil {
		t.Fatalf("NewAuthGate: %v", err)
	}
	foreign, _, _ := other.IssueToken(domain.Identity{ID: "1", Username: "admin"})

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id": "1", "username": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": "1", "username": "admin",
	}).SignedString([]byte("test-secret"))

	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": "1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))

	for name, token := range map[string]string{
		"garbage":        "not-a-token",
		"empty":          "",
		"foreign secret": foreign,
		"alg none":       noneAlg,
		"no exp":         noExp,
		"no username":    noUser,
	} {
		if _, err := g.ParseToken(token); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}
