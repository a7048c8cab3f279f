package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/authpractice/todo-service/internal/core/domain"
)

const (
	builtinUserID    = "1"
	builtinUserEmail = "admin@example.com"
	defaultTokenTTL  = 24 * time.Hour
)

// AuthGateConfig holds the single identity's credentials and token settings.
type AuthGateConfig struct {
	Username  string
	Password  string
	JWTSecret string
	TokenTTL  time.Duration
}

// AuthGate checks credentials against exactly one built-in identity and
// issues HS256 session tokens carrying {id, username}.
type AuthGate struct {
	identity     domain.Identity
	passwordHash []byte
	jwtSecret    []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

func NewAuthGate(cfg AuthGateConfig) (*AuthGate, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("auth gate: username and password are required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth gate: jwt secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth gate: hash password: %w", err)
	}

	return &AuthGate{
		identity: domain.Identity{
			ID:       builtinUserID,
			Username: cfg.Username,
			Email:    builtinUserEmail,
		},
		passwordHash: hash,
		jwtSecret:    []byte(cfg.JWTSecret),
		tokenTTL:     cfg.TokenTTL,
		now:          time.Now,
	}, nil
}

// Authorize returns the identity when the pair matches, nil otherwise.
func (g *AuthGate) Authorize(username, password string) *domain.Identity {
	if username == "" || password == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(g.identity.Username)) != 1 {
		return nil
	}
	if bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)) != nil {
		return nil
	}
	id := g.identity
	return &id
}

func (g *AuthGate) IssueToken(identity domain.Identity) (string, time.Time, error) {
	now := g.now()
	expiresAt := now.Add(g.tokenTTL)
	claims := jwt.MapClaims{
		"id":       identity.ID,
		"username": identity.Username,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(g.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (g *AuthGate) ParseToken(token string) (*domain.Session, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return g.jwtSecret, nil
	}, jwt.WithTimeFunc(g.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return nil, domain.ErrUnauthorized
	}

	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Session{ID: id, Username: username}, nil
}
