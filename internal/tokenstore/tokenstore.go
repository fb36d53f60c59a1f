// Package tokenstore issues and redeems password-reset tokens. Tokens are
// signed JWTs carrying the account email and an expiry; each token's unique
// ID is also recorded in Redis under a TTL so tokens are single-use and
// survive process restarts and multi-instance deployments.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrDisabled     = errors.New("password reset is not configured")
	ErrInvalidToken = errors.New("invalid or expired reset token")
)

// Store issues and redeems reset tokens
type Store struct {
	client  *redis.Client
	secret  []byte
	ttl     time.Duration
	enabled bool
}

// New creates a token store. An empty Redis address yields a disabled store:
// Issue and Consume return ErrDisabled instead of failing at startup.
func New(redisAddr, redisPassword, secret string, ttl time.Duration) *Store {
	if redisAddr == "" {
		log.Println("Reset token store disabled: REDIS_ADDR not configured")
		return &Store{enabled: false}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
	})

	return &Store{
		client:  client,
		secret:  []byte(secret),
		ttl:     ttl,
		enabled: true,
	}
}

// Enabled reports whether the store can issue tokens
func (s *Store) Enabled() bool {
	return s.enabled
}

func resetKey(jti string) string {
	return "reset:" + jti
}

// Issue creates a signed single-use reset token for the given email
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	if !s.enabled {
		return "", ErrDisabled
	}

	jti := uuid.New().String()
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   email,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}

	if err := s.client.Set(ctx, resetKey(jti), email, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return token, nil
}

// Verify checks a token's signature, expiry, and single-use marker, and
// returns the email it was issued for. The token remains redeemable.
func (s *Store) Verify(ctx context.Context, token string) (string, error) {
	email, _, err := s.validate(ctx, token)
	return email, err
}

// Consume redeems a token: like Verify, but the token is deleted and cannot
// be used again.
func (s *Store) Consume(ctx context.Context, token string) (string, error) {
	email, jti, err := s.validate(ctx, token)
	if err != nil {
		return "", err
	}

	if err := s.client.Del(ctx, resetKey(jti)).Err(); err != nil {
		return "", fmt.Errorf("failed to consume reset token: %w", err)
	}
	return email, nil
}

func (s *Store) validate(ctx context.Context, token string) (email, jti string, err error) {
	if !s.enabled {
		return "", "", ErrDisabled
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return "", "", ErrInvalidToken
	}

	stored, err := s.client.Get(ctx, resetKey(claims.ID)).Result()
	if err == redis.Nil {
		return "", "", ErrInvalidToken
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to look up reset token: %w", err)
	}
	if stored != claims.Subject {
		return "", "", ErrInvalidToken
	}

	return claims.Subject, claims.ID, nil
}
