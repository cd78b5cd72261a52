// Package session maps opaque bearer tokens to principal identifiers in
// Redis. Credential checks live outside this service; a token is issued at
// registration and resolved on every authenticated request.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialite/internal/util"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

type Store struct {
	client    *redis.Client
	expiresIn time.Duration
}

type Config struct {
	Addr      string
	Password  string
	DB        int
	ExpiresIn time.Duration
}

func New(cfg Config) Store {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return Store{client: client, expiresIn: cfg.ExpiresIn}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Create stores a fresh token for userID and returns it.
func (s *Store) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := util.RandomString(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(token), userID.String(), s.expiresIn).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Resolve returns the principal a token was issued for.
func (s *Store) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt session value: %w", err)
	}
	return userID, nil
}

// Revoke deletes a token. Revoking an unknown token is not an error.
func (s *Store) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return "session:" + token
}
