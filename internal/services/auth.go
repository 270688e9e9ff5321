package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

const sessionKeyPrefix = "session:"

type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	CreateSession(ctx context.Context, userID uuid.UUID) (string, error)
	GetSession(ctx context.Context, token string) (uuid.UUID, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthService issues opaque session tokens backed by Redis. Credential
// hashing uses bcrypt; tokens are random and never persisted in Postgres.
type AuthService struct {
	redis      RedisClient
	sessionTTL time.Duration
}

func NewAuthService(redisClient RedisClient, sessionTTL time.Duration) *AuthService {
	return &AuthService{redis: redisClient, sessionTTL: sessionTTL}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *AuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := generateSessionToken()
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+token, userID.String(), s.sessionTTL); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

func (s *AuthService) GetSession(ctx context.Context, token string) (uuid.UUID, error) {
	value, err := s.redis.Get(ctx, sessionKeyPrefix+token)
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("loading session: %w", err)
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing session user id: %w", err)
	}

	// Sliding expiration: touching a session keeps it alive.
	if err := s.redis.Expire(ctx, sessionKeyPrefix+token, s.sessionTTL); err != nil {
		return uuid.Nil, fmt.Errorf("refreshing session ttl: %w", err)
	}

	return userID, nil
}

func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func generateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
