package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
)

// Service authenticates users and manages token revocation.
type Service struct {
	repo   Repository
	issuer TokenIssuer
	redis  *redis.Client
	now    func() time.Time
}

// NewService constructs an auth service.
func NewService(repo Repository, issuer TokenIssuer, redisClient *redis.Client) *Service {
	return &Service{repo: repo, issuer: issuer, redis: redisClient, now: time.Now}
}

// LoginResult carries the issued token back to the handler.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// Login verifies the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, expires, err := s.issuer.Issue(user, s.now())
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expires, User: *user}, nil
}

// Logout places the token on the denylist until its natural expiry.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.redis == nil {
		return nil
	}
	_, expires, err := s.issuer.Verify(token)
	if err != nil {
		return err
	}
	ttl := time.Until(expires)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, denylistKey(token), "1", ttl).Err()
}

// Authenticate verifies the token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, token string) (Identity, error) {
	identity, _, err := s.issuer.Verify(token)
	if err != nil {
		return Identity{}, err
	}
	if s.redis != nil {
		revoked, err := s.redis.Exists(ctx, denylistKey(token)).Result()
		if err == nil && revoked > 0 {
			return Identity{}, ErrInvalidToken
		}
	}
	return identity, nil
}

func denylistKey(token string) string {
	return "auth:denylist:" + token
}
