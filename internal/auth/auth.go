// Package auth implements operator login and the bearer-token session that
// replaces the original terminal's "was logged in" browser key: a signed JWT
// carrying the user's identity, role, and issue timestamp.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"pos-terminal-service/internal/domain"
	"pos-terminal-service/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
	ErrInvalidToken       = errors.New("auth: invalid or expired token")
)

// Claims is the JWT payload for an authenticated operator.
type Claims struct {
	UserID   string      `json:"uid"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service performs credential checks and token issue/verification.
type Service struct {
	users    store.UserStorer
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an auth service signing tokens with the given secret.
func NewService(users store.UserStorer, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{users: users, secret: secret, tokenTTL: tokenTTL}
}

// Login checks the username/password pair against the user store and, on
// success, returns the user and a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("auth: user lookup failed: %w", err)
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, "", fmt.Errorf("auth: token signing failed: %w", err)
	}
	return user, token, nil
}

// ParseToken verifies the token signature and expiry and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword bcrypt-hashes a plaintext password for storage.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}
