package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"coke_oven/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL   = time.Hour
	tokenIssuer       = "coke_oven"
	maxUsernameLength = 64
	signingKeyBytes   = 32
)

// AuthOptions configures operator tokens. An empty SigningKey gets a random
// per-process key, so tokens do not survive a restart.
type AuthOptions struct {
	SigningKey string
	TokenTTL   time.Duration
}

var (
	// ErrInvalidCredentials rejects a sign-up with an unusable username or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService registers operators and issues the bearer tokens that guard
// the ingestion and query endpoints.
type AuthService struct {
	users      repository.Authorization
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func NewAuthService(users repository.Authorization, opts AuthOptions) *AuthService {
	key := []byte(opts.SigningKey)
	if len(key) == 0 {
		key = randomSigningKey()
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{users: users, signingKey: key, tokenTTL: ttl, now: time.Now}
}

// randomSigningKey returns a fresh HS256 secret.
func randomSigningKey() []byte {
	key := make([]byte, signingKeyBytes)
	_, _ = rand.Read(key)
	return key
}

// SignUp stores a new operator with a bcrypt hash of password.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (int, error) {
	username, err := checkCredentials(username, password)
	if err != nil {
		return 0, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(ctx, username, string(hash))
}

// Claims are the JWT claims of an operator token.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// GenerateToken checks the operator's password and returns a signed token.
func (s *AuthService) GenerateToken(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   u.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: u.ID,
	})
	return token.SignedString(s.signingKey)
}

// ParseToken verifies an operator token and returns its user id.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(accessToken, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims.UserID, nil
}

func checkCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "", len(username) > maxUsernameLength, strings.ContainsAny(username, " \t\r\n"):
		return "", fmt.Errorf("%w: username must be 1-%d characters without spaces", ErrInvalidCredentials, maxUsernameLength)
	case strings.TrimSpace(password) == "":
		return "", fmt.Errorf("%w: password is empty", ErrInvalidCredentials)
	}
	return username, nil
}
