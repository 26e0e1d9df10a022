package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "parrot"

// UserClaims identifies the caller whose memories a request operates on.
type UserClaims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Name returns the username claim, falling back to the subject.
func (c *UserClaims) Name() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Subject
}

type JWTManager struct {
	accessSecret []byte
}

func NewJWTManager(accessSecret string) *JWTManager {
	return &JWTManager{accessSecret: []byte(accessSecret)}
}

// Generate signs an HS256 access token for username valid for expiry.
func (m *JWTManager) Generate(username string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := UserClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) Validate(tokenStr string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &UserClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.accessSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}
	if claims.Name() == "" {
		return nil, fmt.Errorf("access token has no username")
	}

	return claims, nil
}
