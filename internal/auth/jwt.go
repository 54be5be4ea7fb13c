package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in token claims
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Claims identifies the caller of a request
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the caller may moderate content
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// JWTService issues and validates HS256 tokens
type JWTService struct {
	secretKey []byte
	tokenTTL  time.Duration
	issuer    string
	now       func() time.Time
}

// NewJWTService creates a new JWTService
func NewJWTService(secretKey string, tokenTTL time.Duration, issuer string) (*JWTService, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if tokenTTL <= 0 {
		return nil, fmt.Errorf("JWT token TTL must be positive")
	}
	return &JWTService{
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
		issuer:    issuer,
		now:       time.Now,
	}, nil
}

// GenerateToken issues a token for userID with the given role
func (s *JWTService) GenerateToken(userID, role string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id cannot be empty")
	}
	now := s.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken parses tokenString and returns its claims if it is valid
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user id")
	}
	return claims, nil
}
