package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskdesk/taskdesk-api/internal/constants"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies HS256 bearer tokens for non-browser API
// clients. Browser clients use the session cookie instead.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a new TokenService.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue generates a signed token for a user.
func (s *TokenService) Issue(userID uint64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
		"exp": time.Now().Add(time.Hour * 24 * constants.TokenLifetimeDays).Unix(),
		"iat": time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify parses a token and returns the user ID it was issued to.
func (s *TokenService) Verify(tokenString string) (uint64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrInvalidToken
	}

	var userID uint64
	if _, err := fmt.Sscanf(sub, "%d", &userID); err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}

	return userID, nil
}
