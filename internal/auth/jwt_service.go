package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair bundles the access and refresh tokens issued at login.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Claims are the verified fields carried in an access token.
type Claims struct {
	UserID   uint
	Username string
	IsAdmin  bool
}

// JWTService signs and verifies session tokens.
type JWTService struct {
	secret           []byte
	expiresIn        time.Duration
	refreshExpiresIn time.Duration
}

// NewJWTService creates the token service.
func NewJWTService(secret string, expiresIn, refreshExpiresIn time.Duration) (*JWTService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters long, got %d", len(secret))
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	if refreshExpiresIn <= 0 {
		refreshExpiresIn = 7 * 24 * time.Hour
	}

	return &JWTService{
		secret:           []byte(secret),
		expiresIn:        expiresIn,
		refreshExpiresIn: refreshExpiresIn,
	}, nil
}

// GenerateTokens issues a fresh access/refresh token pair.
func (s *JWTService) GenerateTokens(username string, userID uint, isAdmin bool) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.expiresIn)
	refreshExpiry := now.Add(s.refreshExpiresIn)

	accessToken, err := s.signToken(jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"is_admin": isAdmin,
		"type":     "access",
		"iat":      now.Unix(),
		"exp":      accessExpiry.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.signToken(jwt.MapClaims{
		"user_id": userID,
		"type":    "refresh",
		"iat":     now.Unix(),
		"exp":     refreshExpiry.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:        accessToken,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: refreshExpiry,
	}, nil
}

func (s *JWTService) signToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken verifies an access token and extracts its claims.
func (s *JWTService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if tokenType, _ := mapClaims["type"].(string); tokenType != "access" {
		return nil, errors.New("not an access token")
	}

	userIDValue, ok := mapClaims["user_id"].(float64)
	if !ok {
		return nil, errors.New("user_id not found in token claims")
	}

	username, ok := mapClaims["username"].(string)
	if !ok {
		return nil, errors.New("username not found in token claims")
	}

	isAdmin, _ := mapClaims["is_admin"].(bool)

	return &Claims{
		UserID:   uint(userIDValue),
		Username: username,
		IsAdmin:  isAdmin,
	}, nil
}
