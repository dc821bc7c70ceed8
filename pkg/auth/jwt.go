package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/yourusername/assessment-api/internal/domain/entity"
)

// JWTCustomClaims holds the user fields carried in the token.
type JWTCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies access tokens with a single HMAC secret.
type JWTService struct {
	secret        []byte
	expirationHrs int
}

// NewJWTService creates a new JWT service.
func NewJWTService(secret string, expirationHrs int) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is required")
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	return &JWTService{
		secret:        []byte(secret),
		expirationHrs: expirationHrs,
	}, nil
}

// GenerateToken creates a signed access token for the user.
func (s *JWTService) GenerateToken(user *entity.User) (string, error) {
	now := time.Now()
	claims := &JWTCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour * time.Duration(s.expirationHrs))),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "assessment-api",
			Subject:   fmt.Sprintf("%d", user.ID),
			Audience:  jwt.ClaimStrings{"assessment-user"},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		log.Printf("[JWT] Failed to sign token for user ID=%d: %v", user.ID, err)
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies the signature and expiry of an access token.
func (s *JWTService) ParseToken(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, errors.New("token is malformed")
			case ve.Errors&jwt.ValidationErrorExpired != 0:
				return nil, errors.New("token is expired")
			case ve.Errors&jwt.ValidationErrorNotValidYet != 0:
				return nil, errors.New("token not valid yet")
			case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				return nil, errors.New("signature is invalid")
			default:
				log.Printf("[JWT] Token validation failed: %v", err)
				return nil, errors.New("token validation failed")
			}
		}
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
