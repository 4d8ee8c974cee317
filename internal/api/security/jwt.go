package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const UserIDClaim = "user_id"

func NewTokenAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// GenerateToken signs a bearer token carrying the user id.
func GenerateToken(auth *jwtauth.JWTAuth, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		UserIDClaim: userID.String(),
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	_, tokenString, err := auth.Encode(claims)
	return tokenString, err
}

func GetUserIDFromClaims(claims map[string]interface{}) (uuid.UUID, error) {
	raw, ok := claims[UserIDClaim].(string)
	if !ok {
		return uuid.Nil, errors.New("user_id claim is missing or not a string")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user_id claim is not a uuid: %w", err)
	}
	return id, nil
}
