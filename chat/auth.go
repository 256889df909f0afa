package chat

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// TokenVerifier resolves the opaque bearer token presented during the
// handshake into a user identity.
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// JWTVerifier validates HMAC-signed JWTs carrying a numeric "user_id"
// claim, the tokens the REST login endpoint issues.
type JWTVerifier struct {
	Secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{Secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, ErrInvalidToken
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.Secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	// encoding/json decodes numbers as float64.
	id, ok := claims["user_id"].(float64)
	if !ok || id < 1 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
