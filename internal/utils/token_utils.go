package utils

import (
	"errors"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ActorClaims are the JWT claims describing a ledger actor.
type ActorClaims struct {
	Role     domain.Role `json:"role"`
	Approved bool        `json:"approved"`
	jwt.RegisteredClaims
}

// Actor returns the actor descriptor carried by the claims.
func (c ActorClaims) Actor() domain.Actor {
	return domain.Actor{ID: c.Subject, Role: c.Role, Approved: c.Approved}
}

// GenerateJWT signs a token for the given actor and returns it with its expiry.
func GenerateJWT(actor domain.Actor, secret string, expiryDuration time.Duration, issuer string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(expiryDuration)
	claims := ActorClaims{
		Role:     actor.Role,
		Approved: actor.Approved,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseAndValidateJWT parses a token string, validates its signature and standard claims.
func ParseAndValidateJWT(tokenString string, secretKey string) (*ActorClaims, error) {
	claims := &ActorClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" {
		return nil, errors.New("token subject missing")
	}

	return claims, nil
}
