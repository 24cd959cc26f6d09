// Package auth is the reference implementation of the authentication
// collaborator: it turns an upstream-issued token into a user identifier
// the registry can bind to a connection. The core itself never inspects
// tokens; an absent token simply leaves the connection anonymous.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type Validator struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
}

func NewValidator(secret, issuer string, tokenTTL time.Duration) *Validator {
	return &Validator{secret: []byte(secret), issuer: issuer, tokenTTL: tokenTTL}
}

// Issue creates a signed JWT for a specific user, using the HS256
// algorithm (HMAC with SHA256).
func (v *Validator) Issue(userID string) (string, error) {
	claims := &CustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(v.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    v.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Validate parses the token, checks signature and expiration, and
// returns the embedded user identifier.
func (v *Validator) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims.UserID, nil
	}
	return "", jwt.ErrSignatureInvalid
}
