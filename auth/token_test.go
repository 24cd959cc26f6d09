package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func Test_Issue_And_Validate_Round_Trip(t *testing.T) {
	req := require.New(t)
	validator := NewValidator("super-secret", "courier", time.Hour)

	token, err := validator.Issue("alice")
	req.NoError(err)
	req.NotEmpty(token)

	userID, err := validator.Validate(token)
	req.NoError(err)
	req.Equal("alice", userID)
}

func Test_Validate_Rejects_Wrong_Secret(t *testing.T) {
	req := require.New(t)
	issuer := NewValidator("super-secret", "courier", time.Hour)
	validator := NewValidator("another-secret", "courier", time.Hour)

	token, err := issuer.Issue("alice")
	req.NoError(err)

	_, err = validator.Validate(token)
	req.ErrorIs(err, jwt.ErrSignatureInvalid)
}

func Test_Validate_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)
	validator := NewValidator("super-secret", "courier", -time.Minute)

	token, err := validator.Issue("alice")
	req.NoError(err)

	_, err = validator.Validate(token)
	req.ErrorIs(err, jwt.ErrTokenExpired)
}

func Test_Validate_Rejects_Garbage(t *testing.T) {
	req := require.New(t)
	validator := NewValidator("super-secret", "courier", time.Hour)

	_, err := validator.Validate("not-a-token")
	req.Error(err)
}
