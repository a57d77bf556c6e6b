package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

func newTestAuth() *Auth {
	return New(Config{
		Username:           "operator",
		Password:           "correct-horse-battery-staple",
		JWTSecret:          "0123456789abcdef0123456789abcdef",
		TokenTTL:           time.Hour,
		MaxLoginAttempts:   3,
		LoginWindowSeconds: 60,
	})
}

func TestAuthenticateIssuesValidToken(t *testing.T) {
	is := is.New(t)
	a := newTestAuth()

	token, err := a.Authenticate("operator", "correct-horse-battery-staple", "10.0.0.1:5000")
	is.NoErr(err)

	claims, err := a.ValidateToken(token)
	is.NoErr(err)
	is.Equal(claims.Sub, "operator")
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	is := is.New(t)
	a := newTestAuth()

	_, err := a.Authenticate("operator", "wrong", "10.0.0.1:5000")
	is.Equal(err, ErrInvalidCredentials)

	_, err = a.Authenticate("not-operator", "correct-horse-battery-staple", "10.0.0.1:5000")
	is.Equal(err, ErrInvalidCredentials)
}

func TestAuthenticateRateLimitsAfterRepeatedFailures(t *testing.T) {
	is := is.New(t)
	a := newTestAuth()

	for i := 0; i < 3; i++ {
		_, err := a.Authenticate("operator", "wrong", "10.0.0.2:5000")
		is.Equal(err, ErrInvalidCredentials)
	}

	_, err := a.Authenticate("operator", "correct-horse-battery-staple", "10.0.0.2:5000")
	is.Equal(err, ErrRateLimited)
	is.True(a.RemainingLockout("10.0.0.2:5000") > 0)

	// a different address is unaffected
	_, err = a.Authenticate("operator", "correct-horse-battery-staple", "10.0.0.3:5000")
	is.NoErr(err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	is := is.New(t)
	a := newTestAuth()

	token, err := a.CreateToken("operator")
	is.NoErr(err)

	parts := strings.Split(token, ".")
	is.Equal(len(parts), 3)

	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	_, err = a.ValidateToken(tampered)
	is.True(err != nil)

	_, err = a.ValidateToken("not-even-a-token")
	is.True(err != nil)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	is := is.New(t)
	a := newTestAuth()
	other := New(Config{
		Username:  "operator",
		Password:  "correct-horse-battery-staple",
		JWTSecret: "a-completely-different-signing-key!!",
	})

	token, err := other.CreateToken("operator")
	is.NoErr(err)

	_, err = a.ValidateToken(token)
	is.Equal(err, ErrInvalidToken)
}
