package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenVerifierRoundTrip(t *testing.T) {
	v := NewTokenVerifier(testSecret, "https://auth.atelier.test")
	userID := uuid.New()

	token, err := v.Issue(userID, "camille@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, "camille@example.com", claims.Email)
}

func TestTokenVerifierRejects(t *testing.T) {
	v := NewTokenVerifier(testSecret, "")
	userID := uuid.New()

	expired, err := v.Issue(userID, "", -time.Hour)
	require.NoError(t, err)

	other, err := NewTokenVerifier("another-secret-another-secret-xx", "").Issue(userID, "", time.Hour)
	require.NoError(t, err)

	wrongIssuer, err := NewTokenVerifier(testSecret, "someone-else").Issue(userID, "", time.Hour)
	require.NoError(t, err)

	notUUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user:42", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"other secret": other,
		"not a uuid":   notUUID,
		"alg none":     unsigned,
		"garbage":      "not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = NewTokenVerifier(testSecret, "https://auth.atelier.test").Verify(wrongIssuer)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = NewTokenVerifier("", "").Verify(expired)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", ExtractTokenFromHeader("bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer"))
}

func TestAdminAuthenticator(t *testing.T) {
	plain := NewAdminAuthenticator("admin-token-for-tests-1234", "")
	assert.True(t, plain.Enabled())
	assert.NoError(t, plain.Verify("admin-token-for-tests-1234"))
	assert.ErrorIs(t, plain.Verify("admin-token-for-tests-12345"), ErrInvalidAdminToken)
	assert.ErrorIs(t, plain.Verify(""), ErrInvalidAdminToken)

	hash, err := HashAdminToken("hashed-admin-token-for-tests", bcrypt.MinCost)
	require.NoError(t, err)
	hashed := NewAdminAuthenticator("ignored-when-hash-is-set", hash)
	assert.NoError(t, hashed.Verify("hashed-admin-token-for-tests"))
	assert.ErrorIs(t, hashed.Verify("ignored-when-hash-is-set"), ErrInvalidAdminToken)

	disabled := NewAdminAuthenticator("", "")
	assert.False(t, disabled.Enabled())
	assert.ErrorIs(t, disabled.Verify("anything"), ErrInvalidAdminToken)

	_, err = HashAdminToken("short", bcrypt.MinCost)
	assert.Error(t, err)
}
