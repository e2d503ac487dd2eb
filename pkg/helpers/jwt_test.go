package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_IssueAndParse(t *testing.T) {
	m := NewJWTManager("s3cret")

	tok, exp, err := m.Issue("user-1", "a@b.com", "A")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "A", claims.Name)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, 24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestJWTManager_MissingSecret(t *testing.T) {
	m := NewJWTManager("")
	assert.False(t, m.Configured())

	_, _, err := m.Issue("user-1", "a@b.com", "")
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = m.Parse("anything")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	tok, _, err := NewJWTManager("one").Issue("user-1", "a@b.com", "")
	require.NoError(t, err)

	_, err = NewJWTManager("two").Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("s3cret")
	issuedAt := time.Now().Add(-25 * time.Hour)
	m.now = func() time.Time { return issuedAt }
	tok, _, err := m.Issue("user-1", "a@b.com", "")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_NameOmittedWhenEmpty(t *testing.T) {
	m := NewJWTManager("s3cret")
	tok, _, err := m.Issue("user-1", "a@b.com", "")
	require.NoError(t, err)

	mc := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, mc)
	require.NoError(t, err)
	assert.Equal(t, "user-1", mc["userId"])
	assert.Equal(t, "a@b.com", mc["email"])
	_, hasName := mc["name"]
	assert.False(t, hasName)
}
