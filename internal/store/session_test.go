package store

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"chat-client/internal/models"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSessionStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewSessionStore(dir)

	sess := Session{
		User:  models.User{ID: "u1", Username: "alice", DisplayName: "Alice"},
		Token: "tok-123",
	}
	require.NoError(t, s.Set(sess))
	require.Equal(t, "tok-123", s.Token())

	restored := NewSessionStore(dir)
	loaded, err := restored.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, sess.User, loaded.User)
	require.Equal(t, sess.Token, loaded.Token)
}

func TestSessionStoreLoadMissing(t *testing.T) {
	s := NewSessionStore(t.TempDir())
	loaded, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)
	require.Empty(t, s.Token())
}

func TestSessionStoreClear(t *testing.T) {
	dir := t.TempDir()
	s := NewSessionStore(dir)
	require.NoError(t, s.Set(Session{User: models.User{ID: "u1"}, Token: "tok"}))

	require.NoError(t, s.Clear())
	require.Nil(t, s.Current())

	loaded, err := NewSessionStore(dir).Load()
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	live := Session{Token: signedToken(t, now.Add(time.Hour))}
	require.False(t, live.TokenExpired(now))

	dead := Session{Token: signedToken(t, now.Add(-time.Hour))}
	require.True(t, dead.TokenExpired(now))

	// Opaque tokens are left for the server to judge.
	opaque := Session{Token: "not-a-jwt"}
	require.False(t, opaque.TokenExpired(now))
}
