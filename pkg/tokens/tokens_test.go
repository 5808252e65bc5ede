package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService([]byte("test-jwt-secret"), 30*time.Minute, 7*24*time.Hour)
}

func TestService_AccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService()

	token, err := svc.NewAccessToken("a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Decode(token, TypeAccess)
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", claims.Subject)
	assert.Equal(t, TypeAccess, claims.Type)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestService_RefreshToken_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService()

	token, err := svc.NewRefreshToken("a@b.com")
	require.NoError(t, err)

	claims, err := svc.Decode(token, TypeRefresh)
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", claims.Subject)
	assert.Equal(t, TypeRefresh, claims.Type)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestService_Decode_WrongTokenType(t *testing.T) {
	t.Parallel()

	svc := newTestService()

	access, err := svc.NewAccessToken("a@b.com")
	require.NoError(t, err)
	refresh, err := svc.NewRefreshToken("a@b.com")
	require.NoError(t, err)

	_, err = svc.Decode(access, TypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.Decode(refresh, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestService_Decode_Expired(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("test-jwt-secret"), -time.Minute, -time.Minute)

	token, err := svc.NewAccessToken("a@b.com")
	require.NoError(t, err)

	_, err = svc.Decode(token, TypeAccess)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_Decode_BadSignatureAndGarbage(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	other := NewService([]byte("a-different-secret"), 30*time.Minute, 7*24*time.Hour)

	token, err := other.NewAccessToken("a@b.com")
	require.NoError(t, err)

	_, err = svc.Decode(token, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Decode("not-a-jwt", TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
