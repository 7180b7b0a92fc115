package csrf

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIssuer は各種設定でIssuerが正しく生成されることを検証します。
func TestNewIssuer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		ttl         time.Duration
		expectedTTL time.Duration
	}{
		{"standard config", time.Hour, time.Hour},
		{"zero ttl uses default", 0, defaultTTL},
		{"negative ttl uses default", -time.Minute, defaultTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			iss := NewIssuer("secret", tt.ttl)

			assert.Equal(t, []byte("secret"), iss.secret)
			assert.Equal(t, tt.expectedTTL, iss.ttl)
		})
	}
}

func TestIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("test-secret", time.Hour)
	token, err := iss.Issue("session-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, iss.Verify(token, "session-1"))
}

func TestIssuer_Verify_Failures(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("test-secret", time.Hour)
	valid, err := iss.Issue("session-1")
	require.NoError(t, err)

	expiredIss := NewIssuer("test-secret", time.Minute)
	expiredIss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIss.Issue("session-1")
	require.NoError(t, err)

	otherKey, err := NewIssuer("other-secret", time.Hour).Issue("session-1")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "session-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		session string
		wantErr error
	}{
		{"empty token", "", "session-1", ErrMissingToken},
		{"garbage", "not.a.jwt", "session-1", ErrInvalidToken},
		{"expired", expired, "session-1", ErrInvalidToken},
		{"signed with another key", otherKey, "session-1", ErrInvalidToken},
		{"alg none", unsigned, "session-1", ErrInvalidToken},
		{"other session", valid, "session-2", ErrSessionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := iss.Verify(tt.token, tt.session)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIssuer_Issue_Claims(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	iss := NewIssuer("test-secret", 30*time.Minute)
	iss.now = func() time.Time { return fixed }

	token, err := iss.Issue("abc")
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return fixed }))
	require.NoError(t, err)

	assert.Equal(t, "abc", claims.Subject)
	assert.Equal(t, fixed.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixed.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
}
