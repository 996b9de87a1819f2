package security

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	v := NewTokenVerifier("secret", "vocabclash")

	token, err := v.Issue(42, time.Hour, time.Now())
	require.NoError(t, err)

	userID, err := v.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenRejected(t *testing.T) {
	v := NewTokenVerifier("secret", "vocabclash")

	expired, err := v.Issue(42, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	otherKey, err := NewTokenVerifier("other", "vocabclash").Issue(42, time.Hour, time.Now())
	require.NoError(t, err)
	otherIssuer, err := NewTokenVerifier("secret", "elsewhere").Issue(42, time.Hour, time.Now())
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "vocabclash",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "42",
		Issuer:  "vocabclash",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong key", otherKey},
		{"wrong issuer", otherIssuer},
		{"missing subject", noSubject},
		{"missing expiry", noExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("user:1"), "request %d", i)
	}
	assert.False(t, rl.Allow("user:1"))
	assert.True(t, rl.Allow("user:2"))
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	rl.visitor("old", time.Now().Add(-3*time.Minute))
	rl.visitor("new", time.Now())
	rl.prune(time.Now())

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "old")
	assert.Contains(t, rl.visitors, "new")
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1:5555", GetClientIP(r))

	r.Header.Set("X-Real-IP", "192.0.2.7")
	assert.Equal(t, "192.0.2.7", GetClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")
	assert.Equal(t, "203.0.113.9", GetClientIP(r))
}
