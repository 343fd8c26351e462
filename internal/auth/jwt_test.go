package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTokenService(t *testing.T, secret string, clock *fakeClock) *TokenService {
	t.Helper()
	s, err := NewTokenService(secret, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	return s
}

func TestTokenService_RoundTrip(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := newTokenService(t, "secret", clock)

	token, err := s.Issue("user-1")
	require.NoError(t, err)

	userID, err := s.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestTokenService_Expiry(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := newTokenService(t, "secret", clock)

	token, err := s.Issue("user-1")
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour - time.Second)
	_, err = s.Validate(token)
	require.NoError(t, err, "still valid just before expiry")

	clock.t = clock.t.Add(2 * time.Second)
	_, err = s.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_TamperedPayload(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Now()}
	s := newTokenService(t, "secret", clock)

	token, err := s.Issue("user-1")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), "user-1", "user-2", 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	_, err = s.Validate(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// flipping the first character of the signature fails too
	sig := []byte(token)
	i := strings.LastIndex(token, ".") + 1
	if sig[i] == 'A' {
		sig[i] = 'B'
	} else {
		sig[i] = 'A'
	}
	_, err = s.Validate(string(sig))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_SignatureCheckedBeforeExpiry(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	other := newTokenService(t, "other-secret", clock)
	s := newTokenService(t, "secret", clock)

	token, err := other.Issue("user-1")
	require.NoError(t, err)

	clock.t = clock.t.Add(48 * time.Hour)
	_, err = s.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid, "a forged expired token must not be reported as expired")
}

func TestTokenService_RejectsGarbageAndOtherAlgorithms(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Now()}
	s := newTokenService(t, "secret", clock)

	_, err := s.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = s.Validate("")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Validate(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := hs512.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.Validate(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_RequiresExpiry(t *testing.T) {
	t.Parallel()
	s, err := NewTokenService("secret", time.Hour)
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: issuer, Subject: "user-1"})
	signed, err := noExp.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = s.Validate(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewTokenService_Errors(t *testing.T) {
	t.Parallel()
	_, err := NewTokenService("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService("secret", 0)
	assert.Error(t, err)
}
