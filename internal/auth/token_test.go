package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/member-registry/internal/domain"
)

func newTestTokenManager(t *testing.T) *TokenManager {
	t.Helper()
	key, err := GenerateSigningKey()
	require.NoError(t, err)
	return NewTokenManager(key)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestIssueAccessTokenLifetime(t *testing.T) {
	tm := newTestTokenManager(t)
	tm.now = fixedClock(time.Unix(1700000000, 0))

	token, err := tm.IssueAccessToken("john@doe.com", nil)
	require.NoError(t, err)

	claims, err := tm.ParseAndVerify(token)
	require.NoError(t, err)
	require.Equal(t, AccessTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestIssueRefreshTokenLifetime(t *testing.T) {
	tm := newTestTokenManager(t)
	tm.now = fixedClock(time.Unix(1700000000, 0))

	token, err := tm.IssueRefreshToken("john@doe.com", nil)
	require.NoError(t, err)

	claims, err := tm.ParseAndVerify(token)
	require.NoError(t, err)
	require.Equal(t, RefreshTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestSubjectRoundTrip(t *testing.T) {
	tm := newTestTokenManager(t)

	for _, subject := range []string{"john@doe.com", "a", "jane.doe+tag@example.org"} {
		token, err := tm.IssueAccessToken(subject, nil)
		require.NoError(t, err)

		got, err := tm.ExtractSubject(token)
		require.NoError(t, err)
		require.Equal(t, subject, got)
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	tm := newTestTokenManager(t)

	_, err := tm.IssueAccessToken("", nil)
	require.ErrorIs(t, err, ErrEmptySubject)

	_, err = tm.IssueRefreshToken("", nil)
	require.ErrorIs(t, err, ErrEmptySubject)
}

func TestExtraClaimsCarried(t *testing.T) {
	tm := newTestTokenManager(t)

	token, err := tm.IssueAccessToken("john@doe.com", map[string]any{"tenant": "acme"})
	require.NoError(t, err)

	claims, err := tm.ParseAndVerify(token)
	require.NoError(t, err)
	require.Equal(t, "acme", claims.Extra["tenant"])
}

func TestExtraClaimsCannotOverrideReserved(t *testing.T) {
	tm := newTestTokenManager(t)

	token, err := tm.IssueAccessToken("john@doe.com", map[string]any{"sub": "mallory@evil.com"})
	require.NoError(t, err)

	subject, err := tm.ExtractSubject(token)
	require.NoError(t, err)
	require.Equal(t, "john@doe.com", subject)
}

func TestSignatureTamperSensitivity(t *testing.T) {
	tm := newTestTokenManager(t)

	token, err := tm.IssueAccessToken("john@doe.com", nil)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	signature := parts[2]
	for i := range signature {
		tampered := parts[0] + "." + parts[1] + "." + flipChar(signature, i)

		claims, err := tm.ParseAndVerify(tampered)
		require.Error(t, err, "byte %d", i)
		require.Nil(t, claims)
	}
}

func TestVerificationRejectsForeignKey(t *testing.T) {
	issuer := newTestTokenManager(t)
	verifier := newTestTokenManager(t)

	token, err := issuer.IssueAccessToken("john@doe.com", nil)
	require.NoError(t, err)

	_, err = verifier.ParseAndVerify(token)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestMalformedToken(t *testing.T) {
	tm := newTestTokenManager(t)

	for _, tokenStr := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := tm.ParseAndVerify(tokenStr)
		require.ErrorIs(t, err, ErrMalformedToken, "input %q", tokenStr)
	}
}

func TestExpiryBoundary(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0)
	tm := newTestTokenManager(t)
	tm.now = fixedClock(issuedAt)

	token, err := tm.IssueAccessToken("john@doe.com", nil)
	require.NoError(t, err)

	// One second before expiry the token is still fresh.
	tm.now = fixedClock(issuedAt.Add(AccessTokenTTL - time.Second))
	expired, err := tm.IsExpired(token)
	require.NoError(t, err)
	require.False(t, expired)

	_, err = tm.ParseAndVerify(token)
	require.NoError(t, err)

	// At the exact expiry instant the token is already expired.
	tm.now = fixedClock(issuedAt.Add(AccessTokenTTL))
	expired, err = tm.IsExpired(token)
	require.NoError(t, err)
	require.True(t, expired)

	_, err = tm.ParseAndVerify(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestExpiryIsLivePerCall(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0)
	tm := newTestTokenManager(t)
	tm.now = fixedClock(issuedAt)

	token, err := tm.IssueAccessToken("john@doe.com", nil)
	require.NoError(t, err)

	expired, err := tm.IsExpired(token)
	require.NoError(t, err)
	require.False(t, expired)

	// The same token flips expired once the clock passes the boundary.
	tm.now = fixedClock(issuedAt.Add(AccessTokenTTL + time.Second))
	expired, err = tm.IsExpired(token)
	require.NoError(t, err)
	require.True(t, expired)
}

func TestClassify(t *testing.T) {
	tm := newTestTokenManager(t)

	access, err := tm.IssueAccessToken("john@doe.com", nil)
	require.NoError(t, err)
	refresh, err := tm.IssueRefreshToken("john@doe.com", nil)
	require.NoError(t, err)

	accessType, err := tm.Classify(access)
	require.NoError(t, err)
	require.Equal(t, domain.TokenTypeAccess, accessType)

	refreshType, err := tm.Classify(refresh)
	require.NoError(t, err)
	require.Equal(t, domain.TokenTypeRefresh, refreshType)
}

func TestClassifyRejectsMissingTypeMarker(t *testing.T) {
	tm := newTestTokenManager(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "john@doe.com",
		"iat": jwt.NewNumericDate(time.Now()),
		"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(tm.key)
	require.NoError(t, err)

	_, err = tm.Classify(signed)
	require.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateForSubject(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0)
	tm := newTestTokenManager(t)
	tm.now = fixedClock(issuedAt)

	token, err := tm.IssueAccessToken("john@doe.com", nil)
	require.NoError(t, err)

	require.True(t, tm.ValidateForSubject(token, "john@doe.com"))
	require.False(t, tm.ValidateForSubject(token, "jane@doe.com"))

	tm.now = fixedClock(issuedAt.Add(AccessTokenTTL))
	require.False(t, tm.ValidateForSubject(token, "john@doe.com"))
}

func TestExtractExpiration(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0)
	tm := newTestTokenManager(t)
	tm.now = fixedClock(issuedAt)

	token, err := tm.IssueAccessToken("john@doe.com", nil)
	require.NoError(t, err)

	expiresAt, err := tm.ExtractExpiration(token)
	require.NoError(t, err)
	require.True(t, expiresAt.Equal(issuedAt.Add(AccessTokenTTL)))
}

// flipChar swaps the base64url character at i for one differing in the top
// bit of its 6-bit group, so the decoded bytes always change even at the
// final character where low bits may be discarded.
func flipChar(s string, i int) string {
	c := s[i]
	replacement := byte('A') // value 0
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'f') {
		replacement = 'g' // value 32
	}
	return s[:i] + string(replacement) + s[i+1:]
}
