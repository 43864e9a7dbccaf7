package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/member-registry/internal/domain"
)

// Token lifetimes are fixed properties of the issuer, not configuration.
const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// typeHeader is the JWT header field carrying the access/refresh marker. It
// lives in the header so classification needs only a verified signature, never
// claim-content heuristics.
const typeHeader = "typ"

var (
	ErrEmptySubject     = errors.New("token subject must not be empty")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpiredToken     = errors.New("token expired")
	ErrWrongTokenType   = errors.New("wrong token type")
)

// Claims is the verified payload of a token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// TokenManager issues and validates signed access and refresh tokens.
type TokenManager struct {
	key []byte
	now func() time.Time
}

// NewTokenManager builds a manager around the process signing key.
func NewTokenManager(key SigningKey) *TokenManager {
	return &TokenManager{key: key, now: time.Now}
}

// IssueAccessToken signs a short-lived token for protected-resource access.
func (tm *TokenManager) IssueAccessToken(subject string, extraClaims map[string]any) (string, error) {
	return tm.issue(subject, domain.TokenTypeAccess, AccessTokenTTL, extraClaims)
}

// IssueRefreshToken signs a long-lived token valid only for obtaining new
// access tokens.
func (tm *TokenManager) IssueRefreshToken(subject string, extraClaims map[string]any) (string, error) {
	return tm.issue(subject, domain.TokenTypeRefresh, RefreshTokenTTL, extraClaims)
}

func (tm *TokenManager) issue(subject string, tokenType domain.TokenType, ttl time.Duration, extraClaims map[string]any) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := tm.now()
	claims := jwt.MapClaims{}
	for k, v := range extraClaims {
		claims[k] = v
	}
	// Reserved claims always win over caller-supplied extras.
	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header[typeHeader] = string(tokenType)

	return token.SignedString([]byte(tm.key))
}

// ParseAndVerify checks signature, structure, and freshness, failing with one
// of ErrMalformedToken, ErrInvalidSignature, or ErrExpiredToken. No claim data
// is returned on any failure.
func (tm *TokenManager) ParseAndVerify(tokenStr string) (*Claims, error) {
	_, mapClaims, err := tm.parseSigned(tokenStr)
	if err != nil {
		return nil, err
	}
	claims, err := tm.toClaims(mapClaims)
	if err != nil {
		return nil, err
	}
	if !tm.now().Before(claims.ExpiresAt) {
		return nil, ErrExpiredToken
	}
	return claims, nil
}

// ExtractSubject returns the subject of a signature-verified token. Expiry is
// deliberately not enforced here; the caller decides what staleness means.
func (tm *TokenManager) ExtractSubject(tokenStr string) (string, error) {
	_, mapClaims, err := tm.parseSigned(tokenStr)
	if err != nil {
		return "", err
	}
	claims, err := tm.toClaims(mapClaims)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractExpiration returns the expiry timestamp of a signature-verified token.
func (tm *TokenManager) ExtractExpiration(tokenStr string) (time.Time, error) {
	_, mapClaims, err := tm.parseSigned(tokenStr)
	if err != nil {
		return time.Time{}, err
	}
	claims, err := tm.toClaims(mapClaims)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt, nil
}

// IsExpired compares the token expiry against the clock at call time. A token
// that was fresh a moment ago can legitimately flip to expired between calls.
func (tm *TokenManager) IsExpired(tokenStr string) (bool, error) {
	expiresAt, err := tm.ExtractExpiration(tokenStr)
	if err != nil {
		return false, err
	}
	return !tm.now().Before(expiresAt), nil
}

// ValidateForSubject reports whether the token belongs to the given subject
// and has not expired.
func (tm *TokenManager) ValidateForSubject(tokenStr, subject string) bool {
	tokenSubject, err := tm.ExtractSubject(tokenStr)
	if err != nil {
		return false
	}
	expired, err := tm.IsExpired(tokenStr)
	if err != nil {
		return false
	}
	return tokenSubject == subject && !expired
}

// Classify reads the access/refresh marker from the verified token header.
func (tm *TokenManager) Classify(tokenStr string) (domain.TokenType, error) {
	token, _, err := tm.parseSigned(tokenStr)
	if err != nil {
		return "", err
	}
	marker, _ := token.Header[typeHeader].(string)
	switch domain.TokenType(marker) {
	case domain.TokenTypeAccess:
		return domain.TokenTypeAccess, nil
	case domain.TokenTypeRefresh:
		return domain.TokenTypeRefresh, nil
	default:
		return "", ErrWrongTokenType
	}
}

// parseSigned verifies structure and signature only. Claim validation is
// skipped so expiry stays a live per-call comparison owned by this package.
func (tm *TokenManager) parseSigned(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	mapClaims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, mapClaims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSignature
		}
		return []byte(tm.key), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, nil, classifyParseError(err)
	}
	return token, mapClaims, nil
}

func (tm *TokenManager) toClaims(mapClaims jwt.MapClaims) (*Claims, error) {
	subject, err := mapClaims.GetSubject()
	if err != nil {
		return nil, ErrMalformedToken
	}
	issuedAt, err := mapClaims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return nil, ErrMalformedToken
	}
	expiresAt, err := mapClaims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, ErrMalformedToken
	}

	extra := make(map[string]any)
	for k, v := range mapClaims {
		switch k {
		case "sub", "iat", "exp":
		default:
			extra[k] = v
		}
	}

	return &Claims{
		Subject:   subject,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
		Extra:     extra,
	}, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	default:
		return ErrInvalidSignature
	}
}
