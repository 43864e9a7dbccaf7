package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/member-registry/internal/domain"
	"github.com/spec-kit/member-registry/internal/observability"
	"github.com/spec-kit/member-registry/internal/repository"
)

const principalKey = "auth_principal"

// Rejection reasons recorded when a request stays unauthenticated.
const (
	rejectNoToken           = "no_token"
	rejectBadToken          = "bad_token"
	rejectPrincipalNotFound = "principal_not_found"
	rejectPrincipalDisabled = "principal_disabled"
	rejectInvalidForSubject = "invalid_for_subject"
	rejectRefreshToken      = "refresh_token"
)

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
}

// AuthMiddleware is the per-request authentication gate. It binds a principal
// when the bearer token checks out and otherwise lets the request continue
// unauthenticated; a later authorization stage decides whether that is fatal.
type AuthMiddleware struct {
	tokens  *TokenManager
	users   repository.UserRepository
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAuthMiddleware constructs the gate.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, logger *zap.Logger, metrics *observability.Metrics) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, logger: logger, metrics: metrics}
}

// Handle runs the authentication check once per request. Every failure path
// fails closed: the request proceeds with no principal bound.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return m.pass(c, rejectNoToken)
	}

	subject, err := m.tokens.ExtractSubject(tokenStr)
	if err != nil {
		return m.pass(c, rejectBadToken)
	}

	// The principal lookup is the only external call on this path; any
	// error there resolves to unauthenticated, never to a crash.
	user, err := m.users.GetByEmail(c.Context(), subject)
	if err != nil {
		return m.pass(c, rejectPrincipalNotFound)
	}
	// Disabled accounts are deliberately indistinguishable from unknown ones.
	if !user.Enabled {
		return m.pass(c, rejectPrincipalDisabled)
	}

	if !m.tokens.ValidateForSubject(tokenStr, user.Email) {
		return m.pass(c, rejectInvalidForSubject)
	}

	tokenType, err := m.tokens.Classify(tokenStr)
	if err != nil || tokenType == domain.TokenTypeRefresh {
		return m.pass(c, rejectRefreshToken)
	}

	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

func (m *AuthMiddleware) pass(c *fiber.Ctx, reason string) error {
	if m.metrics != nil {
		m.metrics.RecordAuthReject(reason)
	}
	if reason != rejectNoToken && m.logger != nil {
		m.logger.Debug("request stays unauthenticated",
			zap.String("path", c.Path()),
			zap.String("reason", reason),
		)
	}
	return c.Next()
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
