package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/member-registry/internal/api/dto"
	"github.com/spec-kit/member-registry/internal/service"
	"github.com/spec-kit/member-registry/pkg/util"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, logger: logger}
}

// Token handles POST /auth/token. Login failures always read as the same
// plain-text rejection; the body never says which part of the credential
// pair was wrong.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.AuthRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	pair, err := h.auth.Authenticate(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			h.logger.Warn("authentication failed", zap.String("username", req.Username))
			return c.Status(http.StatusUnauthorized).SendString("Bad Credentials")
		}
		return err
	}

	return c.JSON(pair)
}
