package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/member-registry/pkg/util"
)

// RequireAuthenticated denies any request the gate left without a principal.
// The error middleware renders the denial as the fixed 401 envelope.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return util.NewAuthenticationRequired()
		}
		return c.Next()
	}
}
