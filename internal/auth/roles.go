package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// RequireAgent ensures the identified caller is a support agent.
func RequireAgent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("caller identity required")
		}
		if !principal.User.IsAgent() {
			return apperrors.NewForbidden("agent role required")
		}
		return c.Next()
	}
}
