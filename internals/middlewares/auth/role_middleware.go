package auth

import (
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/constants"
	"letrus_backend/internals/helpers/apperror"
	helperAuth "letrus_backend/internals/helpers/auth"
)

// OnlyRoles lets the request through when the session role is one of roles.
func OnlyRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	msg := constants.RoleError(roles...)
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		if _, ok := allowed[helperAuth.GetRole(c)]; !ok {
			return apperror.ErrForbidden.With("%s", msg)
		}
		return c.Next()
	}
}
