package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/mikoro-portal/internal/models"
	"github.com/noah-isme/mikoro-portal/internal/utils"
)

// SessionRole returns the role loaded by the session middleware, or false
// when the request is anonymous.
func SessionRole(c *fiber.Ctx) (models.Role, bool) {
	value, _ := c.Locals("user_role").(string)
	return models.ParseRole(value)
}

// RequireRole ensures that the signed-in principal possesses one of the allowed
// roles. Requests without a session are rejected with 401, other roles with 403.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		if parsed, ok := models.ParseRole(string(role)); ok {
			allowed[parsed] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role, ok := SessionRole(c)
		if !ok {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		if _, permitted := allowed[role]; !permitted {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", fiber.Map{"role": role})
		}
		return c.Next()
	}
}
