package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/MazenMohamed-0/product-management-api/internal/apperrors"
	"github.com/MazenMohamed-0/product-management-api/internal/models"
)

// HeaderUserRole is the header carrying the caller's role.
const HeaderUserRole = "X-User-Role"

// localsRoleKey is the Locals key under which the resolved role is stored.
const localsRoleKey = "role"

// RoleRequired is a Fiber middleware that resolves the caller's role from
// the X-User-Role header. A missing or unknown role yields 401.
func RoleRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := c.Get(HeaderUserRole)
		if role == "" {
			return apperrors.Unauthorized("Unauthorized: No role provided in X-User-Role header")
		}

		if role != models.RoleUser && role != models.RoleAdmin {
			return apperrors.Unauthorized(fmt.Sprintf(
				"Unauthorized: Invalid role '%s'. Must be one of: %s, %s",
				role, models.RoleUser, models.RoleAdmin,
			))
		}

		// Store the role in the Fiber context for subsequent handlers.
		c.Locals(localsRoleKey, role)
		return c.Next()
	}
}

// AdminOnly rejects callers whose resolved role is not admin. It must run
// after RoleRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if RoleFrom(c) != models.RoleAdmin {
			return apperrors.Forbidden("Forbidden: Insufficient permissions. Required role: admin")
		}
		return c.Next()
	}
}

// RoleFrom returns the role stored by RoleRequired, or the empty string.
func RoleFrom(c *fiber.Ctx) string {
	role, _ := c.Locals(localsRoleKey).(string)
	return role
}
