package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/docportal/internal/audit"
)

func InjectGlobalVars(vars fiber.Map) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for key, val := range vars {
			c.Locals(key, val)
		}
		return c.Next()
	}
}

// ClientInfo makes the client ip and user agent available to the activity
// recorder through the request context.
func ClientInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(audit.WithClientInfo(c.UserContext(), c.IP(), c.Get(fiber.HeaderUserAgent)))
		return c.Next()
	}
}
