package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/docportal/internal/middlewares/sessions"
	"github.com/khanghh/docportal/model"
	"github.com/khanghh/docportal/params"
)

const identityContextKey = "identity"

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type apiErrorResponse struct {
	APIVersion string   `json:"apiVersion"`
	Error      apiError `json:"error"`
}

// RequireAuth admits requests whose session carries an identity. Anonymous
// browser navigation is redirected to the login page, other clients get 401.
func RequireAuth() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if sess := sessions.Get(ctx); sess != nil {
			if ident, ok := sess.Identity(); ok {
				ctx.Locals(identityContextKey, ident)
				return ctx.Next()
			}
		}
		if prefersHTML(ctx) {
			return ctx.Redirect("/")
		}
		return ctx.Status(fiber.StatusUnauthorized).JSON(apiErrorResponse{
			APIVersion: params.APIVersion,
			Error: apiError{
				Code:    fiber.StatusUnauthorized,
				Message: "Authentication required. Please log in.",
			},
		})
	}
}

// GetIdentity returns the identity attached by RequireAuth.
func GetIdentity(ctx *fiber.Ctx) (model.Identity, bool) {
	ident, ok := ctx.Locals(identityContextKey).(model.Identity)
	return ident, ok
}

func prefersHTML(ctx *fiber.Ctx) bool {
	if ctx.Get(fiber.HeaderAccept) == "" {
		return false
	}
	return ctx.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMETextHTML
}
