package render

import (
	"github.com/gofiber/fiber/v2"
)

func sendHTML(ctx *fiber.Ctx, status int, templateName string, vars fiber.Map) error {
	body, err := RenderHTML(templateName, vars)
	if err != nil {
		return err
	}
	ctx.Set("Content-Type", "text/html; charset=utf-8")
	return ctx.Status(status).SendString(body)
}

func RenderInternalServerError(ctx *fiber.Ctx) error {
	return sendHTML(ctx, fiber.StatusInternalServerError, "error-internal", nil)
}

func RenderNotFoundError(ctx *fiber.Ctx) error {
	return sendHTML(ctx, fiber.StatusNotFound, "error-not-found", nil)
}

func RenderForbiddenError(ctx *fiber.Ctx) error {
	return sendHTML(ctx, fiber.StatusForbidden, "error-forbidden", nil)
}

func RenderBadRequestError(ctx *fiber.Ctx) error {
	return sendHTML(ctx, fiber.StatusBadRequest, "error-bad-request", nil)
}

func RenderIndexPage(ctx *fiber.Ctx, data IndexPageData) error {
	return sendHTML(ctx, fiber.StatusOK, "index", fiber.Map{
		"email":    data.Email,
		"errorMsg": data.ErrorMsg,
	})
}

func RenderHomePage(ctx *fiber.Ctx, data HomePageData) error {
	return sendHTML(ctx, fiber.StatusOK, "home", fiber.Map{
		"email":      data.Email,
		"isAdmin":    data.IsAdmin,
		"categories": data.Categories,
	})
}

func RenderLibraryPage(ctx *fiber.Ctx, data LibraryPageData) error {
	return sendHTML(ctx, fiber.StatusOK, "library", fiber.Map{
		"category":  data.Category,
		"email":     data.Email,
		"isAdmin":   data.IsAdmin,
		"documents": data.Documents,
	})
}

// RenderVerifyResultPage renders the outcome of an email verification link
// with the given status code.
func RenderVerifyResultPage(ctx *fiber.Ctx, status int, data VerifyResultPageData) error {
	return sendHTML(ctx, status, "verify-result", fiber.Map{
		"success":         data.Success,
		"alreadyVerified": data.AlreadyVerified,
		"email":           data.Email,
		"message":         data.Message,
	})
}
