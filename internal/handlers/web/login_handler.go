package web

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/docportal/internal/auth"
	"github.com/khanghh/docportal/internal/middlewares/sessions"
	"github.com/khanghh/docportal/internal/render"
	"github.com/khanghh/docportal/model"
)

type LoginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginData struct {
	Message  string     `json:"message"`
	UserID   uint       `json:"userId"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	Redirect string     `json:"redirect"`
}

// LoginHandler handles login, logout and the landing page.
type LoginHandler struct {
	authService AuthService
}

func mapLoginError(errorCode string) string {
	switch errorCode {
	case "session_error":
		return MsgServerError
	case "login_required":
		return MsgLoginRequired
	default:
		return ""
	}
}

func (h *LoginHandler) GetIndex(ctx *fiber.Ctx) error {
	if _, ok := sessions.Get(ctx).Identity(); ok {
		return ctx.Redirect("/home")
	}
	return render.RenderIndexPage(ctx, render.IndexPageData{
		ErrorMsg: mapLoginError(ctx.Query("error")),
	})
}

func (h *LoginHandler) PostLogin(ctx *fiber.Ctx) error {
	var form LoginForm
	if err := ctx.BodyParser(&form); err != nil {
		return sendError(ctx, fiber.StatusBadRequest, MsgInvalidRequest)
	}

	ident, err := h.authService.Login(ctx.UserContext(), form.Email, form.Password, sessions.Get(ctx))
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			return sendError(ctx, fiber.StatusBadRequest, verr.Message)
		case errors.Is(err, auth.ErrInvalidCredentials):
			return sendError(ctx, fiber.StatusUnauthorized, MsgLoginWrongCredentials)
		case errors.Is(err, auth.ErrNotVerified):
			return sendError(ctx, fiber.StatusForbidden, MsgLoginNotVerified)
		default:
			slog.Error("Login failed", "error", err)
			return sendError(ctx, fiber.StatusInternalServerError, MsgServerError)
		}
	}

	return sendData(ctx, fiber.StatusOK, LoginData{
		Message:  MsgLoginSuccess,
		UserID:   ident.UserID,
		Email:    ident.Email,
		Role:     ident.Role,
		Redirect: "/home",
	})
}

// GetLogout ends the session and returns to the landing page even when the
// session could not be destroyed cleanly.
func (h *LoginHandler) GetLogout(ctx *fiber.Ctx) error {
	errCode := ""
	if err := h.authService.Logout(ctx.UserContext(), sessions.Get(ctx)); err != nil {
		slog.Error("Logout failed", "error", err)
		ctx.ClearCookie()
		if !errors.Is(err, auth.ErrNotAuthenticated) {
			errCode = "session_error"
		}
	}
	return redirect(ctx, "/", "error", errCode)
}

func NewLoginHandler(authService AuthService) *LoginHandler {
	return &LoginHandler{
		authService: authService,
	}
}
