package web

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/docportal/internal/auth"
	"github.com/khanghh/docportal/internal/render"
)

type SignupForm struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

type ResendForm struct {
	Email string `json:"email" form:"email"`
}

type SignupData struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	EmailSent bool   `json:"emailSent"`
}

type RegisterHandler struct {
	authService AuthService
}

func NewRegisterHandler(authService AuthService) *RegisterHandler {
	return &RegisterHandler{
		authService: authService,
	}
}

func (h *RegisterHandler) PostSignup(ctx *fiber.Ctx) error {
	var form SignupForm
	if err := ctx.BodyParser(&form); err != nil {
		return sendError(ctx, fiber.StatusBadRequest, MsgInvalidRequest)
	}

	result, err := h.authService.Signup(ctx.UserContext(), form.Email, form.Password, form.ConfirmPassword)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			return sendError(ctx, fiber.StatusBadRequest, verr.Message)
		case errors.Is(err, auth.ErrUserExists):
			return sendError(ctx, fiber.StatusBadRequest, MsgUserExists)
		default:
			slog.Error("Signup failed", "error", err)
			return sendError(ctx, fiber.StatusInternalServerError, MsgServerError)
		}
	}

	data := SignupData{
		Message:   MsgSignupSuccess,
		Email:     result.User.Email,
		EmailSent: result.EmailSent,
	}
	if !result.EmailSent {
		data.Message = MsgSignupEmailNotSent
	}
	return sendData(ctx, fiber.StatusCreated, data)
}

func (h *RegisterHandler) GetVerifyEmail(ctx *fiber.Ctx) error {
	result, err := h.authService.VerifyEmail(ctx.UserContext(), ctx.Query("token"))
	if err != nil {
		status, message := fiber.StatusInternalServerError, MsgServerError
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			status, message = fiber.StatusBadRequest, MsgVerifyExpiredToken
		case errors.Is(err, auth.ErrTokenInvalid):
			status, message = fiber.StatusBadRequest, MsgVerifyInvalidToken
		case errors.Is(err, auth.ErrUserNotFound):
			status, message = fiber.StatusNotFound, MsgVerifyUserNotFound
		default:
			slog.Error("Email verification failed", "error", err)
		}
		return render.RenderVerifyResultPage(ctx, status, render.VerifyResultPageData{Message: message})
	}

	return render.RenderVerifyResultPage(ctx, fiber.StatusOK, render.VerifyResultPageData{
		Success:         true,
		AlreadyVerified: result.AlreadyVerified,
		Email:           result.Email,
	})
}

func (h *RegisterHandler) PostResendVerification(ctx *fiber.Ctx) error {
	var form ResendForm
	if err := ctx.BodyParser(&form); err != nil {
		return sendError(ctx, fiber.StatusBadRequest, MsgInvalidRequest)
	}

	err := h.authService.ResendVerification(ctx.UserContext(), form.Email)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			return sendError(ctx, fiber.StatusBadRequest, verr.Message)
		case errors.Is(err, auth.ErrResendTooSoon):
			return sendError(ctx, fiber.StatusTooManyRequests, MsgResendTooSoon)
		default:
			slog.Error("Resend verification failed", "error", err)
			return sendError(ctx, fiber.StatusInternalServerError, MsgServerError)
		}
	}
	return sendData(ctx, fiber.StatusAccepted, MessageData{Message: MsgResendAccepted})
}
