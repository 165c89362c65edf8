package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/docportal/params"
)

// Google JSON API style response structures
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

type APIResponse struct {
	APIVersion string         `json:"apiVersion"`
	Data       interface{}    `json:"data,omitempty"`
	Error      *ErrorResponse `json:"error,omitempty"`
}

type MessageData struct {
	Message string `json:"message"`
}

func sendData(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(APIResponse{
		APIVersion: params.APIVersion,
		Data:       data,
	})
}

func sendError(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(APIResponse{
		APIVersion: params.APIVersion,
		Error: &ErrorResponse{
			Code:    status,
			Message: message,
		},
	})
}
