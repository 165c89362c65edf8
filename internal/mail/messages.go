package mail

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/docportal/internal/render"
)

func SendVerificationEmail(ctx context.Context, sender MailSender, toEmail string, verifyURL string, expiresIn time.Duration) error {
	vars := fiber.Map{
		"email":         toEmail,
		"verifyURL":     verifyURL,
		"expireMinutes": int(expiresIn.Minutes()),
	}
	body, err := render.RenderHTML("mail/verify-email", vars)
	if err != nil {
		return err
	}
	return sender.Send(ctx, &Message{
		To:      []string{toEmail},
		Subject: "Please verify your email address",
		Body:    body,
		IsHTML:  true,
	})
}
