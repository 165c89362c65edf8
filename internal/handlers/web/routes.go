package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/docportal/internal/middlewares"
	"github.com/khanghh/docportal/params"
)

// SetupRoutes registers the portal routes. The session middleware must be
// installed on router beforehand.
func SetupRoutes(router fiber.Router, authService AuthService, docService DocumentService) {
	// handlers
	var (
		loginHandler    = NewLoginHandler(authService)
		registerHandler = NewRegisterHandler(authService)
		documentHandler = NewDocumentHandler(docService)
	)
	requireAuth := middlewares.RequireAuth()

	// routes
	router.Get("/", loginHandler.GetIndex)
	router.Post("/signup", registerHandler.PostSignup)
	router.Get("/verify-email", registerHandler.GetVerifyEmail)
	router.Post("/verify-email/resend", registerHandler.PostResendVerification)
	router.Post("/login", loginHandler.PostLogin)
	router.Get("/logout", loginHandler.GetLogout)
	router.Get("/home", requireAuth, documentHandler.GetHome)
	for _, category := range params.DocumentCategories {
		router.Get("/"+category, requireAuth, documentHandler.GetLibrary(category))
	}
	router.Get("/view-policy/*", requireAuth, documentHandler.GetViewPolicy)
	router.Get("/download-policy/*", requireAuth, documentHandler.GetDownloadPolicy)
	router.Post("/track-policy-click", requireAuth, documentHandler.PostTrackClick)
	router.Delete("/delete-policy/*", requireAuth, documentHandler.DeletePolicy)
	router.Get("/api/activity", requireAuth, documentHandler.GetActivity)
}
