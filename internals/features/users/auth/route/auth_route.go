package route

import (
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/users/auth/controller"
	"letrus_backend/internals/middlewares"
)

// AuthRoutes mounts the public endpoints on /api/auth and the session-bound
// ones on protected.
func AuthRoutes(app fiber.Router, protected fiber.Router, h *controller.AuthController) {
	base := app.Group("/api/auth")

	base.Post("/register", middlewares.RegisterRateLimiter(), h.Register)
	base.Post("/login", middlewares.LoginRateLimiter(), h.Login)
	base.Post("/logout", h.Logout)
	base.Get("/find/:username", h.FindUser)
	base.Post("/otp/:userId", middlewares.OTPRateLimiter(), h.IssueOTP)
	base.Post("/verify/:userId", middlewares.OTPRateLimiter(), h.VerifyOTP)

	protected.Get("/auth/me", h.Me)
}
