package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "letrus_backend/internals/helpers"
)

func ipLimiter(max int, window time.Duration, msg string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, msg)
		},
	})
}

// Global limiter for every endpoint.
func GlobalRateLimiter() fiber.Handler {
	return ipLimiter(100, time.Minute, "too many requests, try again later")
}

func LoginRateLimiter() fiber.Handler {
	return ipLimiter(5, time.Minute, "too many login attempts, try again in a minute")
}

func RegisterRateLimiter() fiber.Handler {
	return ipLimiter(3, 5*time.Minute, "too many sign-ups, wait a few minutes")
}

// OTPRateLimiter guards both issuing and verifying codes.
func OTPRateLimiter() fiber.Handler {
	return ipLimiter(5, 10*time.Minute, "too many code requests, try again in 10 minutes")
}
