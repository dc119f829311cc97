package middlewares

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// RecoveryMiddleware turns a panic into a 500 through the error handler. The
// panic value and stack go to log once, tagged with the request id.
func RecoveryMiddleware(log logrus.FieldLogger) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			log.WithFields(logrus.Fields{
				"component": "http",
				"reqid":     c.Locals("reqid"),
				"method":    c.Method(),
				"path":      c.Path(),
				"panic":     fmt.Sprint(e),
				"stack":     string(debug.Stack()),
			}).Error("panic recovered")
		},
	})
}
