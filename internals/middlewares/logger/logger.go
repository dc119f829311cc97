package logger

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

const (
	textFormat = "[${time}] ${locals:reqid} ${ip} - ${method} ${path} - ${status} - ${latency}\n"
	jsonFormat = `{"time":"${time}","level":"info","component":"access","reqid":"${locals:reqid}",` +
		`"ip":"${ip}","method":"${method}","path":"${path}","status":${status},"latency":"${latency}"}` + "\n"
)

// LoggerMiddleware writes one access line per request to out, stamped in the
// business timezone. jsonLines matches the production logrus formatter.
// Health probes are not logged.
func LoggerMiddleware(timeZone string, out io.Writer, jsonLines bool) fiber.Handler {
	format, timeFormat := textFormat, "2006-01-02 15:04:05"
	if jsonLines {
		format, timeFormat = jsonFormat, time.RFC3339
	}
	return logger.New(logger.Config{
		Next:          func(c *fiber.Ctx) bool { return c.Path() == "/health" },
		Format:        format,
		TimeFormat:    timeFormat,
		TimeZone:      timeZone,
		Output:        out,
		DisableColors: true,
	})
}
