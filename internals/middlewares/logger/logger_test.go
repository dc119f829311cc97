package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(out *bytes.Buffer, jsonLines bool) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("reqid", "req-7")
		return c.Next()
	})
	app.Use(LoggerMiddleware("Africa/Luanda", out, jsonLines))
	app.Get("/api/a/payments", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestLoggerMiddlewareJSONLine(t *testing.T) {
	var out bytes.Buffer
	app := newApp(&out, true)

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/a/payments", nil))
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(out.Bytes()), &line), out.String())
	assert.Equal(t, "req-7", line["reqid"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/api/a/payments", line["path"])
	assert.EqualValues(t, 204, line["status"])
	assert.True(t, strings.HasSuffix(line["time"].(string), "+01:00"), line["time"])
}

func TestLoggerMiddlewareSkipsHealth(t *testing.T) {
	var out bytes.Buffer
	app := newApp(&out, false)

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Zero(t, out.Len())

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/a/payments", nil))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "req-7")
	assert.Contains(t, out.String(), "/api/a/payments - 204")
}
