package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "letrus_backend/internals/helpers"
	helperAuth "letrus_backend/internals/helpers/auth"
)

const secret = "middleware-secret"

func sign(t *testing.T, role string, exp time.Time, key string) string {
	t.Helper()
	claims := helperAuth.Claims{
		UserID:   uuid.New(),
		CenterID: uuid.New(),
		Role:     role,
		Username: "tester",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return raw
}

func newApp(revoked map[string]bool) *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler(false, log)})

	g := app.Group("/api/a", AuthJWT(AuthJWTOpts{
		Secret: secret,
		IsRevoked: func(_ context.Context, raw string) (bool, error) {
			return revoked[raw], nil
		},
	}))
	g.Get("/whoami", func(c *fiber.Ctx) error {
		center, err := helperAuth.GetCenterID(c)
		if err != nil {
			return err
		}
		return c.SendString(center.String())
	})
	g.Get("/admin", OnlyRoles(helperAuth.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func call(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthJWT(t *testing.T) {
	valid := sign(t, helperAuth.RoleSecretary, time.Now().Add(time.Hour), secret)
	loggedOut := sign(t, helperAuth.RoleAdmin, time.Now().Add(time.Hour), secret)
	app := newApp(map[string]bool{loggedOut: true})

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"valid", valid, fiber.StatusOK},
		{"expired", sign(t, helperAuth.RoleAdmin, time.Now().Add(-time.Minute), secret), fiber.StatusUnauthorized},
		{"wrong key", sign(t, helperAuth.RoleAdmin, time.Now().Add(time.Hour), "other"), fiber.StatusUnauthorized},
		{"revoked", loggedOut, fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, call(t, app, "/api/a/whoami", tc.token))
		})
	}
}

func TestOnlyRoles(t *testing.T) {
	app := newApp(nil)
	exp := time.Now().Add(time.Hour)

	assert.Equal(t, fiber.StatusNoContent, call(t, app, "/api/a/admin", sign(t, helperAuth.RoleAdmin, exp, secret)))
	assert.Equal(t, fiber.StatusForbidden, call(t, app, "/api/a/admin", sign(t, helperAuth.RoleSecretary, exp, secret)))
}
