package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"letrus_backend/internals/helpers/apperror"
	helperAuth "letrus_backend/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret string
	// IsRevoked reports whether the raw token was logged out.
	IsRevoked func(ctx context.Context, raw string) (bool, error)
}

func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: secret is required")
	}

	return func(c *fiber.Ctx) error {
		raw := helperAuth.RawAccessToken(c)
		if raw == "" {
			return apperror.ErrUnauthorized.With("missing access token")
		}

		if o.IsRevoked != nil {
			revoked, err := o.IsRevoked(c.UserContext(), raw)
			if err != nil {
				return err
			}
			if revoked {
				return apperror.ErrUnauthorized.With("session ended, please log in again")
			}
		}

		claims := &helperAuth.Claims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return apperror.ErrUnauthorized.With("invalid or expired token")
		}

		c.Locals(helperAuth.LocUserID, claims.UserID)
		c.Locals(helperAuth.LocCenterID, claims.CenterID)
		c.Locals(helperAuth.LocRole, claims.Role)
		c.Locals(helperAuth.LocUsername, claims.Username)
		return c.Next()
	}
}
