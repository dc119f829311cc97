package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"letrus_backend/internals/helpers/apperror"
)

// Locals keys set by the JWT middleware.
const (
	LocUserID   = "user_id"
	LocCenterID = "center_id"
	LocRole     = "role"
	LocUsername = "username"
)

const (
	RoleAdmin     = "admin"
	RoleSecretary = "secretary"
	RoleTeacher   = "teacher"
)

// Claims is the access token payload.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	CenterID uuid.UUID `json:"center_id"`
	Role     string    `json:"role"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

func uuidLocal(c *fiber.Ctx, key string) (uuid.UUID, error) {
	id, ok := c.Locals(key).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperror.ErrUnauthorized.With("missing %s in session", key)
	}
	return id, nil
}

func GetUserID(c *fiber.Ctx) (uuid.UUID, error) { return uuidLocal(c, LocUserID) }

// GetCenterID is the tenant every scoped query filters on.
func GetCenterID(c *fiber.Ctx) (uuid.UUID, error) { return uuidLocal(c, LocCenterID) }

func GetRole(c *fiber.Ctx) string {
	r, _ := c.Locals(LocRole).(string)
	return r
}
