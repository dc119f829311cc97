package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/users/auth/service"
	userModel "letrus_backend/internals/features/users/user/model"
	helper "letrus_backend/internals/helpers"
	helperAuth "letrus_backend/internals/helpers/auth"
)

type AuthController struct {
	Svc       *service.Service
	Validator *validator.Validate
	Secure    bool
}

func NewAuthController(svc *service.Service, secure bool) *AuthController {
	return &AuthController{Svc: svc, Validator: helper.NewValidator(), Secure: secure}
}

type registerRequest struct {
	UserName string  `json:"user_name" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role" validate:"omitempty,oneof=admin secretary teacher"`
	CenterID string  `json:"center_id" validate:"required,uuid"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}

type loginRequest struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// POST /api/auth/register
func (h *AuthController) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	centerID, err := helper.ParseUUIDString(req.CenterID, "center_id")
	if err != nil {
		return err
	}
	u, err := h.Svc.Register(c.UserContext(), service.RegisterInput{
		Username: req.UserName,
		Password: req.Password,
		Role:     userModel.Role(req.Role),
		CenterID: centerID,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "user registered", u)
}

// POST /api/auth/login
func (h *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	sess, err := h.Svc.Login(c.UserContext(), req.UserName, req.Password)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     helperAuth.CookieName,
		Value:    sess.Token,
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
		Expires:  sess.ExpiresAt,
	})
	return helper.JsonOK(c, "login successful", sess)
}

// POST /api/auth/logout
func (h *AuthController) Logout(c *fiber.Ctx) error {
	if err := h.Svc.Logout(c.UserContext(), helperAuth.RawAccessToken(c)); err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     helperAuth.CookieName,
		Value:    "",
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
	})
	return helper.JsonOK(c, "logout successful", nil)
}

// GET /api/auth/find/:username
func (h *AuthController) FindUser(c *fiber.Ctx) error {
	u, err := h.Svc.FindUser(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "user found", u)
}

// POST /api/auth/otp/:userId
func (h *AuthController) IssueOTP(c *fiber.Ctx) error {
	userID, err := helper.ParseUUIDParam(c, "userId")
	if err != nil {
		return err
	}
	exp, err := h.Svc.IssueOTP(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "code sent", fiber.Map{"expires_at": exp})
}

// POST /api/auth/verify/:userId
func (h *AuthController) VerifyOTP(c *fiber.Ctx) error {
	userID, err := helper.ParseUUIDParam(c, "userId")
	if err != nil {
		return err
	}
	var req verifyRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	if err := h.Svc.VerifyOTP(c.UserContext(), userID, req.Code); err != nil {
		return err
	}
	return helper.JsonOK(c, "code verified", nil)
}

// GET /api/auth/me
func (h *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.Me(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "ok", u)
}
