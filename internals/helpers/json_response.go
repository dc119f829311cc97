package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/helpers/apperror"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	Details   any                 `json:"details,omitempty"`
}

var statusCodes = map[int]string{
	fiber.StatusBadRequest:          "BAD_REQUEST",
	fiber.StatusUnauthorized:        string(apperror.CodeUnauthorized),
	fiber.StatusForbidden:           string(apperror.CodeForbidden),
	fiber.StatusNotFound:            string(apperror.CodeNotFound),
	fiber.StatusConflict:            string(apperror.CodeConflict),
	fiber.StatusUnprocessableEntity: string(apperror.CodeValidation),
	fiber.StatusTooManyRequests:     "TOO_MANY_REQUESTS",
}

func codeForStatus(status int) string {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	if status >= 500 {
		return "INTERNAL_ERROR"
	}
	return "ERROR"
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// JsonError renders a failure that carries no domain code.
func JsonError(c *fiber.Ctx, status int, message string) error {
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(ErrorResponse{
		Message:   orDefault(message, fiber.ErrInternalServerError.Message),
		ErrorCode: codeForStatus(status),
	})
}

func JsonAppError(c *fiber.Ctx, e *apperror.Error) error {
	status := e.Status
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(ErrorResponse{
		Message:   e.Message,
		ErrorCode: string(e.Code),
		Errors:    e.Fields,
		Details:   e.Details,
	})
}

func JsonValidationError(c *fiber.Ctx, fields map[string][]string) error {
	if fields == nil {
		fields = map[string][]string{}
	}
	return JsonAppError(c, apperror.Validation(fields))
}

func JsonList(c *fiber.Ctx, message string, data any, pagination Pagination) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"message":    orDefault(message, "ok"),
		"data":       data,
		"pagination": pagination,
	})
}

func respond(c *fiber.Ctx, status int, message, fallback string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": orDefault(message, fallback),
		"data":    data,
	})
}

func JsonOK(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusOK, message, "ok", data)
}

func JsonCreated(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusCreated, message, "created", data)
}

func JsonUpdated(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusOK, message, "updated", data)
}

func JsonDeleted(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusOK, message, "deleted", data)
}
