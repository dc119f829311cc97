package helper

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"letrus_backend/internals/helpers/apperror"
)

// ErrorHandler is installed as fiber.Config.ErrorHandler. Controllers return
// errors and this renders them. In production unknown errors carry no detail.
func ErrorHandler(production bool, log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := apperror.From(err); ok {
			entry := log.WithFields(logrus.Fields{
				"reqid": c.Locals("reqid"),
				"code":  e.Code,
				"path":  c.Path(),
			})
			if e.Status >= 500 {
				entry.WithError(err).Error("request failed")
			} else {
				entry.Debug(e.Message)
			}
			return JsonAppError(c, e)
		}

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return JsonValidationError(c, ValidationFields(ve))
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return JsonError(c, fe.Code, fe.Message)
		}

		log.WithFields(logrus.Fields{
			"reqid":  c.Locals("reqid"),
			"method": c.Method(),
			"path":   c.Path(),
		}).WithError(err).Error("unhandled error")

		msg := "internal server error"
		if !production {
			msg = msg + ": " + err.Error()
		}
		return JsonError(c, fiber.StatusInternalServerError, msg)
	}
}

// ValidationFields turns validator errors into {json_field: [tag messages]}.
func ValidationFields(ve validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		msg := fe.Tag()
		if p := fe.Param(); p != "" {
			msg += "=" + p
		}
		out[fe.Field()] = append(out[fe.Field()], msg)
	}
	return out
}
