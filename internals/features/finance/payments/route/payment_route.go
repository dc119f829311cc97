package route

import (
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/finance/payments/controller"
	helperAuth "letrus_backend/internals/helpers/auth"
	authMiddleware "letrus_backend/internals/middlewares/auth"
)

func PaymentRoutes(r fiber.Router, h *controller.PaymentController) {
	g := r.Group("/payments")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Post("/", authMiddleware.OnlyRoles(helperAuth.RoleAdmin, helperAuth.RoleSecretary), h.Record)

	r.Get("/enrollments/:id/payments", h.ListByEnrollment)
}
