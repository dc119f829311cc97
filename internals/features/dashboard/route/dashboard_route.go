package route

import (
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/dashboard/controller"
	helperAuth "letrus_backend/internals/helpers/auth"
	authMiddleware "letrus_backend/internals/middlewares/auth"
)

func DashboardRoutes(r fiber.Router, h *controller.DashboardController) {
	g := r.Group("/dashboard", authMiddleware.OnlyRoles(helperAuth.RoleAdmin, helperAuth.RoleSecretary))
	g.Get("/", h.Summary)
	g.Get("/overdue", h.Overdue)
	g.Get("/payments/today", h.PaymentsToday)
	g.Get("/enrollments/today", h.EnrollmentsToday)
}
