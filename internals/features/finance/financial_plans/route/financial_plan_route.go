package route

import (
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/finance/financial_plans/controller"
)

func FinancialPlanRoutes(r fiber.Router, h *controller.FinancialPlanController) {
	r.Get("/enrollments/:id/financial-plan", h.ByEnrollment)
}
