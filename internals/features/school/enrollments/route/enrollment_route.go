package route

import (
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/school/enrollments/controller"
	helperAuth "letrus_backend/internals/helpers/auth"
	authMiddleware "letrus_backend/internals/middlewares/auth"
)

func EnrollmentRoutes(r fiber.Router, h *controller.EnrollmentController) {
	g := r.Group("/enrollments")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)

	staff := authMiddleware.OnlyRoles(helperAuth.RoleAdmin, helperAuth.RoleSecretary)
	g.Post("/", staff, h.Create)
	g.Patch("/:id/status", staff, h.ChangeStatus)
	g.Post("/:id/financial-plan/generate", staff, h.GeneratePlan)

	r.Get("/students/:id/enrollments", h.ListByStudent)
}
