package route

import (
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/school/courses/controller"
	helperAuth "letrus_backend/internals/helpers/auth"
	authMiddleware "letrus_backend/internals/middlewares/auth"
)

func CourseRoutes(r fiber.Router, h *controller.CourseController) {
	g := r.Group("/courses")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Get("/:id/fees", h.FeeHistory)

	onlyAdmin := authMiddleware.OnlyRoles(helperAuth.RoleAdmin)
	g.Post("/", onlyAdmin, h.Create)
	g.Patch("/:id", onlyAdmin, h.Update)
	g.Delete("/:id", onlyAdmin, h.Deactivate)
}
