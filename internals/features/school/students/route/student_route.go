package route

import (
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/school/students/controller"
	helperAuth "letrus_backend/internals/helpers/auth"
	authMiddleware "letrus_backend/internals/middlewares/auth"
)

func StudentRoutes(r fiber.Router, h *controller.StudentController) {
	g := r.Group("/students")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Post("/", authMiddleware.OnlyRoles(helperAuth.RoleAdmin, helperAuth.RoleSecretary), h.Create)
}
