package route

import (
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/school/classes/controller"
	helperAuth "letrus_backend/internals/helpers/auth"
	authMiddleware "letrus_backend/internals/middlewares/auth"
)

func ClassRoutes(r fiber.Router, h *controller.ClassController) {
	g := r.Group("/classes")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Post("/", authMiddleware.OnlyRoles(helperAuth.RoleAdmin), h.Create)
}
