package route

import (
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/school/school_years/controller"
	helperAuth "letrus_backend/internals/helpers/auth"
	authMiddleware "letrus_backend/internals/middlewares/auth"
)

func SchoolYearRoutes(r fiber.Router, h *controller.SchoolYearController) {
	g := r.Group("/school-years")
	g.Get("/", h.List)
	g.Get("/current", h.Current)
	g.Get("/:id", h.Get)

	onlyAdmin := authMiddleware.OnlyRoles(helperAuth.RoleAdmin)
	g.Post("/", onlyAdmin, h.Create)
	g.Patch("/:id", onlyAdmin, h.Update)
	g.Post("/:id/current", onlyAdmin, h.SetCurrent)
}
