package controller

import (
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/dashboard/service"
	helper "letrus_backend/internals/helpers"
	helperAuth "letrus_backend/internals/helpers/auth"
)

type DashboardController struct {
	Svc *service.Service
}

func NewDashboardController(svc *service.Service) *DashboardController {
	return &DashboardController{Svc: svc}
}

// GET /api/a/dashboard?school_year_id=
func (h *DashboardController) Summary(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	yearID, err := helper.ParseUUIDQuery(c, "school_year_id")
	if err != nil {
		return err
	}
	out, err := h.Svc.Summary(c.UserContext(), centerID, yearID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "dashboard", out)
}

// GET /api/a/dashboard/overdue?school_year_id=
func (h *DashboardController) Overdue(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	yearID, err := helper.ParseUUIDQuery(c, "school_year_id")
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Svc.OverdueEntries(c.UserContext(), centerID, yearID, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "overdue entries", rows, helper.BuildPagination(total, p, len(rows)))
}

// GET /api/a/dashboard/payments/today
func (h *DashboardController) PaymentsToday(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Svc.PaymentsToday(c.UserContext(), centerID, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "payments today", rows, helper.BuildPagination(total, p, len(rows)))
}

// GET /api/a/dashboard/enrollments/today
func (h *DashboardController) EnrollmentsToday(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Svc.EnrollmentsToday(c.UserContext(), centerID, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "enrollments today", rows, helper.BuildPagination(total, p, len(rows)))
}
