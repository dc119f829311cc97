package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"letrus_backend/internals/features/finance/financial_plans/service"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	helper "letrus_backend/internals/helpers"
	helperAuth "letrus_backend/internals/helpers/auth"
)

// EnrollmentScope resolves an enrollment only inside the caller's center.
type EnrollmentScope interface {
	Get(ctx context.Context, centerID, id uuid.UUID) (*enrollModel.Enrollment, error)
}

type FinancialPlanController struct {
	Query       *service.PlanQuery
	Enrollments EnrollmentScope
}

func NewFinancialPlanController(q *service.PlanQuery, enrollments EnrollmentScope) *FinancialPlanController {
	return &FinancialPlanController{Query: q, Enrollments: enrollments}
}

// GET /api/a/enrollments/:id/financial-plan
func (h *FinancialPlanController) ByEnrollment(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.Enrollments.Get(c.UserContext(), centerID, id); err != nil {
		return err
	}
	out, err := h.Query.ByEnrollment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "financial plan", out)
}
