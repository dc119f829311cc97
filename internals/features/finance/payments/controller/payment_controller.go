package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/finance/payments/dto"
	"letrus_backend/internals/features/finance/payments/repository"
	"letrus_backend/internals/features/finance/payments/service"
	helper "letrus_backend/internals/helpers"
	"letrus_backend/internals/helpers/apperror"
	helperAuth "letrus_backend/internals/helpers/auth"
	"letrus_backend/internals/helpers/dbtime"
)

type PaymentController struct {
	Reconciler *service.Reconciler
	Query      *service.PaymentQuery
	Validator  *validator.Validate
	Loc        *time.Location
}

func NewPaymentController(rec *service.Reconciler, q *service.PaymentQuery, loc *time.Location) *PaymentController {
	return &PaymentController{Reconciler: rec, Query: q, Validator: helper.NewValidator(), Loc: loc}
}

// POST /api/a/payments
func (h *PaymentController) Record(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	var req dto.RecordPaymentRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	in, err := req.ToInput(centerID, userID, h.Loc)
	if err != nil {
		return err
	}
	out, err := h.Reconciler.RecordPayment(c.UserContext(), in)
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "payment recorded", out)
}

// GET /api/a/payments/:id
func (h *PaymentController) Get(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.Query.Get(c.UserContext(), centerID, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "payment found", out)
}

// GET /api/a/payments?from=2025-03-01&to=2025-03-31&enrollment_id=
func (h *PaymentController) List(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	f := repository.Filter{CenterID: centerID}
	if f.EnrollmentID, err = helper.ParseUUIDQuery(c, "enrollment_id"); err != nil {
		return err
	}
	if f.From, err = h.dateQuery(c, "from", false); err != nil {
		return err
	}
	if f.To, err = h.dateQuery(c, "to", true); err != nil {
		return err
	}
	return h.list(c, f)
}

// GET /api/a/enrollments/:id/payments
func (h *PaymentController) ListByEnrollment(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	return h.list(c, repository.Filter{CenterID: centerID, EnrollmentID: &id})
}

func (h *PaymentController) list(c *fiber.Ctx, f repository.Filter) error {
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Query.List(c.UserContext(), f, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "payments", rows, helper.BuildPagination(total, p, len(rows)))
}

// dateQuery reads a YYYY-MM-DD bound as the start (or end) of that day in
// the business zone.
func (h *PaymentController) dateQuery(c *fiber.Ctx, name string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, h.Loc)
	if err != nil {
		return nil, apperror.Validation(map[string][]string{name: {"datetime=2006-01-02"}})
	}
	if endOfDay {
		d = dbtime.EndOfDay(d, h.Loc)
	}
	return &d, nil
}
