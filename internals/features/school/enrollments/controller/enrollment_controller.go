package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/school/enrollments/dto"
	"letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/features/school/enrollments/repository"
	"letrus_backend/internals/features/school/enrollments/service"
	helper "letrus_backend/internals/helpers"
	"letrus_backend/internals/helpers/apperror"
	helperAuth "letrus_backend/internals/helpers/auth"
)

type EnrollmentController struct {
	Svc       *service.Service
	Validator *validator.Validate
	Loc       *time.Location
}

func NewEnrollmentController(svc *service.Service, loc *time.Location) *EnrollmentController {
	return &EnrollmentController{Svc: svc, Validator: helper.NewValidator(), Loc: loc}
}

// POST /api/a/enrollments
func (h *EnrollmentController) Create(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	var req dto.CreateEnrollmentRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	in, err := req.ToInput(centerID, userID, h.Loc)
	if err != nil {
		return err
	}

	out, err := h.Svc.Enroll(c.UserContext(), in)
	if errors.Is(err, apperror.ErrPlanIncomplete) {
		// enrollment exists; the client retries the plan only
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"success":    false,
			"message":    "student enrolled, financial plan incomplete",
			"error_code": string(apperror.CodePlanIncomplete),
			"data":       out,
		})
	}
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "student enrolled", out)
}

// GET /api/a/enrollments/:id
func (h *EnrollmentController) Get(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	e, err := h.Svc.Get(c.UserContext(), centerID, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "enrollment found", e)
}

// GET /api/a/enrollments?status=&class_id=&student_id=&incomplete=true
func (h *EnrollmentController) List(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	f := repository.Filter{CenterID: centerID}
	if f.ClassID, err = helper.ParseUUIDQuery(c, "class_id"); err != nil {
		return err
	}
	if f.StudentID, err = helper.ParseUUIDQuery(c, "student_id"); err != nil {
		return err
	}
	if s := c.Query("status"); s != "" {
		st := model.EnrollmentStatus(s)
		if !st.Valid() {
			return apperror.Validation(map[string][]string{"status": {"oneof=enrolled completed dropped"}})
		}
		f.Status = &st
	}
	if c.QueryBool("incomplete") {
		no := false
		f.HasFinancialPlan = &no
	}
	return h.list(c, f)
}

// GET /api/a/students/:id/enrollments
func (h *EnrollmentController) ListByStudent(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	studentID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	return h.list(c, repository.Filter{CenterID: centerID, StudentID: &studentID})
}

func (h *EnrollmentController) list(c *fiber.Ctx, f repository.Filter) error {
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Svc.List(c.UserContext(), f, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "enrollments", rows, helper.BuildPagination(total, p, len(rows)))
}

// PATCH /api/a/enrollments/:id/status
func (h *EnrollmentController) ChangeStatus(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ChangeStatusRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	e, err := h.Svc.ChangeStatus(c.UserContext(), centerID, id, model.EnrollmentStatus(req.Status))
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "enrollment status updated", e)
}

// POST /api/a/enrollments/:id/financial-plan/generate
func (h *EnrollmentController) GeneratePlan(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.Svc.RegeneratePlan(c.UserContext(), centerID, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "financial plan generated", out)
}
