package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/school/courses/dto"
	"letrus_backend/internals/features/school/courses/model"
	"letrus_backend/internals/features/school/courses/service"
	helper "letrus_backend/internals/helpers"
	"letrus_backend/internals/helpers/apperror"
	helperAuth "letrus_backend/internals/helpers/auth"
)

type CourseController struct {
	Svc       *service.Service
	Validator *validator.Validate
}

func NewCourseController(svc *service.Service) *CourseController {
	return &CourseController{Svc: svc, Validator: helper.NewValidator()}
}

// POST /api/a/courses
func (h *CourseController) Create(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	var req dto.CreateCourseRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	out, err := h.Svc.Create(c.UserContext(), service.CreateInput{
		CenterID:    centerID,
		Name:        req.Name,
		Description: req.Description,
		Fee:         req.Fields(),
	})
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "course created", out)
}

// GET /api/a/courses/:id
func (h *CourseController) Get(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.Svc.Get(c.UserContext(), centerID, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "course found", out)
}

// GET /api/a/courses?status=active
func (h *CourseController) List(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	var status *model.CourseStatus
	switch s := model.CourseStatus(c.Query("status")); s {
	case "":
	case model.CourseActive, model.CourseInactive:
		status = &s
	default:
		return apperror.Validation(map[string][]string{"status": {"oneof=active inactive"}})
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Svc.List(c.UserContext(), centerID, status, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "courses", rows, helper.BuildPagination(total, p, len(rows)))
}

// PATCH /api/a/courses/:id
func (h *CourseController) Update(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCourseRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	out, err := h.Svc.Update(c.UserContext(), centerID, id, req.ToInput())
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "course updated", out)
}

// DELETE /api/a/courses/:id
func (h *CourseController) Deactivate(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.Svc.Deactivate(c.UserContext(), centerID, id)
	if err != nil {
		return err
	}
	return helper.JsonDeleted(c, "course deactivated", out)
}

// GET /api/a/courses/:id/fees
func (h *CourseController) FeeHistory(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.Svc.FeeHistory(c.UserContext(), centerID, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "tuition fee history", rows)
}
