package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/school/classes/model"
	"letrus_backend/internals/features/school/classes/repository"
	helper "letrus_backend/internals/helpers"
	"letrus_backend/internals/helpers/apperror"
	helperAuth "letrus_backend/internals/helpers/auth"
)

type ClassController struct {
	Repo      repository.Repository
	Validator *validator.Validate
}

func NewClassController(repo repository.Repository) *ClassController {
	return &ClassController{Repo: repo, Validator: helper.NewValidator()}
}

type createClassRequest struct {
	CourseID string  `json:"course_id" validate:"required,uuid"`
	Name     string  `json:"name" validate:"required,max=80"`
	Period   *string `json:"period" validate:"omitempty,max=20"`
}

// POST /api/a/classes
func (h *ClassController) Create(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	var req createClassRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	courseID, err := helper.ParseUUIDString(req.CourseID, "course_id")
	if err != nil {
		return err
	}
	m := &model.Class{
		ClassCenterID: centerID,
		ClassCourseID: courseID,
		ClassName:     strings.TrimSpace(req.Name),
		ClassPeriod:   req.Period,
		ClassStatus:   model.ClassActive,
	}
	if err := h.Repo.Create(c.UserContext(), m); err != nil {
		return err
	}
	return helper.JsonCreated(c, "class created", m)
}

// GET /api/a/classes/:id
func (h *ClassController) Get(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	m, err := h.Repo.FindByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if m.ClassCenterID != centerID {
		return apperror.ErrNotFound.With("class %s not found", id)
	}
	return helper.JsonOK(c, "class found", m)
}

// GET /api/a/classes
func (h *ClassController) List(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Repo.List(c.UserContext(), centerID, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "classes", rows, helper.BuildPagination(total, p, len(rows)))
}
