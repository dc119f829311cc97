package controller

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"letrus_backend/internals/features/school/students/model"
	"letrus_backend/internals/features/school/students/repository"
	helper "letrus_backend/internals/helpers"
	"letrus_backend/internals/helpers/apperror"
	helperAuth "letrus_backend/internals/helpers/auth"
)

type StudentController struct {
	Repo      repository.Repository
	Validator *validator.Validate
	Loc       *time.Location
}

func NewStudentController(repo repository.Repository, loc *time.Location) *StudentController {
	return &StudentController{Repo: repo, Validator: helper.NewValidator(), Loc: loc}
}

type createStudentRequest struct {
	Code      string  `json:"code" validate:"required,max=20"`
	Name      string  `json:"name" validate:"required,max=120"`
	BirthDate *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Gender    *string `json:"gender" validate:"omitempty,oneof=M F"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
}

// POST /api/a/students
func (h *StudentController) Create(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	var req createStudentRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	m := &model.Student{
		StudentCenterID: centerID,
		StudentCode:     strings.ToUpper(strings.TrimSpace(req.Code)),
		StudentName:     strings.TrimSpace(req.Name),
		StudentGender:   req.Gender,
		StudentPhone:    req.Phone,
		StudentStatus:   model.StudentActive,
	}
	if req.BirthDate != nil {
		if d, err := time.ParseInLocation("2006-01-02", *req.BirthDate, h.Loc); err == nil {
			m.StudentBirthDate = &d
		}
	}
	if err := h.Repo.Create(c.UserContext(), m); err != nil {
		return err
	}
	return helper.JsonCreated(c, "student created", m)
}

// GET /api/a/students/:id
func (h *StudentController) Get(c *fiber.Ctx) error {
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
	if m.StudentCenterID != centerID {
		return apperror.ErrNotFound.With("student %s not found", id)
	}
	return helper.JsonOK(c, "student found", m)
}

// GET /api/a/students?q=
func (h *StudentController) List(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Repo.List(c.UserContext(), centerID, c.Query("q"), p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "students", rows, helper.BuildPagination(total, p, len(rows)))
}
