package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"letrus_backend/internals/features/school/school_years/dto"
	"letrus_backend/internals/features/school/school_years/model"
	"letrus_backend/internals/features/school/school_years/service"
	helper "letrus_backend/internals/helpers"
	"letrus_backend/internals/helpers/apperror"
	helperAuth "letrus_backend/internals/helpers/auth"
)

type SchoolYearController struct {
	Svc       *service.Service
	Validator *validator.Validate
	Loc       *time.Location
}

func NewSchoolYearController(svc *service.Service, loc *time.Location) *SchoolYearController {
	return &SchoolYearController{Svc: svc, Validator: helper.NewValidator(), Loc: loc}
}

func (h *SchoolYearController) find(c *fiber.Ctx) (*model.SchoolYear, uuid.UUID, error) {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return nil, uuid.Nil, err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, uuid.Nil, err
	}
	sy, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if sy.SchoolYearCenterID != centerID {
		return nil, uuid.Nil, apperror.ErrNotFound.With("school year %s not found", id)
	}
	return sy, centerID, nil
}

// POST /api/a/school-years
func (h *SchoolYearController) Create(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	var req dto.CreateSchoolYearRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	m := req.ToModel(centerID, h.Loc)
	if err := h.Svc.Create(c.UserContext(), m); err != nil {
		return err
	}
	return helper.JsonCreated(c, "school year created", m)
}

// GET /api/a/school-years/current
func (h *SchoolYearController) Current(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	sy, err := h.Svc.GetCurrentSchoolYear(c.UserContext(), centerID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "current school year", sy)
}

// GET /api/a/school-years/:id
func (h *SchoolYearController) Get(c *fiber.Ctx) error {
	sy, _, err := h.find(c)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "school year found", sy)
}

// GET /api/a/school-years
func (h *SchoolYearController) List(c *fiber.Ctx) error {
	centerID, err := helperAuth.GetCenterID(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Svc.List(c.UserContext(), centerID, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "school years", rows, helper.BuildPagination(total, p, len(rows)))
}

// PATCH /api/a/school-years/:id
func (h *SchoolYearController) Update(c *fiber.Ctx) error {
	sy, _, err := h.find(c)
	if err != nil {
		return err
	}
	var req dto.UpdateSchoolYearRequest
	if err := helper.BindAndValidate(c, h.Validator, &req); err != nil {
		return err
	}
	req.Apply(sy, h.Loc)
	if err := h.Svc.Update(c.UserContext(), sy); err != nil {
		return err
	}
	return helper.JsonUpdated(c, "school year updated", sy)
}

// POST /api/a/school-years/:id/current
func (h *SchoolYearController) SetCurrent(c *fiber.Ctx) error {
	sy, centerID, err := h.find(c)
	if err != nil {
		return err
	}
	if err := h.Svc.SetCurrent(c.UserContext(), centerID, sy.SchoolYearID); err != nil {
		return err
	}
	sy.SchoolYearIsCurrent = true
	return helper.JsonUpdated(c, "current school year set", sy)
}
