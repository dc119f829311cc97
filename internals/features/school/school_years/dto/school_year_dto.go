package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"letrus_backend/internals/features/school/school_years/model"
)

type CreateSchoolYearRequest struct {
	Description string `json:"description" validate:"required,max=10"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsCurrent   bool   `json:"is_current"`
}

type UpdateSchoolYearRequest struct {
	Description *string `json:"description" validate:"omitempty,max=10"`
	StartDate   *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	IsCurrent   *bool   `json:"is_current"`
}

func parseDate(s string, loc *time.Location) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
	return t
}

func (r CreateSchoolYearRequest) ToModel(centerID uuid.UUID, loc *time.Location) *model.SchoolYear {
	return &model.SchoolYear{
		SchoolYearID:          uuid.New(),
		SchoolYearCenterID:    centerID,
		SchoolYearDescription: strings.TrimSpace(r.Description),
		SchoolYearStartDate:   parseDate(r.StartDate, loc),
		SchoolYearEndDate:     parseDate(r.EndDate, loc),
		SchoolYearIsCurrent:   r.IsCurrent,
	}
}

func (r UpdateSchoolYearRequest) Apply(m *model.SchoolYear, loc *time.Location) {
	if r.Description != nil {
		m.SchoolYearDescription = strings.TrimSpace(*r.Description)
	}
	if r.StartDate != nil {
		m.SchoolYearStartDate = parseDate(*r.StartDate, loc)
	}
	if r.EndDate != nil {
		m.SchoolYearEndDate = parseDate(*r.EndDate, loc)
	}
	if r.IsCurrent != nil {
		m.SchoolYearIsCurrent = *r.IsCurrent
	}
}
