package dto

import (
	"github.com/shopspring/decimal"

	feeModel "letrus_backend/internals/features/finance/tuition_fees/model"
	"letrus_backend/internals/features/school/courses/service"
)

type FeeRequest struct {
	Fee                       decimal.Decimal `json:"fee"`
	FeeFine                   decimal.Decimal `json:"fee_fine"`
	EnrollmentFee             decimal.Decimal `json:"enrollment_fee"`
	ConfirmationEnrollmentFee decimal.Decimal `json:"confirmation_enrollment_fee"`
}

func (r FeeRequest) Fields() feeModel.FeeFields {
	return feeModel.FeeFields{
		Fee:                       r.Fee,
		FeeFine:                   r.FeeFine,
		EnrollmentFee:             r.EnrollmentFee,
		ConfirmationEnrollmentFee: r.ConfirmationEnrollmentFee,
	}
}

type CreateCourseRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	FeeRequest
}

// UpdateCourseRequest: any fee field present publishes a new fee version
// built from all four.
type UpdateCourseRequest struct {
	Name                      *string          `json:"name" validate:"omitempty,max=120"`
	Description               *string          `json:"description" validate:"omitempty,max=2000"`
	Fee                       *decimal.Decimal `json:"fee"`
	FeeFine                   *decimal.Decimal `json:"fee_fine"`
	EnrollmentFee             *decimal.Decimal `json:"enrollment_fee"`
	ConfirmationEnrollmentFee *decimal.Decimal `json:"confirmation_enrollment_fee"`
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func (r UpdateCourseRequest) ToInput() service.UpdateInput {
	in := service.UpdateInput{Name: r.Name, Description: r.Description}
	if r.Fee != nil || r.FeeFine != nil || r.EnrollmentFee != nil || r.ConfirmationEnrollmentFee != nil {
		in.Fee = &feeModel.FeeFields{
			Fee:                       orZero(r.Fee),
			FeeFine:                   orZero(r.FeeFine),
			EnrollmentFee:             orZero(r.EnrollmentFee),
			ConfirmationEnrollmentFee: orZero(r.ConfirmationEnrollmentFee),
		}
	}
	return in
}
