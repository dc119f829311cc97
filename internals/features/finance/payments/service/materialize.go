package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	fpModel "letrus_backend/internals/features/finance/financial_plans/model"
	"letrus_backend/internals/features/finance/payments/model"
	feeModel "letrus_backend/internals/features/finance/tuition_fees/model"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/features/school/school_years/calendar"
	syModel "letrus_backend/internals/features/school/school_years/model"
)

type FeeLookup interface {
	GetFee(ctx context.Context, id uuid.UUID) (*feeModel.TuitionFee, error)
}

type CurrentYearLookup interface {
	GetCurrentSchoolYear(ctx context.Context, centerID uuid.UUID) (*syModel.SchoolYear, error)
}

// Materializer is the migration policy: a missing entry is created as paid,
// due on the 10th of the following month, priced at the enrollment's bound
// fee or at the payment amount when no fee is bound.
type Materializer struct {
	fees  FeeLookup
	years CurrentYearLookup
	loc   *time.Location
}

func NewMaterializer(fees FeeLookup, years CurrentYearLookup, loc *time.Location) *Materializer {
	return &Materializer{fees: fees, years: years, loc: loc}
}

func (m *Materializer) Materialize(ctx context.Context, e *enrollModel.Enrollment, p *model.Payment, month calendar.BillingMonth) (*fpModel.FinancialPlan, error) {
	amount := p.PaymentAmount
	if e.EnrollmentTuitionFeeID != nil {
		fee, err := m.fees.GetFee(ctx, *e.EnrollmentTuitionFeeID)
		if err != nil {
			return nil, err
		}
		amount = fee.TuitionFeeFee
	}

	year, err := m.years.GetCurrentSchoolYear(ctx, e.EnrollmentCenterID)
	if err != nil {
		return nil, err
	}

	return &fpModel.FinancialPlan{
		FinancialPlanID:           uuid.New(),
		FinancialPlanEnrollmentID: e.EnrollmentID,
		FinancialPlanCenterID:     e.EnrollmentCenterID,
		FinancialPlanUserID:       e.EnrollmentUserID,
		FinancialPlanSchoolYearID: year.SchoolYearID,
		FinancialPlanMonth:        month.Name,
		FinancialPlanMonthIndex:   month.MonthIndex,
		FinancialPlanYear:         month.Year,
		FinancialPlanDueDate:      calendar.DueDate(month.Next(), m.loc),
		FinancialPlanTuitionFee:   amount,
	}, nil
}
