package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"letrus_backend/internals/features/finance/financial_plans/model"
	"letrus_backend/internals/features/finance/financial_plans/repository"
)

type PlanSummary struct {
	EnrollmentID uuid.UUID             `json:"enrollment_id"`
	Entries      []model.FinancialPlan `json:"entries"`
	TotalDue     decimal.Decimal       `json:"total_due"`
	TotalPaid    decimal.Decimal       `json:"total_paid"`
	TotalPending decimal.Decimal       `json:"total_pending"`
	TotalOverdue decimal.Decimal       `json:"total_overdue"`
}

type PlanQuery struct {
	plans repository.Repository
}

func NewPlanQuery(plans repository.Repository) *PlanQuery { return &PlanQuery{plans: plans} }

// ByEnrollment returns the plan in calendar order with per-status totals.
func (q *PlanQuery) ByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*PlanSummary, error) {
	rows, err := q.plans.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	out := &PlanSummary{
		EnrollmentID: enrollmentID,
		Entries:      rows,
		TotalDue:     decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalPending: decimal.Zero,
		TotalOverdue: decimal.Zero,
	}
	for _, r := range rows {
		out.TotalDue = out.TotalDue.Add(r.FinancialPlanTuitionFee)
		switch r.FinancialPlanStatus {
		case model.PlanPaid:
			out.TotalPaid = out.TotalPaid.Add(r.FinancialPlanTuitionFee)
		case model.PlanOverdue:
			out.TotalOverdue = out.TotalOverdue.Add(r.FinancialPlanTuitionFee)
		default:
			out.TotalPending = out.TotalPending.Add(r.FinancialPlanTuitionFee)
		}
	}
	return out, nil
}
