package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"letrus_backend/internals/databases/dberr"
	fpModel "letrus_backend/internals/features/finance/financial_plans/model"
	payModel "letrus_backend/internals/features/finance/payments/model"
	classModel "letrus_backend/internals/features/school/classes/model"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
)

type PlanFilter struct {
	CenterID     uuid.UUID
	SchoolYearID *uuid.UUID
	Statuses     []fpModel.PlanStatus
	DueFrom      *time.Time
	DueTo        *time.Time
}

type PaymentFilter struct {
	CenterID uuid.UUID
	Statuses []payModel.PaymentStatus
	From     *time.Time
	To       *time.Time
}

type EnrollmentFilter struct {
	CenterID         uuid.UUID
	Statuses         []enrollModel.EnrollmentStatus
	HasFinancialPlan *bool
	From             *time.Time
	To               *time.Time
}

type Repository interface {
	CountActiveClasses(ctx context.Context, centerID uuid.UUID) (int64, error)

	CountPlanEntries(ctx context.Context, f PlanFilter) (int64, error)
	SumPlanEntries(ctx context.Context, f PlanFilter) (decimal.Decimal, error)
	ListPlanEntries(ctx context.Context, f PlanFilter, limit, offset int) ([]fpModel.FinancialPlan, int64, error)

	CountPayments(ctx context.Context, f PaymentFilter) (int64, error)
	SumPayments(ctx context.Context, f PaymentFilter) (decimal.Decimal, error)
	ListPayments(ctx context.Context, f PaymentFilter, limit, offset int) ([]payModel.Payment, int64, error)

	CountEnrollments(ctx context.Context, f EnrollmentFilter) (int64, error)
	ListEnrollments(ctx context.Context, f EnrollmentFilter, limit, offset int) ([]enrollModel.Enrollment, int64, error)
}

type GormRepository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func strs[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func (r *GormRepository) CountActiveClasses(ctx context.Context, centerID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&classModel.Class{}).
		Where("class_center_id = ? AND class_status = ?", centerID, classModel.ClassActive).
		Count(&n).Error
	return n, dberr.Translate(err, nil)
}

/* ---------- plan entries ---------- */

func (r *GormRepository) planQuery(ctx context.Context, f PlanFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&fpModel.FinancialPlan{}).Where("financial_plan_center_id = ?", f.CenterID)
	if f.SchoolYearID != nil {
		q = q.Where("financial_plan_school_year_id = ?", *f.SchoolYearID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("financial_plan_status = ANY(?)", pq.Array(strs(f.Statuses)))
	}
	if f.DueFrom != nil {
		q = q.Where("financial_plan_due_date >= ?", *f.DueFrom)
	}
	if f.DueTo != nil {
		q = q.Where("financial_plan_due_date <= ?", *f.DueTo)
	}
	return q
}

func (r *GormRepository) CountPlanEntries(ctx context.Context, f PlanFilter) (int64, error) {
	var n int64
	err := r.planQuery(ctx, f).Count(&n).Error
	return n, dberr.Translate(err, nil)
}

func (r *GormRepository) SumPlanEntries(ctx context.Context, f PlanFilter) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.planQuery(ctx, f).Select("COALESCE(SUM(financial_plan_tuition_fee), 0)").Row().Scan(&sum)
	return sum, dberr.Translate(err, nil)
}

func (r *GormRepository) ListPlanEntries(ctx context.Context, f PlanFilter, limit, offset int) ([]fpModel.FinancialPlan, int64, error) {
	var total int64
	if err := r.planQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, dberr.Translate(err, nil)
	}
	var rows []fpModel.FinancialPlan
	err := r.planQuery(ctx, f).Order("financial_plan_due_date ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, dberr.Translate(err, nil)
}

/* ---------- payments ---------- */

func (r *GormRepository) paymentQuery(ctx context.Context, f PaymentFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&payModel.Payment{}).Where("payment_center_id = ?", f.CenterID)
	if len(f.Statuses) > 0 {
		q = q.Where("payment_status = ANY(?)", pq.Array(strs(f.Statuses)))
	}
	if f.From != nil {
		q = q.Where("payment_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("payment_date <= ?", *f.To)
	}
	return q
}

func (r *GormRepository) CountPayments(ctx context.Context, f PaymentFilter) (int64, error) {
	var n int64
	err := r.paymentQuery(ctx, f).Count(&n).Error
	return n, dberr.Translate(err, nil)
}

func (r *GormRepository) SumPayments(ctx context.Context, f PaymentFilter) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.paymentQuery(ctx, f).Select("COALESCE(SUM(payment_amount + payment_late_fee), 0)").Row().Scan(&sum)
	return sum, dberr.Translate(err, nil)
}

func (r *GormRepository) ListPayments(ctx context.Context, f PaymentFilter, limit, offset int) ([]payModel.Payment, int64, error) {
	var total int64
	if err := r.paymentQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, dberr.Translate(err, nil)
	}
	var rows []payModel.Payment
	err := r.paymentQuery(ctx, f).Order("payment_date DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, dberr.Translate(err, nil)
}

/* ---------- enrollments ---------- */

func (r *GormRepository) enrollmentQuery(ctx context.Context, f EnrollmentFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&enrollModel.Enrollment{}).Where("enrollment_center_id = ?", f.CenterID)
	if len(f.Statuses) > 0 {
		q = q.Where("enrollment_status = ANY(?)", pq.Array(strs(f.Statuses)))
	}
	if f.HasFinancialPlan != nil {
		q = q.Where("enrollment_has_financial_plan = ?", *f.HasFinancialPlan)
	}
	if f.From != nil {
		q = q.Where("enrollment_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("enrollment_date <= ?", *f.To)
	}
	return q
}

func (r *GormRepository) CountEnrollments(ctx context.Context, f EnrollmentFilter) (int64, error) {
	var n int64
	err := r.enrollmentQuery(ctx, f).Count(&n).Error
	return n, dberr.Translate(err, nil)
}

func (r *GormRepository) ListEnrollments(ctx context.Context, f EnrollmentFilter, limit, offset int) ([]enrollModel.Enrollment, int64, error) {
	var total int64
	if err := r.enrollmentQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, dberr.Translate(err, nil)
	}
	var rows []enrollModel.Enrollment
	err := r.enrollmentQuery(ctx, f).Order("enrollment_date DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, dberr.Translate(err, nil)
}
