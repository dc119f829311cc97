package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"letrus_backend/internals/databases/dberr"
	"letrus_backend/internals/features/finance/financial_plans/model"
)

type Repository interface {
	// InsertIfAbsent reports false when (enrollment, month, year) already exists.
	InsertIfAbsent(ctx context.Context, entry *model.FinancialPlan) (bool, error)
	ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]model.FinancialPlan, error)
	// MarkOverdue moves every pending entry due at or before cutoff to overdue.
	MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error)
}

type GormRepository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) InsertIfAbsent(ctx context.Context, entry *model.FinancialPlan) (bool, error) {
	if entry.FinancialPlanID == uuid.Nil {
		entry.FinancialPlanID = uuid.New()
	}
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "financial_plan_enrollment_id"},
				{Name: "financial_plan_month"},
				{Name: "financial_plan_year"},
			},
			DoNothing: true,
		}).
		Create(entry)
	if res.Error != nil {
		return false, dberr.Translate(res.Error, nil)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]model.FinancialPlan, error) {
	var rows []model.FinancialPlan
	err := r.DB.WithContext(ctx).
		Where("financial_plan_enrollment_id = ?", enrollmentID).
		Order("financial_plan_year ASC, financial_plan_month_index ASC").
		Find(&rows).Error
	return rows, dberr.Translate(err, nil)
}

func (r *GormRepository) MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&model.FinancialPlan{}).
		Where("financial_plan_status = ? AND financial_plan_due_date <= ?", model.PlanPending, cutoff).
		Updates(map[string]any{
			"financial_plan_status":     model.PlanOverdue,
			"financial_plan_updated_at": time.Now(),
		})
	return res.RowsAffected, dberr.Translate(res.Error, nil)
}
