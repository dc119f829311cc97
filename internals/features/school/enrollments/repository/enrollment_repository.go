package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"letrus_backend/internals/databases/dberr"
	"letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/helpers/apperror"
)

type Filter struct {
	CenterID         uuid.UUID
	StudentID        *uuid.UUID
	ClassID          *uuid.UUID
	Status           *model.EnrollmentStatus
	HasFinancialPlan *bool
}

type Repository interface {
	Create(ctx context.Context, m *model.Enrollment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error)
	// Delete removes the row for good; it undoes a failed intake.
	Delete(ctx context.Context, id uuid.UUID) error
	// MarkFinancialPlanReady binds feeID unless a fee is already bound.
	MarkFinancialPlanReady(ctx context.Context, id, feeID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.EnrollmentStatus) error
	List(ctx context.Context, f Filter, limit, offset int) ([]model.Enrollment, int64, error)
	// ListWithoutPlan pages (keyset on id) through enrollments still missing a plan.
	ListWithoutPlan(ctx context.Context, afterID uuid.UUID, limit int) ([]model.Enrollment, error)
}

type GormRepository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func notFound(id uuid.UUID) *apperror.Error {
	return apperror.ErrNotFound.With("enrollment %s not found", id)
}

func (r *GormRepository) Create(ctx context.Context, m *model.Enrollment) error {
	return dberr.Translate(r.DB.WithContext(ctx).Create(m).Error, nil)
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	var m model.Enrollment
	if err := r.DB.WithContext(ctx).Where("enrollment_id = ?", id).Take(&m).Error; err != nil {
		return nil, dberr.Translate(err, notFound(id))
	}
	return &m, nil
}

func (r *GormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.DB.WithContext(ctx).Unscoped().Where("enrollment_id = ?", id).Delete(&model.Enrollment{}).Error
	return dberr.Translate(err, nil)
}

func (r *GormRepository) MarkFinancialPlanReady(ctx context.Context, id, feeID uuid.UUID) error {
	res := r.DB.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ?", id).
		Updates(map[string]any{
			"enrollment_tuition_fee_id":     gorm.Expr("COALESCE(enrollment_tuition_fee_id, ?)", feeID),
			"enrollment_has_financial_plan": true,
		})
	if res.Error != nil {
		return dberr.Translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.EnrollmentStatus) error {
	res := r.DB.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ?", id).
		Update("enrollment_status", status)
	if res.Error != nil {
		return dberr.Translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

func (r *GormRepository) List(ctx context.Context, f Filter, limit, offset int) ([]model.Enrollment, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Enrollment{}).Where("enrollment_center_id = ?", f.CenterID)
	if f.StudentID != nil {
		q = q.Where("enrollment_student_id = ?", *f.StudentID)
	}
	if f.ClassID != nil {
		q = q.Where("enrollment_class_id = ?", *f.ClassID)
	}
	if f.Status != nil {
		q = q.Where("enrollment_status = ?", *f.Status)
	}
	if f.HasFinancialPlan != nil {
		q = q.Where("enrollment_has_financial_plan = ?", *f.HasFinancialPlan)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dberr.Translate(err, nil)
	}
	var rows []model.Enrollment
	err := q.Order("enrollment_date DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, dberr.Translate(err, nil)
}

func (r *GormRepository) ListWithoutPlan(ctx context.Context, afterID uuid.UUID, limit int) ([]model.Enrollment, error) {
	var rows []model.Enrollment
	err := r.DB.WithContext(ctx).
		Where("enrollment_has_financial_plan = FALSE AND enrollment_id > ?", afterID).
		Order("enrollment_id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, dberr.Translate(err, nil)
}
