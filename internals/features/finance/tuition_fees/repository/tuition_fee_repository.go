package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"letrus_backend/internals/databases/dberr"
	"letrus_backend/internals/features/finance/tuition_fees/model"
	"letrus_backend/internals/helpers/apperror"
)

type Repository interface {
	FindActive(ctx context.Context, courseID uuid.UUID) (*model.TuitionFee, error)
	FindLatestAsOf(ctx context.Context, courseID uuid.UUID, asOf time.Time) (*model.TuitionFee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.TuitionFee, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.TuitionFee, error)
	// ReplaceActive deactivates the course's active version and inserts fee
	// as the new active one in a single transaction.
	ReplaceActive(ctx context.Context, fee *model.TuitionFee) error
}

type GormRepository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) FindActive(ctx context.Context, courseID uuid.UUID) (*model.TuitionFee, error) {
	var m model.TuitionFee
	err := r.DB.WithContext(ctx).
		Where("tuition_fee_course_id = ? AND tuition_fee_status = ?", courseID, model.TuitionFeeActive).
		Take(&m).Error
	if err != nil {
		return nil, dberr.Translate(err, apperror.ErrNotFound.With("course %s has no active tuition fee", courseID))
	}
	return &m, nil
}

func (r *GormRepository) FindLatestAsOf(ctx context.Context, courseID uuid.UUID, asOf time.Time) (*model.TuitionFee, error) {
	var m model.TuitionFee
	err := r.DB.WithContext(ctx).
		Where("tuition_fee_course_id = ? AND tuition_fee_created_at <= ?", courseID, asOf).
		Order("tuition_fee_created_at DESC").
		Take(&m).Error
	if err != nil {
		return nil, dberr.Translate(err, apperror.ErrNotFound.With("course %s has no tuition fee as of %s", courseID, asOf.Format(time.RFC3339)))
	}
	return &m, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TuitionFee, error) {
	var m model.TuitionFee
	if err := r.DB.WithContext(ctx).Where("tuition_fee_id = ?", id).Take(&m).Error; err != nil {
		return nil, dberr.Translate(err, apperror.ErrNotFound.With("tuition fee %s not found", id))
	}
	return &m, nil
}

func (r *GormRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.TuitionFee, error) {
	var rows []model.TuitionFee
	err := r.DB.WithContext(ctx).
		Where("tuition_fee_course_id = ?", courseID).
		Order("tuition_fee_created_at DESC").
		Find(&rows).Error
	return rows, dberr.Translate(err, nil)
}

func (r *GormRepository) ReplaceActive(ctx context.Context, fee *model.TuitionFee) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serializes concurrent edits of the same course until commit.
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", "tuition_fee:"+fee.TuitionFeeCourseID.String()).Error; err != nil {
			return err
		}

		var current []model.TuitionFee
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tuition_fee_course_id = ? AND tuition_fee_status = ?", fee.TuitionFeeCourseID, model.TuitionFeeActive).
			Find(&current).Error; err != nil {
			return err
		}
		if len(current) > 0 {
			if err := tx.Model(&model.TuitionFee{}).
				Where("tuition_fee_course_id = ? AND tuition_fee_status = ?", fee.TuitionFeeCourseID, model.TuitionFeeActive).
				Updates(map[string]any{
					"tuition_fee_status":     model.TuitionFeeInactive,
					"tuition_fee_updated_at": fee.TuitionFeeCreatedAt,
				}).Error; err != nil {
				return err
			}
		}

		fee.TuitionFeeStatus = model.TuitionFeeActive
		return tx.Create(fee).Error
	})
	return dberr.Translate(err, nil)
}
