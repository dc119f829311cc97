package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"letrus_backend/internals/databases/dberr"
	feeModel "letrus_backend/internals/features/finance/tuition_fees/model"
	"letrus_backend/internals/features/school/courses/model"
	"letrus_backend/internals/helpers/apperror"
)

type Repository interface {
	Create(ctx context.Context, m *model.Course) error
	// CreateWithFee stores the course and its first fee version together.
	CreateWithFee(ctx context.Context, m *model.Course, fee *feeModel.TuitionFee) error
	Update(ctx context.Context, m *model.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	List(ctx context.Context, centerID uuid.UUID, status *model.CourseStatus, limit, offset int) ([]model.Course, int64, error)
}

type GormRepository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) Create(ctx context.Context, m *model.Course) error {
	return dberr.Translate(r.DB.WithContext(ctx).Create(m).Error, nil)
}

func (r *GormRepository) CreateWithFee(ctx context.Context, m *model.Course, fee *feeModel.TuitionFee) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		fee.TuitionFeeCourseID = m.CourseID
		fee.TuitionFeeStatus = feeModel.TuitionFeeActive
		return tx.Create(fee).Error
	})
	return dberr.Translate(err, nil)
}

func (r *GormRepository) Update(ctx context.Context, m *model.Course) error {
	res := r.DB.WithContext(ctx).Model(&model.Course{}).
		Where("course_id = ?", m.CourseID).
		Select("course_name", "course_description", "course_status").
		Updates(m)
	if res.Error == nil && res.RowsAffected == 0 {
		res.Error = gorm.ErrRecordNotFound
	}
	return dberr.Translate(res.Error, apperror.ErrNotFound.With("course %s not found", m.CourseID))
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var m model.Course
	if err := r.DB.WithContext(ctx).Where("course_id = ?", id).Take(&m).Error; err != nil {
		return nil, dberr.Translate(err, apperror.ErrNotFound.With("course %s not found", id))
	}
	return &m, nil
}

func (r *GormRepository) List(ctx context.Context, centerID uuid.UUID, status *model.CourseStatus, limit, offset int) ([]model.Course, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Course{}).Where("course_center_id = ?", centerID)
	if status != nil {
		q = q.Where("course_status = ?", *status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dberr.Translate(err, nil)
	}
	var rows []model.Course
	err := q.Order("course_name ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, dberr.Translate(err, nil)
}
