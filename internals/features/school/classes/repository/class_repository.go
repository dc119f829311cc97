package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"letrus_backend/internals/databases/dberr"
	"letrus_backend/internals/features/school/classes/model"
	courseModel "letrus_backend/internals/features/school/courses/model"
	"letrus_backend/internals/helpers/apperror"
)

type Repository interface {
	Create(ctx context.Context, m *model.Class) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Class, error)
	List(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]model.Class, int64, error)
	// ResolveCourseID follows class -> course. A missing class is
	// ErrClassNotFound, a dangling course link is ErrCourseNotFound.
	ResolveCourseID(ctx context.Context, classID uuid.UUID) (uuid.UUID, error)
}

type GormRepository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) Create(ctx context.Context, m *model.Class) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&courseModel.Course{}).
		Where("course_id = ? AND course_center_id = ?", m.ClassCourseID, m.ClassCenterID).
		Count(&n).Error; err != nil {
		return dberr.Translate(err, nil)
	}
	if n == 0 {
		return apperror.ErrCourseNotFound.With("course %s not found in center", m.ClassCourseID)
	}
	return dberr.Translate(r.DB.WithContext(ctx).Create(m).Error, nil)
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Class, error) {
	var m model.Class
	if err := r.DB.WithContext(ctx).Where("class_id = ?", id).Take(&m).Error; err != nil {
		return nil, dberr.Translate(err, apperror.ErrNotFound.With("class %s not found", id))
	}
	return &m, nil
}

func (r *GormRepository) List(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]model.Class, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Class{}).Where("class_center_id = ?", centerID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dberr.Translate(err, nil)
	}
	var rows []model.Class
	err := q.Order("class_name ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, dberr.Translate(err, nil)
}

func (r *GormRepository) ResolveCourseID(ctx context.Context, classID uuid.UUID) (uuid.UUID, error) {
	var row struct {
		CourseID *uuid.UUID
	}
	err := r.DB.WithContext(ctx).
		Table("classes AS cl").
		Select("co.course_id AS course_id").
		Joins("LEFT JOIN courses AS co ON co.course_id = cl.class_course_id AND co.course_deleted_at IS NULL").
		Where("cl.class_id = ? AND cl.class_deleted_at IS NULL", classID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, apperror.ErrClassNotFound.With("class %s not found", classID)
	}
	if err != nil {
		return uuid.Nil, dberr.Translate(err, nil)
	}
	if row.CourseID == nil {
		return uuid.Nil, apperror.ErrCourseNotFound.With("class %s points to a missing course", classID)
	}
	return *row.CourseID, nil
}
