package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"letrus_backend/internals/databases/dberr"
	"letrus_backend/internals/features/school/students/model"
	"letrus_backend/internals/helpers/apperror"
)

type Repository interface {
	Create(ctx context.Context, m *model.Student) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	List(ctx context.Context, centerID uuid.UUID, search string, limit, offset int) ([]model.Student, int64, error)
}

type GormRepository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) Create(ctx context.Context, m *model.Student) error {
	err := dberr.Translate(r.DB.WithContext(ctx).Create(m).Error, nil)
	if e, ok := apperror.From(err); ok && e.Code == apperror.CodeConflict {
		return apperror.ErrConflict.With("student code %s already used in center", m.StudentCode)
	}
	return err
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	var m model.Student
	if err := r.DB.WithContext(ctx).Where("student_id = ?", id).Take(&m).Error; err != nil {
		return nil, dberr.Translate(err, apperror.ErrNotFound.With("student %s not found", id))
	}
	return &m, nil
}

func (r *GormRepository) List(ctx context.Context, centerID uuid.UUID, search string, limit, offset int) ([]model.Student, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Student{}).Where("student_center_id = ?", centerID)
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(student_name) LIKE ? OR LOWER(student_code) LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dberr.Translate(err, nil)
	}
	var rows []model.Student
	err := q.Order("student_name ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, dberr.Translate(err, nil)
}
