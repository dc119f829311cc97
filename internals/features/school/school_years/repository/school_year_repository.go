package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"letrus_backend/internals/databases/dberr"
	"letrus_backend/internals/features/school/school_years/model"
	"letrus_backend/internals/helpers/apperror"
)

type Repository interface {
	FindCurrent(ctx context.Context, centerID uuid.UUID) (*model.SchoolYear, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.SchoolYear, error)
	List(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]model.SchoolYear, int64, error)
	// Create and Update unset any other current year of the center in the
	// same transaction when m is current.
	Create(ctx context.Context, m *model.SchoolYear) error
	Update(ctx context.Context, m *model.SchoolYear) error
	SetCurrent(ctx context.Context, centerID, id uuid.UUID) error
}

type GormRepository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) FindCurrent(ctx context.Context, centerID uuid.UUID) (*model.SchoolYear, error) {
	var m model.SchoolYear
	err := r.DB.WithContext(ctx).
		Where("school_year_center_id = ? AND school_year_is_current = TRUE", centerID).
		Take(&m).Error
	if err != nil {
		return nil, dberr.Translate(err, apperror.ErrNotFound.With("center %s has no current school year", centerID))
	}
	return &m, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SchoolYear, error) {
	var m model.SchoolYear
	if err := r.DB.WithContext(ctx).Where("school_year_id = ?", id).Take(&m).Error; err != nil {
		return nil, dberr.Translate(err, apperror.ErrNotFound.With("school year %s not found", id))
	}
	return &m, nil
}

func (r *GormRepository) List(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]model.SchoolYear, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.SchoolYear{}).Where("school_year_center_id = ?", centerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dberr.Translate(err, nil)
	}
	var rows []model.SchoolYear
	err := q.Order("school_year_start_date DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, dberr.Translate(err, nil)
}

func unsetCurrent(tx *gorm.DB, centerID uuid.UUID, except uuid.UUID) error {
	return tx.Model(&model.SchoolYear{}).
		Where("school_year_center_id = ? AND school_year_is_current = TRUE AND school_year_id <> ?", centerID, except).
		Update("school_year_is_current", false).Error
}

func lockCenter(tx *gorm.DB, centerID uuid.UUID) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", "school_year_current:"+centerID.String()).Error
}

func (r *GormRepository) Create(ctx context.Context, m *model.SchoolYear) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.SchoolYearIsCurrent {
			if err := lockCenter(tx, m.SchoolYearCenterID); err != nil {
				return err
			}
			if err := unsetCurrent(tx, m.SchoolYearCenterID, m.SchoolYearID); err != nil {
				return err
			}
		}
		return tx.Create(m).Error
	})
	return dberr.Translate(err, nil)
}

func (r *GormRepository) Update(ctx context.Context, m *model.SchoolYear) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.SchoolYearIsCurrent {
			if err := lockCenter(tx, m.SchoolYearCenterID); err != nil {
				return err
			}
			if err := unsetCurrent(tx, m.SchoolYearCenterID, m.SchoolYearID); err != nil {
				return err
			}
		}
		res := tx.Model(&model.SchoolYear{}).
			Where("school_year_id = ?", m.SchoolYearID).
			Select("school_year_description", "school_year_start_date", "school_year_end_date", "school_year_is_current").
			Updates(m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return dberr.Translate(err, apperror.ErrNotFound.With("school year %s not found", m.SchoolYearID))
}

func (r *GormRepository) SetCurrent(ctx context.Context, centerID, id uuid.UUID) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCenter(tx, centerID); err != nil {
			return err
		}
		if err := unsetCurrent(tx, centerID, id); err != nil {
			return err
		}
		res := tx.Model(&model.SchoolYear{}).
			Where("school_year_id = ? AND school_year_center_id = ?", id, centerID).
			Update("school_year_is_current", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return dberr.Translate(err, apperror.ErrNotFound.With("school year %s not found in center", id))
}
