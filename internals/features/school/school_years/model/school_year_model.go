package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SchoolYear: one academic period of a center. At most one per center is
// current (partial unique index uq_school_years_current_per_center).
type SchoolYear struct {
	SchoolYearID          uuid.UUID `json:"school_year_id" gorm:"column:school_year_id;type:uuid;primaryKey"`
	SchoolYearCenterID    uuid.UUID `json:"school_year_center_id" gorm:"column:school_year_center_id;type:uuid;not null;index"`
	SchoolYearDescription string    `json:"school_year_description" gorm:"column:school_year_description;type:varchar(10);not null"`
	SchoolYearStartDate   time.Time `json:"school_year_start_date" gorm:"column:school_year_start_date;type:date;not null"`
	SchoolYearEndDate     time.Time `json:"school_year_end_date" gorm:"column:school_year_end_date;type:date;not null"`
	SchoolYearIsCurrent   bool      `json:"school_year_is_current" gorm:"column:school_year_is_current;type:boolean;not null;default:false"`

	SchoolYearCreatedAt time.Time      `json:"school_year_created_at" gorm:"column:school_year_created_at;type:timestamptz;not null;autoCreateTime"`
	SchoolYearUpdatedAt time.Time      `json:"school_year_updated_at" gorm:"column:school_year_updated_at;type:timestamptz;not null;autoUpdateTime"`
	SchoolYearDeletedAt gorm.DeletedAt `json:"school_year_deleted_at,omitempty" gorm:"column:school_year_deleted_at;type:timestamptz;index"`
}

func (SchoolYear) TableName() string { return "school_years" }

var ErrEndBeforeStart = errors.New("school_year_end_date must be >= school_year_start_date")

func (m *SchoolYear) Validate() error {
	if m.SchoolYearEndDate.Before(m.SchoolYearStartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

func (m *SchoolYear) BeforeCreate(tx *gorm.DB) error {
	if m.SchoolYearID == uuid.Nil {
		m.SchoolYearID = uuid.New()
	}
	return nil
}

func (m *SchoolYear) BeforeSave(tx *gorm.DB) error { return m.Validate() }
