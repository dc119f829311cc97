package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassStatus string

const (
	ClassActive   ClassStatus = "active"
	ClassInactive ClassStatus = "inactive"
)

// Class is a group of students taking one course.
type Class struct {
	ClassID       uuid.UUID   `json:"class_id" gorm:"column:class_id;type:uuid;primaryKey"`
	ClassCenterID uuid.UUID   `json:"class_center_id" gorm:"column:class_center_id;type:uuid;not null;index:idx_classes_center_status,priority:1"`
	ClassCourseID uuid.UUID   `json:"class_course_id" gorm:"column:class_course_id;type:uuid;not null;index"`
	ClassName     string      `json:"class_name" gorm:"column:class_name;type:varchar(80);not null"`
	ClassPeriod   *string     `json:"class_period,omitempty" gorm:"column:class_period;type:varchar(20)"`
	ClassStatus   ClassStatus `json:"class_status" gorm:"column:class_status;type:varchar(10);not null;default:'active';index:idx_classes_center_status,priority:2"`

	ClassCreatedAt time.Time      `json:"class_created_at" gorm:"column:class_created_at;type:timestamptz;not null;autoCreateTime"`
	ClassUpdatedAt time.Time      `json:"class_updated_at" gorm:"column:class_updated_at;type:timestamptz;not null;autoUpdateTime"`
	ClassDeletedAt gorm.DeletedAt `json:"class_deleted_at,omitempty" gorm:"column:class_deleted_at;type:timestamptz;index"`
}

func (Class) TableName() string { return "classes" }

func (m *Class) BeforeCreate(tx *gorm.DB) error {
	if m.ClassID == uuid.Nil {
		m.ClassID = uuid.New()
	}
	return nil
}
