package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseActive   CourseStatus = "active"
	CourseInactive CourseStatus = "inactive"
)

type Course struct {
	CourseID          uuid.UUID    `json:"course_id" gorm:"column:course_id;type:uuid;primaryKey"`
	CourseCenterID    uuid.UUID    `json:"course_center_id" gorm:"column:course_center_id;type:uuid;not null;index:idx_courses_center_status,priority:1"`
	CourseName        string       `json:"course_name" gorm:"column:course_name;type:varchar(120);not null"`
	CourseDescription *string      `json:"course_description,omitempty" gorm:"column:course_description;type:text"`
	CourseStatus      CourseStatus `json:"course_status" gorm:"column:course_status;type:varchar(10);not null;default:'active';index:idx_courses_center_status,priority:2"`

	CourseCreatedAt time.Time      `json:"course_created_at" gorm:"column:course_created_at;type:timestamptz;not null;autoCreateTime"`
	CourseUpdatedAt time.Time      `json:"course_updated_at" gorm:"column:course_updated_at;type:timestamptz;not null;autoUpdateTime"`
	CourseDeletedAt gorm.DeletedAt `json:"course_deleted_at,omitempty" gorm:"column:course_deleted_at;type:timestamptz;index"`
}

func (Course) TableName() string { return "courses" }

func (m *Course) BeforeCreate(tx *gorm.DB) error {
	if m.CourseID == uuid.Nil {
		m.CourseID = uuid.New()
	}
	return nil
}
