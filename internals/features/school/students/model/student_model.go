package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentStatus string

const (
	StudentActive   StudentStatus = "active"
	StudentInactive StudentStatus = "inactive"
)

type Student struct {
	StudentID        uuid.UUID     `json:"student_id" gorm:"column:student_id;type:uuid;primaryKey"`
	StudentCenterID  uuid.UUID     `json:"student_center_id" gorm:"column:student_center_id;type:uuid;not null;uniqueIndex:uq_students_center_code,priority:1"`
	StudentCode      string        `json:"student_code" gorm:"column:student_code;type:varchar(20);not null;uniqueIndex:uq_students_center_code,priority:2"`
	StudentName      string        `json:"student_name" gorm:"column:student_name;type:varchar(120);not null"`
	StudentBirthDate *time.Time    `json:"student_birth_date,omitempty" gorm:"column:student_birth_date;type:date"`
	StudentGender    *string       `json:"student_gender,omitempty" gorm:"column:student_gender;type:varchar(10)"`
	StudentPhone     *string       `json:"student_phone,omitempty" gorm:"column:student_phone;type:varchar(20)"`
	StudentStatus    StudentStatus `json:"student_status" gorm:"column:student_status;type:varchar(10);not null;default:'active'"`

	StudentCreatedAt time.Time      `json:"student_created_at" gorm:"column:student_created_at;type:timestamptz;not null;autoCreateTime"`
	StudentUpdatedAt time.Time      `json:"student_updated_at" gorm:"column:student_updated_at;type:timestamptz;not null;autoUpdateTime"`
	StudentDeletedAt gorm.DeletedAt `json:"student_deleted_at,omitempty" gorm:"column:student_deleted_at;type:timestamptz;index"`
}

func (Student) TableName() string { return "students" }

func (m *Student) BeforeCreate(tx *gorm.DB) error {
	if m.StudentID == uuid.Nil {
		m.StudentID = uuid.New()
	}
	return nil
}
