package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentEnrolled, EnrollmentCompleted, EnrollmentDropped:
		return true
	}
	return false
}

// Enrollment links a student to a class. EnrollmentTuitionFeeID is bound
// once, when the financial plan is generated, and never recomputed.
type Enrollment struct {
	EnrollmentID        uuid.UUID        `json:"enrollment_id" gorm:"column:enrollment_id;type:uuid;primaryKey"`
	EnrollmentStudentID uuid.UUID        `json:"enrollment_student_id" gorm:"column:enrollment_student_id;type:uuid;not null;index"`
	EnrollmentClassID   uuid.UUID        `json:"enrollment_class_id" gorm:"column:enrollment_class_id;type:uuid;not null;index"`
	EnrollmentCenterID  uuid.UUID        `json:"enrollment_center_id" gorm:"column:enrollment_center_id;type:uuid;not null;index:idx_enrollments_center_status,priority:1"`
	EnrollmentUserID    uuid.UUID        `json:"enrollment_user_id" gorm:"column:enrollment_user_id;type:uuid;not null"`
	EnrollmentDate      time.Time        `json:"enrollment_date" gorm:"column:enrollment_date;type:timestamptz;not null"`
	EnrollmentStatus    EnrollmentStatus `json:"enrollment_status" gorm:"column:enrollment_status;type:varchar(10);not null;default:'enrolled';index:idx_enrollments_center_status,priority:2"`

	EnrollmentTuitionFeeID     *uuid.UUID `json:"enrollment_tuition_fee_id,omitempty" gorm:"column:enrollment_tuition_fee_id;type:uuid"`
	EnrollmentHasScholarship   bool       `json:"enrollment_has_scholarship" gorm:"column:enrollment_has_scholarship;type:boolean;not null;default:false"`
	EnrollmentHasFinancialPlan bool       `json:"enrollment_has_financial_plan" gorm:"column:enrollment_has_financial_plan;type:boolean;not null;default:false;index"`

	// {"doc_file": "...", "image_file": "..."} stored by the upload collaborator.
	EnrollmentDocuments datatypes.JSON `json:"enrollment_documents,omitempty" gorm:"column:enrollment_documents;type:jsonb"`

	EnrollmentCreatedAt time.Time      `json:"enrollment_created_at" gorm:"column:enrollment_created_at;type:timestamptz;not null;autoCreateTime"`
	EnrollmentUpdatedAt time.Time      `json:"enrollment_updated_at" gorm:"column:enrollment_updated_at;type:timestamptz;not null;autoUpdateTime"`
	EnrollmentDeletedAt gorm.DeletedAt `json:"enrollment_deleted_at,omitempty" gorm:"column:enrollment_deleted_at;type:timestamptz;index"`
}

func (Enrollment) TableName() string { return "enrollments" }

func (m *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if m.EnrollmentID == uuid.Nil {
		m.EnrollmentID = uuid.New()
	}
	return nil
}

// Documents is the shape of EnrollmentDocuments.
type Documents struct {
	DocFile   string `json:"doc_file,omitempty"`
	ImageFile string `json:"image_file,omitempty"`
}
