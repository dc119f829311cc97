// file: internals/features/finance/tuition_fees/model/tuition_fee_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- ENUM tuition_fee_status ------------------------------------------------
type TuitionFeeStatus string

const (
	TuitionFeeActive   TuitionFeeStatus = "active"
	TuitionFeeInactive TuitionFeeStatus = "inactive"
)

// TuitionFee is one version of a course's price list. Versions are never
// deleted; at most one per course is active (partial unique index
// uq_tuition_fees_active_per_course).
type TuitionFee struct {
	TuitionFeeID       uuid.UUID `json:"tuition_fee_id" gorm:"column:tuition_fee_id;type:uuid;primaryKey"`
	TuitionFeeCourseID uuid.UUID `json:"tuition_fee_course_id" gorm:"column:tuition_fee_course_id;type:uuid;not null;index:idx_tuition_fees_course_created,priority:1"`

	TuitionFeeFee                       decimal.Decimal `json:"tuition_fee_fee" gorm:"column:tuition_fee_fee;type:numeric(14,2);not null"`
	TuitionFeeFine                      decimal.Decimal `json:"tuition_fee_fine" gorm:"column:tuition_fee_fine;type:numeric(14,2);not null;default:0"`
	TuitionFeeEnrollmentFee             decimal.Decimal `json:"tuition_fee_enrollment_fee" gorm:"column:tuition_fee_enrollment_fee;type:numeric(14,2);not null;default:0"`
	TuitionFeeConfirmationEnrollmentFee decimal.Decimal `json:"tuition_fee_confirmation_enrollment_fee" gorm:"column:tuition_fee_confirmation_enrollment_fee;type:numeric(14,2);not null;default:0"`

	TuitionFeeStatus TuitionFeeStatus `json:"tuition_fee_status" gorm:"column:tuition_fee_status;type:varchar(10);not null;default:'active';index"`

	TuitionFeeCreatedAt time.Time `json:"tuition_fee_created_at" gorm:"column:tuition_fee_created_at;type:timestamptz;not null;index:idx_tuition_fees_course_created,priority:2,sort:desc"`
	TuitionFeeUpdatedAt time.Time `json:"tuition_fee_updated_at" gorm:"column:tuition_fee_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (TuitionFee) TableName() string { return "tuition_fees" }

func (m *TuitionFee) BeforeCreate(tx *gorm.DB) error {
	if m.TuitionFeeID == uuid.Nil {
		m.TuitionFeeID = uuid.New()
	}
	if m.TuitionFeeCreatedAt.IsZero() {
		m.TuitionFeeCreatedAt = time.Now()
	}
	return nil
}

// FeeFields are the four amounts a course edit can change.
type FeeFields struct {
	Fee                       decimal.Decimal `json:"fee"`
	FeeFine                   decimal.Decimal `json:"fee_fine"`
	EnrollmentFee             decimal.Decimal `json:"enrollment_fee"`
	ConfirmationEnrollmentFee decimal.Decimal `json:"confirmation_enrollment_fee"`
}

func (f FeeFields) Negative() []string {
	var out []string
	if f.Fee.IsNegative() {
		out = append(out, "fee")
	}
	if f.FeeFine.IsNegative() {
		out = append(out, "fee_fine")
	}
	if f.EnrollmentFee.IsNegative() {
		out = append(out, "enrollment_fee")
	}
	if f.ConfirmationEnrollmentFee.IsNegative() {
		out = append(out, "confirmation_enrollment_fee")
	}
	return out
}
