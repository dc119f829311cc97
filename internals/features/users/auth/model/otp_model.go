package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OTPStatus string

const (
	OTPPending OTPStatus = "pending"
	OTPUsed    OTPStatus = "used"
)

// OTP stores a bcrypt hash of a 6-digit code. Issuing a new code marks
// earlier pending ones used.
type OTP struct {
	OTPID        uuid.UUID `json:"otp_id" gorm:"column:otp_id;type:uuid;primaryKey"`
	OTPUserID    uuid.UUID `json:"otp_user_id" gorm:"column:otp_user_id;type:uuid;not null;index:idx_otps_user_status,priority:1"`
	OTPCodeHash  string    `json:"-" gorm:"column:otp_code_hash;type:text;not null"`
	OTPStatus    OTPStatus `json:"otp_status" gorm:"column:otp_status;type:varchar(10);not null;default:'pending';index:idx_otps_user_status,priority:2"`
	OTPExpiresAt time.Time `json:"otp_expires_at" gorm:"column:otp_expires_at;type:timestamptz;not null"`
	OTPCreatedAt time.Time `json:"otp_created_at" gorm:"column:otp_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (OTP) TableName() string { return "otps" }

func (m *OTP) BeforeCreate(tx *gorm.DB) error {
	if m.OTPID == uuid.Nil {
		m.OTPID = uuid.New()
	}
	return nil
}
