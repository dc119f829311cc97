package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "Dinheiro"
	MethodMulticaixa   PaymentMethod = "Multicaixa Express"
	MethodBankTransfer PaymentMethod = "Transferência Bancária (ATM)"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodMulticaixa, MethodBankTransfer:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"
)

// Payment is money received at the desk for one enrollment. MonthReference
// and YearReference record which billing month it was meant for.
type Payment struct {
	PaymentID             uuid.UUID       `json:"payment_id" gorm:"column:payment_id;type:uuid;primaryKey"`
	PaymentEnrollmentID   uuid.UUID       `json:"payment_enrollment_id" gorm:"column:payment_enrollment_id;type:uuid;not null;index"`
	PaymentCenterID       uuid.UUID       `json:"payment_center_id" gorm:"column:payment_center_id;type:uuid;not null;index:idx_payments_center_date,priority:1"`
	PaymentUserID         uuid.UUID       `json:"payment_user_id" gorm:"column:payment_user_id;type:uuid;not null"`
	PaymentAmount         decimal.Decimal `json:"payment_amount" gorm:"column:payment_amount;type:numeric(14,2);not null"`
	PaymentLateFee        decimal.Decimal `json:"payment_late_fee" gorm:"column:payment_late_fee;type:numeric(14,2);not null;default:0"`
	PaymentDate           time.Time       `json:"payment_date" gorm:"column:payment_date;type:timestamptz;not null;index:idx_payments_center_date,priority:2"`
	PaymentMethod         PaymentMethod   `json:"payment_method" gorm:"column:payment_method;type:varchar(40);not null;default:'Dinheiro'"`
	PaymentStatus         PaymentStatus   `json:"payment_status" gorm:"column:payment_status;type:varchar(10);not null;default:'paid'"`
	PaymentMonthReference string          `json:"payment_month_reference" gorm:"column:payment_month_reference;type:varchar(12)"`
	PaymentYearReference  int             `json:"payment_year_reference" gorm:"column:payment_year_reference;type:int"`

	PaymentCreatedAt time.Time      `json:"payment_created_at" gorm:"column:payment_created_at;type:timestamptz;not null;autoCreateTime"`
	PaymentUpdatedAt time.Time      `json:"payment_updated_at" gorm:"column:payment_updated_at;type:timestamptz;not null;autoUpdateTime"`
	PaymentDeletedAt gorm.DeletedAt `json:"payment_deleted_at,omitempty" gorm:"column:payment_deleted_at;type:timestamptz;index"`
}

func (Payment) TableName() string { return "payments" }

func (m *Payment) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentID == uuid.Nil {
		m.PaymentID = uuid.New()
	}
	return nil
}

type PaymentReceipt struct {
	PaymentReceiptID        uuid.UUID `json:"payment_receipt_id" gorm:"column:payment_receipt_id;type:uuid;primaryKey"`
	PaymentReceiptPaymentID uuid.UUID `json:"payment_receipt_payment_id" gorm:"column:payment_receipt_payment_id;type:uuid;not null;uniqueIndex"`
	PaymentReceiptNumber    string    `json:"payment_receipt_number" gorm:"column:payment_receipt_number;type:varchar(40);not null;uniqueIndex"`
	PaymentReceiptCreatedAt time.Time `json:"payment_receipt_created_at" gorm:"column:payment_receipt_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (PaymentReceipt) TableName() string { return "payment_receipts" }

func (m *PaymentReceipt) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentReceiptID == uuid.Nil {
		m.PaymentReceiptID = uuid.New()
	}
	return nil
}
