package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- ENUM financial_plan_status ---------------------------------------------
// pending -> overdue (sweeper), pending|overdue -> paid (reconciliation).
// Nothing leaves paid.
type PlanStatus string

const (
	PlanPending PlanStatus = "pending"
	PlanPaid    PlanStatus = "paid"
	PlanOverdue PlanStatus = "overdue"
)

// Payable reports whether reconciliation may move s to paid.
func (s PlanStatus) Payable() bool { return s == PlanPending || s == PlanOverdue }

// FinancialPlan is one obligation: what an enrollment owes for one billing
// month. Unique per (enrollment, month, year).
type FinancialPlan struct {
	FinancialPlanID           uuid.UUID       `json:"financial_plan_id" gorm:"column:financial_plan_id;type:uuid;primaryKey"`
	FinancialPlanEnrollmentID uuid.UUID       `json:"financial_plan_enrollment_id" gorm:"column:financial_plan_enrollment_id;type:uuid;not null;uniqueIndex:uq_financial_plans_enrollment_month_year,priority:1"`
	FinancialPlanCenterID     uuid.UUID       `json:"financial_plan_center_id" gorm:"column:financial_plan_center_id;type:uuid;not null;index:idx_financial_plans_center_year_status,priority:1"`
	FinancialPlanUserID       uuid.UUID       `json:"financial_plan_user_id" gorm:"column:financial_plan_user_id;type:uuid;not null"`
	FinancialPlanSchoolYearID uuid.UUID       `json:"financial_plan_school_year_id" gorm:"column:financial_plan_school_year_id;type:uuid;not null;index:idx_financial_plans_center_year_status,priority:2"`
	FinancialPlanMonth        string          `json:"financial_plan_month" gorm:"column:financial_plan_month;type:varchar(12);not null;uniqueIndex:uq_financial_plans_enrollment_month_year,priority:2"`
	FinancialPlanMonthIndex   int             `json:"financial_plan_month_index" gorm:"column:financial_plan_month_index;type:smallint;not null"`
	FinancialPlanYear         int             `json:"financial_plan_year" gorm:"column:financial_plan_year;type:int;not null;uniqueIndex:uq_financial_plans_enrollment_month_year,priority:3"`
	FinancialPlanDueDate      time.Time       `json:"financial_plan_due_date" gorm:"column:financial_plan_due_date;type:timestamptz;not null;index:idx_financial_plans_status_due,priority:2"`
	FinancialPlanTuitionFee   decimal.Decimal `json:"financial_plan_tuition_fee" gorm:"column:financial_plan_tuition_fee;type:numeric(14,2);not null"`
	FinancialPlanStatus       PlanStatus      `json:"financial_plan_status" gorm:"column:financial_plan_status;type:varchar(10);not null;default:'pending';index:idx_financial_plans_status_due,priority:1;index:idx_financial_plans_center_year_status,priority:3"`

	FinancialPlanLinkedPaymentID *uuid.UUID `json:"financial_plan_linked_payment_id,omitempty" gorm:"column:financial_plan_linked_payment_id;type:uuid;uniqueIndex:uq_financial_plans_linked_payment"`

	FinancialPlanCreatedAt time.Time `json:"financial_plan_created_at" gorm:"column:financial_plan_created_at;type:timestamptz;not null;autoCreateTime"`
	FinancialPlanUpdatedAt time.Time `json:"financial_plan_updated_at" gorm:"column:financial_plan_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (FinancialPlan) TableName() string { return "financial_plans" }

func (m *FinancialPlan) BeforeCreate(tx *gorm.DB) error {
	if m.FinancialPlanID == uuid.Nil {
		m.FinancialPlanID = uuid.New()
	}
	return nil
}
