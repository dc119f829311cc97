package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	fpModel "letrus_backend/internals/features/finance/financial_plans/model"
	payModel "letrus_backend/internals/features/finance/payments/model"
	feeModel "letrus_backend/internals/features/finance/tuition_fees/model"
	classModel "letrus_backend/internals/features/school/classes/model"
	courseModel "letrus_backend/internals/features/school/courses/model"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	syModel "letrus_backend/internals/features/school/school_years/model"
	studentModel "letrus_backend/internals/features/school/students/model"
	authModel "letrus_backend/internals/features/users/auth/model"
	userModel "letrus_backend/internals/features/users/user/model"
)

// partialIndexes are the rules AutoMigrate cannot express.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_tuition_fees_active_per_course
		ON tuition_fees (tuition_fee_course_id)
		WHERE tuition_fee_status = 'active'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_school_years_current_per_center
		ON school_years (school_year_center_id)
		WHERE school_year_is_current AND school_year_deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_financial_plans_pending_due
		ON financial_plans (financial_plan_due_date)
		WHERE financial_plan_status = 'pending'`,
}

func Models() []any {
	return []any{
		&userModel.User{},
		&authModel.TokenBlacklist{},
		&authModel.OTP{},
		&syModel.SchoolYear{},
		&courseModel.Course{},
		&feeModel.TuitionFee{},
		&classModel.Class{},
		&studentModel.Student{},
		&enrollModel.Enrollment{},
		&fpModel.FinancialPlan{},
		&payModel.Payment{},
		&payModel.PaymentReceipt{},
	}
}

// Migrate creates or alters every table and the partial unique indexes.
func Migrate(ctx context.Context, db *gorm.DB, log *logrus.Logger) error {
	tx := db.WithContext(ctx)
	if err := tx.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range partialIndexes {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	log.WithField("tables", len(Models())).Info("schema migrated")
	return nil
}
