package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"letrus_backend/internals/databases/dberr"
	fpModel "letrus_backend/internals/features/finance/financial_plans/model"
	"letrus_backend/internals/features/finance/payments/model"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/helpers/apperror"
)

type Filter struct {
	CenterID     uuid.UUID
	EnrollmentID *uuid.UUID
	From         *time.Time
	To           *time.Time
}

type Repository interface {
	// WithinTx runs fn in one transaction; fn's error rolls everything back.
	WithinTx(ctx context.Context, fn func(tx TxRepository) error) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, *model.PaymentReceipt, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]model.Payment, int64, error)
	// ListUnlinkedPaid pages (keyset on id) through paid payments that carry
	// a month reference but no plan entry points at them.
	ListUnlinkedPaid(ctx context.Context, afterID uuid.UUID, limit int) ([]model.Payment, error)
}

type TxRepository interface {
	FindEnrollment(ctx context.Context, id uuid.UUID) (*enrollModel.Enrollment, error)
	CreatePayment(ctx context.Context, p *model.Payment) error
	CreateReceipt(ctx context.Context, r *model.PaymentReceipt) error
	// LockPlanEntry reads the entry FOR UPDATE.
	LockPlanEntry(ctx context.Context, enrollmentID uuid.UUID, month string, year int) (*fpModel.FinancialPlan, error)
	// LinkPlanEntry sets paid + linked payment only if the entry is still
	// pending/overdue and unlinked. false means someone else got there first.
	LinkPlanEntry(ctx context.Context, entryID, paymentID uuid.UUID) (bool, error)
	InsertPlanEntry(ctx context.Context, e *fpModel.FinancialPlan) error
}

type GormRepository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) WithinTx(ctx context.Context, fn func(tx TxRepository) error) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{tx: tx})
	})
	return dberr.Translate(err, nil)
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, *model.PaymentReceipt, error) {
	var p model.Payment
	if err := r.DB.WithContext(ctx).Where("payment_id = ?", id).Take(&p).Error; err != nil {
		return nil, nil, dberr.Translate(err, apperror.ErrNotFound.With("payment %s not found", id))
	}
	var rc model.PaymentReceipt
	err := r.DB.WithContext(ctx).Where("payment_receipt_payment_id = ?", id).Take(&rc).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &p, nil, nil
	case err != nil:
		return nil, nil, dberr.Translate(err, nil)
	}
	return &p, &rc, nil
}

func (r *GormRepository) List(ctx context.Context, f Filter, limit, offset int) ([]model.Payment, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Payment{}).Where("payment_center_id = ?", f.CenterID)
	if f.EnrollmentID != nil {
		q = q.Where("payment_enrollment_id = ?", *f.EnrollmentID)
	}
	if f.From != nil {
		q = q.Where("payment_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("payment_date <= ?", *f.To)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dberr.Translate(err, nil)
	}
	var rows []model.Payment
	err := q.Order("payment_date DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, dberr.Translate(err, nil)
}

func (r *GormRepository) ListUnlinkedPaid(ctx context.Context, afterID uuid.UUID, limit int) ([]model.Payment, error) {
	var rows []model.Payment
	err := r.DB.WithContext(ctx).
		Where("payment_status = ? AND payment_month_reference <> '' AND payment_id > ?", model.PaymentPaid, afterID).
		Where("NOT EXISTS (SELECT 1 FROM financial_plans fp WHERE fp.financial_plan_linked_payment_id = payments.payment_id)").
		Order("payment_id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, dberr.Translate(err, nil)
}

type gormTx struct {
	tx *gorm.DB
}

func (t *gormTx) FindEnrollment(ctx context.Context, id uuid.UUID) (*enrollModel.Enrollment, error) {
	var e enrollModel.Enrollment
	if err := t.tx.WithContext(ctx).Where("enrollment_id = ?", id).Take(&e).Error; err != nil {
		return nil, dberr.Translate(err, apperror.ErrNotFound.With("enrollment %s not found", id))
	}
	return &e, nil
}

func (t *gormTx) CreatePayment(ctx context.Context, p *model.Payment) error {
	return dberr.Translate(t.tx.WithContext(ctx).Create(p).Error, nil)
}

func (t *gormTx) CreateReceipt(ctx context.Context, rc *model.PaymentReceipt) error {
	return dberr.Translate(t.tx.WithContext(ctx).Create(rc).Error, nil)
}

func (t *gormTx) LockPlanEntry(ctx context.Context, enrollmentID uuid.UUID, month string, year int) (*fpModel.FinancialPlan, error) {
	var e fpModel.FinancialPlan
	err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("financial_plan_enrollment_id = ? AND financial_plan_month = ? AND financial_plan_year = ?", enrollmentID, month, year).
		Take(&e).Error
	if err != nil {
		return nil, dberr.Translate(err, apperror.ErrPlanEntryMissing.With("no plan entry for %s %d", month, year))
	}
	return &e, nil
}

func (t *gormTx) LinkPlanEntry(ctx context.Context, entryID, paymentID uuid.UUID) (bool, error) {
	res := t.tx.WithContext(ctx).
		Model(&fpModel.FinancialPlan{}).
		Where("financial_plan_id = ? AND financial_plan_linked_payment_id IS NULL AND financial_plan_status IN ?",
			entryID, []fpModel.PlanStatus{fpModel.PlanPending, fpModel.PlanOverdue}).
		Updates(map[string]any{
			"financial_plan_status":            fpModel.PlanPaid,
			"financial_plan_linked_payment_id": paymentID,
			"financial_plan_updated_at":        time.Now(),
		})
	return res.RowsAffected == 1, dberr.Translate(res.Error, nil)
}

func (t *gormTx) InsertPlanEntry(ctx context.Context, e *fpModel.FinancialPlan) error {
	return dberr.Translate(t.tx.WithContext(ctx).Create(e).Error, nil)
}
