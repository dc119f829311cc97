package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	fpModel "letrus_backend/internals/features/finance/financial_plans/model"
	"letrus_backend/internals/features/finance/payments/model"
	"letrus_backend/internals/features/finance/payments/repository"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/features/school/school_years/calendar"
	"letrus_backend/internals/helpers/apperror"
)

// MissingEntryPolicy decides what happens when a payment references a month
// with no plan entry. Live intake passes nil and gets ErrPlanEntryMissing.
type MissingEntryPolicy interface {
	Materialize(ctx context.Context, e *enrollModel.Enrollment, p *model.Payment, month calendar.BillingMonth) (*fpModel.FinancialPlan, error)
}

type RecordPaymentInput struct {
	EnrollmentID   uuid.UUID
	CenterID       uuid.UUID
	UserID         uuid.UUID
	Amount         decimal.Decimal
	LateFee        decimal.Decimal
	PaymentDate    time.Time
	Method         model.PaymentMethod
	MonthReference string
	YearReference  int
}

type Result struct {
	Payment *model.Payment         `json:"payment"`
	Receipt *model.PaymentReceipt  `json:"receipt"`
	Entry   *fpModel.FinancialPlan `json:"financial_plan_entry"`
}

type Reconciler struct {
	store    repository.Repository
	receipts ReceiptNumberer
	clock    func() time.Time
	log      *logrus.Entry
}

func NewReconciler(store repository.Repository, receipts ReceiptNumberer, clock func() time.Time, log *logrus.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		receipts: receipts,
		clock:    clock,
		log:      log.WithField("component", "payment_reconciler"),
	}
}

// RecordPayment creates the payment, its receipt and the link to the plan
// entry in one transaction. Any failure leaves nothing behind.
func (r *Reconciler) RecordPayment(ctx context.Context, in RecordPaymentInput) (*Result, error) {
	month, err := r.validate(&in)
	if err != nil {
		return nil, err
	}

	var out *Result
	err = r.store.WithinTx(ctx, func(tx repository.TxRepository) error {
		enr, err := tx.FindEnrollment(ctx, in.EnrollmentID)
		if err != nil {
			return err
		}
		if in.CenterID != uuid.Nil && in.CenterID != enr.EnrollmentCenterID {
			return apperror.ErrNotFound.With("enrollment %s not found", in.EnrollmentID)
		}
		if !enr.EnrollmentHasFinancialPlan {
			return apperror.ErrFinancialPlanNotReady.With("enrollment %s has no financial plan yet", enr.EnrollmentID)
		}

		p := &model.Payment{
			PaymentID:             uuid.New(),
			PaymentEnrollmentID:   enr.EnrollmentID,
			PaymentCenterID:       enr.EnrollmentCenterID,
			PaymentUserID:         in.UserID,
			PaymentAmount:         in.Amount,
			PaymentLateFee:        in.LateFee,
			PaymentDate:           in.PaymentDate,
			PaymentMethod:         in.Method,
			PaymentStatus:         model.PaymentPaid,
			PaymentMonthReference: month.Name,
			PaymentYearReference:  month.Year,
		}
		if err := tx.CreatePayment(ctx, p); err != nil {
			return err
		}

		entry, err := r.reconcile(ctx, tx, enr, p, month, nil)
		if err != nil {
			return err
		}

		rc, err := r.issueReceipt(ctx, tx, p)
		if err != nil {
			return err
		}
		out = &Result{Payment: p, Receipt: rc, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"payment_id":    out.Payment.PaymentID,
		"enrollment_id": out.Payment.PaymentEnrollmentID,
		"month":         month.Name,
		"year":          month.Year,
	}).Info("payment reconciled")
	return out, nil
}

type LinkOutcome string

const (
	LinkLinked       LinkOutcome = "linked"
	LinkMaterialized LinkOutcome = "materialized"
	LinkAlreadyDone  LinkOutcome = "already_done"
)

// LinkExisting reconciles a payment that was recorded before plans existed.
// An entry already linked to p counts as done.
func (r *Reconciler) LinkExisting(ctx context.Context, p *model.Payment, policy MissingEntryPolicy) (LinkOutcome, error) {
	idx, ok := calendar.MonthIndex(p.PaymentMonthReference)
	if !ok {
		return "", apperror.ErrInvalidMonthReference.With("unknown month %q", p.PaymentMonthReference)
	}
	month := calendar.Month(p.PaymentYearReference, idx)

	var outcome LinkOutcome
	err := r.store.WithinTx(ctx, func(tx repository.TxRepository) error {
		enr, err := tx.FindEnrollment(ctx, p.PaymentEnrollmentID)
		if err != nil {
			return err
		}
		entry, err := tx.LockPlanEntry(ctx, enr.EnrollmentID, month.Name, month.Year)
		switch {
		case err == nil && entry.FinancialPlanLinkedPaymentID != nil && *entry.FinancialPlanLinkedPaymentID == p.PaymentID:
			outcome = LinkAlreadyDone
			return nil
		case err == nil:
			outcome = LinkLinked
		case errors.Is(err, apperror.ErrPlanEntryMissing):
			outcome = LinkMaterialized
		default:
			return err
		}
		_, err = r.reconcile(ctx, tx, enr, p, month, policy)
		return err
	})
	return outcome, err
}

func (r *Reconciler) reconcile(ctx context.Context, tx repository.TxRepository, enr *enrollModel.Enrollment, p *model.Payment, month calendar.BillingMonth, policy MissingEntryPolicy) (*fpModel.FinancialPlan, error) {
	entry, err := tx.LockPlanEntry(ctx, enr.EnrollmentID, month.Name, month.Year)
	if errors.Is(err, apperror.ErrPlanEntryMissing) {
		if policy == nil {
			return nil, err
		}
		entry, err = policy.Materialize(ctx, enr, p, month)
		if err != nil {
			return nil, err
		}
		entry.FinancialPlanStatus = fpModel.PlanPaid
		entry.FinancialPlanLinkedPaymentID = &p.PaymentID
		if err := tx.InsertPlanEntry(ctx, entry); err != nil {
			return nil, err
		}
		return entry, nil
	}
	if err != nil {
		return nil, err
	}

	if entry.FinancialPlanLinkedPaymentID != nil || !entry.FinancialPlanStatus.Payable() {
		return nil, alreadyReconciled(entry)
	}
	linked, err := tx.LinkPlanEntry(ctx, entry.FinancialPlanID, p.PaymentID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, alreadyReconciled(entry)
	}
	entry.FinancialPlanStatus = fpModel.PlanPaid
	entry.FinancialPlanLinkedPaymentID = &p.PaymentID
	return entry, nil
}

func alreadyReconciled(e *fpModel.FinancialPlan) error {
	d := map[string]any{
		"financial_plan_id": e.FinancialPlanID,
		"month":             e.FinancialPlanMonth,
		"year":              e.FinancialPlanYear,
	}
	if e.FinancialPlanLinkedPaymentID != nil {
		d["linked_payment_id"] = *e.FinancialPlanLinkedPaymentID
	}
	return apperror.ErrAlreadyReconciled.
		With("%s %d is already paid", e.FinancialPlanMonth, e.FinancialPlanYear).
		WithDetails(d)
}

func (r *Reconciler) issueReceipt(ctx context.Context, tx repository.TxRepository, p *model.Payment) (*model.PaymentReceipt, error) {
	number, err := r.receipts.Next(ctx, p.PaymentCenterID)
	if err != nil {
		return nil, err
	}
	rc := &model.PaymentReceipt{
		PaymentReceiptID:        uuid.New(),
		PaymentReceiptPaymentID: p.PaymentID,
		PaymentReceiptNumber:    number,
	}
	if err := tx.CreateReceipt(ctx, rc); err != nil {
		return nil, err
	}
	return rc, nil
}

func (r *Reconciler) validate(in *RecordPaymentInput) (calendar.BillingMonth, error) {
	fields := map[string][]string{}
	if in.EnrollmentID == uuid.Nil {
		fields["enrollment_id"] = append(fields["enrollment_id"], "required")
	}
	if !in.Amount.IsPositive() {
		fields["amount"] = append(fields["amount"], "must be greater than zero")
	}
	if in.LateFee.IsNegative() {
		fields["late_fee"] = append(fields["late_fee"], "must not be negative")
	}
	if in.Method == "" {
		in.Method = model.MethodCash
	}
	if !in.Method.Valid() {
		fields["payment_method"] = append(fields["payment_method"], "unknown payment method")
	}
	if in.YearReference < 2000 || in.YearReference > 2100 {
		fields["year_reference"] = append(fields["year_reference"], "out of range")
	}
	if len(fields) > 0 {
		return calendar.BillingMonth{}, apperror.Validation(fields)
	}

	idx, ok := calendar.MonthIndex(in.MonthReference)
	if !ok {
		return calendar.BillingMonth{}, apperror.ErrInvalidMonthReference.With("unknown month %q", in.MonthReference)
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = r.clock()
	}
	return calendar.Month(in.YearReference, idx), nil
}
