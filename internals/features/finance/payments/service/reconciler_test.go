package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letrus_backend/internals/databases/inmem"
	fpModel "letrus_backend/internals/features/finance/financial_plans/model"
	"letrus_backend/internals/features/finance/payments/model"
	feeModel "letrus_backend/internals/features/finance/tuition_fees/model"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	syModel "letrus_backend/internals/features/school/school_years/model"
	"letrus_backend/internals/helpers/apperror"
)

type env struct {
	plans       *inmem.FinancialPlans
	enrollments *inmem.Enrollments
	payments    *inmem.Payments
	rec         *Reconciler
	enrollment  *enrollModel.Enrollment
	now         time.Time
}

func newEnv(t *testing.T, ready bool) *env {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	e := &env{
		plans:       inmem.NewFinancialPlans(),
		enrollments: inmem.NewEnrollments(),
		now:         time.Date(2025, time.May, 3, 10, 0, 0, 0, time.UTC),
	}
	e.payments = inmem.NewPayments(e.plans, e.enrollments)
	e.rec = NewReconciler(e.payments, RandomReceipts{}, func() time.Time { return e.now }, log)

	e.enrollment = &enrollModel.Enrollment{
		EnrollmentStudentID:        uuid.New(),
		EnrollmentClassID:          uuid.New(),
		EnrollmentCenterID:         uuid.New(),
		EnrollmentUserID:           uuid.New(),
		EnrollmentDate:             time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC),
		EnrollmentHasFinancialPlan: ready,
	}
	require.NoError(t, e.enrollments.Create(context.Background(), e.enrollment))
	return e
}

func (e *env) entry(month string, idx int, status fpModel.PlanStatus) {
	e.plans.Put(fpModel.FinancialPlan{
		FinancialPlanEnrollmentID: e.enrollment.EnrollmentID,
		FinancialPlanCenterID:     e.enrollment.EnrollmentCenterID,
		FinancialPlanMonth:        month,
		FinancialPlanMonthIndex:   idx,
		FinancialPlanYear:         2025,
		FinancialPlanDueDate:      time.Date(2025, time.Month(idx+2), 10, 0, 0, 0, 0, time.UTC),
		FinancialPlanTuitionFee:   decimal.NewFromInt(5000),
		FinancialPlanStatus:       status,
	})
}

func (e *env) input(month string) RecordPaymentInput {
	return RecordPaymentInput{
		EnrollmentID:   e.enrollment.EnrollmentID,
		UserID:         uuid.New(),
		Amount:         decimal.NewFromInt(5000),
		MonthReference: month,
		YearReference:  2025,
	}
}

func TestRecordPaymentLinksPendingEntry(t *testing.T) {
	e := newEnv(t, true)
	e.entry("Abril", 3, fpModel.PlanPending)

	res, err := e.rec.RecordPayment(context.Background(), e.input("Abril"))
	require.NoError(t, err)

	assert.Equal(t, model.MethodCash, res.Payment.PaymentMethod)
	assert.Equal(t, model.PaymentPaid, res.Payment.PaymentStatus)
	assert.Equal(t, e.now, res.Payment.PaymentDate)
	assert.True(t, strings.HasPrefix(res.Receipt.PaymentReceiptNumber, "P"))
	assert.Equal(t, res.Payment.PaymentID, res.Receipt.PaymentReceiptPaymentID)

	stored, ok := e.plans.Get(e.enrollment.EnrollmentID, "Abril", 2025)
	require.True(t, ok)
	assert.Equal(t, fpModel.PlanPaid, stored.FinancialPlanStatus)
	require.NotNil(t, stored.FinancialPlanLinkedPaymentID)
	assert.Equal(t, res.Payment.PaymentID, *stored.FinancialPlanLinkedPaymentID)
}

func TestRecordPaymentSettlesOverdueEntry(t *testing.T) {
	e := newEnv(t, true)
	e.entry("Março", 2, fpModel.PlanOverdue)

	in := e.input("Março")
	in.LateFee = decimal.NewFromInt(500)
	in.Method = model.MethodMulticaixa
	res, err := e.rec.RecordPayment(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, fpModel.PlanPaid, res.Entry.FinancialPlanStatus)
	assert.Equal(t, "500", res.Payment.PaymentLateFee.String())
}

func TestRecordPaymentTwiceIsAlreadyReconciled(t *testing.T) {
	e := newEnv(t, true)
	e.entry("Abril", 3, fpModel.PlanPending)

	first, err := e.rec.RecordPayment(context.Background(), e.input("Abril"))
	require.NoError(t, err)

	_, err = e.rec.RecordPayment(context.Background(), e.input("Abril"))
	require.ErrorIs(t, err, apperror.ErrAlreadyReconciled)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	details, ok := appErr.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, first.Payment.PaymentID, details["linked_payment_id"])

	stored, _ := e.plans.Get(e.enrollment.EnrollmentID, "Abril", 2025)
	assert.Equal(t, first.Payment.PaymentID, *stored.FinancialPlanLinkedPaymentID)

	// the second payment rolled back with its receipt
	payments, receipts := e.payments.Counts()
	assert.Equal(t, 1, payments)
	assert.Equal(t, 1, receipts)
}

func TestRecordPaymentAgainstPaidUnlinkedEntry(t *testing.T) {
	e := newEnv(t, true)
	e.entry("Abril", 3, fpModel.PlanPaid)

	_, err := e.rec.RecordPayment(context.Background(), e.input("Abril"))
	assert.ErrorIs(t, err, apperror.ErrAlreadyReconciled)
	payments, _ := e.payments.Counts()
	assert.Zero(t, payments)
}

func TestRecordPaymentMissingEntry(t *testing.T) {
	e := newEnv(t, true)
	e.entry("Abril", 3, fpModel.PlanPending)

	_, err := e.rec.RecordPayment(context.Background(), e.input("Setembro"))
	assert.ErrorIs(t, err, apperror.ErrPlanEntryMissing)
	payments, _ := e.payments.Counts()
	assert.Zero(t, payments)
	assert.Equal(t, 1, e.plans.Len())
}

func TestRecordPaymentRequiresFinancialPlan(t *testing.T) {
	e := newEnv(t, false)
	e.entry("Abril", 3, fpModel.PlanPending)

	_, err := e.rec.RecordPayment(context.Background(), e.input("Abril"))
	assert.ErrorIs(t, err, apperror.ErrFinancialPlanNotReady)

	stored, _ := e.plans.Get(e.enrollment.EnrollmentID, "Abril", 2025)
	assert.Equal(t, fpModel.PlanPending, stored.FinancialPlanStatus)
}

func TestRecordPaymentInputErrors(t *testing.T) {
	e := newEnv(t, true)
	e.entry("Abril", 3, fpModel.PlanPending)
	ctx := context.Background()

	in := e.input("April")
	_, err := e.rec.RecordPayment(ctx, in)
	assert.ErrorIs(t, err, apperror.ErrInvalidMonthReference)

	in = e.input("Abril")
	in.Amount = decimal.Zero
	_, err = e.rec.RecordPayment(ctx, in)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	in = e.input("Abril")
	in.Method = "Cheque"
	_, err = e.rec.RecordPayment(ctx, in)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	in = e.input("Abril")
	in.EnrollmentID = uuid.New()
	_, err = e.rec.RecordPayment(ctx, in)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	in = e.input("Abril")
	in.CenterID = uuid.New()
	_, err = e.rec.RecordPayment(ctx, in)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	stored, _ := e.plans.Get(e.enrollment.EnrollmentID, "Abril", 2025)
	assert.Equal(t, fpModel.PlanPending, stored.FinancialPlanStatus)
}

func TestRecordPaymentReceiptFailureRollsBack(t *testing.T) {
	e := newEnv(t, true)
	e.entry("Abril", 3, fpModel.PlanPending)
	e.payments.FailOn("create_receipt", func() error { return apperror.ErrUnavailable })

	_, err := e.rec.RecordPayment(context.Background(), e.input("Abril"))
	require.ErrorIs(t, err, apperror.ErrUnavailable)

	stored, _ := e.plans.Get(e.enrollment.EnrollmentID, "Abril", 2025)
	assert.Equal(t, fpModel.PlanPending, stored.FinancialPlanStatus)
	assert.Nil(t, stored.FinancialPlanLinkedPaymentID)
	payments, receipts := e.payments.Counts()
	assert.Zero(t, payments)
	assert.Zero(t, receipts)
}

type stubFees struct{ fee feeModel.TuitionFee }

func (s stubFees) GetFee(context.Context, uuid.UUID) (*feeModel.TuitionFee, error) { return &s.fee, nil }

type stubYears struct{ id uuid.UUID }

func (s stubYears) GetCurrentSchoolYear(context.Context, uuid.UUID) (*syModel.SchoolYear, error) {
	return &syModel.SchoolYear{SchoolYearID: s.id}, nil
}

func TestLinkExistingMaterializesMissingEntry(t *testing.T) {
	e := newEnv(t, false)
	feeID := uuid.New()
	e.enrollment.EnrollmentTuitionFeeID = &feeID
	require.NoError(t, e.enrollments.MarkFinancialPlanReady(context.Background(), e.enrollment.EnrollmentID, feeID))

	p := e.payments.Seed(model.Payment{
		PaymentEnrollmentID:   e.enrollment.EnrollmentID,
		PaymentCenterID:       e.enrollment.EnrollmentCenterID,
		PaymentAmount:         decimal.NewFromInt(4000),
		PaymentStatus:         model.PaymentPaid,
		PaymentMonthReference: "Dezembro",
		PaymentYearReference:  2024,
	})
	policy := NewMaterializer(stubFees{fee: feeModel.TuitionFee{TuitionFeeID: feeID, TuitionFeeFee: decimal.NewFromInt(4500)}}, stubYears{id: uuid.New()}, time.UTC)

	outcome, err := e.rec.LinkExisting(context.Background(), &p, policy)
	require.NoError(t, err)
	assert.Equal(t, LinkMaterialized, outcome)

	stored, ok := e.plans.Get(e.enrollment.EnrollmentID, "Dezembro", 2024)
	require.True(t, ok)
	assert.Equal(t, fpModel.PlanPaid, stored.FinancialPlanStatus)
	assert.Equal(t, p.PaymentID, *stored.FinancialPlanLinkedPaymentID)
	assert.Equal(t, "4500", stored.FinancialPlanTuitionFee.String())
	assert.Equal(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), stored.FinancialPlanDueDate)

	outcome, err = e.rec.LinkExisting(context.Background(), &p, policy)
	require.NoError(t, err)
	assert.Equal(t, LinkAlreadyDone, outcome)

	unlinked, err := e.payments.ListUnlinkedPaid(context.Background(), uuid.Nil, 10)
	require.NoError(t, err)
	assert.Empty(t, unlinked)
}

func TestLinkExistingConflictsWithOtherPayment(t *testing.T) {
	e := newEnv(t, true)
	e.entry("Abril", 3, fpModel.PlanPending)
	first, err := e.rec.RecordPayment(context.Background(), e.input("Abril"))
	require.NoError(t, err)

	legacy := e.payments.Seed(model.Payment{
		PaymentEnrollmentID:   e.enrollment.EnrollmentID,
		PaymentCenterID:       e.enrollment.EnrollmentCenterID,
		PaymentAmount:         decimal.NewFromInt(5000),
		PaymentStatus:         model.PaymentPaid,
		PaymentMonthReference: "Abril",
		PaymentYearReference:  2025,
	})
	_, err = e.rec.LinkExisting(context.Background(), &legacy, NewMaterializer(stubFees{}, stubYears{}, time.UTC))
	assert.ErrorIs(t, err, apperror.ErrAlreadyReconciled)

	stored, _ := e.plans.Get(e.enrollment.EnrollmentID, "Abril", 2025)
	assert.Equal(t, first.Payment.PaymentID, *stored.FinancialPlanLinkedPaymentID)
}

func TestRandomReceiptsAreDistinct(t *testing.T) {
	center := uuid.New()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n, err := RandomReceipts{}.Next(context.Background(), center)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(n, "P"+centerPrefix(center)+"-"))
		assert.False(t, seen[n])
		seen[n] = true
	}
}
