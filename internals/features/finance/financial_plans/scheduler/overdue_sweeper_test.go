package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letrus_backend/internals/databases/inmem"
	"letrus_backend/internals/features/finance/financial_plans/model"
	"letrus_backend/internals/helpers/dbtime"
)

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedEntry(plans *inmem.FinancialPlans, enrollmentID uuid.UUID, month string, idx int, due time.Time, status model.PlanStatus) {
	plans.Put(model.FinancialPlan{
		FinancialPlanEnrollmentID: enrollmentID,
		FinancialPlanMonth:        month,
		FinancialPlanMonthIndex:   idx,
		FinancialPlanYear:         2025,
		FinancialPlanDueDate:      due,
		FinancialPlanTuitionFee:   decimal.NewFromInt(5000),
		FinancialPlanStatus:       status,
	})
}

func TestSweepTransitionsOnlyPastDuePending(t *testing.T) {
	loc := dbtime.LoadLocation("Africa/Luanda")
	plans := inmem.NewFinancialPlans()
	e := uuid.New()

	due := time.Date(2025, time.April, 10, 0, 0, 0, 0, loc)
	seedEntry(plans, e, "Março", 2, due, model.PlanPending)
	seedEntry(plans, e, "Fevereiro", 1, due.AddDate(0, -1, 0), model.PlanPaid)
	seedEntry(plans, e, "Abril", 3, due.AddDate(0, 1, 0), model.PlanPending)

	// 00:30 on the 11th: the 10th is fully past
	now := time.Date(2025, time.April, 11, 0, 30, 0, 0, loc)
	s := NewOverdueSweeper(plans, loc, func() time.Time { return now }, quiet())

	assert.True(t, time.Date(2025, time.April, 10, 23, 59, 59, 999999999, loc).Equal(s.Cutoff(now)))

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	march, _ := plans.Get(e, "Março", 2025)
	assert.Equal(t, model.PlanOverdue, march.FinancialPlanStatus)
	feb, _ := plans.Get(e, "Fevereiro", 2025)
	assert.Equal(t, model.PlanPaid, feb.FinancialPlanStatus)
	april, _ := plans.Get(e, "Abril", 2025)
	assert.Equal(t, model.PlanPending, april.FinancialPlanStatus)

	n, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	march, _ = plans.Get(e, "Março", 2025)
	assert.Equal(t, model.PlanOverdue, march.FinancialPlanStatus)
}

func TestSweepOnDueDateLeavesEntryPending(t *testing.T) {
	loc := dbtime.LoadLocation("Africa/Luanda")
	plans := inmem.NewFinancialPlans()
	e := uuid.New()
	seedEntry(plans, e, "Março", 2, time.Date(2025, time.April, 10, 0, 0, 0, 0, loc), model.PlanPending)

	now := time.Date(2025, time.April, 10, 23, 0, 0, 0, loc)
	n, err := NewOverdueSweeper(plans, loc, func() time.Time { return now }, quiet()).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type failingMarker struct{ calls int }

func (f *failingMarker) MarkOverdue(context.Context, time.Time) (int64, error) {
	f.calls++
	return 0, errors.New("connection refused")
}

type fakeLocker struct {
	held     bool
	err      error
	released int
}

func (l *fakeLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held {
		return nil, false, nil
	}
	return func() { l.released++ }, true, nil
}

func TestRunSwallowsStoreErrors(t *testing.T) {
	m := &failingMarker{}
	s := NewOverdueSweeper(m, time.UTC, nil, quiet())
	assert.NotPanics(t, s.Run)
	assert.NotPanics(t, s.Run)
	assert.Equal(t, 2, m.calls)
}

func TestRunRespectsLock(t *testing.T) {
	m := &failingMarker{}

	held := &fakeLocker{held: true}
	NewOverdueSweeper(m, time.UTC, nil, quiet()).WithLocker(held).Run()
	assert.Zero(t, m.calls)

	free := &fakeLocker{}
	NewOverdueSweeper(m, time.UTC, nil, quiet()).WithLocker(free).Run()
	assert.Equal(t, 1, m.calls)
	assert.Equal(t, 1, free.released)

	broken := &fakeLocker{err: errors.New("redis down")}
	NewOverdueSweeper(m, time.UTC, nil, quiet()).WithLocker(broken).Run()
	assert.Equal(t, 2, m.calls)
}
