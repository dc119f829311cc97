package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letrus_backend/internals/databases/inmem"
	"letrus_backend/internals/features/finance/tuition_fees/model"
	"letrus_backend/internals/helpers/apperror"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func newLedger(t *testing.T) (*Ledger, *inmem.TuitionFees, *stepClock) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	repo := inmem.NewTuitionFees()
	clock := &stepClock{now: time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)}
	return NewLedger(repo, log, clock.Now), repo, clock
}

func fields(fee int64) model.FeeFields {
	return model.FeeFields{Fee: decimal.NewFromInt(fee), FeeFine: decimal.NewFromInt(500)}
}

func TestLedgerFeeAsOf(t *testing.T) {
	ctx := context.Background()
	l, _, clock := newLedger(t)
	courseID := uuid.New()

	day0 := clock.now
	_, err := l.ReplaceFee(ctx, courseID, fields(5000))
	require.NoError(t, err)
	clock.now = day0.AddDate(0, 0, 45)
	_, err = l.ReplaceFee(ctx, courseID, fields(6000))
	require.NoError(t, err)

	got, err := l.GetFeeAsOf(ctx, courseID, day0.AddDate(0, 0, 40))
	require.NoError(t, err)
	assert.Equal(t, "5000", got.TuitionFeeFee.String())
	assert.Equal(t, model.TuitionFeeInactive, got.TuitionFeeStatus)

	got, err = l.GetFeeAsOf(ctx, courseID, day0.AddDate(0, 0, 50))
	require.NoError(t, err)
	assert.Equal(t, "6000", got.TuitionFeeFee.String())

	// a version created exactly at asOf counts
	got, err = l.GetFeeAsOf(ctx, courseID, day0.AddDate(0, 0, 45))
	require.NoError(t, err)
	assert.Equal(t, "6000", got.TuitionFeeFee.String())

	_, err = l.GetFeeAsOf(ctx, courseID, day0.Add(-time.Hour))
	assert.ErrorIs(t, err, apperror.ErrNoHistoricalFee)
}

func TestLedgerSingleActiveVersion(t *testing.T) {
	ctx := context.Background()
	l, repo, clock := newLedger(t)
	courseID := uuid.New()

	for i, amount := range []int64{4000, 4500, 5000} {
		clock.now = clock.now.AddDate(0, 1, 0)
		_, err := l.ReplaceFee(ctx, courseID, fields(amount))
		require.NoError(t, err, "version %d", i)
		assert.Equal(t, 1, repo.ActiveCount(courseID))
	}

	active, err := l.GetActiveFee(ctx, courseID)
	require.NoError(t, err)
	assert.Equal(t, "5000", active.TuitionFeeFee.String())

	history, err := l.History(ctx, courseID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "4000", history[2].TuitionFeeFee.String())
}

func TestLedgerReplaceFeeValidation(t *testing.T) {
	ctx := context.Background()
	l, repo, _ := newLedger(t)
	courseID := uuid.New()

	_, err := l.ReplaceFee(ctx, courseID, model.FeeFields{Fee: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = l.ReplaceFee(ctx, courseID, model.FeeFields{})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = l.ReplaceFee(ctx, uuid.Nil, fields(5000))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	assert.Zero(t, repo.ActiveCount(courseID))
}

func TestLedgerNoActiveFee(t *testing.T) {
	l, _, _ := newLedger(t)
	_, err := l.GetActiveFee(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
