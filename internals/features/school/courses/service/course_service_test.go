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
	feeModel "letrus_backend/internals/features/finance/tuition_fees/model"
	feeService "letrus_backend/internals/features/finance/tuition_fees/service"
	"letrus_backend/internals/features/school/courses/model"
	"letrus_backend/internals/helpers/apperror"
)

func newService(t *testing.T) (*Service, *inmem.TuitionFees) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	fees := inmem.NewTuitionFees()
	now := time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Hour)
		return now
	}
	ledger := feeService.NewLedger(fees, log, clock)
	return New(inmem.NewCoursesWithFees(fees), ledger, log), fees
}

func fields(fee int64) feeModel.FeeFields {
	return feeModel.FeeFields{Fee: decimal.NewFromInt(fee), EnrollmentFee: decimal.NewFromInt(2000)}
}

func TestCreateStoresFirstFeeVersion(t *testing.T) {
	svc, fees := newService(t)
	center := uuid.New()

	out, err := svc.Create(context.Background(), CreateInput{CenterID: center, Name: " Inglês ", Fee: fields(5000)})
	require.NoError(t, err)
	assert.Equal(t, "Inglês", out.CourseName)
	require.NotNil(t, out.ActiveFee)
	assert.True(t, out.ActiveFee.TuitionFeeFee.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, 1, fees.ActiveCount(out.CourseID))

	got, err := svc.Get(context.Background(), center, out.CourseID)
	require.NoError(t, err)
	assert.Equal(t, out.ActiveFee.TuitionFeeID, got.ActiveFee.TuitionFeeID)
}

func TestCreateRejectsBadFee(t *testing.T) {
	svc, _ := newService(t)
	bad := fields(5000)
	bad.FeeFine = decimal.NewFromInt(-1)

	_, err := svc.Create(context.Background(), CreateInput{CenterID: uuid.New(), Name: "Inglês", Fee: bad})
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "fee_fine")

	_, err = svc.Create(context.Background(), CreateInput{CenterID: uuid.New(), Name: "  ", Fee: fields(5000)})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateWithFeePublishesNewVersion(t *testing.T) {
	svc, fees := newService(t)
	center := uuid.New()
	out, err := svc.Create(context.Background(), CreateInput{CenterID: center, Name: "Inglês", Fee: fields(5000)})
	require.NoError(t, err)

	name := "Inglês Avançado"
	f := fields(6500)
	updated, err := svc.Update(context.Background(), center, out.CourseID, UpdateInput{Name: &name, Fee: &f})
	require.NoError(t, err)
	assert.Equal(t, name, updated.CourseName)
	assert.True(t, updated.ActiveFee.TuitionFeeFee.Equal(decimal.NewFromInt(6500)))
	assert.Equal(t, 1, fees.ActiveCount(out.CourseID))

	history, err := svc.FeeHistory(context.Background(), center, out.CourseID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, updated.ActiveFee.TuitionFeeID, history[0].TuitionFeeID)
	assert.Equal(t, feeModel.TuitionFeeInactive, history[1].TuitionFeeStatus)
}

func TestCourseIsScopedToCenter(t *testing.T) {
	svc, _ := newService(t)
	out, err := svc.Create(context.Background(), CreateInput{CenterID: uuid.New(), Name: "Inglês", Fee: fields(5000)})
	require.NoError(t, err)

	other := uuid.New()
	_, err = svc.Get(context.Background(), other, out.CourseID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.FeeHistory(context.Background(), other, out.CourseID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.Deactivate(context.Background(), other, out.CourseID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeactivate(t *testing.T) {
	svc, _ := newService(t)
	center := uuid.New()
	out, err := svc.Create(context.Background(), CreateInput{CenterID: center, Name: "Inglês", Fee: fields(5000)})
	require.NoError(t, err)

	c, err := svc.Deactivate(context.Background(), center, out.CourseID)
	require.NoError(t, err)
	assert.Equal(t, model.CourseInactive, c.CourseStatus)

	active := model.CourseActive
	rows, total, err := svc.List(context.Background(), center, &active, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}
