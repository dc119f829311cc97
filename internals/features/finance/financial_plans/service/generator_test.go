package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letrus_backend/internals/databases/inmem"
	"letrus_backend/internals/features/finance/financial_plans/model"
	feeModel "letrus_backend/internals/features/finance/tuition_fees/model"
	feeService "letrus_backend/internals/features/finance/tuition_fees/service"
	classModel "letrus_backend/internals/features/school/classes/model"
	courseModel "letrus_backend/internals/features/school/courses/model"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	syModel "letrus_backend/internals/features/school/school_years/model"
	sySvc "letrus_backend/internals/features/school/school_years/service"
	"letrus_backend/internals/helpers/apperror"
	"letrus_backend/internals/helpers/dbtime"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	t        *testing.T
	loc      *time.Location
	centerID uuid.UUID
	classID  uuid.UUID
	courseID uuid.UUID

	fees    *inmem.TuitionFees
	years   *inmem.SchoolYears
	courses *inmem.Courses
	classes *inmem.Classes
	plans   *inmem.FinancialPlans
	gen     *Generator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := quietLogger()
	f := &fixture{
		t:        t,
		loc:      dbtime.LoadLocation("Africa/Luanda"),
		centerID: uuid.New(),
		fees:     inmem.NewTuitionFees(),
		years:    inmem.NewSchoolYears(),
		courses:  inmem.NewCourses(),
		plans:    inmem.NewFinancialPlans(),
	}
	f.classes = inmem.NewClasses(f.courses)

	ctx := context.Background()
	course := &courseModel.Course{CourseCenterID: f.centerID, CourseName: "Inglês"}
	require.NoError(t, f.courses.Create(ctx, course))
	f.courseID = course.CourseID
	class := &classModel.Class{ClassCenterID: f.centerID, ClassCourseID: f.courseID, ClassName: "EN-A1"}
	require.NoError(t, f.classes.Create(ctx, class))
	f.classID = class.ClassID

	f.gen = NewGenerator(
		f.plans,
		sySvc.New(f.years, log),
		f.classes,
		feeService.NewLedger(f.fees, log, dbtime.SystemClock),
		f.loc,
		log,
	)
	f.gen.RetryBackoff = 0
	return f
}

// dates are stored the way a DATE column reads back: UTC midnight.
func (f *fixture) schoolYear(start, end string) *syModel.SchoolYear {
	s, err := time.Parse("2006-01-02", start)
	require.NoError(f.t, err)
	e, err := time.Parse("2006-01-02", end)
	require.NoError(f.t, err)
	sy := &syModel.SchoolYear{
		SchoolYearCenterID:    f.centerID,
		SchoolYearDescription: "2025",
		SchoolYearStartDate:   s,
		SchoolYearEndDate:     e,
		SchoolYearIsCurrent:   true,
	}
	require.NoError(f.t, f.years.Create(context.Background(), sy))
	return sy
}

func (f *fixture) fee(amount int64, createdAt time.Time) feeModel.TuitionFee {
	return f.fees.Seed(feeModel.TuitionFee{
		TuitionFeeCourseID:  f.courseID,
		TuitionFeeFee:       decimal.NewFromInt(amount),
		TuitionFeeCreatedAt: createdAt,
	})
}

func (f *fixture) enrollment(at time.Time) *enrollModel.Enrollment {
	return &enrollModel.Enrollment{
		EnrollmentID:        uuid.New(),
		EnrollmentStudentID: uuid.New(),
		EnrollmentClassID:   f.classID,
		EnrollmentCenterID:  f.centerID,
		EnrollmentUserID:    uuid.New(),
		EnrollmentDate:      at,
		EnrollmentStatus:    enrollModel.EnrollmentEnrolled,
	}
}

func (f *fixture) day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, f.loc)
}

func TestGenerateMidYearEnrollment(t *testing.T) {
	f := newFixture(t)
	f.schoolYear("2025-01-01", "2025-12-31")
	f.fee(5000, f.day(2024, time.December, 1))

	e := f.enrollment(f.day(2025, time.March, 15))
	res, err := f.gen.Generate(context.Background(), e)
	require.NoError(t, err)

	assert.Len(t, res.Months, 10)
	assert.Equal(t, 10, res.Created)
	assert.Zero(t, res.Skipped)

	rows, err := f.plans.ListByEnrollment(context.Background(), e.EnrollmentID)
	require.NoError(t, err)
	require.Len(t, rows, 10)

	assert.Equal(t, "Março", rows[0].FinancialPlanMonth)
	assert.Equal(t, time.Date(2025, time.April, 10, 0, 0, 0, 0, f.loc), rows[0].FinancialPlanDueDate)
	last := rows[len(rows)-1]
	assert.Equal(t, "Dezembro", last.FinancialPlanMonth)
	assert.Equal(t, time.Date(2026, time.January, 10, 0, 0, 0, 0, f.loc), last.FinancialPlanDueDate)

	for _, r := range rows {
		assert.Equal(t, model.PlanPending, r.FinancialPlanStatus)
		assert.True(t, decimal.NewFromInt(5000).Equal(r.FinancialPlanTuitionFee))
		assert.Nil(t, r.FinancialPlanLinkedPaymentID)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.schoolYear("2025-01-01", "2025-12-31")
	f.fee(5000, f.day(2024, time.December, 1))
	e := f.enrollment(f.day(2025, time.March, 15))

	_, err := f.gen.Generate(context.Background(), e)
	require.NoError(t, err)
	again, err := f.gen.Generate(context.Background(), e)
	require.NoError(t, err)

	assert.Zero(t, again.Created)
	assert.Equal(t, 10, again.Skipped)
	assert.Equal(t, 10, f.plans.Len())
}

func TestGenerateEnrollmentBeforeYearStart(t *testing.T) {
	f := newFixture(t)
	f.schoolYear("2025-02-01", "2025-11-30")
	f.fee(5000, f.day(2024, time.June, 1))

	res, err := f.gen.Generate(context.Background(), f.enrollment(f.day(2024, time.December, 20)))
	require.NoError(t, err)

	require.Len(t, res.Months, 10)
	assert.Equal(t, "Fevereiro", res.Months[0].Name)
	assert.Equal(t, "Novembro", res.Months[9].Name)
}

func TestGenerateUsesFeeInForceOnEnrollmentDate(t *testing.T) {
	f := newFixture(t)
	f.schoolYear("2025-01-01", "2025-12-31")
	base := f.day(2025, time.January, 1)
	f.fee(5000, base)
	ledger := feeService.NewLedger(f.fees, quietLogger(), func() time.Time { return base.AddDate(0, 0, 45) })
	_, err := ledger.ReplaceFee(context.Background(), f.courseID, feeModel.FeeFields{Fee: decimal.NewFromInt(6000)})
	require.NoError(t, err)

	early := f.enrollment(base.AddDate(0, 0, 40))
	res, err := f.gen.Generate(context.Background(), early)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(res.TuitionFee.TuitionFeeFee))

	late := f.enrollment(base.AddDate(0, 0, 50))
	res, err = f.gen.Generate(context.Background(), late)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(6000).Equal(res.TuitionFee.TuitionFeeFee))

	rows, err := f.plans.ListByEnrollment(context.Background(), early.EnrollmentID)
	require.NoError(t, err)
	for _, r := range rows {
		assert.True(t, decimal.NewFromInt(5000).Equal(r.FinancialPlanTuitionFee))
	}
}

func TestGenerateDateOnlyEnrollmentSeesSameDayFee(t *testing.T) {
	f := newFixture(t)
	f.schoolYear("2025-01-01", "2025-12-31")
	f.fee(5000, time.Date(2025, time.March, 15, 10, 0, 0, 0, f.loc))

	enrolledOn, err := time.ParseInLocation("2006-01-02", "2025-03-15", f.loc)
	require.NoError(t, err)
	res, err := f.gen.Generate(context.Background(), f.enrollment(enrolledOn))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5000).Equal(res.TuitionFee.TuitionFeeFee))
	assert.Len(t, res.Months, 10)
}

func TestGenerateDateOnlyEnrollmentSeesSameDayFeeChange(t *testing.T) {
	f := newFixture(t)
	f.schoolYear("2025-01-01", "2025-12-31")
	f.fee(5000, f.day(2025, time.January, 2))
	f.fee(6000, time.Date(2025, time.March, 15, 8, 0, 0, 0, f.loc))
	f.fee(7000, time.Date(2025, time.March, 16, 0, 0, 0, 0, f.loc))

	enrolledOn, err := time.ParseInLocation("2006-01-02", "2025-03-15", f.loc)
	require.NoError(t, err)
	res, err := f.gen.Generate(context.Background(), f.enrollment(enrolledOn))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(6000).Equal(res.TuitionFee.TuitionFeeFee))
}

func TestGenerateNoHistoricalFeeIsReportedOnce(t *testing.T) {
	f := newFixture(t)
	f.schoolYear("2025-01-01", "2025-12-31")
	f.fee(5000, f.day(2025, time.June, 1))

	_, err := f.gen.Generate(context.Background(), f.enrollment(f.day(2025, time.March, 1)))
	require.ErrorIs(t, err, apperror.ErrNoHistoricalFee)
	assert.Equal(t, 1, strings.Count(err.Error(), "NO_HISTORICAL_FEE"), err.Error())
}

func TestGenerateKeepsBoundFee(t *testing.T) {
	f := newFixture(t)
	f.schoolYear("2025-01-01", "2025-12-31")
	old := f.fee(5000, f.day(2024, time.January, 1))
	f.fee(7000, f.day(2024, time.June, 1))

	e := f.enrollment(f.day(2025, time.March, 1))
	e.EnrollmentTuitionFeeID = &old.TuitionFeeID
	res, err := f.gen.Generate(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, old.TuitionFeeID, res.TuitionFee.TuitionFeeID)
}

func TestGenerateResolutionErrorsWriteNothing(t *testing.T) {
	t.Run("no fee before enrollment date", func(t *testing.T) {
		f := newFixture(t)
		f.schoolYear("2025-01-01", "2025-12-31")
		f.fee(5000, f.day(2025, time.June, 1))

		_, err := f.gen.Generate(context.Background(), f.enrollment(f.day(2025, time.March, 1)))
		assert.ErrorIs(t, err, apperror.ErrNoHistoricalFee)
		assert.Zero(t, f.plans.Len())
	})

	t.Run("no current school year", func(t *testing.T) {
		f := newFixture(t)
		f.fee(5000, f.day(2024, time.June, 1))

		_, err := f.gen.Generate(context.Background(), f.enrollment(f.day(2025, time.March, 1)))
		assert.ErrorIs(t, err, apperror.ErrNoActiveSchoolYear)
		assert.Zero(t, f.plans.Len())
	})

	t.Run("unknown class", func(t *testing.T) {
		f := newFixture(t)
		f.schoolYear("2025-01-01", "2025-12-31")
		e := f.enrollment(f.day(2025, time.March, 1))
		e.EnrollmentClassID = uuid.New()

		_, err := f.gen.Generate(context.Background(), e)
		assert.ErrorIs(t, err, apperror.ErrClassNotFound)
	})

	t.Run("class without course", func(t *testing.T) {
		f := newFixture(t)
		f.schoolYear("2025-01-01", "2025-12-31")
		f.courses.Remove(f.courseID)

		_, err := f.gen.Generate(context.Background(), f.enrollment(f.day(2025, time.March, 1)))
		assert.ErrorIs(t, err, apperror.ErrCourseNotFound)
		assert.Zero(t, f.plans.Len())
	})
}

func TestGeneratePartialFailureReportsMonths(t *testing.T) {
	f := newFixture(t)
	f.schoolYear("2025-01-01", "2025-12-31")
	f.fee(5000, f.day(2024, time.June, 1))

	var junhoCalls int32
	f.plans.InsertHook = func(e *model.FinancialPlan) error {
		if e.FinancialPlanMonth == "Junho" {
			atomic.AddInt32(&junhoCalls, 1)
			return apperror.ErrUnavailable.With("connection reset")
		}
		return nil
	}

	e := f.enrollment(f.day(2025, time.March, 15))
	res, err := f.gen.Generate(context.Background(), e)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrPlanIncomplete)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	failed, ok := appErr.Details.([]FailedMonth)
	require.True(t, ok)
	require.Len(t, failed, 1)
	assert.Equal(t, "Junho", failed[0].Name)

	assert.Equal(t, 9, res.Created)
	assert.Equal(t, int32(defaultInsertAttempts), atomic.LoadInt32(&junhoCalls))

	// the retry after the store recovers fills only the gap
	f.plans.InsertHook = nil
	res, err = f.gen.Generate(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 9, res.Skipped)
}

func TestGenerateRecoversFromTransientInsertError(t *testing.T) {
	f := newFixture(t)
	f.schoolYear("2025-01-01", "2025-12-31")
	f.fee(5000, f.day(2024, time.June, 1))

	var calls int32
	f.plans.InsertHook = func(e *model.FinancialPlan) error {
		if e.FinancialPlanMonth == "Abril" && atomic.AddInt32(&calls, 1) == 1 {
			return apperror.ErrUnavailable
		}
		return nil
	}

	res, err := f.gen.Generate(context.Background(), f.enrollment(f.day(2025, time.March, 15)))
	require.NoError(t, err)
	assert.Equal(t, 10, res.Created)
}

func TestGenerateTreatsConcurrentDuplicateAsSkipped(t *testing.T) {
	f := newFixture(t)
	f.schoolYear("2025-01-01", "2025-12-31")
	f.fee(5000, f.day(2024, time.June, 1))
	f.plans.InsertHook = func(e *model.FinancialPlan) error {
		if e.FinancialPlanMonth == "Maio" {
			return apperror.ErrConflict
		}
		return nil
	}

	res, err := f.gen.Generate(context.Background(), f.enrollment(f.day(2025, time.March, 15)))
	require.NoError(t, err)
	assert.Equal(t, 9, res.Created)
	assert.Equal(t, 1, res.Skipped)
}
