package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"letrus_backend/internals/features/finance/financial_plans/model"
	"letrus_backend/internals/features/finance/financial_plans/repository"
	feeModel "letrus_backend/internals/features/finance/tuition_fees/model"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/features/school/school_years/calendar"
	syModel "letrus_backend/internals/features/school/school_years/model"
	"letrus_backend/internals/helpers/apperror"
	"letrus_backend/internals/helpers/dbtime"
)

type SchoolYearSource interface {
	GetCurrentSchoolYear(ctx context.Context, centerID uuid.UUID) (*syModel.SchoolYear, error)
}

type CourseResolver interface {
	ResolveCourseID(ctx context.Context, classID uuid.UUID) (uuid.UUID, error)
}

type FeeSource interface {
	GetFeeAsOf(ctx context.Context, courseID uuid.UUID, asOf time.Time) (*feeModel.TuitionFee, error)
	GetFee(ctx context.Context, id uuid.UUID) (*feeModel.TuitionFee, error)
}

const (
	defaultInsertAttempts = 3
	defaultRetryBackoff   = 50 * time.Millisecond
)

type Generator struct {
	plans   repository.Repository
	years   SchoolYearSource
	courses CourseResolver
	fees    FeeSource
	loc     *time.Location
	log     *logrus.Entry

	InsertAttempts int
	RetryBackoff   time.Duration
}

func NewGenerator(plans repository.Repository, years SchoolYearSource, courses CourseResolver, fees FeeSource, loc *time.Location, log *logrus.Logger) *Generator {
	return &Generator{
		plans:          plans,
		years:          years,
		courses:        courses,
		fees:           fees,
		loc:            loc,
		log:            log.WithField("component", "financial_plan_generator"),
		InsertAttempts: defaultInsertAttempts,
		RetryBackoff:   defaultRetryBackoff,
	}
}

type FailedMonth struct {
	calendar.BillingMonth
	Error string `json:"error"`
}

type Result struct {
	SchoolYearID uuid.UUID               `json:"school_year_id"`
	TuitionFee   *feeModel.TuitionFee    `json:"tuition_fee"`
	Months       []calendar.BillingMonth `json:"months"`
	Created      int                     `json:"created"`
	Skipped      int                     `json:"skipped"`
	Failed       []FailedMonth           `json:"failed,omitempty"`
}

// Generate writes one pending entry per billing month of the center's
// current school year, from max(enrollment date, year start). It is safe to
// re-run: existing (enrollment, month, year) rows are skipped.
//
// Resolution failures (year, class, course, fee) return before any write.
// Insert failures are retried per entry; months that still fail are listed
// in Result.Failed and the error is ErrPlanIncomplete.
func (g *Generator) Generate(ctx context.Context, e *enrollModel.Enrollment) (*Result, error) {
	sy, err := g.years.GetCurrentSchoolYear(ctx, e.EnrollmentCenterID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrNoActiveSchoolYear.Wrap(err)
		}
		return nil, err
	}

	courseID, err := g.courses.ResolveCourseID(ctx, e.EnrollmentClassID)
	if err != nil {
		return nil, err
	}

	fee, err := g.resolveFee(ctx, e, courseID)
	if err != nil {
		return nil, err
	}

	months := calendar.EnumerateBillingMonths(g.billingStart(e, sy), civilDate(sy.SchoolYearEndDate, g.loc))
	dueDates := calendar.DueDates(months, g.loc)

	res := &Result{SchoolYearID: sy.SchoolYearID, TuitionFee: fee, Months: months}
	for i, m := range months {
		entry := &model.FinancialPlan{
			FinancialPlanEnrollmentID: e.EnrollmentID,
			FinancialPlanCenterID:     e.EnrollmentCenterID,
			FinancialPlanUserID:       e.EnrollmentUserID,
			FinancialPlanSchoolYearID: sy.SchoolYearID,
			FinancialPlanMonth:        m.Name,
			FinancialPlanMonthIndex:   m.MonthIndex,
			FinancialPlanYear:         m.Year,
			FinancialPlanDueDate:      dueDates[i],
			FinancialPlanTuitionFee:   fee.TuitionFeeFee,
			FinancialPlanStatus:       model.PlanPending,
		}
		inserted, err := g.insertWithRetry(ctx, entry)
		switch {
		case err != nil:
			res.Failed = append(res.Failed, FailedMonth{BillingMonth: m, Error: err.Error()})
		case inserted:
			res.Created++
		default:
			res.Skipped++
		}
	}

	entry := g.log.WithFields(logrus.Fields{
		"enrollment_id":  e.EnrollmentID,
		"school_year_id": sy.SchoolYearID,
		"fee_id":         fee.TuitionFeeID,
		"months":         len(months),
		"created":        res.Created,
		"skipped":        res.Skipped,
		"failed":         len(res.Failed),
	})
	if len(res.Failed) > 0 {
		entry.Warn("financial plan incomplete")
		return res, apperror.ErrPlanIncomplete.
			With("%d of %d months could not be written", len(res.Failed), len(months)).
			WithDetails(res.Failed)
	}
	entry.Info("financial plan generated")
	return res, nil
}

// resolveFee keeps an already bound fee; otherwise it looks up the version
// in force at the end of the enrollment's business day, so a fee published
// earlier that day applies to a date-only enrollment.
func (g *Generator) resolveFee(ctx context.Context, e *enrollModel.Enrollment, courseID uuid.UUID) (*feeModel.TuitionFee, error) {
	if e.EnrollmentTuitionFeeID != nil {
		fee, err := g.fees.GetFee(ctx, *e.EnrollmentTuitionFeeID)
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrNoHistoricalFee.
				With("bound tuition fee %s no longer exists", *e.EnrollmentTuitionFeeID).
				Wrap(err)
		}
		return fee, err
	}

	fee, err := g.fees.GetFeeAsOf(ctx, courseID, dbtime.EndOfDay(e.EnrollmentDate, g.loc))
	switch {
	case errors.Is(err, apperror.ErrNoHistoricalFee):
		return nil, err
	case errors.Is(err, apperror.ErrNotFound):
		return nil, apperror.ErrNoHistoricalFee.Wrap(err)
	}
	return fee, err
}

func (g *Generator) billingStart(e *enrollModel.Enrollment, sy *syModel.SchoolYear) time.Time {
	enrolled := e.EnrollmentDate.In(g.loc)
	enrolledDay := time.Date(enrolled.Year(), enrolled.Month(), enrolled.Day(), 0, 0, 0, 0, g.loc)
	yearStart := civilDate(sy.SchoolYearStartDate, g.loc)
	if enrolledDay.After(yearStart) {
		return enrolledDay
	}
	return yearStart
}

// civilDate re-anchors a DATE column value (read back at UTC midnight) to
// the same calendar day in loc.
func civilDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func (g *Generator) insertWithRetry(ctx context.Context, entry *model.FinancialPlan) (bool, error) {
	attempts := g.InsertAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(g.RetryBackoff * time.Duration(i)):
			}
		}
		inserted, err := g.plans.InsertIfAbsent(ctx, entry)
		if err == nil {
			return inserted, nil
		}
		if errors.Is(err, apperror.ErrConflict) {
			// a concurrent run wrote the same month first
			return false, nil
		}
		lastErr = err
		g.log.WithError(err).WithFields(logrus.Fields{
			"enrollment_id": entry.FinancialPlanEnrollmentID,
			"month":         entry.FinancialPlanMonth,
			"year":          entry.FinancialPlanYear,
			"attempt":       i + 1,
		}).Warn("plan entry insert failed")
	}
	return false, lastErr
}
