package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"letrus_backend/internals/features/dashboard/repository"
	fpModel "letrus_backend/internals/features/finance/financial_plans/model"
	payModel "letrus_backend/internals/features/finance/payments/model"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/features/school/school_years/calendar"
	"letrus_backend/internals/helpers/dbtime"
)

// GrowthMonths is the length of the growth series, current month included.
const GrowthMonths = 5

type MonthCount struct {
	calendar.BillingMonth
	Count int64 `json:"count"`
}

type MonthAmount struct {
	calendar.BillingMonth
	Amount decimal.Decimal `json:"amount"`
}

type Summary struct {
	CenterID              uuid.UUID       `json:"center_id"`
	SchoolYearID          *uuid.UUID      `json:"school_year_id,omitempty"`
	ActiveClasses         int64           `json:"active_classes"`
	ActiveStudents        int64           `json:"active_students"`
	EnrollmentsToday      int64           `json:"enrollments_today"`
	IncompleteEnrollments int64           `json:"incomplete_enrollments"`
	PaymentsToday         int64           `json:"payments_today"`
	PaymentsTodayAmount   decimal.Decimal `json:"payments_today_amount"`
	OverdueEntries        int64           `json:"overdue_entries"`
	OverdueAmount         decimal.Decimal `json:"overdue_amount"`
	EnrollmentGrowth      []MonthCount    `json:"enrollment_growth"`
	PaymentGrowth         []MonthAmount   `json:"payment_growth"`
}

type Service struct {
	repo  repository.Repository
	loc   *time.Location
	clock dbtime.Clock
	log   *logrus.Entry
}

func New(repo repository.Repository, loc *time.Location, clock dbtime.Clock, log *logrus.Logger) *Service {
	if clock == nil {
		clock = dbtime.SystemClock
	}
	return &Service{repo: repo, loc: loc, clock: clock, log: log.WithField("component", "dashboard")}
}

func (s *Service) today() (time.Time, time.Time) {
	now := s.clock()
	return dbtime.StartOfDay(now, s.loc), dbtime.EndOfDay(now, s.loc)
}

var paidOnly = []payModel.PaymentStatus{payModel.PaymentPaid}

// Summary aggregates the center's figures. schoolYearID narrows the plan
// entry figures; nil covers every year.
func (s *Service) Summary(ctx context.Context, centerID uuid.UUID, schoolYearID *uuid.UUID) (*Summary, error) {
	from, to := s.today()
	out := &Summary{CenterID: centerID, SchoolYearID: schoolYearID}
	enrolled := []enrollModel.EnrollmentStatus{enrollModel.EnrollmentEnrolled}
	noPlan := false
	overdue := repository.PlanFilter{
		CenterID:     centerID,
		SchoolYearID: schoolYearID,
		Statuses:     []fpModel.PlanStatus{fpModel.PlanOverdue},
	}
	payToday := repository.PaymentFilter{CenterID: centerID, Statuses: paidOnly, From: &from, To: &to}

	var err error
	if out.ActiveClasses, err = s.repo.CountActiveClasses(ctx, centerID); err != nil {
		return nil, err
	}
	if out.ActiveStudents, err = s.repo.CountEnrollments(ctx, repository.EnrollmentFilter{CenterID: centerID, Statuses: enrolled}); err != nil {
		return nil, err
	}
	if out.EnrollmentsToday, err = s.repo.CountEnrollments(ctx, repository.EnrollmentFilter{CenterID: centerID, From: &from, To: &to}); err != nil {
		return nil, err
	}
	if out.IncompleteEnrollments, err = s.repo.CountEnrollments(ctx, repository.EnrollmentFilter{
		CenterID: centerID, Statuses: enrolled, HasFinancialPlan: &noPlan,
	}); err != nil {
		return nil, err
	}
	if out.PaymentsToday, err = s.repo.CountPayments(ctx, payToday); err != nil {
		return nil, err
	}
	if out.PaymentsTodayAmount, err = s.repo.SumPayments(ctx, payToday); err != nil {
		return nil, err
	}
	if out.OverdueEntries, err = s.repo.CountPlanEntries(ctx, overdue); err != nil {
		return nil, err
	}
	if out.OverdueAmount, err = s.repo.SumPlanEntries(ctx, overdue); err != nil {
		return nil, err
	}
	if out.EnrollmentGrowth, out.PaymentGrowth, err = s.growth(ctx, centerID); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"center_id": centerID, "overdue": out.OverdueEntries}).Debug("dashboard computed")
	return out, nil
}

// growth buckets the last GrowthMonths calendar months, oldest first.
func (s *Service) growth(ctx context.Context, centerID uuid.UUID) ([]MonthCount, []MonthAmount, error) {
	now := s.clock()
	counts := make([]MonthCount, 0, GrowthMonths)
	amounts := make([]MonthAmount, 0, GrowthMonths)
	for off := -(GrowthMonths - 1); off <= 0; off++ {
		start := dbtime.MonthStart(now, off, s.loc)
		end := dbtime.MonthStart(now, off+1, s.loc).Add(-time.Nanosecond)
		m := calendar.Month(start.Year(), int(start.Month())-1)

		n, err := s.repo.CountEnrollments(ctx, repository.EnrollmentFilter{
			CenterID: centerID,
			Statuses: []enrollModel.EnrollmentStatus{enrollModel.EnrollmentEnrolled, enrollModel.EnrollmentCompleted},
			From:     &start,
			To:       &end,
		})
		if err != nil {
			return nil, nil, err
		}
		sum, err := s.repo.SumPayments(ctx, repository.PaymentFilter{CenterID: centerID, Statuses: paidOnly, From: &start, To: &end})
		if err != nil {
			return nil, nil, err
		}
		counts = append(counts, MonthCount{BillingMonth: m, Count: n})
		amounts = append(amounts, MonthAmount{BillingMonth: m, Amount: sum})
	}
	return counts, amounts, nil
}

func (s *Service) OverdueEntries(ctx context.Context, centerID uuid.UUID, schoolYearID *uuid.UUID, limit, offset int) ([]fpModel.FinancialPlan, int64, error) {
	return s.repo.ListPlanEntries(ctx, repository.PlanFilter{
		CenterID:     centerID,
		SchoolYearID: schoolYearID,
		Statuses:     []fpModel.PlanStatus{fpModel.PlanOverdue},
	}, limit, offset)
}

func (s *Service) PaymentsToday(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]payModel.Payment, int64, error) {
	from, to := s.today()
	return s.repo.ListPayments(ctx, repository.PaymentFilter{CenterID: centerID, Statuses: paidOnly, From: &from, To: &to}, limit, offset)
}

func (s *Service) EnrollmentsToday(ctx context.Context, centerID uuid.UUID, limit, offset int) ([]enrollModel.Enrollment, int64, error) {
	from, to := s.today()
	return s.repo.ListEnrollments(ctx, repository.EnrollmentFilter{CenterID: centerID, From: &from, To: &to}, limit, offset)
}

// CountPlanEntries and SumPlanEntries expose the filtered aggregation as is.
func (s *Service) CountPlanEntries(ctx context.Context, f repository.PlanFilter) (int64, error) {
	return s.repo.CountPlanEntries(ctx, f)
}

func (s *Service) SumPlanEntries(ctx context.Context, f repository.PlanFilter) (decimal.Decimal, error) {
	return s.repo.SumPlanEntries(ctx, f)
}
