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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"letrus_backend/internals/features/dashboard/repository"
	fpModel "letrus_backend/internals/features/finance/financial_plans/model"
	payModel "letrus_backend/internals/features/finance/payments/model"
	enrollModel "letrus_backend/internals/features/school/enrollments/model"
	"letrus_backend/internals/helpers/apperror"
	"letrus_backend/internals/helpers/dbtime"
)

type repoMock struct{ mock.Mock }

func (m *repoMock) CountActiveClasses(ctx context.Context, centerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, centerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *repoMock) CountPlanEntries(ctx context.Context, f repository.PlanFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *repoMock) SumPlanEntries(ctx context.Context, f repository.PlanFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *repoMock) ListPlanEntries(ctx context.Context, f repository.PlanFilter, limit, offset int) ([]fpModel.FinancialPlan, int64, error) {
	args := m.Called(ctx, f, limit, offset)
	return args.Get(0).([]fpModel.FinancialPlan), args.Get(1).(int64), args.Error(2)
}

func (m *repoMock) CountPayments(ctx context.Context, f repository.PaymentFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *repoMock) SumPayments(ctx context.Context, f repository.PaymentFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *repoMock) ListPayments(ctx context.Context, f repository.PaymentFilter, limit, offset int) ([]payModel.Payment, int64, error) {
	args := m.Called(ctx, f, limit, offset)
	return args.Get(0).([]payModel.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *repoMock) CountEnrollments(ctx context.Context, f repository.EnrollmentFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *repoMock) ListEnrollments(ctx context.Context, f repository.EnrollmentFilter, limit, offset int) ([]enrollModel.Enrollment, int64, error) {
	args := m.Called(ctx, f, limit, offset)
	return args.Get(0).([]enrollModel.Enrollment), args.Get(1).(int64), args.Error(2)
}

var luanda = dbtime.LoadLocation("Africa/Luanda")

func newService(repo repository.Repository) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	// still Feb 13 in UTC; the day window follows Luanda
	now := time.Date(2025, time.February, 14, 0, 30, 0, 0, luanda)
	return New(repo, luanda, func() time.Time { return now }, log)
}

func TestSummary(t *testing.T) {
	repo := &repoMock{}
	svc := newService(repo)
	center, year := uuid.New(), uuid.New()
	dayStart := time.Date(2025, time.February, 14, 0, 0, 0, 0, luanda)

	isToday := func(from, to *time.Time) bool {
		return from != nil && to != nil && from.Equal(dayStart) && to.Equal(dbtime.EndOfDay(dayStart, luanda))
	}
	isMonth := func(from *time.Time) bool { return from != nil && from.Day() == 1 && !from.Equal(dayStart) }

	repo.On("CountActiveClasses", mock.Anything, center).Return(int64(4), nil)
	repo.On("CountEnrollments", mock.Anything, mock.MatchedBy(func(f repository.EnrollmentFilter) bool {
		return f.From == nil && f.HasFinancialPlan == nil
	})).Return(int64(30), nil)
	repo.On("CountEnrollments", mock.Anything, mock.MatchedBy(func(f repository.EnrollmentFilter) bool {
		return isToday(f.From, f.To)
	})).Return(int64(2), nil)
	repo.On("CountEnrollments", mock.Anything, mock.MatchedBy(func(f repository.EnrollmentFilter) bool {
		return f.HasFinancialPlan != nil && !*f.HasFinancialPlan
	})).Return(int64(1), nil)
	repo.On("CountEnrollments", mock.Anything, mock.MatchedBy(func(f repository.EnrollmentFilter) bool {
		return isMonth(f.From)
	})).Return(int64(3), nil)

	repo.On("CountPayments", mock.Anything, mock.MatchedBy(func(f repository.PaymentFilter) bool {
		return isToday(f.From, f.To) && len(f.Statuses) == 1 && f.Statuses[0] == payModel.PaymentPaid
	})).Return(int64(5), nil)
	repo.On("SumPayments", mock.Anything, mock.MatchedBy(func(f repository.PaymentFilter) bool {
		return isToday(f.From, f.To)
	})).Return(decimal.NewFromInt(25000), nil)
	repo.On("SumPayments", mock.Anything, mock.MatchedBy(func(f repository.PaymentFilter) bool {
		return isMonth(f.From)
	})).Return(decimal.NewFromInt(100000), nil)

	overdue := mock.MatchedBy(func(f repository.PlanFilter) bool {
		return f.SchoolYearID != nil && *f.SchoolYearID == year &&
			len(f.Statuses) == 1 && f.Statuses[0] == fpModel.PlanOverdue
	})
	repo.On("CountPlanEntries", mock.Anything, overdue).Return(int64(7), nil)
	repo.On("SumPlanEntries", mock.Anything, overdue).Return(decimal.NewFromInt(35000), nil)

	got, err := svc.Summary(context.Background(), center, &year)
	require.NoError(t, err)

	assert.EqualValues(t, 4, got.ActiveClasses)
	assert.EqualValues(t, 30, got.ActiveStudents)
	assert.EqualValues(t, 2, got.EnrollmentsToday)
	assert.EqualValues(t, 1, got.IncompleteEnrollments)
	assert.EqualValues(t, 5, got.PaymentsToday)
	assert.True(t, got.PaymentsTodayAmount.Equal(decimal.NewFromInt(25000)))
	assert.EqualValues(t, 7, got.OverdueEntries)
	assert.True(t, got.OverdueAmount.Equal(decimal.NewFromInt(35000)))

	require.Len(t, got.EnrollmentGrowth, GrowthMonths)
	require.Len(t, got.PaymentGrowth, GrowthMonths)
	assert.Equal(t, "Outubro", got.EnrollmentGrowth[0].Name)
	assert.Equal(t, 2024, got.EnrollmentGrowth[0].Year)
	assert.Equal(t, "Fevereiro", got.EnrollmentGrowth[4].Name)
	assert.Equal(t, 2025, got.PaymentGrowth[4].Year)
	assert.EqualValues(t, 3, got.EnrollmentGrowth[2].Count)
	repo.AssertNumberOfCalls(t, "SumPayments", 1+GrowthMonths)
}

func TestSummaryStopsOnStoreError(t *testing.T) {
	repo := &repoMock{}
	svc := newService(repo)
	repo.On("CountActiveClasses", mock.Anything, mock.Anything).Return(int64(0), apperror.ErrUnavailable)

	_, err := svc.Summary(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
	repo.AssertNotCalled(t, "CountEnrollments", mock.Anything, mock.Anything)
}

func TestOverdueList(t *testing.T) {
	repo := &repoMock{}
	svc := newService(repo)
	center := uuid.New()
	rows := []fpModel.FinancialPlan{{FinancialPlanID: uuid.New(), FinancialPlanStatus: fpModel.PlanOverdue}}
	repo.On("ListPlanEntries", mock.Anything, mock.MatchedBy(func(f repository.PlanFilter) bool {
		return f.CenterID == center && f.SchoolYearID == nil && f.Statuses[0] == fpModel.PlanOverdue
	}), 20, 40).Return(rows, int64(41), nil)

	got, total, err := svc.OverdueEntries(context.Background(), center, nil, 20, 40)
	require.NoError(t, err)
	assert.EqualValues(t, 41, total)
	assert.Equal(t, rows, got)
	repo.AssertExpectations(t)
}
