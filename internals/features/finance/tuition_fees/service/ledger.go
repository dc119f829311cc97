package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"letrus_backend/internals/features/finance/tuition_fees/model"
	"letrus_backend/internals/features/finance/tuition_fees/repository"
	"letrus_backend/internals/helpers/apperror"
	"letrus_backend/internals/helpers/dbtime"
)

// Ledger answers "what did course C cost as of date D" over the versioned
// tuition_fees table.
type Ledger struct {
	repo  repository.Repository
	log   *logrus.Entry
	clock dbtime.Clock
}

func NewLedger(repo repository.Repository, log *logrus.Logger, clock dbtime.Clock) *Ledger {
	if clock == nil {
		clock = dbtime.SystemClock
	}
	return &Ledger{repo: repo, log: log.WithField("component", "tuition_fee_ledger"), clock: clock}
}

func (l *Ledger) GetActiveFee(ctx context.Context, courseID uuid.UUID) (*model.TuitionFee, error) {
	return l.repo.FindActive(ctx, courseID)
}

// GetFeeAsOf returns the latest version created at or before asOf. A date
// before every version is ErrNoHistoricalFee, never the current fee.
func (l *Ledger) GetFeeAsOf(ctx context.Context, courseID uuid.UUID, asOf time.Time) (*model.TuitionFee, error) {
	fee, err := l.repo.FindLatestAsOf(ctx, courseID, asOf)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.ErrNoHistoricalFee.
			With("course %s has no tuition fee on or before %s", courseID, asOf.Format("2006-01-02")).
			Wrap(err)
	}
	return fee, err
}

func (l *Ledger) GetFee(ctx context.Context, id uuid.UUID) (*model.TuitionFee, error) {
	return l.repo.FindByID(ctx, id)
}

func (l *Ledger) History(ctx context.Context, courseID uuid.UUID) ([]model.TuitionFee, error) {
	return l.repo.ListByCourse(ctx, courseID)
}

// NewVersion validates fields and builds an active version for courseID
// stamped with the ledger clock. It writes nothing.
func (l *Ledger) NewVersion(courseID uuid.UUID, fields model.FeeFields) (*model.TuitionFee, error) {
	if courseID == uuid.Nil {
		return nil, apperror.Validation(map[string][]string{"course_id": {"required"}})
	}
	if bad := fields.Negative(); len(bad) > 0 {
		errs := make(map[string][]string, len(bad))
		for _, f := range bad {
			errs[f] = []string{"gte=0"}
		}
		return nil, apperror.Validation(errs)
	}
	if fields.Fee.IsZero() {
		return nil, apperror.Validation(map[string][]string{"fee": {"required"}})
	}

	now := l.clock()
	return &model.TuitionFee{
		TuitionFeeID:                        uuid.New(),
		TuitionFeeCourseID:                  courseID,
		TuitionFeeFee:                       fields.Fee,
		TuitionFeeFine:                      fields.FeeFine,
		TuitionFeeEnrollmentFee:             fields.EnrollmentFee,
		TuitionFeeConfirmationEnrollmentFee: fields.ConfirmationEnrollmentFee,
		TuitionFeeStatus:                    model.TuitionFeeActive,
		TuitionFeeCreatedAt:                 now,
		TuitionFeeUpdatedAt:                 now,
	}, nil
}

// ReplaceFee makes fields the course's only active version.
func (l *Ledger) ReplaceFee(ctx context.Context, courseID uuid.UUID, fields model.FeeFields) (*model.TuitionFee, error) {
	fee, err := l.NewVersion(courseID, fields)
	if err != nil {
		return nil, err
	}
	if err := l.repo.ReplaceActive(ctx, fee); err != nil {
		return nil, err
	}
	l.log.WithFields(logrus.Fields{
		"course_id": courseID,
		"fee_id":    fee.TuitionFeeID,
		"fee":       fee.TuitionFeeFee.StringFixed(2),
	}).Info("tuition fee replaced")
	return fee, nil
}
