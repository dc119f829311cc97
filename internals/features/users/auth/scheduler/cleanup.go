package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"letrus_backend/internals/helpers/dbtime"
)

type BlacklistPurger interface {
	PurgeBlacklist(ctx context.Context, before time.Time, limit int) (int64, error)
	PurgeOTPs(ctx context.Context, before time.Time, limit int) (int64, error)
}

const (
	cleanupBatch = 100
	otpRetention = 24 * time.Hour
)

// BlacklistCleanup removes blacklist rows that expired more than TTLDays ago
// and OTP codes that expired more than a day ago.
type BlacklistCleanup struct {
	repo    BlacklistPurger
	ttlDays int
	clock   dbtime.Clock
	log     *logrus.Entry

	Batch   int
	Timeout time.Duration
}

func NewBlacklistCleanup(repo BlacklistPurger, ttlDays int, clock dbtime.Clock, log *logrus.Logger) *BlacklistCleanup {
	if clock == nil {
		clock = dbtime.SystemClock
	}
	return &BlacklistCleanup{
		repo:    repo,
		ttlDays: ttlDays,
		clock:   clock,
		log:     log.WithField("component", "blacklist_cleanup"),
		Batch:   cleanupBatch,
		Timeout: time.Minute,
	}
}

// RunOnce deletes in batches until a short batch comes back.
func (j *BlacklistCleanup) RunOnce(ctx context.Context) (int64, error) {
	now := j.clock()
	total, err := j.drain(ctx, j.repo.PurgeBlacklist, now.Add(-time.Duration(j.ttlDays)*24*time.Hour))
	if err != nil {
		return total, err
	}
	n, err := j.drain(ctx, j.repo.PurgeOTPs, now.Add(-otpRetention))
	return total + n, err
}

func (j *BlacklistCleanup) drain(ctx context.Context, purge func(context.Context, time.Time, int) (int64, error), before time.Time) (int64, error) {
	var total int64
	for {
		n, err := purge(ctx, before, j.Batch)
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(j.Batch) {
			return total, nil
		}
	}
}

func (j *BlacklistCleanup) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.Timeout)
	defer cancel()

	n, err := j.RunOnce(ctx)
	if err != nil {
		j.log.WithError(err).WithField("deleted", n).Error("blacklist cleanup failed")
		return
	}
	j.log.WithField("deleted", n).Info("blacklist cleanup done")
}
