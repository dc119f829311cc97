package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"letrus_backend/internals/helpers/dbtime"
)

type OverdueMarker interface {
	MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error)
}

// Locker is optional; with it only one replica sweeps per tick.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

const sweepLockKey = "overdue-sweep"

// OverdueSweeper moves pending entries whose due date is on or before the end
// of yesterday (business timezone) to overdue. Each tick is independent; a
// failed tick is logged and the next one catches up.
type OverdueSweeper struct {
	plans  OverdueMarker
	locker Locker
	loc    *time.Location
	clock  dbtime.Clock
	log    *logrus.Entry

	Timeout time.Duration
}

func NewOverdueSweeper(plans OverdueMarker, loc *time.Location, clock dbtime.Clock, log *logrus.Logger) *OverdueSweeper {
	if clock == nil {
		clock = dbtime.SystemClock
	}
	return &OverdueSweeper{
		plans:   plans,
		loc:     loc,
		clock:   clock,
		log:     log.WithField("component", "overdue_sweeper"),
		Timeout: 2 * time.Minute,
	}
}

func (s *OverdueSweeper) WithLocker(l Locker) *OverdueSweeper {
	s.locker = l
	return s
}

// Cutoff is end-of-day(now - 1 day) in the business timezone.
func (s *OverdueSweeper) Cutoff(now time.Time) time.Time {
	return dbtime.PreviousDayEnd(now, s.loc)
}

// RunOnce performs one sweep and returns how many entries changed.
func (s *OverdueSweeper) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.Cutoff(s.clock())
	n, err := s.plans.MarkOverdue(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("mark overdue (cutoff %s): %w", cutoff.Format(time.RFC3339), err)
	}
	return n, nil
}

// Run is the cron entry point. It never panics or returns an error.
func (s *OverdueSweeper) Run() {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Error("overdue sweep panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, sweepLockKey, s.Timeout)
		if err != nil {
			// sweeps are idempotent; run without the lock
			s.log.WithError(err).Warn("sweep lock unavailable, running unlocked")
		} else if !ok {
			s.log.Debug("another replica holds the sweep lock")
			return
		} else {
			defer release()
		}
	}

	start := time.Now()
	n, err := s.RunOnce(ctx)
	if err != nil {
		s.log.WithError(err).Error("overdue sweep failed, retrying next tick")
		return
	}
	s.log.WithFields(logrus.Fields{
		"transitioned": n,
		"elapsed":      time.Since(start).String(),
	}).Info("overdue sweep done")
}
