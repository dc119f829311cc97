// Package scheduler owns the process-wide cron runner. Jobs are registered
// before Start; Stop waits for running jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Entry
}

func New(loc *time.Location, log *logrus.Logger) *Scheduler {
	entry := log.WithField("component", "scheduler")
	cl := cron.PrintfLogger(entry)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: entry,
	}
}

// Add registers job under a standard 5-field spec or a descriptor (@daily).
func (s *Scheduler) Add(name, spec string, job cron.Job) error {
	id, err := s.cron.AddJob(spec, job)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"job": name, "spec": spec, "entry_id": id}).Info("job registered")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("jobs", len(s.cron.Entries())).Info("scheduler started")
}

// Stop prevents new ticks and waits for running jobs or ctx, whichever first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out, a job is still running")
	}
}
