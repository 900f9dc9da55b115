// Package schedule fires matching rounds on a cron expression.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Job is the work done on every tick.
type Job func(ctx context.Context) error

// Scheduler runs a Job whenever its cron schedule fires.
type Scheduler struct {
	expr  string
	sched cron.Schedule
	job   Job
	log   *zap.Logger
}

// New parses expr and returns a scheduler for job.
func New(expr string, job Job, logger *zap.Logger) (*Scheduler, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("schedule: parse %q: %w", expr, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{expr: expr, sched: sched, job: job, log: logger}, nil
}

// nextDuration returns the time from now until the next fire time, or 0
// when the schedule never fires again.
func (s *Scheduler) nextDuration(now time.Time) time.Duration {
	next := s.sched.Next(now)
	if next.IsZero() {
		return 0
	}
	d := next.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Run blocks until ctx is cancelled, invoking the job on every tick. Job
// errors are logged and do not stop the loop. Ticks missed while a job is
// running are skipped.
func (s *Scheduler) Run(ctx context.Context) {
	d := s.nextDuration(time.Now())
	if d == 0 {
		s.log.Warn("schedule never fires", zap.String("cron", s.expr))
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	s.log.Info("schedule started", zap.String("cron", s.expr), zap.Duration("first_in", d))

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if err := s.job(ctx); err != nil {
				s.log.Error("scheduled job", zap.Error(err))
			}
			if d := s.nextDuration(time.Now()); d > 0 {
				timer.Reset(d)
			}
		}
	}
}
