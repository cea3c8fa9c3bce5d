package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"reward-admin/internal/service"

	"go.uber.org/zap"
)

const taskName = "profile_recalculation"

// Recalculator is the part of the recalculation service the scheduler drives.
type Recalculator interface {
	RecalculateAll(ctx context.Context, trigger string, actorID uint) (*service.RecalcResult, error)
}

// Schedule is a parsed monthly cron expression "m h dom * *".
type Schedule struct {
	Minute int
	Hour   int
	Day    int
}

// Parse accepts only the monthly form; months and weekdays must be "*".
func Parse(expr string) (Schedule, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return Schedule{}, fmt.Errorf("invalid cron expression: %q (expected 5 fields)", expr)
	}
	if parts[3] != "*" || parts[4] != "*" {
		return Schedule{}, fmt.Errorf("invalid cron expression: %q (month and weekday must be *)", expr)
	}

	minute, err := strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return Schedule{}, fmt.Errorf("invalid minute in cron: %s", parts[0])
	}
	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return Schedule{}, fmt.Errorf("invalid hour in cron: %s", parts[1])
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return Schedule{}, fmt.Errorf("invalid day of month in cron: %s", parts[2])
	}
	return Schedule{Minute: minute, Hour: hour, Day: day}, nil
}

// Next returns the first run strictly after from. A day beyond the end of a
// month runs on that month's last day.
func (s Schedule) Next(from time.Time) time.Time {
	y, m, _ := from.Date()
	for i := 0; i < 2; i++ {
		day := s.Day
		if last := daysIn(y, m, from.Location()); day > last {
			day = last
		}
		next := time.Date(y, m, day, s.Hour, s.Minute, 0, 0, from.Location())
		if next.After(from) {
			return next
		}
		m++
		if m > time.December {
			m = time.January
			y++
		}
	}
	// unreachable: the following month always has a later slot
	return from
}

func daysIn(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}

// Scheduler runs the monthly profile recalculation.
type Scheduler struct {
	recalc   Recalculator
	schedule Schedule
	log      *zap.Logger
	now      func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(recalc Recalculator, cronExpr string, log *zap.Logger) (*Scheduler, error) {
	sched, err := Parse(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		recalc:   recalc,
		schedule: sched,
		log:      log.Named("scheduler"),
		now:      time.Now,
	}, nil
}

// Start launches the scheduling loop. It stops when ctx is cancelled or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.log.Info("starting scheduler", zap.String("task", taskName),
		zap.Int("day", s.schedule.Day), zap.Int("hour", s.schedule.Hour), zap.Int("minute", s.schedule.Minute))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.log.Info("stopping scheduler")
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		now := s.now()
		next := s.schedule.Next(now)
		s.log.Info("next task scheduled", zap.String("task", taskName), zap.String("next_run", next.Format("2006-01-02 15:04:05")))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			s.run(ctx)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	s.log.Info("running task", zap.String("task", taskName))
	res, err := s.recalc.RecalculateAll(ctx, "scheduler", 0)
	switch {
	case errors.Is(err, service.ErrRecalculationRunning):
		s.log.Warn("skipped: a recalculation is already running", zap.String("task", taskName))
	case err != nil:
		s.log.Error("task failed", zap.String("task", taskName), zap.Error(err))
	default:
		s.log.Info("task completed", zap.String("task", taskName),
			zap.Uint("run_id", res.RunID), zap.Int("success", res.SuccessCount), zap.Int("errors", len(res.Errors)))
	}
}
