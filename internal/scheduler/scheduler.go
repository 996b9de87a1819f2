package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"vocabclash/internal/gamification"
)

// jobTimeout bounds a single run of a background job
const jobTimeout = 2 * time.Minute

// Sweeper closes study sessions that have gone idle
type Sweeper interface {
	SweepStaleSessions(ctx context.Context) (int, error)
}

// Reminder emails users whose streak is about to lapse
type Reminder interface {
	SendStreakReminders(ctx context.Context, today string) (int, error)
}

// Options configures the job cadence
type Options struct {
	SweepInterval time.Duration
	// ReminderTime is a UTC wall-clock time in HH:MM form. Empty disables
	// the reminder job.
	ReminderTime string
}

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	reminder  Reminder
	opts      Options
	now       func() time.Time
}

// New creates a new scheduler instance. reminder may be nil.
func New(sweeper Sweeper, reminder Reminder, opts Options) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		sweeper:   sweeper,
		reminder:  reminder,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and runs them in the background
func (s *Scheduler) Start() error {
	if s.opts.SweepInterval <= 0 {
		return errors.Errorf("invalid sweep interval %s", s.opts.SweepInterval)
	}
	if _, err := s.scheduler.Every(s.opts.SweepInterval).Do(s.sweep); err != nil {
		return errors.Wrap(err, "schedule session sweep")
	}

	if s.reminder != nil && s.opts.ReminderTime != "" {
		if _, err := s.scheduler.Every(1).Day().At(s.opts.ReminderTime).Do(s.remind); err != nil {
			return errors.Wrapf(err, "schedule streak reminders at %q", s.opts.ReminderTime)
		}
	}

	s.scheduler.StartAsync()
	zap.S().Infow("Scheduler started",
		"sweep_interval", s.opts.SweepInterval,
		"reminder_time", s.opts.ReminderTime,
		"jobs", len(s.scheduler.Jobs()))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	closed, err := s.sweeper.SweepStaleSessions(ctx)
	if err != nil {
		zap.S().Errorw("Stale session sweep failed", "error", err)
		return
	}
	if closed > 0 {
		zap.S().Infow("Closed stale sessions", "count", closed)
	}
}

func (s *Scheduler) remind() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	today := gamification.Today(s.now())
	sent, err := s.reminder.SendStreakReminders(ctx, today)
	if err != nil {
		zap.S().Errorw("Streak reminders failed", "date", today, "error", err)
		return
	}
	zap.S().Infow("Streak reminders sent", "date", today, "count", sent)
}
