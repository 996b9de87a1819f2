package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSweeper) SweepStaleSessions(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 1, f.err
}

func (f *fakeSweeper) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeReminder struct {
	days []string
}

func (f *fakeReminder) SendStreakReminders(_ context.Context, today string) (int, error) {
	f.days = append(f.days, today)
	return 2, nil
}

func TestStartRegistersJobs(t *testing.T) {
	tests := []struct {
		name     string
		reminder Reminder
		opts     Options
		wantJobs int
	}{
		{"sweep and reminder", &fakeReminder{}, Options{SweepInterval: time.Minute, ReminderTime: "18:00"}, 2},
		{"no reminder sender", nil, Options{SweepInterval: time.Minute, ReminderTime: "18:00"}, 1},
		{"reminder disabled", &fakeReminder{}, Options{SweepInterval: time.Minute}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeSweeper{}, tt.reminder, tt.opts)
			require.NoError(t, s.Start())
			defer s.Stop()

			assert.Len(t, s.scheduler.Jobs(), tt.wantJobs)
		})
	}
}

func TestStartRejectsBadOptions(t *testing.T) {
	s := New(&fakeSweeper{}, nil, Options{})
	assert.Error(t, s.Start())

	s = New(&fakeSweeper{}, &fakeReminder{}, Options{SweepInterval: time.Minute, ReminderTime: "tea time"})
	assert.Error(t, s.Start())
}

func TestSweepRunsOnStart(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper, nil, Options{SweepInterval: time.Hour})
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return sweeper.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSweepErrorIsLogged(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("database is locked")}
	s := New(sweeper, nil, Options{SweepInterval: time.Hour})

	s.sweep()
	assert.Equal(t, 1, sweeper.count())
}

func TestRemindUsesUTCDay(t *testing.T) {
	reminder := &fakeReminder{}
	s := New(&fakeSweeper{}, reminder, Options{SweepInterval: time.Hour, ReminderTime: "18:00"})
	s.now = func() time.Time { return time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC) }

	s.remind()
	assert.Equal(t, []string{"2024-03-04"}, reminder.days)
}
