package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"reward-admin/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParse(t *testing.T) {
	s, err := Parse("0 2 1 * *")
	require.NoError(t, err)
	assert.Equal(t, Schedule{Minute: 0, Hour: 2, Day: 1}, s)

	for _, expr := range []string{
		"",
		"0 2 1 *",
		"*/5 * * * *",
		"0 2 1 6 *",
		"0 2 * * 1",
		"60 2 1 * *",
		"0 24 1 * *",
		"0 2 0 * *",
		"0 2 32 * *",
	} {
		_, err := Parse(expr)
		assert.Error(t, err, "expr %q", expr)
	}
}

func TestScheduleNext(t *testing.T) {
	at := func(y int, m time.Month, d, h, min int) time.Time {
		return time.Date(y, m, d, h, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		sched Schedule
		from  time.Time
		want  time.Time
	}{
		{"later this month", Schedule{0, 2, 15}, at(2025, time.March, 3, 10, 0), at(2025, time.March, 15, 2, 0)},
		{"earlier today rolls to next month", Schedule{0, 2, 1}, at(2025, time.March, 1, 3, 0), at(2025, time.April, 1, 2, 0)},
		{"exact slot is not repeated", Schedule{0, 2, 1}, at(2025, time.March, 1, 2, 0), at(2025, time.April, 1, 2, 0)},
		{"december rolls the year", Schedule{30, 23, 20}, at(2025, time.December, 21, 0, 0), at(2026, time.January, 20, 23, 30)},
		{"day clamped in february", Schedule{0, 2, 31}, at(2025, time.February, 10, 0, 0), at(2025, time.February, 28, 2, 0)},
		{"day clamped in leap february", Schedule{0, 2, 30}, at(2024, time.February, 10, 0, 0), at(2024, time.February, 29, 2, 0)},
		{"clamped slot passed", Schedule{0, 2, 31}, at(2025, time.April, 30, 5, 0), at(2025, time.May, 31, 2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sched.Next(tt.from))
		})
	}
}

type fakeRecalc struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRecalc) RecalculateAll(ctx context.Context, trigger string, actorID uint) (*service.RecalcResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &service.RecalcResult{SuccessCount: 1}, nil
}

func TestSchedulerRunsWhenDue(t *testing.T) {
	fake := &fakeRecalc{}
	s, err := New(fake, "0 2 1 * *", zap.NewNop())
	require.NoError(t, err)

	// the first computed slot is a millisecond away, later ones a month away
	var first atomic.Bool
	s.now = func() time.Time {
		if first.CompareAndSwap(false, true) {
			return time.Date(2025, time.March, 1, 1, 59, 59, 999000000, time.UTC)
		}
		return time.Date(2025, time.March, 1, 2, 0, 1, 0, time.UTC)
	}

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return fake.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()
	assert.EqualValues(t, 1, fake.calls.Load())
}

func TestSchedulerToleratesOverlap(t *testing.T) {
	fake := &fakeRecalc{err: service.ErrRecalculationRunning}
	s, err := New(fake, "0 2 1 * *", zap.NewNop())
	require.NoError(t, err)
	s.run(context.Background())
	assert.EqualValues(t, 1, fake.calls.Load())
}

func TestSchedulerStopsWithContext(t *testing.T) {
	s, err := New(&fakeRecalc{}, "0 2 1 * *", zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	s.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	s, err := New(&fakeRecalc{}, "0 2 1 * *", zap.NewNop())
	require.NoError(t, err)
	s.Stop()
}
