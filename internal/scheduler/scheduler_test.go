package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Stop() })
	return r
}

func TestParseTimeOfDay(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		h, m, err := ParseTimeOfDay("23:00")
		require.NoError(t, err)
		assert.Equal(t, 23, h)
		assert.Equal(t, 0, m)

		h, m, err = ParseTimeOfDay("9:05")
		require.NoError(t, err)
		assert.Equal(t, 9, h)
		assert.Equal(t, 5, m)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, s := range []string{"", "24:00", "12:60", "12", "ab:cd", "12:3", "12:034"} {
			_, _, err := ParseTimeOfDay(s)
			assert.Error(t, err, "input %q", s)
		}
	})
}

func TestRegistry_Schedule(t *testing.T) {
	t.Run("registers one job per key", func(t *testing.T) {
		r := newTestRegistry(t)

		require.NoError(t, r.Schedule(PurposeCheckin, 42, Daily(22, 0), func() {}))
		assert.True(t, r.Has(PurposeCheckin, 42))
		assert.Equal(t, 1, r.Len())
		assert.Len(t, r.sched.Jobs(), 1)
	})

	t.Run("replace leaves exactly one live timer", func(t *testing.T) {
		r := newTestRegistry(t)

		require.NoError(t, r.Schedule(PurposeCheckin, 42, Daily(22, 0), func() {}))
		first := r.jobs[Key{Purpose: PurposeCheckin, UserID: 42}].ID()

		// moving the check-in from 22:00 to 23:00 must not keep the old timer
		require.NoError(t, r.Schedule(PurposeCheckin, 42, Daily(23, 0), func() {}))
		second := r.jobs[Key{Purpose: PurposeCheckin, UserID: 42}].ID()

		assert.NotEqual(t, first, second)
		assert.Equal(t, 1, r.Len())
		require.Len(t, r.sched.Jobs(), 1)
		r.Start()
		next, err := r.sched.Jobs()[0].NextRun()
		require.NoError(t, err)
		assert.Equal(t, 23, next.Hour())
		assert.Equal(t, 0, next.Minute())
	})

	t.Run("distinct purposes coexist for one user", func(t *testing.T) {
		r := newTestRegistry(t)

		require.NoError(t, r.Schedule(PurposeCheckin, 42, Daily(23, 0), func() {}))
		require.NoError(t, r.Schedule(PurposeReminderStart, 42, Daily(19, 0), func() {}))
		require.NoError(t, r.Schedule(PurposeReminderEnd, 42, Daily(20, 30), func() {}))
		assert.Equal(t, 3, r.Len())
	})

	t.Run("weekly trigger", func(t *testing.T) {
		r := newTestRegistry(t)

		require.NoError(t, r.Schedule(PurposeWeeklyReport, 0, Weekly(time.Sunday, 20, 0), func() {}))
		require.Len(t, r.sched.Jobs(), 1)
		r.Start()
		next, err := r.sched.Jobs()[0].NextRun()
		require.NoError(t, err)
		assert.Equal(t, time.Sunday, next.Weekday())
		assert.Equal(t, 20, next.Hour())
	})

	t.Run("rejects invalid trigger times", func(t *testing.T) {
		r := newTestRegistry(t)

		assert.Error(t, r.Schedule(PurposeCheckin, 42, Daily(24, 0), func() {}))
		assert.Error(t, r.Schedule(PurposeCheckin, 42, Daily(12, 60), func() {}))
		assert.Equal(t, 0, r.Len())
	})
}

func TestRegistry_Unschedule(t *testing.T) {
	t.Run("removes the job", func(t *testing.T) {
		r := newTestRegistry(t)

		require.NoError(t, r.Schedule(PurposeCheckin, 42, Daily(23, 0), func() {}))
		r.Unschedule(PurposeCheckin, 42)
		assert.False(t, r.Has(PurposeCheckin, 42))
		assert.Empty(t, r.sched.Jobs())
	})

	t.Run("no-op when absent", func(t *testing.T) {
		r := newTestRegistry(t)
		r.Unschedule(PurposeReminderEnd, 7) // must not panic or error
		assert.Equal(t, 0, r.Len())
	})
}

func TestRegistry_FaultIsolation(t *testing.T) {
	t.Run("panicking callback is contained", func(t *testing.T) {
		r := newTestRegistry(t)

		fired := make(chan struct{}, 1)
		guardedPanic := r.guarded("boom", func() { panic("job failure") })
		require.NotPanics(t, func() { guardedPanic() })

		guardedOK := r.guarded("ok", func() { fired <- struct{}{} })
		guardedOK()
		select {
		case <-fired:
		default:
			t.Fatal("healthy callback did not run")
		}
	})

	t.Run("interval job rejects non-positive interval", func(t *testing.T) {
		r := newTestRegistry(t)
		assert.Error(t, r.ScheduleEvery("sweep", 0, func() {}))
	})
}

func TestRegistry_FiresCallback(t *testing.T) {
	r := newTestRegistry(t)

	fired := make(chan struct{})
	require.NoError(t, r.ScheduleEvery("tick", 10*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}))
	r.Start()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled callback never fired")
	}
}
