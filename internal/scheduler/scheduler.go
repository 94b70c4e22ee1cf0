// Package scheduler owns all recurring jobs. Jobs are keyed by
// (purpose, user) and registering under an existing key replaces the old
// timer, so a user never has two live timers for the same purpose.
package scheduler

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Purpose names what a job is for. One job per (purpose, user).
type Purpose string

const (
	PurposeCheckin       Purpose = "checkin"
	PurposeReminderStart Purpose = "reminder-start"
	PurposeReminderEnd   Purpose = "reminder-end"
	PurposeWeeklyReport  Purpose = "weekly-report" // singleton, user 0
)

// Key identifies a scheduled job.
type Key struct {
	Purpose Purpose
	UserID  int64
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Purpose, k.UserID)
}

// Trigger is a recurrence rule: daily at hour:minute, or weekly on a
// weekday at hour:minute. Firing is wall clock driven in the registry's
// timezone; occurrences missed while the process was down are skipped.
type Trigger struct {
	Weekday *time.Weekday // nil -> daily
	Hour    int
	Minute  int
}

// Daily fires once per calendar day at hour:minute.
func Daily(hour, minute int) Trigger {
	return Trigger{Hour: hour, Minute: minute}
}

// Weekly fires once per week on day at hour:minute.
func Weekly(day time.Weekday, hour, minute int) Trigger {
	return Trigger{Weekday: &day, Hour: hour, Minute: minute}
}

func (t Trigger) validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("invalid trigger time %02d:%02d", t.Hour, t.Minute)
	}
	return nil
}

func (t Trigger) definition() gocron.JobDefinition {
	at := gocron.NewAtTimes(gocron.NewAtTime(uint(t.Hour), uint(t.Minute), 0))
	if t.Weekday != nil {
		return gocron.WeeklyJob(1, gocron.NewWeekdays(*t.Weekday), at)
	}
	return gocron.DailyJob(1, at)
}

var timeOfDayRx = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseTimeOfDay parses "HH:MM" into hour and minute.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	m := timeOfDayRx.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return hour, minute, nil
}

// Registry wraps gocron with the keyed replace semantics above.
type Registry struct {
	mu    sync.Mutex
	sched gocron.Scheduler
	jobs  map[Key]gocron.Job
}

// New creates a registry whose triggers are evaluated in loc.
func New(loc *time.Location) (*Registry, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	return &Registry{sched: s, jobs: make(map[Key]gocron.Job)}, nil
}

// Schedule registers fn under (purpose, userID), replacing any existing job
// for that key. Replacement cancels the old timer's future firings; an
// in-flight invocation is left to finish.
func (r *Registry) Schedule(purpose Purpose, userID int64, trig Trigger, fn func()) error {
	if err := trig.validate(); err != nil {
		return err
	}
	key := Key{Purpose: purpose, UserID: userID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.jobs[key]; ok {
		if err := r.sched.RemoveJob(old.ID()); err != nil {
			slog.Warn("removing replaced job", "job", key.String(), "error", err)
		}
		delete(r.jobs, key)
	}

	job, err := r.sched.NewJob(
		trig.definition(),
		gocron.NewTask(r.guarded(key.String(), fn)),
		gocron.WithName(key.String()),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", key, err)
	}
	r.jobs[key] = job
	return nil
}

// Unschedule cancels and removes a job; no-op if the key is absent.
func (r *Registry) Unschedule(purpose Purpose, userID int64) {
	key := Key{Purpose: purpose, UserID: userID}

	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[key]
	if !ok {
		return
	}
	if err := r.sched.RemoveJob(job.ID()); err != nil {
		slog.Warn("removing job", "job", key.String(), "error", err)
	}
	delete(r.jobs, key)
}

// ScheduleEvery registers an unkeyed maintenance job firing at a fixed
// interval (used for the stale-conversation sweep).
func (r *Registry) ScheduleEvery(name string, every time.Duration, fn func()) error {
	if every <= 0 {
		return fmt.Errorf("schedule %s: non-positive interval %v", name, every)
	}
	_, err := r.sched.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(r.guarded(name, fn)),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

// Has reports whether a live job exists for (purpose, userID).
func (r *Registry) Has(purpose Purpose, userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.jobs[Key{Purpose: purpose, UserID: userID}]
	return ok
}

// Len returns the number of live keyed jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Start begins firing. Jobs may be scheduled before and after Start.
func (r *Registry) Start() {
	r.sched.Start()
}

// Stop shuts the timing engine down, waiting for running jobs.
func (r *Registry) Stop() error {
	return r.sched.Shutdown()
}

// guarded isolates job faults: a panicking callback is logged and the
// job's future recurrences and all other jobs keep running.
func (r *Registry) guarded(name string, fn func()) func() {
	return func() {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("scheduled job panicked", "job", name, "panic", rec)
			}
		}()
		fn()
	}
}
