// Package conversation tracks in-flight check-in dialogues. State lives in
// memory only; a restart drops unfinished conversations.
package conversation

import (
	"sync"
	"time"

	"study-accountability-bot/internal/models"
)

// Step is the question the conversation is currently waiting on.
type Step int

const (
	StepStudyDecision Step = iota + 1 // "did you have to study today?"
	StepHours                         // "how many hours?"
	StepDistraction                   // "how distracted were you?"
)

// Result classifies what a selection event did to the conversation.
type Result int

const (
	// ResultIgnored: no conversation, or the selection does not match the
	// awaited step (stale button, double click). Nothing changed.
	ResultIgnored Result = iota
	// ResultRejected: the responder is not the user the conversation
	// addresses. Nothing changed; only the responder should be told.
	ResultRejected
	// ResultAwaitHours / ResultAwaitDistraction: advanced to the next step.
	ResultAwaitHours
	ResultAwaitDistraction
	// ResultDayOff: the user declared a day off; the conversation is
	// consumed and the returned state must be persisted as a day-off log.
	ResultDayOff
	// ResultCompleted: all answers collected; the conversation is consumed
	// and the returned state must be persisted.
	ResultCompleted
)

// State is one user's in-progress check-in.
type State struct {
	UserID      int64
	Step        Step
	Date        string // day being logged, YYYY-MM-DD
	ShouldStudy bool
	Hours       float64
	Distraction models.Distraction
	StartedAt   time.Time
}

// Tracker owns the per-user conversation table. At most one conversation
// exists per user; all transitions are serialized under one lock, and no
// external call is ever made while holding it.
type Tracker struct {
	mu     sync.Mutex
	states map[int64]*State
	now    func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{states: make(map[int64]*State), now: time.Now}
}

// Begin opens (or reopens) a conversation for userID logging the given
// date, waiting on the study decision. An existing conversation for the
// user is discarded.
func (t *Tracker) Begin(userID int64, date string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[userID] = &State{
		UserID:    userID,
		Step:      StepStudyDecision,
		Date:      date,
		StartedAt: t.now(),
	}
}

// Get returns a snapshot of the user's conversation, if any.
func (t *Tracker) Get(userID int64) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[userID]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Decide consumes the study-decision answer. shouldStudy=false closes the
// conversation as a day off.
func (t *Tracker) Decide(target, responder int64, shouldStudy bool) (Result, State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, res := t.step(target, responder, StepStudyDecision)
	if st == nil {
		return res, State{}
	}
	st.ShouldStudy = shouldStudy
	if !shouldStudy {
		delete(t.states, target)
		return ResultDayOff, *st
	}
	st.Step = StepHours
	return ResultAwaitHours, *st
}

// RecordHours consumes the hours answer and advances to the distraction
// question.
func (t *Tracker) RecordHours(target, responder int64, hours float64) (Result, State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, res := t.step(target, responder, StepHours)
	if st == nil {
		return res, State{}
	}
	st.Hours = hours
	st.Step = StepDistraction
	return ResultAwaitDistraction, *st
}

// RecordDistraction consumes the final answer and closes the conversation.
// The caller persists the returned state; if persistence fails it should
// Resume the state so the user can retry.
func (t *Tracker) RecordDistraction(target, responder int64, d models.Distraction) (Result, State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, res := t.step(target, responder, StepDistraction)
	if st == nil {
		return res, State{}
	}
	st.Distraction = d
	delete(t.states, target)
	return ResultCompleted, *st
}

// step validates the correlation guard and the awaited step. Each awaited
// step is consumable exactly once: a second identical selection finds the
// conversation already advanced and is ignored.
func (t *Tracker) step(target, responder int64, want Step) (*State, Result) {
	st, ok := t.states[target]
	if !ok {
		return nil, ResultIgnored
	}
	if responder != target {
		return nil, ResultRejected
	}
	if st.Step != want {
		return nil, ResultIgnored
	}
	return st, ResultIgnored
}

// Resume reinstates a consumed conversation after a failed persist, so the
// flow does not silently advance past a write that never happened.
func (t *Tracker) Resume(st State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st.Step = lastStep(st)
	restored := st
	t.states[st.UserID] = &restored
}

func lastStep(st State) Step {
	if !st.ShouldStudy {
		return StepStudyDecision
	}
	return StepDistraction
}

// Clear drops a user's conversation, if any.
func (t *Tracker) Clear(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, userID)
}

// ExpireStale drops conversations older than maxAge and returns how many
// were dropped.
func (t *Tracker) ExpireStale(maxAge time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-maxAge)
	n := 0
	for id, st := range t.states {
		if st.StartedAt.Before(cutoff) {
			delete(t.states, id)
			n++
		}
	}
	return n
}
