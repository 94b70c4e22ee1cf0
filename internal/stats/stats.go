// Package stats computes weekly study summaries. Everything here is pure:
// input rows in, numbers out, no storage or clock access.
package stats

import (
	"time"

	"study-accountability-bot/internal/models"
)

// Summary is one user's rollup over a Monday..Sunday week.
type Summary struct {
	TotalHours     float64 // hours over days with should_study=true
	StudyDays      int     // should_study=true and hours > 0
	TotalStudyDays int     // should_study=true (obligated days)
	AvgDistraction float64 // mean of 1..3 over counted study days, 0 if none
	Band           models.Distraction
	NotesCount     int
}

// Summarize rolls up a user's logs for one week. Day-off rows never
// contribute hours, whatever their stored hours value.
func Summarize(logs []models.DailyLog) Summary {
	var s Summary
	var distractionSum, distractionN int

	for _, l := range logs {
		if l.Notes != "" {
			s.NotesCount++
		}
		if !l.ShouldStudy {
			continue
		}
		s.TotalStudyDays++
		s.TotalHours += l.HoursStudied
		if l.HoursStudied > 0 {
			s.StudyDays++
			distractionSum += l.Distraction.Score()
			distractionN++
		}
	}

	if distractionN > 0 {
		s.AvgDistraction = float64(distractionSum) / float64(distractionN)
	}
	s.Band = band(s.AvgDistraction)
	return s
}

// band classifies an averaged distraction score. An average of 0 (no
// qualifying days) deliberately lands in the low band.
func band(avg float64) models.Distraction {
	switch {
	case avg <= 1.5:
		return models.DistractionLow
	case avg <= 2.5:
		return models.DistractionMedium
	default:
		return models.DistractionHigh
	}
}

// Completion returns goal completion in percent; 0 when no goal is set.
func Completion(totalHours float64, goalHours int) float64 {
	if goalHours <= 0 {
		return 0
	}
	return totalHours / float64(goalHours) * 100
}

// Group is the whole-group rollup for the weekly broadcast. A user counts
// as active when they logged at least one studied day that week.
type Group struct {
	TotalUsers        int
	ActiveUsers       int
	TotalHours        float64
	AvgHoursPerActive float64
	GoalsReached      int     // active users with TotalHours >= goal
	GoalRate          float64 // percent of active users who reached their goal
	Participation     float64 // percent of users active
}

// SummarizeGroup combines per-user summaries. Safe with zero users and
// zero active users; rates are 0 in that case.
func SummarizeGroup(users []models.User, perUser map[int64]Summary) Group {
	g := Group{TotalUsers: len(users)}

	for _, u := range users {
		s := perUser[u.ID]
		if s.StudyDays == 0 {
			continue
		}
		g.ActiveUsers++
		g.TotalHours += s.TotalHours
		if s.TotalHours >= float64(u.WeeklyGoal) {
			g.GoalsReached++
		}
	}

	if g.TotalUsers > 0 {
		g.Participation = float64(g.ActiveUsers) / float64(g.TotalUsers) * 100
	}
	if g.ActiveUsers > 0 {
		g.AvgHoursPerActive = g.TotalHours / float64(g.ActiveUsers)
		g.GoalRate = float64(g.GoalsReached) / float64(g.ActiveUsers) * 100
	}
	return g
}

// WeekBounds returns the Monday and Sunday (inclusive) of the week holding
// now, shifted by offset whole weeks (0 = current, -1 = previous).
func WeekBounds(now time.Time, offset int) (start, end time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 { // Sunday closes the week, it does not open the next
		weekday = 7
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = day.AddDate(0, 0, -(weekday-1)+offset*7)
	end = start.AddDate(0, 0, 6)
	return start, end
}
