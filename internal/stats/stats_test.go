package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-accountability-bot/internal/models"
)

func studyDay(date string, hours float64, d models.Distraction) models.DailyLog {
	return models.DailyLog{Date: date, ShouldStudy: true, HoursStudied: hours, Distraction: d}
}

func dayOff(date string) models.DailyLog {
	return models.DailyLog{Date: date, ShouldStudy: false, Distraction: models.DistractionLow, Notes: "day off"}
}

func TestSummarize(t *testing.T) {
	t.Run("empty week", func(t *testing.T) {
		s := Summarize(nil)
		assert.Zero(t, s.TotalHours)
		assert.Zero(t, s.StudyDays)
		assert.Zero(t, s.TotalStudyDays)
		assert.Zero(t, s.AvgDistraction)
		assert.Equal(t, models.DistractionLow, s.Band, "no qualifying days must band low")
	})

	t.Run("goal scenario", func(t *testing.T) {
		// Mon 2h + Tue 3h studied, Wed off: 5h over 2 obligated days.
		logs := []models.DailyLog{
			studyDay("2025-09-01", 2, models.DistractionLow),
			studyDay("2025-09-02", 3, models.DistractionLow),
			dayOff("2025-09-03"),
		}
		s := Summarize(logs)
		assert.Equal(t, 5.0, s.TotalHours)
		assert.Equal(t, 2, s.StudyDays)
		assert.Equal(t, 2, s.TotalStudyDays)
		assert.Equal(t, 25.0, Completion(s.TotalHours, 20))
	})

	t.Run("day off never contributes hours", func(t *testing.T) {
		off := dayOff("2025-09-03")
		off.HoursStudied = 4 // stray value must be ignored
		s := Summarize([]models.DailyLog{off})
		assert.Zero(t, s.TotalHours)
		assert.Zero(t, s.TotalStudyDays)
	})

	t.Run("obligated zero-hour day counts as missed", func(t *testing.T) {
		s := Summarize([]models.DailyLog{studyDay("2025-09-01", 0, models.DistractionHigh)})
		assert.Equal(t, 1, s.TotalStudyDays)
		assert.Equal(t, 0, s.StudyDays)
		// a missed day carries no distraction sample
		assert.Zero(t, s.AvgDistraction)
	})

	t.Run("notes counted regardless of day type", func(t *testing.T) {
		withNote := studyDay("2025-09-01", 1, models.DistractionLow)
		withNote.Notes = "library"
		s := Summarize([]models.DailyLog{withNote, dayOff("2025-09-02")})
		assert.Equal(t, 2, s.NotesCount)
	})
}

func TestDistractionBanding(t *testing.T) {
	cases := []struct {
		name string
		logs []models.DailyLog
		avg  float64
		band models.Distraction
	}{
		{
			name: "boundary 1.5 is low",
			logs: []models.DailyLog{
				studyDay("2025-09-01", 1, models.DistractionLow),
				studyDay("2025-09-02", 1, models.DistractionMedium),
			},
			avg:  1.5,
			band: models.DistractionLow,
		},
		{
			name: "boundary 2.5 is medium",
			logs: []models.DailyLog{
				studyDay("2025-09-01", 1, models.DistractionMedium),
				studyDay("2025-09-02", 1, models.DistractionHigh),
			},
			avg:  2.5,
			band: models.DistractionMedium,
		},
		{
			name: "all high is high",
			logs: []models.DailyLog{
				studyDay("2025-09-01", 1, models.DistractionHigh),
				studyDay("2025-09-02", 1, models.DistractionHigh),
			},
			avg:  3.0,
			band: models.DistractionHigh,
		},
		{
			name: "low medium high averages medium",
			logs: []models.DailyLog{
				studyDay("2025-09-01", 1, models.DistractionLow),
				studyDay("2025-09-02", 1, models.DistractionMedium),
				studyDay("2025-09-03", 1, models.DistractionHigh),
			},
			avg:  2.0,
			band: models.DistractionMedium,
		},
		{
			name: "zero qualifying rows band low",
			logs: []models.DailyLog{dayOff("2025-09-01")},
			avg:  0,
			band: models.DistractionLow,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Summarize(tc.logs)
			assert.InDelta(t, tc.avg, s.AvgDistraction, 1e-9)
			assert.Equal(t, tc.band, s.Band)
		})
	}
}

func TestSummarizeGroup(t *testing.T) {
	t.Run("no users", func(t *testing.T) {
		g := SummarizeGroup(nil, nil)
		assert.Zero(t, g.ActiveUsers)
		assert.Zero(t, g.Participation)
		assert.Zero(t, g.AvgHoursPerActive)
		assert.Zero(t, g.GoalRate)
	})

	t.Run("no active users divides nothing", func(t *testing.T) {
		users := []models.User{{ID: 1, WeeklyGoal: 20}, {ID: 2, WeeklyGoal: 10}}
		g := SummarizeGroup(users, map[int64]Summary{})
		assert.Equal(t, 2, g.TotalUsers)
		assert.Zero(t, g.ActiveUsers)
		assert.Zero(t, g.AvgHoursPerActive)
		assert.Zero(t, g.GoalRate)
	})

	t.Run("mixed group", func(t *testing.T) {
		users := []models.User{
			{ID: 1, WeeklyGoal: 10},
			{ID: 2, WeeklyGoal: 20},
			{ID: 3, WeeklyGoal: 5},
		}
		perUser := map[int64]Summary{
			1: {TotalHours: 12, StudyDays: 4}, // reached
			2: {TotalHours: 8, StudyDays: 3},  // missed
			// user 3 logged nothing: inactive
		}
		g := SummarizeGroup(users, perUser)
		assert.Equal(t, 2, g.ActiveUsers)
		assert.Equal(t, 20.0, g.TotalHours)
		assert.InDelta(t, 10.0, g.AvgHoursPerActive, 1e-9)
		assert.Equal(t, 1, g.GoalsReached)
		assert.InDelta(t, 50.0, g.GoalRate, 1e-9)
		assert.InDelta(t, 100.0/3*2, g.Participation, 1e-9)
	})
}

func TestWeekBounds(t *testing.T) {
	loc := time.UTC

	t.Run("midweek", func(t *testing.T) {
		// Wednesday 2025-09-03
		now := time.Date(2025, 9, 3, 15, 30, 0, 0, loc)
		start, end := WeekBounds(now, 0)
		require.Equal(t, "2025-09-01", start.Format("2006-01-02"))
		require.Equal(t, "2025-09-07", end.Format("2006-01-02"))
	})

	t.Run("monday starts its own week", func(t *testing.T) {
		now := time.Date(2025, 9, 1, 0, 0, 0, 0, loc)
		start, end := WeekBounds(now, 0)
		require.Equal(t, "2025-09-01", start.Format("2006-01-02"))
		require.Equal(t, "2025-09-07", end.Format("2006-01-02"))
	})

	t.Run("sunday closes the running week", func(t *testing.T) {
		now := time.Date(2025, 9, 7, 23, 59, 0, 0, loc)
		start, end := WeekBounds(now, 0)
		require.Equal(t, "2025-09-01", start.Format("2006-01-02"))
		require.Equal(t, "2025-09-07", end.Format("2006-01-02"))
	})

	t.Run("offset shifts whole weeks", func(t *testing.T) {
		now := time.Date(2025, 9, 3, 12, 0, 0, 0, loc)
		start, end := WeekBounds(now, -1)
		require.Equal(t, "2025-08-25", start.Format("2006-01-02"))
		require.Equal(t, "2025-08-31", end.Format("2006-01-02"))
	})
}
