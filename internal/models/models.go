package models

// Distraction is the self-reported distraction level for a study day.
type Distraction string

const (
	DistractionLow    Distraction = "low"
	DistractionMedium Distraction = "medium"
	DistractionHigh   Distraction = "high"
)

// Score maps a distraction level onto the 1..3 ordinal scale used for
// weekly averaging. Unknown values count as medium.
func (d Distraction) Score() int {
	switch d {
	case DistractionLow:
		return 1
	case DistractionHigh:
		return 3
	default:
		return 2
	}
}

// Valid reports whether d is one of the three known levels.
func (d Distraction) Valid() bool {
	return d == DistractionLow || d == DistractionMedium || d == DistractionHigh
}

// User represents bot settings for a telegram user.
type User struct {
	ID            int64  `db:"user_id"`
	Username      string `db:"username"`
	WeeklyGoal    int    `db:"weekly_goal"`    // hours, 0..168
	CheckinTime   string `db:"checkin_time"`   // "HH:MM", empty -> no checkin job
	ReminderStart string `db:"reminder_start"` // "HH:MM", empty -> not set
	ReminderEnd   string `db:"reminder_end"`   // "HH:MM", empty -> not set
	JoinedDate    string `db:"joined_date"`    // YYYY-MM-DD
	Active        bool   `db:"is_active"`
}

// DailyLog is one check-in result, unique per (user, date).
type DailyLog struct {
	ID           int64       `db:"id"`
	UserID       int64       `db:"user_id"`
	Date         string      `db:"date"` // YYYY-MM-DD
	ShouldStudy  bool        `db:"should_study"`
	HoursStudied float64     `db:"hours_studied"`
	Distraction  Distraction `db:"distraction_level"`
	Notes        string      `db:"notes"`
	CreatedAt    int64       `db:"created_at"`
}

// WeeklyReport is an archived broadcast report, append-only.
type WeeklyReport struct {
	ID        int64  `db:"id"`
	WeekStart string `db:"week_start"` // Monday, YYYY-MM-DD
	WeekEnd   string `db:"week_end"`   // Sunday, YYYY-MM-DD
	Text      string `db:"report_text"`
	CreatedAt int64  `db:"created_at"`
}
