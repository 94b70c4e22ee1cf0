package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"study-accountability-bot/internal/models"
)

//go:embed schema.sql
var ddl embed.FS

type DB struct{ *sql.DB }

func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err = db.Exec(string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ---------- users -----------------------------------------------------------

// UpsertUser registers a user, keeping existing settings if the row exists.
// Only the username is refreshed on conflict.
func (d *DB) UpsertUser(u *models.User) error {
	_, err := d.Exec(`
        INSERT INTO users (user_id, username)
        VALUES (?,?)
        ON CONFLICT(user_id) DO UPDATE SET username=excluded.username,
            is_active=1
    `, u.ID, u.Username)
	return err
}

func (d *DB) GetUser(userID int64) (*models.User, error) {
	var u models.User
	var remStart, remEnd sql.NullString

	err := d.QueryRow(`
        SELECT user_id, username, weekly_goal, checkin_time,
               reminder_start, reminder_end, joined_date, is_active
        FROM users WHERE user_id=?`, userID,
	).Scan(&u.ID, &u.Username, &u.WeeklyGoal, &u.CheckinTime,
		&remStart, &remEnd, &u.JoinedDate, &u.Active)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.ReminderStart = remStart.String
	u.ReminderEnd = remEnd.String
	return &u, nil
}

func (d *DB) ListActiveUsers() ([]models.User, error) {
	rows, err := d.Query(`
        SELECT user_id, username, weekly_goal, checkin_time,
               reminder_start, reminder_end, joined_date, is_active
        FROM users WHERE is_active=1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.User
	for rows.Next() {
		var u models.User
		var remStart, remEnd sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.WeeklyGoal, &u.CheckinTime,
			&remStart, &remEnd, &u.JoinedDate, &u.Active); err != nil {
			return nil, err
		}
		u.ReminderStart = remStart.String
		u.ReminderEnd = remEnd.String
		res = append(res, u)
	}
	return res, rows.Err()
}

func (d *DB) SetWeeklyGoal(userID int64, hours int) error {
	return d.updateUser(userID, `UPDATE users SET weekly_goal=? WHERE user_id=?`, hours)
}

func (d *DB) SetCheckinTime(userID int64, hhmm string) error {
	return d.updateUser(userID, `UPDATE users SET checkin_time=? WHERE user_id=?`, hhmm)
}

func (d *DB) SetReminders(userID int64, start, end string) error {
	res, err := d.Exec(`UPDATE users SET reminder_start=?, reminder_end=? WHERE user_id=?`,
		start, end, userID)
	if err != nil {
		return err
	}
	return checkUpdated(res, userID)
}

// Deactivate flags a user inactive; rows are never hard-deleted.
func (d *DB) Deactivate(userID int64) error {
	res, err := d.Exec(`UPDATE users SET is_active=0 WHERE user_id=?`, userID)
	if err != nil {
		return err
	}
	return checkUpdated(res, userID)
}

func (d *DB) updateUser(userID int64, query string, arg any) error {
	res, err := d.Exec(query, arg, userID)
	if err != nil {
		return err
	}
	return checkUpdated(res, userID)
}

func checkUpdated(res sql.Result, userID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d not registered", userID)
	}
	return nil
}

// ---------- daily logs ------------------------------------------------------

// UpsertDailyLog writes a check-in result. A second check-in on the same
// date overwrites the first, last write wins.
func (d *DB) UpsertDailyLog(l *models.DailyLog) error {
	_, err := d.Exec(`
        INSERT INTO daily_logs (user_id, date, should_study, hours_studied, distraction_level, notes)
        VALUES (?,?,?,?,?,?)
        ON CONFLICT(user_id, date) DO UPDATE SET
            should_study=excluded.should_study,
            hours_studied=excluded.hours_studied,
            distraction_level=excluded.distraction_level,
            notes=excluded.notes
    `, l.UserID, l.Date, l.ShouldStudy, l.HoursStudied, string(l.Distraction), l.Notes)
	return err
}

func (d *DB) GetDailyLog(userID int64, date string) (*models.DailyLog, error) {
	var l models.DailyLog
	err := d.QueryRow(`
        SELECT id, user_id, date, should_study, hours_studied, distraction_level, notes, created_at
        FROM daily_logs WHERE user_id=? AND date=?`, userID, date,
	).Scan(&l.ID, &l.UserID, &l.Date, &l.ShouldStudy, &l.HoursStudied,
		&l.Distraction, &l.Notes, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLogs returns a user's logs with date in [from, to], ordered by date.
func (d *DB) ListLogs(userID int64, from, to string) ([]models.DailyLog, error) {
	rows, err := d.Query(`
        SELECT id, user_id, date, should_study, hours_studied, distraction_level, notes, created_at
        FROM daily_logs
        WHERE user_id=? AND date BETWEEN ? AND ?
        ORDER BY date`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.DailyLog
	for rows.Next() {
		var l models.DailyLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Date, &l.ShouldStudy, &l.HoursStudied,
			&l.Distraction, &l.Notes, &l.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

// UpdateDailyLogNotes sets the notes field of an existing log, if any.
func (d *DB) UpdateDailyLogNotes(userID int64, date, notes string) error {
	_, err := d.Exec(`UPDATE daily_logs SET notes=? WHERE user_id=? AND date=?`,
		notes, userID, date)
	return err
}

// ---------- weekly reports --------------------------------------------------

func (d *DB) AppendWeeklyReport(weekStart, weekEnd, text string) error {
	_, err := d.Exec(`
        INSERT INTO weekly_reports (week_start, week_end, report_text)
        VALUES (?,?,?)`, weekStart, weekEnd, text)
	return err
}
