package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"study-accountability-bot/internal/models"
	"study-accountability-bot/internal/scheduler"
)

const staleConversationAge = 24 * time.Hour

// ScheduleAll rebuilds the whole job table from persisted user settings.
// Called once at startup; in-flight conversations from a previous run are
// gone, only durable configuration survives a restart.
func (h *Handler) ScheduleAll() error {
	users, err := h.DB.ListActiveUsers()
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}
	for i := range users {
		h.ScheduleUserJobs(&users[i])
	}

	hour, minute, err := scheduler.ParseTimeOfDay(h.Cfg.ReportTime)
	if err != nil {
		return fmt.Errorf("weekly report time: %w", err)
	}
	err = h.Registry.Schedule(scheduler.PurposeWeeklyReport, 0,
		scheduler.Weekly(h.Cfg.ReportDay, hour, minute), h.runScheduledReport)
	if err != nil {
		return err
	}

	err = h.Registry.ScheduleEvery("conversation-sweep", time.Hour, func() {
		if n := h.Tracker.ExpireStale(staleConversationAge); n > 0 {
			slog.Info("expired stale conversations", "count", n)
		}
	})
	if err != nil {
		return err
	}

	slog.Info("job table rebuilt", "users", len(users), "jobs", h.Registry.Len())
	return nil
}

// ScheduleUserJobs registers (or replaces) one user's recurring jobs from
// their current settings. No check-in time means no check-in job, and
// reminders are both-or-neither: a half-configured pair yields none.
func (h *Handler) ScheduleUserJobs(u *models.User) {
	userID := u.ID

	if u.CheckinTime == "" {
		h.Registry.Unschedule(scheduler.PurposeCheckin, userID)
	} else if hour, minute, err := scheduler.ParseTimeOfDay(u.CheckinTime); err != nil {
		slog.Warn("bad check-in time in settings", "user_id", userID, "value", u.CheckinTime)
		h.Registry.Unschedule(scheduler.PurposeCheckin, userID)
	} else {
		err := h.Registry.Schedule(scheduler.PurposeCheckin, userID,
			scheduler.Daily(hour, minute), func() { h.sendScheduledCheckin(userID) })
		if err != nil {
			slog.Error("schedule check-in", "user_id", userID, "error", err)
		}
	}

	if u.ReminderStart == "" || u.ReminderEnd == "" {
		h.Registry.Unschedule(scheduler.PurposeReminderStart, userID)
		h.Registry.Unschedule(scheduler.PurposeReminderEnd, userID)
		return
	}
	startH, startM, err1 := scheduler.ParseTimeOfDay(u.ReminderStart)
	endH, endM, err2 := scheduler.ParseTimeOfDay(u.ReminderEnd)
	if err1 != nil || err2 != nil {
		slog.Warn("bad reminder times in settings", "user_id", userID)
		h.Registry.Unschedule(scheduler.PurposeReminderStart, userID)
		h.Registry.Unschedule(scheduler.PurposeReminderEnd, userID)
		return
	}

	err := h.Registry.Schedule(scheduler.PurposeReminderStart, userID,
		scheduler.Daily(startH, startM), func() { h.sendStartReminder(userID) })
	if err != nil {
		slog.Error("schedule start reminder", "user_id", userID, "error", err)
	}
	err = h.Registry.Schedule(scheduler.PurposeReminderEnd, userID,
		scheduler.Daily(endH, endM), func() { h.sendEndReminder(userID) })
	if err != nil {
		slog.Error("schedule end reminder", "user_id", userID, "error", err)
	}
}

// Scheduled check-ins go to the user's private chat.
func (h *Handler) sendScheduledCheckin(userID int64) {
	u, err := h.DB.GetUser(userID)
	if err != nil || u == nil {
		slog.Warn("scheduled check-in for missing user", "user_id", userID, "error", err)
		return
	}
	h.SendCheckinPrompt(userID, u)
}

func (h *Handler) sendStartReminder(userID int64) {
	_ = h.Disp.Send(userID, "Reminder: time to study!")
}

func (h *Handler) sendEndReminder(userID int64) {
	u, err := h.DB.GetUser(userID)
	if err != nil || u == nil {
		return
	}
	_ = h.Disp.Send(userID, fmt.Sprintf("Session over! Remember the check-in at %s", u.CheckinTime))
}
