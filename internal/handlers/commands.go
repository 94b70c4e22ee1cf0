package handlers

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-accountability-bot/internal/models"
	"study-accountability-bot/internal/scheduler"
	"study-accountability-bot/internal/stats"
)

func (h *Handler) HandleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		h.handleStart(chatID, msg.From)
	case "help":
		h.send(chatID, helpText)
	case "setgoal":
		h.handleSetGoal(chatID, userID, args)
	case "settime":
		h.handleSetTime(chatID, userID, args)
	case "setreminders":
		h.handleSetReminders(chatID, userID, args)
	case "checkin":
		h.handleManualCheckin(chatID, userID)
	case "skip":
		h.handleSkip(chatID, userID)
	case "mystats":
		h.handleMyStats(chatID, userID)
	case "weekly":
		h.RunWeeklyReport(chatID)
	}
}

func (h *Handler) handleStart(chatID int64, from *tgbotapi.User) {
	username := from.UserName
	if username == "" {
		username = from.FirstName
	}
	if err := h.DB.UpsertUser(&models.User{ID: from.ID, Username: username}); err != nil {
		slog.Error("register user", "user_id", from.ID, "error", err)
		h.send(chatID, transientErrorText)
		return
	}

	// a fresh registration gets the default check-in job right away
	if u, err := h.DB.GetUser(from.ID); err == nil && u != nil {
		h.ScheduleUserJobs(u)
	}
	h.send(chatID, welcomeText)
}

func (h *Handler) handleSetGoal(chatID, userID int64, args []string) {
	if len(args) != 1 {
		h.send(chatID, "Usage: /setgoal [hours]\nExample: /setgoal 20")
		return
	}
	goal, err := strconv.Atoi(args[0])
	if err != nil || goal < 0 || goal > 168 {
		h.send(chatID, "Enter a valid number of hours (0-168)")
		return
	}
	if err := h.DB.SetWeeklyGoal(userID, goal); err != nil {
		slog.Error("set goal", "user_id", userID, "error", err)
		h.send(chatID, notRegisteredText)
		return
	}
	h.send(chatID, fmt.Sprintf("Weekly goal set: %d hours", goal))
}

func (h *Handler) handleSetTime(chatID, userID int64, args []string) {
	if len(args) != 1 {
		h.send(chatID, "Usage: /settime [HH:MM]\nExample: /settime 23:00")
		return
	}
	if _, _, err := scheduler.ParseTimeOfDay(args[0]); err != nil {
		h.send(chatID, "Invalid time format. Use HH:MM (e.g. 23:00)")
		return
	}
	if err := h.DB.SetCheckinTime(userID, args[0]); err != nil {
		slog.Error("set checkin time", "user_id", userID, "error", err)
		h.send(chatID, notRegisteredText)
		return
	}

	u, err := h.DB.GetUser(userID)
	if err != nil || u == nil {
		h.send(chatID, transientErrorText)
		return
	}
	h.ScheduleUserJobs(u)
	h.send(chatID, fmt.Sprintf("Check-in time set: %s", args[0]))
}

func (h *Handler) handleSetReminders(chatID, userID int64, args []string) {
	if len(args) != 2 {
		h.send(chatID, "Usage: /setreminders [start] [end]\nExample: /setreminders 19:00 20:30")
		return
	}
	for _, a := range args {
		if _, _, err := scheduler.ParseTimeOfDay(a); err != nil {
			h.send(chatID, "Invalid time format. Use HH:MM")
			return
		}
	}
	if err := h.DB.SetReminders(userID, args[0], args[1]); err != nil {
		slog.Error("set reminders", "user_id", userID, "error", err)
		h.send(chatID, notRegisteredText)
		return
	}

	u, err := h.DB.GetUser(userID)
	if err != nil || u == nil {
		h.send(chatID, transientErrorText)
		return
	}
	h.ScheduleUserJobs(u)
	h.send(chatID, fmt.Sprintf("Reminders set:\n- study start: %s\n- study end: %s", args[0], args[1]))
}

func (h *Handler) handleManualCheckin(chatID, userID int64) {
	u, err := h.DB.GetUser(userID)
	if err != nil {
		h.send(chatID, transientErrorText)
		return
	}
	if u == nil {
		h.send(chatID, notRegisteredText)
		return
	}
	h.SendCheckinPrompt(chatID, u)
}

func (h *Handler) handleSkip(chatID, userID int64) {
	log := &models.DailyLog{
		UserID:      userID,
		Date:        h.today(),
		ShouldStudy: false,
		Distraction: models.DistractionLow,
		Notes:       "day off",
	}
	if err := h.DB.UpsertDailyLog(log); err != nil {
		slog.Error("skip day", "user_id", userID, "error", err)
		h.send(chatID, transientErrorText)
		return
	}
	h.Tracker.Clear(userID)
	h.send(chatID, "Check-in skipped. Recorded as a day off.")
}

func (h *Handler) handleMyStats(chatID, userID int64) {
	u, err := h.DB.GetUser(userID)
	if err != nil {
		h.send(chatID, transientErrorText)
		return
	}
	if u == nil {
		h.send(chatID, notRegisteredText)
		return
	}

	s, err := h.weekSummary(userID)
	if err != nil {
		slog.Error("weekly summary", "user_id", userID, "error", err)
		h.send(chatID, transientErrorText)
		return
	}
	h.send(chatID, renderUserStats(u, s))
}

// weekSummary aggregates the current Monday..Sunday week for one user.
func (h *Handler) weekSummary(userID int64) (stats.Summary, error) {
	start, end := stats.WeekBounds(h.now().In(h.loc), 0)
	logs, err := h.DB.ListLogs(userID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(logs), nil
}
