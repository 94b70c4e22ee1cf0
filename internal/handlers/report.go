package handlers

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"study-accountability-bot/internal/models"
	"study-accountability-bot/internal/stats"
)

// RunWeeklyReport builds the current week's report, archives it, and sends
// it to the given chat. Used by /weekly.
func (h *Handler) RunWeeklyReport(chatID int64) {
	text, err := h.buildAndArchiveReport()
	if err != nil {
		slog.Error("weekly report", "error", err)
		h.send(chatID, transientErrorText)
		return
	}
	h.send(chatID, text)
}

// runScheduledReport is the weekly-report job body. The report goes to the
// configured report chat; without one, every active user gets a copy.
func (h *Handler) runScheduledReport() {
	text, err := h.buildAndArchiveReport()
	if err != nil {
		slog.Error("scheduled weekly report", "error", err)
		return
	}
	if h.Cfg.ReportChatID != 0 {
		_ = h.Disp.Send(h.Cfg.ReportChatID, text)
		return
	}

	users, err := h.DB.ListActiveUsers()
	if err != nil {
		slog.Error("weekly report recipients", "error", err)
		return
	}
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	delivered := h.Disp.Broadcast(ids, text)
	slog.Info("weekly report broadcast", "recipients", len(ids), "delivered", delivered)
}

func (h *Handler) buildAndArchiveReport() (string, error) {
	start, end := stats.WeekBounds(h.now().In(h.loc), 0)
	startStr, endStr := start.Format("2006-01-02"), end.Format("2006-01-02")

	users, err := h.DB.ListActiveUsers()
	if err != nil {
		return "", fmt.Errorf("list active users: %w", err)
	}

	perUser := make(map[int64]stats.Summary, len(users))
	for _, u := range users {
		logs, err := h.DB.ListLogs(u.ID, startStr, endStr)
		if err != nil {
			return "", fmt.Errorf("logs for user %d: %w", u.ID, err)
		}
		perUser[u.ID] = stats.Summarize(logs)
	}

	text := renderWeeklyReport(users, perUser, start, end)
	if err := h.DB.AppendWeeklyReport(startStr, endStr, text); err != nil {
		return "", fmt.Errorf("archive report: %w", err)
	}
	return text, nil
}

// renderWeeklyReport formats the per-user sections and the group rollup.
// Pure, so the layout is testable without storage or the bot.
func renderWeeklyReport(users []models.User, perUser map[int64]stats.Summary, start, end time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "WEEKLY REPORT\nWeek %s - %s\n\n", start.Format("02/01"), end.Format("02/01"))

	if len(users) == 0 {
		b.WriteString("No registered users this week.\n")
		return b.String()
	}

	b.WriteString("Personal stats:\n\n")
	for _, u := range users {
		s := perUser[u.ID]
		if s.StudyDays == 0 {
			continue
		}
		fmt.Fprintf(&b, "@%s:\n", u.Username)
		fmt.Fprintf(&b, "- hours studied: %.1fh / %dh goal", s.TotalHours, u.WeeklyGoal)
		if s.TotalHours >= float64(u.WeeklyGoal) {
			b.WriteString(" [done]")
		}
		fmt.Fprintf(&b, "\n- study days: %d/%d\n", s.StudyDays, s.TotalStudyDays)
		fmt.Fprintf(&b, "- avg distraction: %s\n", s.Band)
		if s.NotesCount > 0 {
			fmt.Fprintf(&b, "- notes added: %d\n", s.NotesCount)
		}
		b.WriteString("\n")
	}

	g := stats.SummarizeGroup(users, perUser)
	b.WriteString("---\n\nGroup stats:\n\n")
	fmt.Fprintf(&b, "- active participants: %d/%d\n", g.ActiveUsers, g.TotalUsers)
	fmt.Fprintf(&b, "- total hours studied: %.1fh\n", g.TotalHours)
	if g.ActiveUsers > 0 {
		fmt.Fprintf(&b, "- average per active user: %.1fh\n", g.AvgHoursPerActive)
		fmt.Fprintf(&b, "- goal completion rate: %.0f%%\n", g.GoalRate)
	}
	return b.String()
}

// renderUserStats formats the personal /mystats answer.
func renderUserStats(u *models.User, s stats.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Personal stats - @%s\n\nThis week:\n", u.Username)
	fmt.Fprintf(&b, "- hours studied: %.1fh / %dh goal\n", s.TotalHours, u.WeeklyGoal)
	fmt.Fprintf(&b, "- study days: %d/%d\n", s.StudyDays, s.TotalStudyDays)
	fmt.Fprintf(&b, "- avg distraction: %s\n", s.Band)
	fmt.Fprintf(&b, "- notes added: %d\n", s.NotesCount)

	if u.WeeklyGoal > 0 {
		completion := stats.Completion(s.TotalHours, u.WeeklyGoal)
		if completion >= 100 {
			fmt.Fprintf(&b, "\nGoal reached! (%.0f%%)", completion)
		} else {
			fmt.Fprintf(&b, "\nProgress: %.0f%%", completion)
		}
	}
	return b.String()
}
