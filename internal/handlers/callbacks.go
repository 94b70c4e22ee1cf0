package handlers

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-accountability-bot/internal/conversation"
	"study-accountability-bot/internal/models"
	"study-accountability-bot/internal/stats"
)

// Callback data embeds the addressed user so the correlation guard can
// match responder against target: "checkin_yes_123", "hours_2.5_123",
// "distraction_low_123".

func decisionKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes", fmt.Sprintf("checkin_yes_%d", userID)),
			tgbotapi.NewInlineKeyboardButtonData("No - day off", fmt.Sprintf("checkin_no_%d", userID)),
		),
	)
}

func hoursKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	btn := func(label, value string) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("hours_%s_%d", value, userID))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(btn("0h", "0"), btn("0.5h", "0.5"), btn("1h", "1")),
		tgbotapi.NewInlineKeyboardRow(btn("1.5h", "1.5"), btn("2h", "2"), btn("2.5h", "2.5")),
		tgbotapi.NewInlineKeyboardRow(btn("3h+", "3")),
	)
}

func distractionKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	btn := func(label string, d models.Distraction) tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("distraction_%s_%d", d, userID))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			btn("Low", models.DistractionLow),
			btn("Medium", models.DistractionMedium),
		),
		tgbotapi.NewInlineKeyboardRow(btn("High", models.DistractionHigh)),
	)
}

// SendCheckinPrompt opens the check-in conversation and sends the first
// question. chatID is where the prompt goes (the user's private chat for
// scheduled check-ins, the invoking chat for /checkin).
func (h *Handler) SendCheckinPrompt(chatID int64, u *models.User) {
	today := h.today()

	var text string
	if existing, err := h.DB.GetDailyLog(u.ID, today); err == nil && existing != nil {
		text = fmt.Sprintf("@%s, you already checked in today!\n\nWant to update it?\n\n1. Did you have to study today?", u.Username)
	} else {
		text = fmt.Sprintf("Daily check-in - @%s\n\n1. Did you have to study today?", u.Username)
	}

	h.Tracker.Begin(u.ID, today)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = decisionKeyboard(u.ID)
	if _, err := h.Bot.Send(msg); err != nil {
		slog.Error("send check-in prompt", "user_id", u.ID, "error", err)
		h.Tracker.Clear(u.ID)
	}
}

func (h *Handler) HandleCallback(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	data := cq.Data
	parts := strings.Split(data, "_")
	if len(parts) < 3 {
		h.answer(cq, "")
		return
	}
	target, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		h.answer(cq, "")
		return
	}
	responder := cq.From.ID
	chatID := cq.Message.Chat.ID
	msgID := cq.Message.MessageID

	switch parts[0] {
	case "checkin":
		h.onDecision(cq, chatID, msgID, target, responder, parts[1] == "yes")
	case "hours":
		hours, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || hours < 0 {
			h.answer(cq, "")
			return
		}
		h.onHours(cq, chatID, msgID, target, responder, hours)
	case "distraction":
		level := models.Distraction(parts[1])
		if !level.Valid() {
			h.answer(cq, "")
			return
		}
		h.onDistraction(cq, chatID, msgID, target, responder, level)
	default:
		h.answer(cq, "")
	}
}

func (h *Handler) onDecision(cq *tgbotapi.CallbackQuery, chatID int64, msgID int, target, responder int64, yes bool) {
	res, st := h.Tracker.Decide(target, responder, yes)
	switch res {
	case conversation.ResultRejected:
		h.reject(cq)
	case conversation.ResultAwaitHours:
		h.answer(cq, "")
		h.edit(chatID, msgID, "2. How many hours did you study?", hoursKeyboard(target))
	case conversation.ResultDayOff:
		h.answer(cq, "")
		log := &models.DailyLog{
			UserID:      target,
			Date:        st.Date,
			ShouldStudy: false,
			Distraction: models.DistractionLow,
			Notes:       "day off",
		}
		if err := h.DB.UpsertDailyLog(log); err != nil {
			slog.Error("save day off", "user_id", target, "error", err)
			h.Tracker.Resume(st)
			h.send(chatID, transientErrorText)
			return
		}
		h.editText(chatID, msgID, "Check-in saved! Day off recorded.")
	default:
		h.answer(cq, "")
	}
}

func (h *Handler) onHours(cq *tgbotapi.CallbackQuery, chatID int64, msgID int, target, responder int64, hours float64) {
	res, _ := h.Tracker.RecordHours(target, responder, hours)
	switch res {
	case conversation.ResultRejected:
		h.reject(cq)
	case conversation.ResultAwaitDistraction:
		h.answer(cq, "")
		h.edit(chatID, msgID, "3. How distracted were you?", distractionKeyboard(target))
	default:
		h.answer(cq, "")
	}
}

func (h *Handler) onDistraction(cq *tgbotapi.CallbackQuery, chatID int64, msgID int, target, responder int64, level models.Distraction) {
	res, st := h.Tracker.RecordDistraction(target, responder, level)
	switch res {
	case conversation.ResultRejected:
		h.reject(cq)
		return
	case conversation.ResultCompleted:
	default:
		h.answer(cq, "")
		return
	}
	h.answer(cq, "")

	log := &models.DailyLog{
		UserID:       target,
		Date:         st.Date,
		ShouldStudy:  true,
		HoursStudied: st.Hours,
		Distraction:  st.Distraction,
	}
	if err := h.DB.UpsertDailyLog(log); err != nil {
		slog.Error("save check-in", "user_id", target, "error", err)
		h.Tracker.Resume(st)
		h.send(chatID, transientErrorText)
		return
	}

	summaryLine := ""
	if s, err := h.weekSummary(target); err == nil {
		goal := 20
		if u, err := h.DB.GetUser(target); err == nil && u != nil {
			goal = u.WeeklyGoal
		}
		summaryLine = fmt.Sprintf("\nThis week: %.1fh / %dh goal (%.0f%%)",
			s.TotalHours, goal, stats.Completion(s.TotalHours, goal))
	}
	h.editText(chatID, msgID, fmt.Sprintf("Check-in saved!\n\nToday: %.1fh%s", st.Hours, summaryLine))

	h.askForNote(chatID, target, st.Date)
}

// askForNote sends the optional note follow-up and remembers its message ID
// so a reply can be matched back to the entry. Best effort only.
func (h *Handler) askForNote(chatID, userID int64, date string) {
	msg := tgbotapi.NewMessage(chatID, "4. Want to add a note? (optional)\nReply to this message, or ignore it.")
	sent, err := h.Bot.Send(msg)
	if err != nil {
		slog.Warn("send note follow-up", "user_id", userID, "error", err)
		return
	}
	h.mu.Lock()
	h.pendingNotes[userID] = pendingNote{Date: date, MsgID: sent.MessageID}
	h.mu.Unlock()
}

// HandleText only cares about replies to a note follow-up; anything else
// is ignored.
func (h *Handler) HandleText(msg *tgbotapi.Message) {
	if msg.ReplyToMessage == nil || msg.From == nil {
		return
	}

	h.mu.Lock()
	pn, ok := h.pendingNotes[msg.From.ID]
	if ok && pn.MsgID == msg.ReplyToMessage.MessageID {
		delete(h.pendingNotes, msg.From.ID)
	}
	h.mu.Unlock()
	if !ok || pn.MsgID != msg.ReplyToMessage.MessageID {
		return
	}

	if err := h.DB.UpdateDailyLogNotes(msg.From.ID, pn.Date, msg.Text); err != nil {
		slog.Error("save note", "user_id", msg.From.ID, "error", err)
		h.send(msg.Chat.ID, transientErrorText)
		return
	}
	h.send(msg.Chat.ID, "Note saved.")
}

// answer clears the button spinner; reject shows an alert only the
// mismatched actor can see.
func (h *Handler) answer(cq *tgbotapi.CallbackQuery, text string) {
	_, _ = h.Bot.Request(tgbotapi.NewCallback(cq.ID, text))
}

func (h *Handler) reject(cq *tgbotapi.CallbackQuery) {
	_, _ = h.Bot.Request(tgbotapi.NewCallbackWithAlert(cq.ID, wrongTargetText))
}

func (h *Handler) edit(chatID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if _, err := h.Bot.Request(tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb)); err != nil {
		slog.Warn("edit message", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) editText(chatID int64, msgID int, text string) {
	if _, err := h.Bot.Request(tgbotapi.NewEditMessageText(chatID, msgID, text)); err != nil {
		slog.Warn("edit message", "chat_id", chatID, "error", err)
	}
}
