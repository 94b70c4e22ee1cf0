package handlers

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-accountability-bot/internal/config"
	"study-accountability-bot/internal/conversation"
	"study-accountability-bot/internal/notify"
	"study-accountability-bot/internal/scheduler"
	"study-accountability-bot/internal/storage"
)

// Handler routes Telegram updates into the tracker, scheduler and storage.
type Handler struct {
	Bot      *tgbotapi.BotAPI
	DB       *storage.DB
	Registry *scheduler.Registry
	Tracker  *conversation.Tracker
	Disp     *notify.Dispatcher
	Cfg      config.Config

	loc *time.Location
	now func() time.Time

	mu           sync.Mutex
	pendingNotes map[int64]pendingNote // user -> note follow-up awaiting a reply
}

// pendingNote links the "add a note?" follow-up message to the log entry
// the reply should land in.
type pendingNote struct {
	Date  string
	MsgID int
}

func New(bot *tgbotapi.BotAPI, db *storage.DB, reg *scheduler.Registry,
	tr *conversation.Tracker, disp *notify.Dispatcher, cfg config.Config,
	loc *time.Location) *Handler {
	return &Handler{
		Bot:          bot,
		DB:           db,
		Registry:     reg,
		Tracker:      tr,
		Disp:         disp,
		Cfg:          cfg,
		loc:          loc,
		now:          time.Now,
		pendingNotes: make(map[int64]pendingNote),
	}
}

// HandleUpdate is the single entry point for the long-poll loop.
func (h *Handler) HandleUpdate(upd tgbotapi.Update) {
	switch {
	case upd.Message != nil:
		h.HandleMessage(upd.Message)
	case upd.CallbackQuery != nil:
		h.HandleCallback(upd.CallbackQuery)
	}
}

func (h *Handler) HandleMessage(msg *tgbotapi.Message) {
	if msg.IsCommand() {
		h.HandleCommand(msg)
		return
	}
	h.HandleText(msg)
}

func (h *Handler) send(chatID int64, text string) {
	_ = h.Disp.Send(chatID, text)
}

// today returns the current calendar date in the bot timezone.
func (h *Handler) today() string {
	return h.now().In(h.loc).Format("2006-01-02")
}
