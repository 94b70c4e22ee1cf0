package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"study-accountability-bot/internal/config"
	"study-accountability-bot/internal/conversation"
	"study-accountability-bot/internal/handlers"
	"study-accountability-bot/internal/health"
	"study-accountability-bot/internal/notify"
	"study-accountability-bot/internal/scheduler"
	"study-accountability-bot/internal/storage"
)

func main() {
	_ = godotenv.Load() // BOT_TOKEN etc.

	cfg := config.Load()
	if cfg.TelegramToken == "" {
		slog.Error("bot token not found in docker secret or BOT_TOKEN")
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Error("invalid timezone", "tz", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		slog.Error("bot authorization", "error", err)
		os.Exit(1)
	}
	slog.Info("bot authorized", "username", bot.Self.UserName)

	registry, err := scheduler.New(loc)
	if err != nil {
		slog.Error("create scheduler", "error", err)
		os.Exit(1)
	}

	tracker := conversation.NewTracker()
	dispatcher := notify.NewDispatcher(notify.NewTelegramGateway(bot))

	h := handlers.New(bot, db, registry, tracker, dispatcher, cfg, loc)
	if err := h.ScheduleAll(); err != nil {
		slog.Error("rebuild job table", "error", err)
		os.Exit(1)
	}
	registry.Start()

	healthSrv := health.Start(cfg.HealthPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.AllowedUpdates = []string{"message", "callback_query"}
	updates := bot.GetUpdatesChan(updateConfig)

	slog.Info("bot running", "tz", cfg.Timezone)

	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down")
			bot.StopReceivingUpdates()
			if err := registry.Stop(); err != nil {
				slog.Warn("scheduler shutdown", "error", err)
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = healthSrv.Shutdown(shutdownCtx)
			cancel()
			return
		case upd := <-updates:
			h.HandleUpdate(upd)
		}
	}
}
