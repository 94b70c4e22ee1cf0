package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TelegramToken string
	DBPath        string
	Timezone      string       // IANA name, all triggers evaluate here
	ReportDay     time.Weekday // weekly report weekday
	ReportTime    string       // "HH:MM"
	ReportChatID  int64        // 0 -> send the report to each active user
	HealthPort    string
}

const (
	defaultDBPath     = "study_bot.db"
	defaultTimezone   = "Europe/Rome"
	defaultReportTime = "20:00"
	defaultHealthPort = "10000"
)

func Load() Config {
	cfg := Config{
		TelegramToken: getBotToken(),
		DBPath:        envOr("DB_PATH", defaultDBPath),
		Timezone:      envOr("TIMEZONE", defaultTimezone),
		ReportDay:     time.Sunday,
		ReportTime:    envOr("WEEKLY_REPORT_TIME", defaultReportTime),
		HealthPort:    envOr("PORT", defaultHealthPort),
	}
	if v := os.Getenv("WEEKLY_REPORT_DAY"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d >= 0 && d <= 6 {
			cfg.ReportDay = time.Weekday(d)
		}
	}
	if v := os.Getenv("REPORT_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.ReportChatID = id
		}
	}
	return cfg
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBotToken() string {
	if data, err := os.ReadFile("/run/secrets/telegram_bot_token"); err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token
		}
	}
	return strings.TrimSpace(os.Getenv("BOT_TOKEN"))
}
