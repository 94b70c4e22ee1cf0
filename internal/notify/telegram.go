package notify

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramGateway adapts the bot API to the Gateway interface.
type TelegramGateway struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramGateway(bot *tgbotapi.BotAPI) *TelegramGateway {
	return &TelegramGateway{bot: bot}
}

func (g *TelegramGateway) SendText(chatID int64, text string) error {
	_, err := g.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
