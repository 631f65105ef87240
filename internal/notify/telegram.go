package notify

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/LevelBot/internal/render"
	"github.com/Alias1177/LevelBot/models"
)

// Notifier pushes rendered scenarios to a Telegram chat. A nil Notifier is a
// no-op so the engine runs fine without a bot token.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// New connects the bot. Returns nil when token is empty.
func New(token string, chatID int64) (*Notifier, error) {
	if token == "" {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "notify").Logger(),
	}, nil
}

// Send posts one scenario summary.
func (n *Notifier) Send(s *models.Scenario) {
	if n == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, render.Scenario(s))
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Str("symbol", s.Symbol).Msg("telegram send failed")
	}
}
