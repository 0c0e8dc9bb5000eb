package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"golang.org/x/time/rate"

	"glpi-notify/internal/config"
	"glpi-notify/internal/logging"
	"glpi-notify/internal/models"
)

// telegramLimiter is the global rate limiter for Telegram messages
var telegramLimiter *rate.Limiter

// initTelegramLimiter initializes the Telegram rate limiter
func initTelegramLimiter(ratePerSecond int) {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	telegramLimiter = rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond)
}

// SendTelegram posts a compact summary of a dispatched notification to the
// configured chat. The channel is optional; callers check
// cfg.TelegramEnabled() first. Unlike inventory fetches, this outbound
// call is retried.
func SendTelegram(ctx context.Context, msg models.Message, cfg config.Config, logger *logging.Logger) error {
	if telegramLimiter == nil {
		initTelegramLimiter(cfg.Telegram.RateLimit)
	}
	if err := telegramLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit exceeded: %w", err)
	}

	text := fmt.Sprintf("%s\nTo: %s", msg.Subject, strings.Join(msg.To, ", "))

	if cfg.Testing {
		logger.Infof("TESTING, telegram not sent:\n%s", text)
		return nil
	}

	return retry(logger, 3, time.Second, func() error {
		b, err := bot.New(cfg.Telegram.BotToken)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot: %w", err)
		}

		params := &bot.SendMessageParams{
			ChatID: cfg.Telegram.ChatID,
			Text:   text,
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", cfg.Telegram.ChatID, err)
		}
		return nil
	})
}
