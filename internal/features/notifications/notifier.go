// Package notifications отправляет уведомления о событиях экономики.
// Настоящая раздача уведомлений пользователям живёт в отдельной системе —
// отсюда уходит только fire-and-forget сигнал в операционный канал.
package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"vibehub.ru/vibe-points/internal/common"
)

// Notifier — интерфейс отправки уведомлений.
type Notifier interface {
	// RatingBoosted вызывается после успешного буста оценки.
	RatingBoosted(ctx context.Context, ratingID uuid.UUID, amount int64) error
}

// LogNotifier пишет уведомления в лог. Используется, когда
// Telegram-канал не настроен (локальная разработка, тесты).
type LogNotifier struct{}

// NewLogNotifier создаёт лог-уведомитель.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) RatingBoosted(_ context.Context, ratingID uuid.UUID, amount int64) error {
	log.WithFields(log.Fields{
		"rating_id": ratingID,
		"amount":    amount,
	}).Info("Оценка получила буст")
	return nil
}

// TelegramNotifier шлёт сообщения в операционный Telegram-канал.
type TelegramNotifier struct {
	bot    *telego.Bot
	chatID int64
}

// NewTelegramNotifier создаёт Telegram-уведомитель.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram-бота: %w", err)
	}
	log.Info("Telegram-уведомления включены")
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) RatingBoosted(ctx context.Context, ratingID uuid.UUID, amount int64) error {
	text := fmt.Sprintf("⚡ Оценка %s получила буст: %s",
		ratingID, common.FormatPoints(amount))
	_, err := n.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: n.chatID},
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("ошибка отправки в Telegram: %w", err)
	}
	return nil
}
