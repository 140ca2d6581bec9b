package error_notificator

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender — часть tgbotapi.BotAPI, которая нам нужна
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramInfra struct {
	bot    Sender
	chatID int64
}

func NewTelegramInfra(bot Sender, chatID int64) *TelegramInfra {
	return &TelegramInfra{bot: bot, chatID: chatID}
}

// у дефолтного клиента tgbotapi нет таймаута
const sendTimeout = 10 * time.Second

func NewTelegramInfraFromToken(token string, chatID int64) (*TelegramInfra, error) {
	client := &http.Client{Timeout: sendTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("init alert bot: %w", err)
	}
	return NewTelegramInfra(bot, chatID), nil
}

func (i *TelegramInfra) Notify(ctx context.Context, source string, err error, details string) error {
	text := fmt.Sprintf(
		"❗ Ошибка релея (%s)\n\nОшибка: %v\n\nДетали: %s",
		source,
		err,
		details,
	)

	done := make(chan error, 1)
	go func() {
		_, sendErr := i.bot.Send(tgbotapi.NewMessage(i.chatID, text))
		done <- sendErr
	}()

	select {
	case sendErr := <-done:
		if sendErr != nil {
			log.Printf("[error_notificator] send fail: %v", sendErr)
			return sendErr
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram alert: %w", ctx.Err())
	}
}
