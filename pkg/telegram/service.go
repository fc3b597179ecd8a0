package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SenderInterface - исходящие сообщения бота. Входящие апдейты движку не нужны.
type SenderInterface interface {
	SendMessage(ctx context.Context, chatID int64, text string, options ...MessageOption) error
}

type Service struct {
	api *tgbotapi.BotAPI
}

// NewService проверяет токен запросом getMe. apiEndpoint пустой - боевой api.telegram.org.
func NewService(botToken, apiEndpoint string) (*Service, error) {
	if apiEndpoint == "" {
		apiEndpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithClient(botToken, apiEndpoint, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("не удалось подключить telegram-бота: %w", err)
	}
	return &Service{api: api}, nil
}

// BotName - имя бота из getMe, для лога при старте.
func (s *Service) BotName() string {
	return s.api.Self.UserName
}

type MessageOption func(*tgbotapi.MessageConfig)

func WithHTML() MessageOption {
	return func(msg *tgbotapi.MessageConfig) {
		msg.ParseMode = tgbotapi.ModeHTML
	}
}

// WithSilent - без звука у получателя.
func WithSilent() MessageOption {
	return func(msg *tgbotapi.MessageConfig) {
		msg.DisableNotification = true
	}
}

func (s *Service) SendMessage(ctx context.Context, chatID int64, text string, options ...MessageOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	for _, opt := range options {
		opt(&msg)
	}
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	return nil
}
