// Файл: internal/services/notification_service.go
package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"inventory-system/pkg/telegram"
)

// Notification - сообщение пользователю о событии с его оборудованием или лицензией.
type Notification struct {
	Kind    string
	UserID  uint64
	Email   string
	Subject string
	Body    string
}

// NotifierInterface - доставка уведомлений. Сама доставка (почта, мессенджер) вне движка.
type NotifierInterface interface {
	Notify(ctx context.Context, n Notification) error
}

// mockNotificationService - реализация-заглушка, которая пишет в лог вместо реальной отправки.
type mockNotificationService struct {
	logger *zap.Logger
}

func NewMockNotificationService(logger *zap.Logger) NotifierInterface {
	return &mockNotificationService{logger: logger}
}

func (s *mockNotificationService) Notify(ctx context.Context, n Notification) error {
	s.logger.Info("!!! ИМИТАЦИЯ ОТПРАВКИ УВЕДОМЛЕНИЯ !!!",
		zap.String("вид", n.Kind),
		zap.Uint64("пользователь", n.UserID),
		zap.String("кому", n.Email),
		zap.String("тема", n.Subject),
		zap.String("текст", n.Body),
	)
	return nil
}

// telegramNotificationService шлет уведомления в общий чат ИТ-отдела.
// Личных чатов пользователей движок не знает, поэтому адресат указывается в тексте.
type telegramNotificationService struct {
	sender telegram.SenderInterface
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotificationService(sender telegram.SenderInterface, chatID int64, logger *zap.Logger) NotifierInterface {
	return &telegramNotificationService{sender: sender, chatID: chatID, logger: logger}
}

func (s *telegramNotificationService) Notify(ctx context.Context, n Notification) error {
	if err := s.sender.SendMessage(ctx, s.chatID, formatTelegramNotification(n), telegram.WithHTML()); err != nil {
		s.logger.Error("Не удалось отправить уведомление в Telegram",
			zap.String("вид", n.Kind),
			zap.Uint64("пользователь", n.UserID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func formatTelegramNotification(n Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(n.Subject))
	b.WriteString(html.EscapeString(n.Body))
	if n.Email != "" {
		fmt.Fprintf(&b, "\n\nКому: %s", html.EscapeString(n.Email))
	}
	return b.String()
}
