package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"inventory-system/internal/events"
	"inventory-system/internal/services"
	"inventory-system/pkg/constants"
	"inventory-system/pkg/eventbus"
)

// NotificationListener решает, кого уведомить о выдаче оборудования, завершении ремонта и выдаче лицензии.
// Работает в горутине шины, переход его не ждет.
type NotificationListener struct {
	notifier services.NotifierInterface
	logger   *zap.Logger
}

func NewNotificationListener(notifier services.NotifierInterface, logger *zap.Logger) *NotificationListener {
	return &NotificationListener{
		notifier: notifier,
		logger:   logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(l.handleEquipmentHistoryCreated, events.EquipmentHistoryCreated)
	bus.Subscribe(l.handleLicenseAssigned, events.LicenseAssigned)
	l.logger.Info("NotificationListener подписан на события оборудования и лицензий")
}

func (l *NotificationListener) handleEquipmentHistoryCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.EquipmentHistoryCreatedEvent)
	if !ok {
		return nil
	}

	var n services.Notification
	switch {
	case e.History.Action == constants.HistoryAssignment && e.User != nil:
		n = services.Notification{
			Kind:    string(e.History.Action),
			UserID:  e.User.ID,
			Email:   e.User.Email,
			Subject: fmt.Sprintf("За вами закреплено оборудование %s", e.Equipment.AssetCode),
			Body: fmt.Sprintf("%s %s (с/н %s), место: %s",
				e.Equipment.Brand, e.Equipment.Model, e.Equipment.SerialNumber, e.Equipment.LocationName),
		}
	case e.History.Action == constants.HistoryMaintenance && e.IsMaintenanceFinalized():
		if e.User == nil {
			// Вернулось на склад или списано: уведомлять некого.
			return nil
		}
		n = services.Notification{
			Kind:    string(e.History.Action),
			UserID:  e.User.ID,
			Email:   e.User.Email,
			Subject: fmt.Sprintf("Оборудование %s вернулось из обслуживания", e.Equipment.AssetCode),
			Body:    e.History.Detail,
		}
	default:
		return nil
	}

	if err := l.notifier.Notify(ctx, n); err != nil {
		return fmt.Errorf("уведомление по оборудованию %d: %w", e.Equipment.ID, err)
	}
	return nil
}

func (l *NotificationListener) handleLicenseAssigned(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.LicenseAssignedEvent)
	if !ok {
		return nil
	}
	return l.notifier.Notify(ctx, services.Notification{
		Kind:    events.LicenseAssigned,
		UserID:  e.User.ID,
		Email:   e.User.Email,
		Subject: fmt.Sprintf("Вам выдана лицензия «%s»", e.Type.Name),
		Body:    fmt.Sprintf("Ключ %s действует до %s", e.Unit.Key, e.Unit.ExpirationDate.Format("2006-01-02")),
	})
}
