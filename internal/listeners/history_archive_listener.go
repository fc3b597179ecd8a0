package listeners

import (
	"context"

	"go.uber.org/zap"

	"inventory-system/internal/events"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/eventbus"
)

// HistoryArchiveListener копирует каждую запись истории в PostgreSQL для внешних отчетов.
// Повторная доставка безопасна: запись с тем же event_id игнорируется.
type HistoryArchiveListener struct {
	archive repositories.HistoryArchiveRepositoryInterface
	logger  *zap.Logger
}

func NewHistoryArchiveListener(archive repositories.HistoryArchiveRepositoryInterface, logger *zap.Logger) *HistoryArchiveListener {
	return &HistoryArchiveListener{archive: archive, logger: logger}
}

func (l *HistoryArchiveListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(l.handleEquipmentHistoryCreated, events.EquipmentHistoryCreated)
	l.logger.Info("HistoryArchiveListener подписан на событие " + events.EquipmentHistoryCreated)
}

func (l *HistoryArchiveListener) handleEquipmentHistoryCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.EquipmentHistoryCreatedEvent)
	if !ok {
		return nil
	}
	return l.archive.Save(ctx, repositories.ArchivedHistoryEvent{
		HistoryEvent: e.History,
		AssetCode:    e.Equipment.AssetCode,
		State:        e.Equipment.State.String(),
	})
}
