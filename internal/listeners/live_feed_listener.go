package listeners

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inventory-system/internal/events"
	"inventory-system/pkg/eventbus"
)

// HoldingChanged - личное сообщение пользователю: за ним закрепили или с него сняли ценность.
const HoldingChanged = "holding.changed"

// LiveFeedPublisherInterface - рассылка в открытые WebSocket-соединения.
type LiveFeedPublisherInterface interface {
	Broadcast(messageType string, payload interface{}) error
	SendMessageToUser(userID uint64, messageType string, payload interface{}) error
}

type EquipmentFeedPayload struct {
	EquipmentID uint64    `json:"equipment_id"`
	AssetCode   string    `json:"asset_code"`
	Action      string    `json:"action"`
	State       string    `json:"state"`
	ActorID     uint64    `json:"actor_id"`
	UserID      *uint64   `json:"user_id,omitempty"`
	Detail      string    `json:"detail"`
	Date        time.Time `json:"date"`
}

type LicenseFeedPayload struct {
	UnitID        uint64 `json:"unit_id"`
	LicenseTypeID uint64 `json:"license_type_id"`
	UserID        uint64 `json:"user_id"`
	ActorID       uint64 `json:"actor_id"`
}

// LiveFeedListener транслирует зафиксированные события в ленту дашборда.
type LiveFeedListener struct {
	publisher LiveFeedPublisherInterface
	logger    *zap.Logger
}

func NewLiveFeedListener(publisher LiveFeedPublisherInterface, logger *zap.Logger) *LiveFeedListener {
	return &LiveFeedListener{publisher: publisher, logger: logger}
}

func (l *LiveFeedListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(l.handleEquipmentHistoryCreated, events.EquipmentHistoryCreated)
	bus.Subscribe(l.handleLicenseAssigned, events.LicenseAssigned)
	bus.Subscribe(l.handleLicenseReleased, events.LicenseReleased)
	l.logger.Info("LiveFeedListener подписан на события оборудования и лицензий")
}

func (l *LiveFeedListener) handleEquipmentHistoryCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.EquipmentHistoryCreatedEvent)
	if !ok {
		return nil
	}
	payload := EquipmentFeedPayload{
		EquipmentID: e.Equipment.ID,
		AssetCode:   e.Equipment.AssetCode,
		Action:      string(e.History.Action),
		State:       e.Equipment.State.String(),
		ActorID:     e.History.ActorID,
		Detail:      e.History.Detail,
		Date:        e.History.Date,
	}
	if e.User != nil {
		id := e.User.ID
		payload.UserID = &id
	}

	if err := l.publisher.Broadcast(e.Name(), payload); err != nil {
		return fmt.Errorf("лента: оборудование %d: %w", e.Equipment.ID, err)
	}
	if payload.UserID != nil {
		return l.publisher.SendMessageToUser(*payload.UserID, HoldingChanged, payload)
	}
	return nil
}

func (l *LiveFeedListener) handleLicenseAssigned(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.LicenseAssignedEvent)
	if !ok {
		return nil
	}
	return l.publishLicense(e.Name(), LicenseFeedPayload{
		UnitID:        e.Unit.ID,
		LicenseTypeID: e.Unit.LicenseTypeID,
		UserID:        e.User.ID,
		ActorID:       e.ActorID,
	})
}

func (l *LiveFeedListener) handleLicenseReleased(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.LicenseReleasedEvent)
	if !ok {
		return nil
	}
	return l.publishLicense(e.Name(), LicenseFeedPayload{
		UnitID:        e.Unit.ID,
		LicenseTypeID: e.Unit.LicenseTypeID,
		UserID:        e.PreviousUserID,
		ActorID:       e.ActorID,
	})
}

func (l *LiveFeedListener) publishLicense(messageType string, payload LicenseFeedPayload) error {
	if err := l.publisher.Broadcast(messageType, payload); err != nil {
		return fmt.Errorf("лента: лицензия %d: %w", payload.UnitID, err)
	}
	return l.publisher.SendMessageToUser(payload.UserID, HoldingChanged, payload)
}
