package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-system/internal/entities"
	db "inventory-system/internal/infrastructure/bd"
	"inventory-system/pkg/constants"
	"inventory-system/pkg/types"
)

const historyArchiveTable = "equipment_history_archive"

// archiveColumns - поля, по которым архив можно фильтровать и сортировать.
var archiveColumns = map[string]string{
	"action":   "action",
	"state":    "state",
	"actor_id": "actor_id",
	"date":     "created_at",
}

// ArchivedHistoryEvent - запись журнала вместе с данными, нужными отчетам вне движка.
type ArchivedHistoryEvent struct {
	entities.HistoryEvent
	AssetCode string
	State     string
}

type HistoryArchiveRepositoryInterface interface {
	Save(ctx context.Context, event ArchivedHistoryEvent) error
	FindByAssetCode(ctx context.Context, assetCode string, filter types.Filter) ([]ArchivedHistoryEvent, error)
}

// HistoryArchiveRepository копирует журнал в PostgreSQL. Источник истины остается в памяти.
type HistoryArchiveRepository struct {
	storage *pgxpool.Pool
}

func NewHistoryArchiveRepository(storage *pgxpool.Pool) HistoryArchiveRepositoryInterface {
	return &HistoryArchiveRepository{storage: storage}
}

func (r *HistoryArchiveRepository) Save(ctx context.Context, event ArchivedHistoryEvent) error {
	query, args, err := buildArchiveInsert(event)
	if err != nil {
		return err
	}
	if _, err := r.storage.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("не удалось сохранить событие истории %d в архив: %w", event.ID, err)
	}
	return nil
}

func (r *HistoryArchiveRepository) FindByAssetCode(ctx context.Context, assetCode string, filter types.Filter) ([]ArchivedHistoryEvent, error) {
	query, args, err := buildArchiveSelect(assetCode, filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]ArchivedHistoryEvent, 0)
	for rows.Next() {
		var (
			e      ArchivedHistoryEvent
			action string
			date   time.Time
		)
		if err := rows.Scan(&e.ID, &e.EquipmentID, &e.AssetCode, &action, &e.State, &e.ActorID, &e.Detail, &date); err != nil {
			return nil, err
		}
		e.Action = constants.HistoryKind(action)
		e.Date = date
		result = append(result, e)
	}
	return result, rows.Err()
}

func buildArchiveInsert(event ArchivedHistoryEvent) (string, []interface{}, error) {
	query, args, err := sq.Insert(historyArchiveTable).
		Columns("event_id", "equipment_id", "asset_code", "action", "state", "actor_id", "detail", "created_at").
		Values(event.ID, event.EquipmentID, normalizeAssetCode(event.AssetCode), string(event.Action), event.State, event.ActorID, event.Detail, event.Date).
		Suffix("ON CONFLICT (event_id) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("ToSql для архива истории: %w", err)
	}
	return query, args, nil
}

// buildArchiveSelect без явной сортировки отдает записи в хронологическом порядке.
func buildArchiveSelect(assetCode string, filter types.Filter) (string, []interface{}, error) {
	builder := sq.Select("event_id", "equipment_id", "asset_code", "action", "state", "actor_id", "detail", "created_at").
		From(historyArchiveTable).
		Where(sq.Eq{"asset_code": normalizeAssetCode(assetCode)})

	sorted := db.HasSort(filter, archiveColumns)
	builder = db.ApplyListParams(builder, filter, archiveColumns)
	if !sorted {
		builder = builder.OrderBy("created_at ASC")
	}
	query, args, err := builder.OrderBy("event_id ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("ToSql для выборки архива: %w", err)
	}
	return query, args, nil
}
