package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/entities"
	"inventory-system/pkg/constants"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

func TestEquipmentRepository_CreateFindUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewEquipmentRepository()

	e := &entities.Equipment{AssetCode: "nb-0001", SerialNumber: "SN", State: constants.StateAvailable}
	require.NoError(t, repo.CreateEquipment(ctx, e))
	assert.NotZero(t, e.ID)

	err := repo.CreateEquipment(ctx, &entities.Equipment{AssetCode: " NB-0001 "})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "инвентарный номер сравнивается без учета регистра")

	found, err := repo.FindByAssetCode(ctx, "NB-0001")
	require.NoError(t, err)
	assert.Equal(t, e.ID, found.ID)

	// Найденная копия не разделяет указатели с хранилищем.
	found.ResponsibleUserID = new(uint64)
	again, err := repo.FindEquipment(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, again.ResponsibleUserID)

	userID := uint64(7)
	again.State = constants.StateActive
	again.ResponsibleUserID = &userID
	require.NoError(t, repo.UpdateEquipment(ctx, *again))

	held, err := repo.FindHeldByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, held, 1)

	err = repo.UpdateEquipment(ctx, entities.Equipment{ID: 999})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.FindEquipment(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEquipmentRepository_GetEquipmentsFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewEquipmentRepository()

	seed := []entities.Equipment{
		{AssetCode: "NB-1", Brand: "Dell", EquipmentTypeID: 1, State: constants.StateActive, PurchaseDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{AssetCode: "NB-2", Brand: "Lenovo", EquipmentTypeID: 1, State: constants.StateAvailable, PurchaseDate: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)},
		{AssetCode: "MN-1", Brand: "Dell", EquipmentTypeID: 2, State: constants.StateAvailable, PurchaseDate: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for i := range seed {
		require.NoError(t, repo.CreateEquipment(ctx, &seed[i]))
	}

	list, total, err := repo.GetEquipments(ctx, types.Filter{Search: "dell"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
	assert.Len(t, list, 2)

	list, total, err = repo.GetEquipments(ctx, types.Filter{Filter: map[string]interface{}{"state": "AVAILABLE", "equipment_type_id": "1,2"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
	for _, e := range list {
		assert.Equal(t, constants.StateAvailable, e.State)
	}

	list, total, err = repo.GetEquipments(ctx, types.Filter{
		Sort:           map[string]string{"purchase_date": "asc"},
		Limit:          2,
		WithPagination: true,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, "NB-2", list[0].AssetCode)
	assert.Equal(t, "MN-1", list[1].AssetCode)
}

func TestAssignmentRepository_SingleOpenRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewAssignmentRepository()

	require.NoError(t, repo.OpenAssignment(ctx, &entities.AssignmentRecord{EquipmentID: 1, UserID: 10}))
	err := repo.OpenAssignment(ctx, &entities.AssignmentRecord{EquipmentID: 1, UserID: 11})
	assert.ErrorIs(t, err, ErrOpenAssignmentExists)

	closed, err := repo.CloseOpenAssignment(ctx, 1, time.Now())
	require.NoError(t, err)
	require.NotNil(t, closed)
	assert.False(t, closed.IsOpen())

	nothing, err := repo.CloseOpenAssignment(ctx, 1, time.Now())
	require.NoError(t, err)
	assert.Nil(t, nothing)

	require.NoError(t, repo.OpenAssignment(ctx, &entities.AssignmentRecord{EquipmentID: 1, UserID: 11}))
	byUser, err := repo.FindByUserID(ctx, 11)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	all, err := repo.FindByEquipmentID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLicenseUnitRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewLicenseUnitRepository()

	units := []*entities.LicenseUnit{
		{LicenseTypeID: 1, Key: "A", ExpirationDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{LicenseTypeID: 1, Key: "B", ExpirationDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, repo.CreateUnits(ctx, units))
	assert.NotZero(t, units[0].ID)
	assert.NotEqual(t, units[0].ID, units[1].ID)

	held, err := repo.FindHeldByUser(ctx, 1, 5)
	require.NoError(t, err)
	assert.Nil(t, held)

	user := uint64(5)
	unit := *units[0]
	unit.AssignedUserID = &user
	require.NoError(t, repo.UpdateUnit(ctx, unit))

	held, err = repo.FindHeldByUser(ctx, 1, 5)
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.Equal(t, "A", held.Key)

	expiring, err := repo.FindExpiringBefore(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "B", expiring[0].Key)
}

func TestHistoryRepository_Paging(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, &entities.HistoryEvent{EquipmentID: 1, Action: constants.HistoryEdit}))
	}

	count, err := repo.CountByEquipmentID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)

	page, err := repo.FindByEquipmentID(ctx, 1, 2, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(4), page[0].ID)

	empty, err := repo.FindByEquipmentID(ctx, 1, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPlanExclusion(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPlanExclusionRepository()

	require.NoError(t, repo.Add(ctx, 1, 2, 3))
	require.NoError(t, repo.Remove(ctx, 2))
	ids, err := repo.PlannedEquipmentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]struct{}{1: {}, 3: {}}, ids)

	parsed := parsePlannedIDs([]string{"10", "мусор", "12"}, zap.NewNop())
	assert.Equal(t, map[uint64]struct{}{10: {}, 12: {}}, parsed)
	assert.Equal(t, []interface{}{"10", "12"}, formatIDs([]uint64{10, 12}))
}

func TestBuildArchiveQueries(t *testing.T) {
	event := ArchivedHistoryEvent{
		HistoryEvent: entities.HistoryEvent{ID: 42, EquipmentID: 7, Action: constants.HistoryBaja, ActorID: 1, Detail: "Списано"},
		AssetCode:    "nb-0007",
		State:        "RETIRED",
	}
	query, args, err := buildArchiveInsert(event)
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO equipment_history_archive")
	assert.Contains(t, query, "ON CONFLICT (event_id) DO NOTHING")
	assert.Contains(t, query, "$8")
	require.Len(t, args, 8)
	assert.Equal(t, "NB-0007", args[2])
	assert.Equal(t, "BAJA", args[3])

	query, args, err = buildArchiveSelect("nb-0007", types.Filter{Limit: 50, WithPagination: true})
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE asset_code = $1")
	assert.Contains(t, query, "ORDER BY created_at ASC, event_id ASC")
	assert.Contains(t, query, "LIMIT 50")
	assert.Equal(t, []interface{}{"NB-0007"}, args)
}

func TestBuildArchiveSelectWithListParams(t *testing.T) {
	filter := types.Filter{
		Filter: map[string]interface{}{"action": "ASSIGNMENT,RECEPTION", "detail": "игнорируется"},
		Sort:   map[string]string{"date": "desc"},
	}
	query, args, err := buildArchiveSelect("NB-0007", filter)
	require.NoError(t, err)
	assert.Contains(t, query, "action IN ($2,$3)")
	assert.Contains(t, query, "ORDER BY created_at DESC, event_id ASC")
	assert.NotContains(t, query, "detail =")
	assert.NotContains(t, query, "LIMIT")
	assert.Equal(t, []interface{}{"NB-0007", "ASSIGNMENT", "RECEPTION"}, args)
}
