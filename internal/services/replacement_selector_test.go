package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/pkg/config"
	"inventory-system/pkg/constants"
)

func TestReplacementQuota(t *testing.T) {
	testCases := []struct {
		fleet, pct, want int
	}{
		{fleet: 0, pct: 20, want: 0},
		{fleet: 10, pct: 0, want: 0},
		{fleet: 10, pct: 20, want: 2},
		{fleet: 11, pct: 20, want: 3},
		{fleet: 1, pct: 20, want: 1},
		{fleet: 7, pct: 100, want: 7},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ReplacementQuota(tc.fleet, tc.pct), "fleet=%d pct=%d", tc.fleet, tc.pct)
	}
}

func TestSelectReplacementCandidates(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	const laptop, monitor uint64 = 1, 2
	fleet := []entities.Equipment{
		{ID: 1, AssetCode: "NB-0005", EquipmentTypeID: laptop, PurchaseDate: day(2019, 1, 1), State: constants.StateActive},
		{ID: 2, AssetCode: "NB-0002", EquipmentTypeID: laptop, PurchaseDate: day(2019, 1, 1), State: constants.StateAvailable},
		{ID: 3, AssetCode: "NB-0003", EquipmentTypeID: laptop, PurchaseDate: day(2018, 5, 1), State: constants.StateInMaintenance},
		{ID: 4, AssetCode: "NB-0004", EquipmentTypeID: laptop, PurchaseDate: day(2017, 1, 1), State: constants.StateRetired},
		{ID: 5, AssetCode: "NB-0001", EquipmentTypeID: laptop, PurchaseDate: day(2016, 1, 1), State: constants.StatePreDisposal},
		{ID: 6, AssetCode: "NB-0006", EquipmentTypeID: laptop, PurchaseDate: day(2021, 6, 16), State: constants.StateActive}, // 3 полных года
		{ID: 7, AssetCode: "NB-0007", EquipmentTypeID: laptop, PurchaseDate: day(2021, 6, 15), State: constants.StateActive}, // ровно 4
		{ID: 8, AssetCode: "MN-0001", EquipmentTypeID: monitor, PurchaseDate: day(2010, 1, 1), State: constants.StateActive},
		{ID: 9, AssetCode: "NB-0009", EquipmentTypeID: laptop, PurchaseDate: day(2015, 1, 1), State: constants.StateActive},
		{ID: 10, AssetCode: "NB-0010", EquipmentTypeID: laptop, PurchaseDate: day(2024, 1, 1), State: constants.StateAvailable},
	}
	eligible := map[uint64]bool{laptop: true, monitor: false}

	t.Run("порядок и квота", func(t *testing.T) {
		selection := SelectReplacementCandidates(fleet, eligible, ReplacementCriteria{MinAgeYears: 4, QuotaPct: 50, Now: now})

		assert.Equal(t, 9, selection.EligibleFleet, "парк считается по всем единицам подходящих типов")
		assert.Equal(t, 5, selection.Quota)
		assert.Equal(t, 5, selection.AgedUnits)

		ids := make([]uint64, 0, len(selection.Candidates))
		for _, c := range selection.Candidates {
			ids = append(ids, c.ID)
		}
		// 2015, 2018, 2019 (NB-0002 раньше NB-0005), 2021-06-15.
		assert.Equal(t, []uint64{9, 3, 2, 1, 7}, ids)
	})

	t.Run("квота режет список", func(t *testing.T) {
		selection := SelectReplacementCandidates(fleet, eligible, ReplacementCriteria{MinAgeYears: 4, QuotaPct: 20, Now: now})
		assert.Equal(t, 2, selection.Quota)
		require.Len(t, selection.Candidates, 2)
		assert.Equal(t, uint64(9), selection.Candidates[0].ID)
		assert.Equal(t, uint64(3), selection.Candidates[1].ID)
		assert.LessOrEqual(t, len(selection.Candidates), ReplacementQuota(selection.EligibleFleet, 20))
	})

	t.Run("исключенные не попадают", func(t *testing.T) {
		selection := SelectReplacementCandidates(fleet, eligible, ReplacementCriteria{
			MinAgeYears: 4,
			QuotaPct:    100,
			Now:         now,
			Excluded:    map[uint64]struct{}{9: {}, 3: {}},
		})
		for _, c := range selection.Candidates {
			assert.NotContains(t, []uint64{3, 9}, c.ID)
		}
		assert.Equal(t, 3, selection.AgedUnits)
	})

	t.Run("вход не меняется", func(t *testing.T) {
		before := append([]entities.Equipment(nil), fleet...)
		SelectReplacementCandidates(fleet, eligible, ReplacementCriteria{MinAgeYears: 1, QuotaPct: 100, Now: now})
		assert.Equal(t, before, fleet)
	})
}

func TestReplacementService_GetCandidatesAndPlan(t *testing.T) {
	env := newTestEnv(t)

	old := env.createAvailable(t, "NB-002001", time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC))
	older := env.createAvailable(t, "NB-002002", time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC))
	for i, code := range []string{"NB-002003", "NB-002004", "NB-002005"} {
		env.createAvailable(t, code, time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC))
	}
	env.assignTo(t, old.ID, env.alice)

	report, err := env.replacement.GetCandidates(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, report.EligibleFleet)
	assert.Equal(t, 1, report.Quota)
	assert.Equal(t, 2, report.AgedUnits)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, older.ID, report.Candidates[0].EquipmentID)
	assert.Equal(t, 7, report.Candidates[0].AgeYears)
	assert.Equal(t, "Ноутбук", report.Candidates[0].TypeName)

	require.NoError(t, env.replacement.MarkPlanned(env.ctx, []uint64{older.ID}))
	report, err = env.replacement.GetCandidates(env.ctx)
	require.NoError(t, err)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, old.ID, report.Candidates[0].EquipmentID)
	assert.Equal(t, env.alice.Fio, report.Candidates[0].HolderName)

	require.NoError(t, env.replacement.UnmarkPlanned(env.ctx, []uint64{older.ID}))
	report, err = env.replacement.GetCandidates(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, older.ID, report.Candidates[0].EquipmentID)

	assert.Error(t, env.replacement.MarkPlanned(env.ctx, nil))
	assert.Error(t, env.replacement.MarkPlanned(env.ctx, []uint64{9999}))
}

func TestReplacementService_DefaultsWhenConfigEmpty(t *testing.T) {
	env := newTestEnv(t)
	svc := NewReplacementService(env.equipmentRepo, env.typeRepo, env.planRepo, config.LifecycleConfig{}, nil, zap.NewNop())
	assert.Equal(t, constants.DefaultRenewalMinAgeYears, svc.cfg.RenewalMinAgeYears)
	assert.Equal(t, constants.DefaultRenewalQuotaPct, svc.cfg.RenewalQuotaPct)

	report, err := svc.GetCandidates(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, &dto.ReplacementReportDTO{Candidates: []dto.ReplacementCandidateDTO{}}, report)
}
