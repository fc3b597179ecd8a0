package seeders

import (
	"context"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/routes"
	"inventory-system/pkg/config"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/metrics"
	"inventory-system/pkg/types"
)

func TestSeedDemo(t *testing.T) {
	logger := zap.NewNop()
	bus := eventbus.New(logger)
	defer bus.Wait()

	app := routes.InitRouter(echo.New(), routes.Dependencies{
		Config:  &config.Config{Lifecycle: config.LifecycleConfig{RenewalMinAgeYears: 4, RenewalQuotaPct: 20}},
		Bus:     bus,
		Metrics: metrics.New(),
		Logger:  logger,
	})

	ctx := context.Background()
	require.NoError(t, SeedDemo(ctx, app, logger))

	equipments, total, err := app.Lifecycle.GetEquipments(ctx, types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(len(equipmentsData)), total)

	active := 0
	for _, e := range equipments {
		if e.State == "ACTIVE" {
			active++
			assert.NotNil(t, e.ResponsibleUserID, e.AssetCode)
		} else {
			assert.Nil(t, e.ResponsibleUserID, e.AssetCode)
		}
	}
	assert.Equal(t, 4, active)

	summary, err := app.Licenses.GetPoolSummary(ctx)
	require.NoError(t, err)
	require.Len(t, summary, len(licensesData))
	byName := make(map[string]int, len(summary))
	for i, s := range summary {
		byName[s.Name] = i
	}
	for _, l := range licensesData {
		s := summary[byName[l.Name]]
		assert.Equal(t, l.Quantity, s.Total, l.Name)
		assert.Equal(t, len(l.Holders), s.Assigned, l.Name)
	}

	report, err := app.Replacement.GetCandidates(ctx)
	require.NoError(t, err)
	// ноутбуки и системные блоки
	assert.Equal(t, 5, report.EligibleFleet)
	assert.Equal(t, 1, report.Quota)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, "PC-000001", report.Candidates[0].AssetCode)
}
