package services

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/config"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/metrics"
	"inventory-system/pkg/utils"
)

var testNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

const testActorID uint64 = 1

// testEnv собирает сервисы на in-memory хранилищах с фиксированными часами.
type testEnv struct {
	ctx context.Context

	equipmentRepo   repositories.EquipmentRepositoryInterface
	typeRepo        repositories.EquipmentTypeRepositoryInterface
	locationRepo    repositories.LocationRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	assignmentRepo  repositories.AssignmentRepositoryInterface
	historyRepo     repositories.HistoryRepositoryInterface
	maintenanceRepo repositories.MaintenanceRepositoryInterface
	licenseTypes    repositories.LicenseTypeRepositoryInterface
	licenseUnits    repositories.LicenseUnitRepositoryInterface
	planRepo        repositories.PlanExclusionRepositoryInterface

	bus         *eventbus.Bus
	lifecycle   *EquipmentLifecycleService
	licenses    *LicensePoolService
	replacement *ReplacementService
	holdings    *UserHoldingsService

	laptopType  entities.EquipmentType
	monitorType entities.EquipmentType
	warehouse   entities.Location
	office      entities.Location
	alice       entities.User
	bob         entities.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	m := metrics.New()
	env := &testEnv{
		ctx:             utils.WithUserID(context.Background(), testActorID),
		equipmentRepo:   repositories.NewEquipmentRepository(),
		typeRepo:        repositories.NewEquipmentTypeRepository(),
		locationRepo:    repositories.NewLocationRepository(),
		userRepo:        repositories.NewUserRepository(),
		assignmentRepo:  repositories.NewAssignmentRepository(),
		historyRepo:     repositories.NewHistoryRepository(),
		maintenanceRepo: repositories.NewMaintenanceRepository(),
		licenseTypes:    repositories.NewLicenseTypeRepository(),
		licenseUnits:    repositories.NewLicenseUnitRepository(),
		planRepo:        repositories.NewMemoryPlanExclusionRepository(),
		bus:             eventbus.New(logger),
	}

	env.lifecycle = NewEquipmentLifecycleService(env.equipmentRepo, env.typeRepo, env.locationRepo, env.userRepo,
		env.assignmentRepo, env.historyRepo, env.maintenanceRepo, env.bus, m, logger)
	env.lifecycle.now = func() time.Time { return testNow }

	env.licenses = NewLicensePoolService(env.licenseTypes, env.licenseUnits, env.userRepo, env.bus, m, logger)
	env.licenses.now = func() time.Time { return testNow }

	env.replacement = NewReplacementService(env.equipmentRepo, env.typeRepo, env.planRepo,
		config.LifecycleConfig{RenewalMinAgeYears: 4, RenewalQuotaPct: 20}, m, logger)
	env.replacement.now = func() time.Time { return testNow }

	env.holdings = NewUserHoldingsService(env.userRepo, env.locationRepo, env.equipmentRepo, env.lifecycle, env.licenses, logger)

	env.laptopType = entities.EquipmentType{Name: "Ноутбук", RenewalEligible: true}
	require.NoError(t, env.typeRepo.CreateEquipmentType(env.ctx, &env.laptopType))
	env.monitorType = entities.EquipmentType{Name: "Монитор"}
	require.NoError(t, env.typeRepo.CreateEquipmentType(env.ctx, &env.monitorType))

	env.warehouse = entities.Location{Name: "Центральный склад", IsWarehouse: true}
	require.NoError(t, env.locationRepo.CreateLocation(env.ctx, &env.warehouse))
	env.office = entities.Location{Name: "Офис 204"}
	require.NoError(t, env.locationRepo.CreateLocation(env.ctx, &env.office))

	env.alice = entities.User{Fio: "Алиева М.", Email: "alieva@corp.tj", IsActive: true}
	require.NoError(t, env.userRepo.CreateUser(env.ctx, &env.alice))
	env.bob = entities.User{Fio: "Бобоев Р.", Email: "boboev@corp.tj", IsActive: true}
	require.NoError(t, env.userRepo.CreateUser(env.ctx, &env.bob))

	t.Cleanup(env.bus.Wait)
	return env
}

// createAvailable принимает на склад ноутбук с указанной датой покупки.
func (env *testEnv) createAvailable(t *testing.T, assetCode string, purchased time.Time) *dto.EquipmentDTO {
	t.Helper()
	created, err := env.lifecycle.CreateEquipment(env.ctx, dto.CreateEquipmentDTO{
		AssetCode:       assetCode,
		SerialNumber:    "SN-" + assetCode,
		Brand:           "Lenovo",
		Model:           "ThinkPad T14",
		EquipmentTypeID: env.laptopType.ID,
		PurchaseDate:    purchased,
		PurchaseValue:   1200,
		WarrantyYears:   3,
		LocationID:      null.Uint64From(env.warehouse.ID),
	})
	require.NoError(t, err)
	return created
}

func (env *testEnv) assignTo(t *testing.T, equipmentID uint64, user entities.User) *dto.EquipmentDTO {
	t.Helper()
	assigned, err := env.lifecycle.Assign(env.ctx, equipmentID, dto.AssignEquipmentDTO{UserID: user.ID, Location: "Офис 204"})
	require.NoError(t, err)
	return assigned
}

// requireHolderInvariant: ответственный есть тогда и только тогда, когда состояние ACTIVE,
// и открытых выдач не больше одной.
func (env *testEnv) requireHolderInvariant(t *testing.T, equipmentID uint64) {
	t.Helper()
	e, err := env.equipmentRepo.FindEquipment(env.ctx, equipmentID)
	require.NoError(t, err)
	require.Equal(t, e.State == "ACTIVE", e.ResponsibleUserID != nil, "state %s, responsible %v", e.State, e.ResponsibleUserID)

	records, err := env.assignmentRepo.FindByEquipmentID(env.ctx, equipmentID)
	require.NoError(t, err)
	open := 0
	for _, r := range records {
		if r.IsOpen() {
			open++
		}
	}
	require.LessOrEqual(t, open, 1)
}
