package seeders

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/routes"
	"inventory-system/pkg/utils"
)

// SystemActorID - автор событий истории, созданных наполнением.
const SystemActorID uint64 = 1

type seedState struct {
	typeIDs      map[string]uint64
	warehouseIDs []uint64
	userIDs      []uint64
}

// SeedDemo наполняет движок демонстрационными данными через обычные сервисы,
// так что вся история и инварианты соблюдаются так же, как при работе через API.
func SeedDemo(ctx context.Context, app *routes.Application, logger *zap.Logger) error {
	ctx = utils.WithUserID(ctx, SystemActorID)
	logger.Info("▶️  Запуск наполнения демо-данными...")

	state := &seedState{typeIDs: make(map[string]uint64)}

	if err := seedDictionaries(ctx, app, state); err != nil {
		return fmt.Errorf("ошибка наполнения справочников: %w", err)
	}
	if err := seedUsers(ctx, app, state); err != nil {
		return fmt.Errorf("ошибка наполнения пользователей: %w", err)
	}
	if err := seedEquipments(ctx, app, state, logger); err != nil {
		return fmt.Errorf("ошибка наполнения оборудования: %w", err)
	}
	if err := seedLicenses(ctx, app, state); err != nil {
		return fmt.Errorf("ошибка наполнения лицензий: %w", err)
	}

	logger.Info("✅ Наполнение демо-данными завершено",
		zap.Int("equipment_types", len(state.typeIDs)),
		zap.Int("users", len(state.userIDs)),
		zap.Int("equipments", len(equipmentsData)),
		zap.Int("license_types", len(licensesData)),
	)
	return nil
}

func seedDictionaries(ctx context.Context, app *routes.Application, state *seedState) error {
	for _, t := range equipmentTypesData {
		created, err := app.EquipmentTypes.CreateEquipmentType(ctx, dto.CreateEquipmentTypeDTO{Name: t.Name, RenewalEligible: t.RenewalEligible})
		if err != nil {
			return err
		}
		state.typeIDs[t.Name] = created.ID
	}
	for _, l := range locationsData {
		created, err := app.Locations.CreateLocation(ctx, dto.CreateLocationDTO{Name: l.Name, IsWarehouse: l.IsWarehouse})
		if err != nil {
			return err
		}
		if created.IsWarehouse {
			state.warehouseIDs = append(state.warehouseIDs, created.ID)
		}
	}
	if len(state.warehouseIDs) == 0 {
		return fmt.Errorf("в демо-данных нет ни одного склада")
	}
	return nil
}

func seedUsers(ctx context.Context, app *routes.Application, state *seedState) error {
	for _, u := range usersData {
		created, err := app.Users.CreateUser(ctx, dto.CreateUserDTO{Fio: u.Fio, Email: u.Email})
		if err != nil {
			return err
		}
		state.userIDs = append(state.userIDs, created.ID)
	}
	return nil
}

// seedEquipments заводит оборудование на склад и выдает его переходом ASSIGN,
// чтобы у выданных единиц была открытая запись о выдаче.
func seedEquipments(ctx context.Context, app *routes.Application, state *seedState, logger *zap.Logger) error {
	for _, e := range equipmentsData {
		typeID, ok := state.typeIDs[e.TypeName]
		if !ok {
			logger.Warn("ПРЕДУПРЕЖДЕНИЕ: тип оборудования не найден, пропускаем", zap.String("type", e.TypeName), zap.String("asset_code", e.AssetCode))
			continue
		}

		created, err := app.Lifecycle.CreateEquipment(ctx, dto.CreateEquipmentDTO{
			AssetCode:       e.AssetCode,
			SerialNumber:    e.Serial,
			Brand:           e.Brand,
			Model:           e.Model,
			EquipmentTypeID: typeID,
			PurchaseDate:    e.PurchaseDate,
			PurchaseValue:   e.Value,
			WarrantyYears:   2,
			LocationID:      null.Uint64From(state.warehouseIDs[0]),
		})
		if err != nil {
			return fmt.Errorf("%s: %w", e.AssetCode, err)
		}

		if e.Holder < 0 {
			continue
		}
		if _, err := app.Lifecycle.Assign(ctx, created.ID, dto.AssignEquipmentDTO{
			UserID:   state.userIDs[e.Holder],
			Location: e.Location,
		}); err != nil {
			return fmt.Errorf("%s: %w", e.AssetCode, err)
		}
	}
	return nil
}

func seedLicenses(ctx context.Context, app *routes.Application, state *seedState) error {
	now := time.Now()
	for _, l := range licensesData {
		licenseType, err := app.Licenses.CreateLicenseType(ctx, dto.CreateLicenseTypeDTO{Name: l.Name, Vendor: l.Vendor})
		if err != nil {
			return err
		}
		units, err := app.Licenses.IssueStock(ctx, licenseType.ID, dto.IssueLicenseStockDTO{
			Quantity:       l.Quantity,
			ExpirationDate: now.Add(l.ValidFor),
			PurchaseDate:   &now,
		})
		if err != nil {
			return err
		}
		for i, holder := range l.Holders {
			if i >= len(units) {
				break
			}
			if _, err := app.Licenses.Assign(ctx, units[i].ID, state.userIDs[holder]); err != nil {
				return fmt.Errorf("%s: %w", l.Name, err)
			}
		}
	}
	return nil
}
