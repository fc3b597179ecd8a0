package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
)

type EquipmentImportServiceInterface interface {
	Import(ctx context.Context, r io.Reader, defaultWarehouseID uint64) (*dto.ImportResultDTO, error)
}

// EquipImportService - прием оборудования из Excel. Каждая строка проходит обычный CREATE.
type EquipImportService struct {
	lifecycle               EquipmentLifecycleServiceInterface
	equipmentTypeRepository repositories.EquipmentTypeRepositoryInterface
	locationRepository      repositories.LocationRepositoryInterface
	logger                  *zap.Logger
}

func NewEquipImportService(
	lifecycle EquipmentLifecycleServiceInterface,
	equipmentTypeRepository repositories.EquipmentTypeRepositoryInterface,
	locationRepository repositories.LocationRepositoryInterface,
	logger *zap.Logger,
) *EquipImportService {
	return &EquipImportService{
		lifecycle:               lifecycle,
		equipmentTypeRepository: equipmentTypeRepository,
		locationRepository:      locationRepository,
		logger:                  logger,
	}
}

// importColumns - индексы колонок, найденных по заголовку. -1 - колонки нет.
type importColumns struct {
	asset, serial, brand, model, kind, purchase, value, warranty, charger, warehouse int
}

func (c importColumns) complete() bool {
	return c.asset != -1 && c.serial != -1 && c.kind != -1 && c.purchase != -1
}

func detectColumns(row []string) importColumns {
	cols := importColumns{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
	for idx, raw := range row {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case strings.Contains(name, "инв") || strings.Contains(name, "asset"):
			cols.asset = idx
		case strings.Contains(name, "зарядн") || strings.Contains(name, "charger"):
			cols.charger = idx
		case strings.Contains(name, "серийн") || strings.Contains(name, "serial"):
			cols.serial = idx
		case strings.Contains(name, "марка") || strings.Contains(name, "brand"):
			cols.brand = idx
		case strings.Contains(name, "модель") || strings.Contains(name, "model"):
			cols.model = idx
		case strings.Contains(name, "тип") || strings.Contains(name, "type"):
			cols.kind = idx
		case strings.Contains(name, "дата") || strings.Contains(name, "purchase"):
			cols.purchase = idx
		case strings.Contains(name, "стоимость") || strings.Contains(name, "value"):
			cols.value = idx
		case strings.Contains(name, "гарант") || strings.Contains(name, "warranty"):
			cols.warranty = idx
		case strings.Contains(name, "склад") || strings.Contains(name, "warehouse"):
			cols.warehouse = idx
		}
	}
	return cols
}

// Import читает первый лист, где найдена шапка. Ошибки строк не прерывают загрузку.
func (s *EquipImportService) Import(ctx context.Context, r io.Reader, defaultWarehouseID uint64) (*dto.ImportResultDTO, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", apperrors.ErrBadRequest)
	}
	defer f.Close()

	var (
		rows      [][]string
		cols      importColumns
		headerRow = -1
	)
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			continue
		}
		for idx, row := range sheetRows {
			if detected := detectColumns(row); detected.complete() {
				rows, cols, headerRow = sheetRows, detected, idx
				break
			}
		}
		if headerRow != -1 {
			break
		}
	}
	if headerRow == -1 {
		return nil, apperrors.NewValidationError("file", "не найдена шапка таблицы: нужны колонки инв. номер, серийный номер, тип и дата покупки")
	}

	warehouses, err := s.locationRepository.GetLocations(ctx, true)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResultDTO{Errors: []dto.ImportErrorDTO{}}
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		assetCode := cell(row, cols.asset)
		if isTrashRow(assetCode) {
			continue
		}

		payload, err := s.rowToPayload(ctx, row, cols, warehouses, defaultWarehouseID)
		if err == nil {
			_, err = s.lifecycle.CreateEquipment(ctx, payload)
		}

		var validationErr *apperrors.ValidationError
		switch {
		case err == nil:
			result.Created++
		case errors.As(err, &validationErr) && validationErr.Field == "asset_code":
			result.Skipped++
		case apperrors.IsDomainError(err):
			result.Errors = append(result.Errors, dto.ImportErrorDTO{Row: lineNum, Message: err.Error()})
		default:
			return result, err
		}
	}

	s.logger.Info("Импорт оборудования завершен",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *EquipImportService) rowToPayload(ctx context.Context, row []string, cols importColumns, warehouses []entities.Location, defaultWarehouseID uint64) (dto.CreateEquipmentDTO, error) {
	payload := dto.CreateEquipmentDTO{
		AssetCode:    cell(row, cols.asset),
		SerialNumber: cell(row, cols.serial),
		Brand:        cell(row, cols.brand),
		Model:        cell(row, cols.model),
	}

	equipmentType, err := s.equipmentTypeRepository.FindByName(ctx, cell(row, cols.kind))
	if err != nil {
		return payload, err
	}
	payload.EquipmentTypeID = equipmentType.ID

	purchase, err := parseExcelDate(cell(row, cols.purchase))
	if err != nil {
		return payload, apperrors.NewValidationError("purchase_date", "не удалось разобрать дату «%s»", cell(row, cols.purchase))
	}
	payload.PurchaseDate = purchase

	if raw := cell(row, cols.value); raw != "" {
		value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return payload, apperrors.NewValidationError("purchase_value", "неверная стоимость «%s»", raw)
		}
		payload.PurchaseValue = value
	}
	if raw := cell(row, cols.warranty); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil {
			return payload, apperrors.NewValidationError("warranty_years", "неверный срок гарантии «%s»", raw)
		}
		payload.WarrantyYears = years
	}
	if charger := cell(row, cols.charger); charger != "" {
		payload.ChargerSerial = null.StringFrom(charger)
	}

	warehouseID := defaultWarehouseID
	if name := cell(row, cols.warehouse); name != "" {
		warehouseID = 0
		for _, w := range warehouses {
			if strings.EqualFold(w.Name, name) {
				warehouseID = w.ID
				break
			}
		}
		if warehouseID == 0 {
			return payload, apperrors.NewValidationError("warehouse", "склад «%s» не найден", name)
		}
	}
	if warehouseID != 0 {
		payload.LocationID = null.Uint64From(warehouseID)
	}
	return payload, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isTrashRow - пустые строки и итоги в конце таблицы.
func isTrashRow(assetCode string) bool {
	v := strings.ToLower(assetCode)
	return v == "" || strings.Contains(v, "итого") || strings.Contains(v, "всего")
}

var importDateLayouts = []string{"2006-01-02", "02.01.2006", "02/01/2006", "2006/01/02"}

// parseExcelDate понимает серийный номер дня Excel и текстовые даты.
func parseExcelDate(raw string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("неизвестный формат даты: %s", raw)
}
