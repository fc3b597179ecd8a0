package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/filestorage"
	"inventory-system/pkg/utils"
)

const importArchivePrefix = "equipment"

type EquipmentController struct {
	lifecycleService services.EquipmentLifecycleServiceInterface
	importService    services.EquipmentImportServiceInterface
	fileStorage      filestorage.FileStorageInterface
	logger           *zap.Logger
}

// NewEquipmentController: fileStorage может быть nil, тогда загруженные файлы не сохраняются.
func NewEquipmentController(
	lifecycleService services.EquipmentLifecycleServiceInterface,
	importService services.EquipmentImportServiceInterface,
	fileStorage filestorage.FileStorageInterface,
	logger *zap.Logger,
) *EquipmentController {
	return &EquipmentController{
		lifecycleService: lifecycleService,
		importService:    importService,
		fileStorage:      fileStorage,
		logger:           logger,
	}
}

// ----- ЧТЕНИЕ -----

func (c *EquipmentController) GetEquipments(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.lifecycleService.GetEquipments(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetEquipments: ошибка при получении списка оборудования", zap.Error(err))
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(
				http.StatusInternalServerError,
				"Не удалось получить список оборудования",
				err,
				nil,
			),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Список оборудования успешно получен", http.StatusOK, total)
}

func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.lifecycleService.FindEquipment(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно найдено", http.StatusOK)
}

func (c *EquipmentController) FindByAssetCode(ctx echo.Context) error {
	res, err := c.lifecycleService.FindByAssetCode(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Оборудование успешно найдено", http.StatusOK)
}

func (c *EquipmentController) GetHistory(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	var limit uint64
	if filter.WithPagination {
		limit = uint64(filter.Limit)
	}

	res, total, err := c.lifecycleService.GetHistory(ctx.Request().Context(), id, limit, uint64(filter.Offset))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "История оборудования успешно получена", http.StatusOK, total)
}

func (c *EquipmentController) GetAssignments(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.lifecycleService.GetAssignments(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Выдачи оборудования успешно получены", http.StatusOK)
}

func (c *EquipmentController) GetMaintenanceRecords(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.lifecycleService.GetMaintenanceRecords(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Записи обслуживания успешно получены", http.StatusOK)
}

// ----- ИЗМЕНЕНИЕ -----

func (c *EquipmentController) CreateEquipment(ctx echo.Context) error {
	var payload dto.CreateEquipmentDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		c.logger.Warn("CreateEquipment: неверные данные", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.lifecycleService.CreateEquipment(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(
				http.StatusInternalServerError,
				"Не удалось создать оборудование",
				err,
				map[string]interface{}{"asset_code": payload.AssetCode},
			),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно создано", http.StatusCreated)
}

func (c *EquipmentController) UpdateEquipment(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateEquipmentDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.lifecycleService.UpdateEquipment(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(ctx, res, "Оборудование успешно обновлено", http.StatusOK)
}

// ImportEquipment принимает .xlsx в поле "file". Склад по умолчанию - query-параметр warehouse_id.
func (c *EquipmentController) ImportEquipment(ctx echo.Context) error {
	var warehouseID uint64
	if raw := ctx.QueryParam("warehouse_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный warehouse_id", err, nil), c.logger)
		}
		warehouseID = parsed
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Файл не передан", err, nil), c.logger)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Не удалось прочитать файл", err, nil), c.logger)
	}
	defer file.Close()

	storedPath := c.archiveUpload(fileHeader.Filename, fileHeader.Open)

	res, err := c.importService.Import(ctx.Request().Context(), file, warehouseID)
	if err != nil {
		c.logger.Error("ImportEquipment: импорт прерван", zap.String("file", fileHeader.Filename), zap.Error(err))
		c.dropUpload(storedPath)
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res.StoredFile = storedPath

	return utils.SuccessResponse(ctx, res, "Импорт оборудования завершен", http.StatusOK)
}

// archiveUpload сохраняет копию загруженного файла. Ошибка хранилища импорт не прерывает.
func (c *EquipmentController) archiveUpload(fileName string, open func() (multipart.File, error)) string {
	if c.fileStorage == nil {
		return ""
	}
	src, err := open()
	if err != nil {
		c.logger.Warn("ImportEquipment: копия файла не сохранена", zap.String("file", fileName), zap.Error(err))
		return ""
	}
	defer src.Close()

	path, err := c.fileStorage.Save(src, fileName, importArchivePrefix)
	if err != nil {
		c.logger.Warn("ImportEquipment: копия файла не сохранена", zap.String("file", fileName), zap.Error(err))
		return ""
	}
	return path
}

func (c *EquipmentController) dropUpload(path string) {
	if path == "" {
		return
	}
	if err := c.fileStorage.Delete(path); err != nil {
		c.logger.Warn("ImportEquipment: не удалось удалить копию файла", zap.String("path", path), zap.Error(err))
	}
}
