package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"
)

const defaultExpiringDays = 30

type LicenseController struct {
	licenseService services.LicensePoolServiceInterface
	logger         *zap.Logger
}

func NewLicenseController(licenseService services.LicensePoolServiceInterface, logger *zap.Logger) *LicenseController {
	return &LicenseController{licenseService: licenseService, logger: logger}
}

func (c *LicenseController) GetLicenseTypes(ctx echo.Context) error {
	res, err := c.licenseService.GetLicenseTypes(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список типов лицензий успешно получен", http.StatusOK)
}

func (c *LicenseController) CreateLicenseType(ctx echo.Context) error {
	var payload dto.CreateLicenseTypeDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.licenseService.CreateLicenseType(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Тип лицензии успешно создан", http.StatusCreated)
}

func (c *LicenseController) UpdateLicenseType(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateLicenseTypeDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.licenseService.UpdateLicenseType(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Тип лицензии успешно обновлен", http.StatusOK)
}

func (c *LicenseController) IssueStock(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.IssueLicenseStockDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.licenseService.IssueStock(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Партия лицензий выпущена", http.StatusCreated)
}

func (c *LicenseController) GetUnitsByType(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.licenseService.GetUnitsByType(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Единицы лицензии успешно получены", http.StatusOK)
}

func (c *LicenseController) AssignUnit(ctx echo.Context) error {
	unitID, err := paramID(ctx, "unitId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.AssignLicenseDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.licenseService.Assign(ctx.Request().Context(), unitID, payload.UserID)
	if err != nil {
		c.logger.Warn("AssignUnit: лицензия не выдана", zap.Uint64("unit_id", unitID), zap.Uint64("user_id", payload.UserID), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Лицензия выдана", http.StatusOK)
}

func (c *LicenseController) ReleaseUnit(ctx echo.Context) error {
	unitID, err := paramID(ctx, "unitId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.licenseService.Release(ctx.Request().Context(), unitID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Лицензия освобождена", http.StatusOK)
}

// GetExpiring: ?days=N, по умолчанию 30.
func (c *LicenseController) GetExpiring(ctx echo.Context) error {
	days := defaultExpiringDays
	if raw := ctx.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный параметр days", err, nil), c.logger)
		}
		days = parsed
	}
	res, err := c.licenseService.GetExpiring(ctx.Request().Context(), days)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Истекающие лицензии успешно получены", http.StatusOK)
}

func (c *LicenseController) GetPoolSummary(ctx echo.Context) error {
	res, err := c.licenseService.GetPoolSummary(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Сводка по пулу лицензий успешно получена", http.StatusOK)
}
