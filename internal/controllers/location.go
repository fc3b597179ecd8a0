package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	"inventory-system/pkg/utils"
)

type LocationController struct {
	locationService services.LocationServiceInterface
	logger          *zap.Logger
}

func NewLocationController(locationService services.LocationServiceInterface, logger *zap.Logger) *LocationController {
	return &LocationController{locationService: locationService, logger: logger}
}

// GetLocations: ?warehouses=true - только склады.
func (c *LocationController) GetLocations(ctx echo.Context) error {
	warehousesOnly, _ := strconv.ParseBool(ctx.QueryParam("warehouses"))
	res, err := c.locationService.GetLocations(ctx.Request().Context(), warehousesOnly)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список локаций успешно получен", http.StatusOK)
}

func (c *LocationController) CreateLocation(ctx echo.Context) error {
	var payload dto.CreateLocationDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.locationService.CreateLocation(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("Создана локация", zap.Uint64("id", res.ID), zap.Bool("is_warehouse", res.IsWarehouse))
	return utils.SuccessResponse(ctx, res, "Локация успешно создана", http.StatusCreated)
}
