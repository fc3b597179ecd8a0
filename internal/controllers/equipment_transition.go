package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/pkg/utils"
)

// runTransition - общий порядок для всех переходов: ID из пути, тело, вызов сервиса.
func runTransition[T any](
	c *EquipmentController,
	ctx echo.Context,
	name string,
	successMessage string,
	apply func(ctx context.Context, id uint64, payload T) (*dto.EquipmentDTO, error),
) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload T
	if err := bindAndValidate(ctx, &payload); err != nil {
		c.logger.Warn(name+": неверные данные", zap.Uint64("equipment_id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := apply(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, successMessage, http.StatusOK)
}

func (c *EquipmentController) Assign(ctx echo.Context) error {
	return runTransition(c, ctx, "Assign", "Оборудование выдано", c.lifecycleService.Assign)
}

func (c *EquipmentController) Return(ctx echo.Context) error {
	return runTransition(c, ctx, "Return", "Оборудование принято на склад", c.lifecycleService.Return)
}

func (c *EquipmentController) MarkForDisposal(ctx echo.Context) error {
	return runTransition(c, ctx, "MarkForDisposal", "Оборудование передано на списание", c.lifecycleService.MarkForDisposal)
}

func (c *EquipmentController) SendToMaintenance(ctx echo.Context) error {
	return runTransition(c, ctx, "SendToMaintenance", "Оборудование отправлено в обслуживание", c.lifecycleService.SendToMaintenance)
}

func (c *EquipmentController) FinalizeMaintenance(ctx echo.Context) error {
	return runTransition(c, ctx, "FinalizeMaintenance", "Обслуживание завершено", c.lifecycleService.FinalizeMaintenance)
}

func (c *EquipmentController) Decommission(ctx echo.Context) error {
	return runTransition(c, ctx, "Decommission", "Оборудование списано", c.lifecycleService.Decommission)
}
