package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/services"
	"inventory-system/pkg/utils"
)

type ReplacementController struct {
	replacementService services.ReplacementServiceInterface
	logger             *zap.Logger
}

func NewReplacementController(replacementService services.ReplacementServiceInterface, logger *zap.Logger) *ReplacementController {
	return &ReplacementController{replacementService: replacementService, logger: logger}
}

func (c *ReplacementController) GetCandidates(ctx echo.Context) error {
	res, err := c.replacementService.GetCandidates(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Кандидаты на замену успешно подобраны", http.StatusOK)
}

func (c *ReplacementController) MarkPlanned(ctx echo.Context) error {
	var payload dto.ReplacementPlanDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.replacementService.MarkPlanned(ctx.Request().Context(), payload.EquipmentIDs); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("Оборудование включено в план замены", zap.Uint64s("equipment_ids", payload.EquipmentIDs))
	return utils.SuccessResponse(ctx, payload, "Оборудование включено в план замены", http.StatusOK)
}

func (c *ReplacementController) UnmarkPlanned(ctx echo.Context) error {
	var payload dto.ReplacementPlanDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.replacementService.UnmarkPlanned(ctx.Request().Context(), payload.EquipmentIDs); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, payload, "Оборудование исключено из плана замены", http.StatusOK)
}
