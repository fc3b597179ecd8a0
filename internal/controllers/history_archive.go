package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/repositories"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"
)

// HistoryArchiveController отдает архив истории из PostgreSQL. Регистрируется, только если архив включен.
// Поддерживает filter[action], filter[state], filter[actor_id], sort[date] и limit/page.
type HistoryArchiveController struct {
	archive repositories.HistoryArchiveRepositoryInterface
	logger  *zap.Logger
}

func NewHistoryArchiveController(archive repositories.HistoryArchiveRepositoryInterface, logger *zap.Logger) *HistoryArchiveController {
	return &HistoryArchiveController{archive: archive, logger: logger}
}

func (c *HistoryArchiveController) FindByAssetCode(ctx echo.Context) error {
	code := ctx.Param("code")
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	res, err := c.archive.FindByAssetCode(ctx.Request().Context(), code, filter)
	if err != nil {
		return utils.ErrorResponse(
			ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось прочитать архив истории", err, map[string]interface{}{"asset_code": code}),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, res, "Архив истории успешно получен", http.StatusOK)
}
