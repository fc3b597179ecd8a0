package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/pkg/utils"
	appwebsocket "inventory-system/pkg/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveFeedController - лента событий оборудования и лицензий для дашборда.
type LiveFeedController struct {
	hub    *appwebsocket.Hub
	logger *zap.Logger
}

func NewLiveFeedController(hub *appwebsocket.Hub, logger *zap.Logger) *LiveFeedController {
	return &LiveFeedController{hub: hub, logger: logger}
}

func (c *LiveFeedController) ServeWs(ctx echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// ответ клиенту уже записан апгрейдером
		c.logger.Warn("WebSocket: не удалось улучшить соединение", zap.Error(err))
		return nil
	}

	client, err := c.hub.Attach(conn, userID)
	if err != nil {
		c.logger.Warn("WebSocket: лента остановлена, соединение закрыто", zap.Uint64("userID", userID), zap.Error(err))
		return nil
	}

	c.logger.Info("WebSocket: клиент успешно подключен", zap.Uint64("userID", client.UserID()))
	return nil
}
