package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runLiveFeedRouter(secureGroup *echo.Group, liveFeedCtrl *controllers.LiveFeedController) {
	secureGroup.GET("/ws/events", liveFeedCtrl.ServeWs)
}
