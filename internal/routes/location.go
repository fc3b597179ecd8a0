package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runLocationRouter(secureGroup *echo.Group, locationCtrl *controllers.LocationController) {
	secureGroup.GET("/locations", locationCtrl.GetLocations)
	secureGroup.POST("/location", locationCtrl.CreateLocation)
}
