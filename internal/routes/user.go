package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController) {
	secureGroup.GET("/users", userCtrl.GetUsers)
	secureGroup.GET("/user/:id", userCtrl.FindUser)
	secureGroup.POST("/user", userCtrl.CreateUser)
	secureGroup.GET("/user/:id/licenses", userCtrl.GetUserLicenses)
	secureGroup.POST("/user/:id/release-holdings", userCtrl.ReleaseHoldings)
}
