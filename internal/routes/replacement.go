package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runReplacementRouter(secureGroup *echo.Group, replacementCtrl *controllers.ReplacementController) {
	secureGroup.GET("/replacement/candidates", replacementCtrl.GetCandidates)
	secureGroup.POST("/replacement/plan", replacementCtrl.MarkPlanned)
	secureGroup.DELETE("/replacement/plan", replacementCtrl.UnmarkPlanned)
}
