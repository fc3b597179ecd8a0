package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runLicenseRouter(secureGroup *echo.Group, licenseCtrl *controllers.LicenseController) {
	secureGroup.GET("/license-types", licenseCtrl.GetLicenseTypes)
	secureGroup.POST("/license-type", licenseCtrl.CreateLicenseType)
	secureGroup.PUT("/license-type/:id", licenseCtrl.UpdateLicenseType)
	secureGroup.POST("/license-type/:id/stock", licenseCtrl.IssueStock)
	secureGroup.GET("/license-type/:id/units", licenseCtrl.GetUnitsByType)

	secureGroup.POST("/license-unit/:unitId/assign", licenseCtrl.AssignUnit)
	secureGroup.POST("/license-unit/:unitId/release", licenseCtrl.ReleaseUnit)

	secureGroup.GET("/licenses/expiring", licenseCtrl.GetExpiring)
	secureGroup.GET("/licenses/summary", licenseCtrl.GetPoolSummary)
}
