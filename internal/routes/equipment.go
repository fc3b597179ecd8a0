package routes

import (
	"github.com/labstack/echo/v4"

	"inventory-system/internal/controllers"
)

func runEquipmentRouter(secureGroup *echo.Group, equipmentCtrl *controllers.EquipmentController) {
	secureGroup.GET("/equipment", equipmentCtrl.GetEquipments)
	secureGroup.POST("/equipment", equipmentCtrl.CreateEquipment)
	secureGroup.POST("/equipment/import", equipmentCtrl.ImportEquipment)
	secureGroup.GET("/equipment/by-code/:code", equipmentCtrl.FindByAssetCode)
	secureGroup.GET("/equipment/:id", equipmentCtrl.FindEquipment)
	secureGroup.PUT("/equipment/:id", equipmentCtrl.UpdateEquipment)

	secureGroup.GET("/equipment/:id/history", equipmentCtrl.GetHistory)
	secureGroup.GET("/equipment/:id/assignments", equipmentCtrl.GetAssignments)
	secureGroup.GET("/equipment/:id/maintenance", equipmentCtrl.GetMaintenanceRecords)

	secureGroup.POST("/equipment/:id/assign", equipmentCtrl.Assign)
	secureGroup.POST("/equipment/:id/return", equipmentCtrl.Return)
	secureGroup.POST("/equipment/:id/dispose", equipmentCtrl.MarkForDisposal)
	secureGroup.POST("/equipment/:id/maintenance", equipmentCtrl.SendToMaintenance)
	secureGroup.POST("/equipment/:id/maintenance/finalize", equipmentCtrl.FinalizeMaintenance)
	secureGroup.POST("/equipment/:id/decommission", equipmentCtrl.Decommission)
}

func runEquipmentTypeRouter(secureGroup *echo.Group, equipmentTypeCtrl *controllers.EquipmentTypeController) {
	secureGroup.GET("/equipment-types", equipmentTypeCtrl.GetEquipmentTypes)
	secureGroup.GET("/equipment-type/:id", equipmentTypeCtrl.FindEquipmentType)
	secureGroup.POST("/equipment-type", equipmentTypeCtrl.CreateEquipmentType)
}

func runHistoryArchiveRouter(secureGroup *echo.Group, archiveCtrl *controllers.HistoryArchiveController) {
	secureGroup.GET("/archive/equipment/:code", archiveCtrl.FindByAssetCode)
}
