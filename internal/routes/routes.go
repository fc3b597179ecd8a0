package routes

import (
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/controllers"
	"inventory-system/internal/listeners"
	"inventory-system/internal/repositories"
	"inventory-system/internal/services"
	"inventory-system/pkg/config"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/filestorage"
	"inventory-system/pkg/metrics"
	"inventory-system/pkg/middleware"
	appwebsocket "inventory-system/pkg/websocket"
)

// Dependencies - внешние компоненты. DB и Redis могут быть nil: тогда архив истории
// не поднимается, а план замены хранится в памяти. Без Notifier уведомления пишутся в лог,
// без FileStorage загруженные файлы не сохраняются, без Hub нет ленты событий.
type Dependencies struct {
	Config      *config.Config
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Bus         *eventbus.Bus
	Metrics     *metrics.Metrics
	Notifier    services.NotifierInterface
	FileStorage filestorage.FileStorageInterface
	Hub         *appwebsocket.Hub
	Logger      *zap.Logger
}

// Application - собранные сервисы. Нужны сидеру демо-данных и тестам.
type Application struct {
	EquipmentTypes services.EquipmentTypeServiceInterface
	Locations      services.LocationServiceInterface
	Users          services.UserServiceInterface
	Lifecycle      services.EquipmentLifecycleServiceInterface
	Licenses       services.LicensePoolServiceInterface
	Replacement    services.ReplacementServiceInterface
	Holdings       services.UserHoldingsServiceInterface
}

func InitRouter(e *echo.Echo, deps Dependencies) *Application {
	logger := deps.Logger
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 1. РЕПОЗИТОРИИ ---
	equipmentRepo := repositories.NewEquipmentRepository()
	equipmentTypeRepo := repositories.NewEquipmentTypeRepository()
	locationRepo := repositories.NewLocationRepository()
	userRepo := repositories.NewUserRepository()
	assignmentRepo := repositories.NewAssignmentRepository()
	historyRepo := repositories.NewHistoryRepository()
	maintenanceRepo := repositories.NewMaintenanceRepository()
	licenseTypeRepo := repositories.NewLicenseTypeRepository()
	licenseUnitRepo := repositories.NewLicenseUnitRepository()

	var planRepo repositories.PlanExclusionRepositoryInterface
	if deps.Redis != nil {
		planRepo = repositories.NewRedisPlanExclusionRepository(deps.Redis, deps.Config.Redis.PlanSetKey, logger)
	} else {
		planRepo = repositories.NewMemoryPlanExclusionRepository()
	}

	// --- 2. СЕРВИСЫ ---
	lifecycleService := services.NewEquipmentLifecycleService(
		equipmentRepo, equipmentTypeRepo, locationRepo, userRepo,
		assignmentRepo, historyRepo, maintenanceRepo,
		deps.Bus, deps.Metrics, logger,
	)
	licenseService := services.NewLicensePoolService(licenseTypeRepo, licenseUnitRepo, userRepo, deps.Bus, deps.Metrics, logger)
	replacementService := services.NewReplacementService(equipmentRepo, equipmentTypeRepo, planRepo, deps.Config.Lifecycle, deps.Metrics, logger)
	holdingsService := services.NewUserHoldingsService(userRepo, locationRepo, equipmentRepo, lifecycleService, licenseService, logger)
	importService := services.NewEquipImportService(lifecycleService, equipmentTypeRepo, locationRepo, logger)
	userService := services.NewUserService(userRepo, logger)
	equipmentTypeService := services.NewEquipmentTypeService(equipmentTypeRepo, logger)
	locationService := services.NewLocationService(locationRepo, logger)

	// --- 3. ПОДПИСЧИКИ ШИНЫ ---
	notifier := deps.Notifier
	if notifier == nil {
		notifier = services.NewMockNotificationService(logger)
	}
	listeners.NewNotificationListener(notifier, logger).Register(deps.Bus)

	if deps.Hub != nil {
		listeners.NewLiveFeedListener(deps.Hub, logger).Register(deps.Bus)
	}

	var archiveRepo repositories.HistoryArchiveRepositoryInterface
	if deps.DB != nil {
		archiveRepo = repositories.NewHistoryArchiveRepository(deps.DB)
		listeners.NewHistoryArchiveListener(archiveRepo, logger).Register(deps.Bus)
	}

	// --- 4. РОУТЕРЫ ---
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Config.Metrics.Enabled {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}

	actorMW := middleware.NewActorMiddleware(logger)
	secureGroup := e.Group("/api", actorMW.RequireActor)

	runEquipmentRouter(secureGroup, controllers.NewEquipmentController(lifecycleService, importService, deps.FileStorage, logger))
	runEquipmentTypeRouter(secureGroup, controllers.NewEquipmentTypeController(equipmentTypeService, logger))
	runLocationRouter(secureGroup, controllers.NewLocationController(locationService, logger))
	runUserRouter(secureGroup, controllers.NewUserController(userService, holdingsService, licenseService, logger))
	runLicenseRouter(secureGroup, controllers.NewLicenseController(licenseService, logger))
	runReplacementRouter(secureGroup, controllers.NewReplacementController(replacementService, logger))
	if archiveRepo != nil {
		runHistoryArchiveRouter(secureGroup, controllers.NewHistoryArchiveController(archiveRepo, logger))
	}
	if deps.Hub != nil {
		runLiveFeedRouter(secureGroup, controllers.NewLiveFeedController(deps.Hub, logger))
	}

	logger.Info("INIT_ROUTER: Создание маршрутов завершено")

	return &Application{
		EquipmentTypes: equipmentTypeService,
		Locations:      locationService,
		Users:          userService,
		Lifecycle:      lifecycleService,
		Licenses:       licenseService,
		Replacement:    replacementService,
		Holdings:       holdingsService,
	}
}
