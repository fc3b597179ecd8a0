package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"inventory-system/internal/routes"
	"inventory-system/internal/services"
	"inventory-system/pkg/config"
	"inventory-system/pkg/database/postgresql"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/filestorage"
	applogger "inventory-system/pkg/logger"
	"inventory-system/pkg/metrics"
	"inventory-system/pkg/middleware"
	"inventory-system/pkg/telegram"
	"inventory-system/pkg/utils"
	"inventory-system/pkg/validation"
	appwebsocket "inventory-system/pkg/websocket"
	"inventory-system/seeders"
)

func main() {
	// 1. Конфиг (внутри подхватывается .env) и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Logger.Level, cfg.Logger.FilePath)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Echo и middleware
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  []string{"http://localhost:5173"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware.ActorHeader},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))
	e.Use(middleware.InjectLogger(logger))

	e.Validator = validation.New()

	// 3. Внешние хранилища. Оба необязательны.
	var dbConn *pgxpool.Pool
	if cfg.Postgres.Enabled {
		pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
		if err != nil {
			logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
		}
		defer pool.Close()
		if err := postgresql.Migrate(pool, logger); err != nil {
			logger.Fatal("не удалось применить миграции", zap.Error(err))
		}
		dbConn = pool
	} else {
		logger.Info("DATABASE_URL не задан, архив истории отключен")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
		}
	} else {
		logger.Info("REDIS_ADDRESS не задан, план замены хранится в памяти")
	}

	// 4. Уведомления, архив загрузок и лента событий
	var notifier services.NotifierInterface
	if cfg.Telegram.Enabled {
		bot, err := telegram.NewService(cfg.Telegram.BotToken, cfg.Telegram.APIEndpoint)
		if err != nil {
			logger.Fatal("не удалось подключиться к Telegram", zap.Error(err))
		}
		logger.Info("Уведомления отправляются в Telegram", zap.String("bot", bot.BotName()), zap.Int64("chat_id", cfg.Telegram.ChatID))
		notifier = services.NewTelegramNotificationService(bot, cfg.Telegram.ChatID, logger)
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN не задан, уведомления пишутся в лог")
	}

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Storage.ImportDir)
	if err != nil {
		logger.Fatal("не удалось подготовить каталог загрузок", zap.Error(err), zap.String("dir", cfg.Storage.ImportDir))
	}

	hub := appwebsocket.NewHub(logger)
	go hub.Run(ctx)

	// 5. Шина событий, метрики и маршруты
	bus := eventbus.New(logger)
	app := routes.InitRouter(e, routes.Dependencies{
		Config:      cfg,
		DB:          dbConn,
		Redis:       redisClient,
		Bus:         bus,
		Metrics:     metrics.New(),
		Notifier:    notifier,
		FileStorage: fileStorage,
		Hub:         hub,
		Logger:      logger,
	})

	if cfg.SeedDemo {
		if err := seeders.SeedDemo(ctx, app, logger); err != nil {
			logger.Fatal("Ошибка наполнения демо-данными", zap.Error(err))
		}
	}

	// 6. Запуск и корректная остановка
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	// подписчики шины дописывают архив и уведомления
	bus.Wait()
	logger.Info("Сервер остановлен")
}
