package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-system/internal/routes"
	"inventory-system/pkg/config"
	"inventory-system/pkg/eventbus"
	applogger "inventory-system/pkg/logger"
	"inventory-system/pkg/metrics"
	"inventory-system/pkg/utils"
	"inventory-system/seeders"
)

// Прогон демо-данных без сервера: наполняет движок в памяти и печатает отчеты.
func main() {
	log.Println("======================================================")
	log.Println("       🌱 ДЕМО-ДАННЫЕ (прогон в памяти)               ")
	log.Println("======================================================")

	showReplacement := flag.Bool("replacement", false, "Напечатать кандидатов на замену")
	showLicenses := flag.Bool("licenses", false, "Напечатать сводку по пулу лицензий")
	showAll := flag.Bool("all", false, "Напечатать все отчеты")
	flag.Parse()

	cfg := config.New()
	logger := applogger.NewLogger(cfg.Logger.Level, "")
	defer logger.Sync()

	bus := eventbus.New(logger)
	app := routes.InitRouter(echo.New(), routes.Dependencies{
		Config:  cfg,
		Bus:     bus,
		Metrics: metrics.New(),
		Logger:  logger,
	})

	ctx := utils.WithUserID(context.Background(), seeders.SystemActorID)
	if err := seeders.SeedDemo(ctx, app, logger); err != nil {
		logger.Fatal("❌ Ошибка наполнения", zap.Error(err))
	}
	bus.Wait()

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if *showAll || *showReplacement {
		report, err := app.Replacement.GetCandidates(ctx)
		if err != nil {
			logger.Fatal("❌ Не удалось подобрать кандидатов", zap.Error(err))
		}
		_ = encoder.Encode(report)
	}
	if *showAll || *showLicenses {
		summary, err := app.Licenses.GetPoolSummary(ctx)
		if err != nil {
			logger.Fatal("❌ Не удалось получить сводку по лицензиям", zap.Error(err))
		}
		_ = encoder.Encode(summary)
	}

	log.Println("✅ Прогон завершен.")
}
