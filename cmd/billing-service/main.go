package main

import (
	"fmt"
	"os"

	"github.com/gigworks/billing-service/internal/config"
	"github.com/gigworks/billing-service/internal/db"
	"github.com/gigworks/billing-service/internal/excel"
	httphandler "github.com/gigworks/billing-service/internal/http"
	"github.com/gigworks/billing-service/internal/http/middleware"
	"github.com/gigworks/billing-service/internal/logger"
	"github.com/gigworks/billing-service/internal/pdf"
	"github.com/gigworks/billing-service/internal/repository"
	"github.com/gigworks/billing-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	ledgerRepo := repository.NewLedgerRepository(database)
	reportRepo := repository.NewReportRepository(database)

	ledgerService := service.NewLedgerService(ledgerRepo, cfg)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator(), pdf.NewGenerator(), cfg)

	handler := httphandler.NewHandler(ledgerService, reportService, log)
	profileMiddleware := middleware.Profile(ledgerService)
	router := httphandler.NewRouter(handler, profileMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting billing service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
