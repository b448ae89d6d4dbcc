package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/apigest/internal/config"
	"github.com/mamadbah2/apigest/internal/export/sheets"
	"github.com/mamadbah2/apigest/internal/repository"
	"github.com/mamadbah2/apigest/internal/repository/bolt"
	"github.com/mamadbah2/apigest/internal/repository/memory"
	"github.com/mamadbah2/apigest/internal/repository/mongodb"
	"github.com/mamadbah2/apigest/internal/scheduler"
	"github.com/mamadbah2/apigest/internal/server/handlers"
	"github.com/mamadbah2/apigest/internal/server/router"
	backupsvc "github.com/mamadbah2/apigest/internal/service/backup"
	reportingsvc "github.com/mamadbah2/apigest/internal/service/reporting"
	salessvc "github.com/mamadbah2/apigest/internal/service/sales"
	"github.com/mamadbah2/apigest/internal/service/traceability"
	whatsappclient "github.com/mamadbah2/apigest/pkg/clients/whatsapp"
	"github.com/mamadbah2/apigest/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "optional .env file to load")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := openStore(context.Background(), cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to open record store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close record store", zap.Error(err))
		}
	}()

	matcher := traceability.NewMatcher(cfg.Matching.PriceTolerance)
	allocator := traceability.NewCostAllocator()

	packagingSvc := traceability.NewPackagingService(store, allocator, baseLogger.Named("svc.packaging"))
	reportingSvc := reportingsvc.NewService(store, matcher, allocator, baseLogger.Named("svc.reporting"))
	salesSvc := salessvc.NewService(store, baseLogger.Named("svc.sales"))
	backupSvc := backupsvc.NewService(store, baseLogger.Named("svc.backup"))

	handler := handlers.New(handlers.Services{
		Store:     store,
		Packaging: packagingSvc,
		Sales:     salesSvc,
		Reporting: reportingSvc,
		Backup:    backupSvc,
	}, baseLogger.Named("handlers"))
	engine := router.New(handler, store, packagingSvc, baseLogger.Named("router"))

	var opts []scheduler.Option
	if cfg.WhatsApp.Enabled() {
		opts = append(opts, scheduler.WithMessenger(whatsappclient.NewClient(cfg.WhatsApp), cfg.WhatsApp.RecipientID))
		baseLogger.Info("whatsapp summary delivery enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, weekly summary will only be logged")
	}
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		opts = append(opts, scheduler.WithPublisher(sheets.NewPublisher(sheetsRepo, baseLogger.Named("export.sheets"))))
		baseLogger.Info("google sheets publication enabled")
	}

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"), opts...)
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverBolt:
		return bolt.Open(cfg.Store.BoltPath, cfg.Store.QuotaBytes, log.Named("repo.bolt"))
	case config.DriverMongo:
		return mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, log.Named("repo.mongodb"))
	case config.DriverMemory:
		log.Warn("memory store selected, records are lost on exit")
		if cfg.Store.QuotaBytes > 0 {
			log.Warn("STORE_QUOTA_BYTES is ignored by the memory store")
		}
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
