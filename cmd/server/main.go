package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/procurement/internal/config"
	"github.com/mamadbah2/procurement/internal/domain/models"
	"github.com/mamadbah2/procurement/internal/repository/mongodb"
	"github.com/mamadbah2/procurement/internal/repository/sheets"
	"github.com/mamadbah2/procurement/internal/scheduler"
	"github.com/mamadbah2/procurement/internal/server/handlers"
	"github.com/mamadbah2/procurement/internal/server/router"
	canvasssvc "github.com/mamadbah2/procurement/internal/service/canvass"
	reportingsvc "github.com/mamadbah2/procurement/internal/service/reporting"
	requestsvc "github.com/mamadbah2/procurement/internal/service/requests"
	"github.com/mamadbah2/procurement/pkg/clients/notify"
	"github.com/mamadbah2/procurement/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var (
		exporter canvasssvc.Exporter
		digest   scheduler.DigestReporter
	)
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reportingSvc := reportingsvc.NewService(sheetsRepo, baseLogger.Named("svc.reporting"))
		exporter = reportingSvc
		digest = reportingSvc
		baseLogger.Info("abstract export to sheets enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, abstract export disabled")
	}

	var notifier notify.Client
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewClient(cfg.Notify)
		baseLogger.Info("webhook notifications enabled")
	} else {
		baseLogger.Warn("notify webhook missing, notifications disabled")
	}

	requestSvc := requestsvc.NewService(mongoRepo, baseLogger.Named("svc.requests"))
	canvassSvc := canvasssvc.NewService(requestSvc, mongoRepo, exporter, notifier, sessionOptions(cfg.Canvass), baseLogger.Named("svc.canvass"))

	requestHandler := handlers.NewRequestHandler(requestSvc, baseLogger.Named("handlers.requests"))
	canvassHandler := handlers.NewCanvassHandler(canvassSvc, baseLogger.Named("handlers.canvass"))
	engine := router.New(requestHandler, canvassHandler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Scheduler, canvassSvc, digest, notifier, baseLogger.Named("scheduler"))
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
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
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

func sessionOptions(cfg config.CanvassConfig) canvasssvc.Options {
	opts := canvasssvc.Options{}
	for _, s := range cfg.BACMembers {
		opts.BACMembers = append(opts.BACMembers, models.Signatory{Name: s.Name, Role: s.Role})
	}
	for _, s := range cfg.AbstractSignatories {
		opts.AbstractSignatories = append(opts.AbstractSignatories, models.Signatory{Name: s.Name, Role: s.Role})
	}
	for _, d := range cfg.Divisions {
		opts.Divisions = append(opts.Divisions, canvasssvc.DivisionSpec{Division: d.Name, Canvasser: d.Canvasser})
	}
	return opts
}
