package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/natah-genesis/portfolio-api/config"
	"github.com/natah-genesis/portfolio-api/internal/backup"
	"github.com/natah-genesis/portfolio-api/internal/bootstrap"
	"github.com/natah-genesis/portfolio-api/internal/logging"
	"github.com/natah-genesis/portfolio-api/internal/media/cloudinary"
	"github.com/natah-genesis/portfolio-api/internal/projects/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	bootstrap.SetGinMode(cfg.App.Environment)

	logger.Info("starting portfolio api",
		zap.String("env", cfg.App.Environment),
		zap.Bool("admin_key_set", cfg.Admin.APIKey != ""),
		zap.Bool("public_admin", cfg.Admin.Public),
		zap.Bool("cloudinary_cloud_name_set", cfg.Cloudinary.CloudName != ""),
		zap.Bool("cloudinary_api_key_set", cfg.Cloudinary.APIKey != ""),
		zap.Bool("cloudinary_api_secret_set", cfg.Cloudinary.APISecret != ""),
		zap.String("store", cfg.Store.Driver),
	)
	if cfg.Admin.Public {
		logger.Warn("PUBLIC_ADMIN=true: admin operations are open to everyone")
	}

	ctx := context.Background()

	store, err := bootstrap.OpenStore(ctx, cfg.Store)
	if err != nil {
		logger.Fatal("failed to open project store", zap.Error(err))
	}
	defer store.Close()

	var media service.MediaHost
	if host, err := cloudinary.NewHost(cfg.Cloudinary); err != nil {
		logger.Warn("remote media deletion disabled", zap.Error(err))
	} else {
		media = host
	}

	projects := service.NewProjectService(store, media, logger,
		service.WithDestroyTimeout(cfg.Cloudinary.DestroyTimeout),
	)

	var scheduler *backup.Scheduler
	if cfg.Backup.Schedule != "" {
		snap := backup.NewSnapshotter(store, cfg.Backup.Dir, cfg.Backup.Keep)
		scheduler, err = backup.NewScheduler(cfg.Backup.Schedule, snap, logger)
		if err != nil {
			logger.Fatal("failed to set up backups", zap.Error(err))
		}
		scheduler.Start()
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Projects: projects,
		Probe:    store.Probe,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("server shutting down")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
