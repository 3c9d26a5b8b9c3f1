package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/event-showcase-backend/api/routes"
	"github.com/ArowuTest/event-showcase-backend/internal/config"
	"github.com/ArowuTest/event-showcase-backend/internal/handlers"
	"github.com/ArowuTest/event-showcase-backend/internal/logger"
	"github.com/ArowuTest/event-showcase-backend/internal/repositories"
	"github.com/ArowuTest/event-showcase-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/event-showcase-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/event-showcase-backend/internal/services"
	"github.com/ArowuTest/event-showcase-backend/internal/storage"
	"github.com/ArowuTest/event-showcase-backend/pkg/mongodb"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	deps := routes.HandlerDependencies{}

	eventRepo, closeStore, err := openEventStore(ctx, cfg, zlog, &deps)
	if err != nil {
		zlog.Fatal("Failed to open event store", zap.Error(err))
	}
	defer closeStore()

	blobs, closeBlobs, err := openBlobStore(ctx, cfg, &deps)
	if err != nil {
		zlog.Fatal("Failed to open upload storage", zap.Error(err))
	}
	defer closeBlobs()

	authService, err := services.NewAuthService(cfg.Admin, cfg.JWT)
	if err != nil {
		zlog.Fatal("Failed to initialise admin gate", zap.Error(err))
	}

	ingestor := storage.NewIngestor(blobs, zlog)
	eventService := services.NewEventService(eventRepo, ingestor, zlog)

	deps.EventHandler = handlers.NewEventHandler(eventService, zlog, cfg.Storage.MaxUploadMB<<20)
	deps.AuthHandler = handlers.NewAuthHandler(authService, zlog)
	deps.Authorizer = authService

	router := routes.SetupRouter(cfg, deps, zlog)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zlog.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
		zap.String("storage", cfg.Storage.Driver))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("listen", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}

	zlog.Info("Server exiting")
}

func openEventStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger, deps *routes.HandlerDependencies) (repositories.EventRepository, func(), error) {
	if cfg.Store.Driver == "memory" {
		zlog.Warn("Using in-memory event store, data is lost on restart")
		return memory.NewEventRepository(), func() {}, nil
	}

	client, err := mongodb.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, time.Duration(cfg.MongoDB.Timeout)*time.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("MongoDB: %w", err)
	}
	zlog.Info("MongoDB connected", zap.String("database", cfg.MongoDB.Database))
	deps.HealthCheck = client.Ping

	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			zlog.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}
	return mongorepo.NewEventRepository(client.DB()), closeFn, nil
}

func openBlobStore(ctx context.Context, cfg *config.Config, deps *routes.HandlerDependencies) (storage.BlobStore, func(), error) {
	if cfg.Storage.Driver == "gcs" {
		store, err := storage.NewGCSStore(ctx, cfg.Storage.GCSBucket)
		if err != nil {
			return nil, nil, err
		}
		deps.UploadURL = store.PublicURL
		return store, func() { _ = store.Close() }, nil
	}

	store, err := storage.NewLocalStore(cfg.Storage.UploadDir)
	if err != nil {
		return nil, nil, err
	}
	deps.UploadDir = store.Dir()
	return store, func() {}, nil
}
