package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/api"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/archive"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/config"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/db"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/events"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/logging"
	"github.com/expotoworld/expotoworld/backend/inventory-service/internal/seed"
	"github.com/gin-gonic/gin"
)

func main() {
	defer logging.Sync()

	cfg := config.Load()
	logging.LogKV("info", "inventory service starting", map[string]interface{}{
		"git_sha":    os.Getenv("GIT_SHA"),
		"build_time": os.Getenv("BUILD_TIME"),
	})

	ctx := context.Background()

	// Database is non-fatal; allow the process to start for /live
	var store api.Store
	database, err := openDatabase(ctx, cfg)
	if err != nil {
		logging.LogKV("warn", "database initialization failed at startup", map[string]interface{}{"error": err.Error()})
	} else {
		defer database.Close()
		store = database
	}

	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		logging.LogKV("warn", "aws config unavailable, events and snapshots disabled", map[string]interface{}{"error": err.Error()})
		awsCfg = aws.Config{}
		cfg.EventsTopicARN, cfg.ArchiveBucket = "", ""
	}
	publisher := events.NewPublisher(awsCfg, cfg.EventsTopicARN)
	snapshots := archive.NewS3Archive(awsCfg, cfg.ArchiveBucket, cfg.ArchivePrefix)
	logging.LogKV("info", "side channels", map[string]interface{}{
		"events_enabled":    publisher.Enabled(),
		"snapshots_enabled": snapshots.Enabled(),
	})

	handler := api.NewHandler(store, publisher, snapshots)

	// Set Gin mode based on environment
	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(handler, api.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		WriteRPS:       cfg.AdminWriteRPS,
		WriteBurst:     cfg.AdminWriteBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.LogKV("info", "starting server", map[string]interface{}{"port": cfg.Port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.LogKV("error", "failed to start server", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.LogKV("info", "shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogKV("error", "server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}

func openDatabase(ctx context.Context, cfg config.Config) (*db.Database, error) {
	resolveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dsn, err := cfg.ResolveDatabaseURL(resolveCtx)
	if err != nil {
		return nil, err
	}
	database, err := db.NewDatabase(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := database.Migrate(migrateCtx); err != nil {
			database.Close()
			return nil, err
		}
		logging.LogKV("info", "schema applied", nil)
	}
	if cfg.WarehouseSeedFile != "" {
		catalog, err := seed.LoadCatalog(cfg.WarehouseSeedFile)
		if err != nil {
			logging.LogKV("warn", "warehouse seed not loaded", map[string]interface{}{"path": cfg.WarehouseSeedFile, "error": err.Error()})
		} else if _, err := seed.Apply(ctx, database, catalog); err != nil {
			logging.LogKV("warn", "warehouse seed failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return database, nil
}
