package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/upt-maps/campusmap/internal/adapters/broadcast"
	httpadapter "github.com/upt-maps/campusmap/internal/adapters/http"
	"github.com/upt-maps/campusmap/internal/adapters/localdisk"
	natsadapter "github.com/upt-maps/campusmap/internal/adapters/nats"
	"github.com/upt-maps/campusmap/internal/adapters/valkey"
	"github.com/upt-maps/campusmap/internal/core/domain"
	"github.com/upt-maps/campusmap/internal/core/ports"
	"github.com/upt-maps/campusmap/internal/core/usecases"
	"github.com/upt-maps/campusmap/internal/pkg/config"
	"github.com/upt-maps/campusmap/internal/pkg/logging"
	"github.com/upt-maps/campusmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("campusmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Path storage backend
	var storage ports.KVStorage
	switch cfg.Storage.Backend {
	case "file":
		fileStore, err := localdisk.New(cfg.Storage.File)
		if err != nil {
			log.Fatalf("file storage: %v", err)
		}
		storage = fileStore
	default:
		valkeyStore, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, paths will not survive restarts", "error", err)
		} else {
			defer valkeyStore.Close()
			storage = valkeyStore
		}
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	// Raw NATS connection for the WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Core: store, sessions, render bridge over the broadcast surface
	store := usecases.NewPathStore(ctx, storage)
	sessions := usecases.NewSessionManager(store)
	bridge := usecases.NewRenderBridge(broadcast.NewSurface(publisher), store, sessions)

	// Remote listeners get the record set too, not just overlays
	store.Subscribe(func() {
		_ = publisher.PublishPathsChanged(context.Background(), store.List())
	})
	sessions.Subscribe(func(sessionID string, draft domain.PointList) {
		_ = publisher.PublishDraftChanged(context.Background(), sessionID, draft)
	})

	deps := &httpadapter.Dependencies{
		Store:     store,
		Sessions:  sessions,
		Bridge:    bridge,
		Clipboard: broadcast.NewClipboard(publisher),
		Storage:   storage,
		NATS:      natsConn,
		FloorsDir: cfg.Floors.Dir,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "CampusMap API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	httpadapter.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
