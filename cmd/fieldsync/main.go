package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"fieldsync/internal/config"
	"fieldsync/internal/observability/logging"
	"fieldsync/internal/observability/metrics"
	"fieldsync/internal/observability/middleware"
	"fieldsync/internal/service"
	"fieldsync/internal/store"
	transport "fieldsync/internal/transport/http"
	"fieldsync/pkg/db"
)

func main() {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "fieldsync",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})

	slog.SetDefault(logger)
	metrics.MustRegister("fieldsync")

	logger.Info("starting service")

	cfg := config.Load()

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)
	if err := st.AutoMigrate(context.Background()); err != nil {
		logger.Error("auto migrate", "error", err)
		os.Exit(1)
	}

	syncSvc := service.NewSyncService(st, service.Config{
		ClockSkewMax:           cfg.ClockSkewMax,
		SpeedLimitKmh:          cfg.SpeedLimitKmh,
		JumpDistanceM:          cfg.JumpDistanceM,
		JumpWindow:             cfg.JumpWindow,
		DefaultGeofenceRadiusM: cfg.DefaultGeofenceRadiusM,
	})
	zoneReader := service.NewZoneReader(st)

	mux := transport.NewRouter(syncSvc, zoneReader, transport.RouterConfig{
		RateLimitRPM: cfg.RateLimitRPM,
	})

	handler := middleware.WithRequestAndTrace(middleware.WithMetrics(mux))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("fieldsync listening", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
