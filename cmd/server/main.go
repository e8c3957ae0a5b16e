package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"

	grpcadapter "github.com/simaogato/patrimony-backend/internal/adapter/grpc"
	"github.com/simaogato/patrimony-backend/internal/adapter/repository/memory"
	"github.com/simaogato/patrimony-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/patrimony-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/patrimony-backend/internal/config"
	"github.com/simaogato/patrimony-backend/internal/domain"
	"github.com/simaogato/patrimony-backend/internal/logger"
	"github.com/simaogato/patrimony-backend/internal/metrics"
	"github.com/simaogato/patrimony-backend/internal/usecase/lifecycle"
	"github.com/simaogato/patrimony-backend/internal/usecase/patrimony"
	"github.com/simaogato/patrimony-backend/internal/usecase/seeder"
)

const (
	dbConnectAttempts = 5
	dbConnectBackoff  = 2 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	// 2. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// 3. Asset Store
	ctx := context.Background()
	repo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to open asset store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("Failed to close asset store")
		}
	}()

	// 4. Services (Use Cases)
	assetService := lifecycle.NewAssetService(repo, m, log)
	patrimonyService := patrimony.NewPatrimonyService(repo, m, log)

	if cfg.SeedDemoOwner != "" {
		created, err := seeder.NewDemoSeeder(assetService, log).Seed(ctx, cfg.SeedDemoOwner)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo portfolio")
		}
		log.Info().Str("owner_id", cfg.SeedDemoOwner).Int("created", created).Msg("Demo seeding done")
	}

	// 5. gRPC server, logging outermost so rejected calls are recorded too
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log, m),
			grpcadapter.AuthInterceptor(cfg.APIToken, grpcadapter.PublicMethods...),
		),
	)
	grpcadapter.RegisterPatrimonyServiceServer(grpcServer, grpcadapter.NewServer(assetService, patrimonyService))
	healthServer := grpcadapter.RegisterHealth(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("Failed to listen")
	}

	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// 6. Metrics endpoint
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("Metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	// Graceful shutdown
	waitForShutdown(log, grpcServer, healthServer, metricsServer)
}

// openStore connects the configured Asset Store and returns its close function
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.AssetRepository, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("Using in-memory asset store, data is lost on exit")
		return memory.NewAssetRepository(), func() error { return nil }, nil

	case config.StoreDriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("Using SQLite asset store")
		return sqlite.NewAssetRepository(db), db.Close, nil

	case config.StoreDriverPostgres:
		// Postgres may still be starting when we run next to it
		var db *postgres.DB
		var err error
		for attempt := 1; attempt <= dbConnectAttempts; attempt++ {
			db, err = postgres.NewDB(cfg.DBConnStr)
			if err == nil {
				break
			}
			log.Warn().Err(err).Int("attempt", attempt).Msg("Database not ready")
			time.Sleep(dbConnectBackoff)
		}
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info().Msg("Using PostgreSQL asset store")
		return postgres.NewAssetRepository(db), db.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(log zerolog.Logger, grpcServer *grpclib.Server, healthServer *health.Server, metricsServer *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")
	healthServer.Shutdown()

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown failed")
		}
	}

	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")
}
