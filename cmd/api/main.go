package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/authdash-backend/api/routes"
	"github.com/angelmondragon/authdash-backend/internal/auditlog"
	"github.com/angelmondragon/authdash-backend/internal/credentials"
	"github.com/angelmondragon/authdash-backend/internal/devices"
	"github.com/angelmondragon/authdash-backend/internal/relay"
	"github.com/angelmondragon/authdash-backend/internal/users"
	"github.com/angelmondragon/authdash-backend/internal/webhooks"
	"github.com/angelmondragon/authdash-backend/pkg/config"
	"github.com/angelmondragon/authdash-backend/pkg/db"
	"github.com/angelmondragon/authdash-backend/pkg/instance"
	"github.com/angelmondragon/authdash-backend/pkg/logger"
	"github.com/angelmondragon/authdash-backend/pkg/metrics"
	"github.com/angelmondragon/authdash-backend/pkg/migrate"
	"github.com/angelmondragon/authdash-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(runCtx, cfg.DB, logg)
	if err != nil {
		logg.Error(runCtx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.Bootstrap(runCtx, cfg, logg, dbClient); err != nil {
		logg.Error(runCtx, "failed to prepare schema", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(runCtx, cfg.Redis, logg)
		if err != nil {
			logg.Error(runCtx, "failed to bootstrap redis", err)
			_ = dbClient.Close()
			os.Exit(1)
		}
	} else {
		logg.Warn(runCtx, "redis not configured, rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var broadcaster *relay.Broadcaster
	if cfg.Relay.Mode == config.RelayModeEmbedded {
		broadcaster = relay.New(logg, metrics.NewRelayMetrics(registry))
	}

	emitter, closeEvents, err := buildEmitter(runCtx, cfg, logg, dbClient, broadcaster)
	if err != nil {
		logg.Error(runCtx, "failed to wire event sinks", err)
		_ = multierr.Append(dbClient.Close(), redisClient.Close())
		os.Exit(1)
	}

	deps, err := buildServices(cfg, logg, dbClient, emitter)
	if err != nil {
		logg.Error(runCtx, "failed to build services", err)
		_ = multierr.Combine(closeEvents(), dbClient.Close(), redisClient.Close())
		os.Exit(1)
	}
	deps.DB = dbClient
	deps.Redis = redisClient
	deps.Relay = broadcaster
	deps.Metrics = metrics.NewHTTPMetrics(registry)
	deps.Gatherer = registry

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"relay_mode": cfg.Relay.Mode,
		"instance":   instance.ID(),
	})
	logg.Info(ctx, "starting api server")

	// No WriteTimeout: /sse streams stay open for the life of the client.
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		// Open /sse streams keep Shutdown waiting until the hard Close.
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Warn(ctx, "graceful shutdown incomplete: "+err.Error())
			_ = server.Close()
		}
		cancel()
	}

	if err := multierr.Combine(closeEvents(), redisClient.Close(), dbClient.Close()); err != nil {
		logg.Error(ctx, "error releasing resources", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, emitter webhooks.Emitter) (routes.Deps, error) {
	conn := dbClient.DB()
	recorder := auditlog.NewRecorder(auditlog.NewRepository(conn), logg)

	codec, err := credentials.NewCodec(cfg.Password)
	if err != nil {
		return routes.Deps{}, err
	}
	if codec.Name() == config.PasswordStoragePlaintext {
		logg.Warn(context.Background(), "passwords are stored as plaintext")
	}

	userSvc, err := users.NewService(users.NewRepository(conn), codec, recorder, emitter)
	if err != nil {
		return routes.Deps{}, err
	}
	logSvc, err := auditlog.NewService(auditlog.NewRepository(conn), recorder, emitter)
	if err != nil {
		return routes.Deps{}, err
	}
	strategy, err := devices.NewStrategy(cfg.Devices.Strategy, devices.NewRepository(conn))
	if err != nil {
		return routes.Deps{}, err
	}
	deviceSvc, err := devices.NewService(strategy, recorder, emitter)
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{Users: userSvc, Logs: logSvc, Devices: deviceSvc}, nil
}
