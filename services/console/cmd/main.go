package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"jobconsole/common/cache"
	"jobconsole/common/cache/memory"
	"jobconsole/common/cache/redis"
	"jobconsole/common/telemetry"
	"jobconsole/services/console/internal/api"
	"jobconsole/services/console/internal/config"
	"jobconsole/services/console/internal/messaging"
	"jobconsole/services/console/internal/web"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sessionPrefix = "console:session:"

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	shutdown, err := telemetry.InitTracer(context.Background(), cfg.ServiceName, cfg.ServiceVersion, cfg.OTelCollectorURL)
	if err != nil {
		return err
	}
	if cfg.OTelCollectorURL != "" {
		logger.Info("tracing enabled", zap.String("collector", cfg.OTelCollectorURL))
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return nil
}

// newSessionCache uses Redis when REDIS_ADDR is set and process memory otherwise.
func newSessionCache(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	opts := cache.DefaultOptions()
	opts.DefaultTTL = cfg.SessionTTL
	opts.Prefix = sessionPrefix

	var c cache.Cache
	if cfg.RedisAddr != "" {
		opts.RedisURL = cfg.RedisAddr
		opts.RedisPassword = cfg.RedisPassword
		opts.RedisDB = cfg.RedisDB
		rc := redis.New(opts)
		if err := rc.Ping(context.Background()); err != nil {
			rc.Close()
			return nil, err
		}
		logger.Info("session cache: redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		c = rc
	} else {
		logger.Info("session cache: memory")
		c = memory.New(opts)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})
	return c, nil
}

func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (messaging.Publisher, error) {
	publisher, err := messaging.NewPublisher(logger, cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			publisher.Close()
			return nil
		},
	})
	return publisher, nil
}

func newBackendClient(cfg *config.Config, logger *zap.Logger, publisher messaging.Publisher) api.BackendClient {
	return messaging.NewRecordingClient(api.NewBackendClient(logger, cfg), publisher, logger)
}

func newSessionStore(c cache.Cache, cfg *config.Config, logger *zap.Logger) *web.SessionStore {
	return web.NewSessionStore(c, cfg.SessionTTL, logger)
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newSessionCache,
			newPublisher,
			newBackendClient,
			newSessionStore,
			web.NewHandler,
			web.NewRouter,
			web.NewServer,
		),
		fx.Invoke(
			newTracing,
			func(cfg *config.Config, logger *zap.Logger) {
				logger.Info("starting job console",
					zap.String("addr", cfg.HTTPAddr),
					zap.String("api_base_url", cfg.APIBaseURL),
					zap.Duration("api_timeout", cfg.APITimeout))
			},
			func(*http.Server) {},
		),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
