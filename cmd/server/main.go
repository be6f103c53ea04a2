package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/taskflow-api/internal/cache"
	"github.com/iliyamo/taskflow-api/internal/config"
	"github.com/iliyamo/taskflow-api/internal/database"
	"github.com/iliyamo/taskflow-api/internal/queue"
	"github.com/iliyamo/taskflow-api/internal/server"
	"github.com/iliyamo/taskflow-api/internal/service"
	"github.com/iliyamo/taskflow-api/internal/telemetry"
	"github.com/iliyamo/taskflow-api/internal/utils"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	}

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var c cache.Cache = cache.Noop{}
	if cfg.Cache.Enabled {
		rdb, err := config.NewRedisClient(cfg.Redis)
		if err != nil {
			// keep the adapter: it reports misses until Redis is reachable
			log.Printf("redis unreachable at %s: %v", cfg.Redis.Address(), err)
		}
		defer rdb.Close()
		c = cache.NewRedis(rdb)
	}

	var events service.EventPublisher = queue.Noop{}
	if cfg.AMQP.Enabled {
		pub := queue.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		defer pub.Close()
		events = pub
	}

	e := server.New(server.Deps{
		DB:       db,
		Cache:    c,
		Events:   events,
		Tokens:   utils.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, nil),
		Hasher:   utils.NewPasswordHasher(cfg.Auth.BcryptCost),
		CacheTTL: cfg.Cache.TTL,
		LogLevel: cfg.LogLevel,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s, db=%s, cache=%t, amqp=%t)", addr, cfg.Env, cfg.DB.Driver, cfg.Cache.Enabled, cfg.AMQP.Enabled)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("tracing shutdown: %v", err)
	}
}
