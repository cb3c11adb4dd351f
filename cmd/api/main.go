package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/octobees/customer360/api/internal/auth"
	"github.com/octobees/customer360/api/internal/cache"
	"github.com/octobees/customer360/api/internal/config"
	"github.com/octobees/customer360/api/internal/connection"
	"github.com/octobees/customer360/api/internal/database"
	"github.com/octobees/customer360/api/internal/handler"
	"github.com/octobees/customer360/api/internal/lusha"
	middlewarepkg "github.com/octobees/customer360/api/internal/middleware"
	"github.com/octobees/customer360/api/internal/repository"
	"github.com/octobees/customer360/api/internal/router"
	"github.com/octobees/customer360/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var enrichOpts []service.EnrichmentOption

	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("failed to prepare schema: %v", err)
		}
		enrichOpts = append(enrichOpts, service.WithRecords(repository.NewPGXRecordsRepository(pool)))
		log.Printf("record storage enabled")
	} else {
		log.Printf("DATABASE_URL not set, record storage disabled")
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		enrichOpts = append(enrichOpts, service.WithUsageStore(cache.NewUsageCache(rdb, cfg.UsageCacheTTL)))
		log.Printf("usage cache enabled ttl=%s", cfg.UsageCacheTTL)
	}

	httpClient := lusha.NewHTTPClient(context.Background(), cfg.Lusha.IDTokenAudience, cfg.Lusha.Timeout)

	manager := connection.NewManager(func(apiKey string) *lusha.Client {
		return lusha.NewClient(apiKey, lusha.WithBaseURL(cfg.Lusha.BaseURL), lusha.WithHTTPClient(httpClient))
	}, cfg.Lusha.APIKey)
	enrichmentService := service.NewEnrichmentService(manager, service.NewContactCleaner(cfg.PhoneRegion), enrichOpts...)

	var (
		keyMu   sync.Mutex
		lastKey string
	)
	manager.Subscribe(func(s connection.State) {
		if s.Error != "" {
			log.Printf("lusha connection error=%q", s.Error)
		}
		if s.Loading {
			return
		}
		keyMu.Lock()
		previous := lastKey
		lastKey = s.APIKey
		keyMu.Unlock()
		if previous != "" && previous != s.APIKey {
			enrichmentService.ForgetUsage(context.Background(), previous)
		}
	})

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	manager.Init(initCtx)
	initCancel()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	if cfg.AdminPasswordHash == "" {
		log.Printf("ADMIN_PASSWORD_HASH not set, operator login disabled")
	}

	authService := service.NewAuthService(cfg.AdminUsername, cfg.AdminPasswordHash, jwtManager)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:       handler.NewAuthHandler(authService, int64(jwtManager.TTL()/time.Second)),
		Connection: handler.NewConnectionHandler(manager),
		Enrichment: handler.NewEnrichmentHandler(enrichmentService),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("listening on :%s", cfg.Port)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
