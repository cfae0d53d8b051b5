package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/driverperks/catalog/app/api"
	"github.com/driverperks/catalog/app/cache"
	"github.com/driverperks/catalog/app/catalog"
	"github.com/driverperks/catalog/app/cfg"
	"github.com/driverperks/catalog/app/database"
	"github.com/driverperks/catalog/app/rules"
	"github.com/driverperks/catalog/app/search"
	"github.com/driverperks/catalog/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting catalog server", "version", appCfg.Version)

	// Database connection and migrations
	db, err := database.NewConnection(
		appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	slog.Info("Connected to database")

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	slog.Info("Database migrations applied", "version", version, "dirty", dirty)

	// Cache store: redis when configured, in-memory otherwise
	var store cache.Store
	if appCfg.RedisAddr != "" {
		redisStore, err := cache.NewRedis(appCfg.RedisAddr)
		if err != nil {
			log.Fatal("Failed to connect to redis:", err)
		}
		defer redisStore.Close()
		store = redisStore
		slog.Info("Connected to redis", "addr", appCfg.RedisAddr)
	} else {
		store = cache.NewMemory()
		slog.Warn("REDIS_ADDR not set, using in-memory cache store")
	}

	// Repositories
	ruleRepo := database.NewRuleRepo(db)
	curatedRepo := database.NewCuratedItemRepo(db)
	policyRepo := database.NewPointsPolicyRepo(db)
	cacheRepo := database.NewCacheRepo(db)

	// Category alias table
	aliases, err := rules.LoadAliases(appCfg.CategoriesFile)
	if err != nil {
		log.Fatal("Failed to load category aliases:", err)
	}
	slog.Info("Loaded category aliases", "count", len(aliases))

	// Upstream search client behind the pagination strategist
	client := search.NewClient(store, search.ClientOptions{
		BaseURL:      appCfg.MarketplaceBaseUrl,
		AuthURL:      appCfg.MarketplaceAuthUrl,
		ClientID:     appCfg.MarketplaceClientID,
		ClientSecret: appCfg.MarketplaceClientSecret,
		UserAgent:    appCfg.UserAgent,
	})
	strategist := search.NewStrategist(client)

	// Page assembly pipeline
	composer := catalog.NewComposer(curatedRepo, store, client)
	resultCache := catalog.NewResultCache(cacheRepo, time.Duration(appCfg.CacheTTL)*time.Second)
	orchestrator := catalog.NewOrchestrator(ruleRepo, ruleRepo, policyRepo, aliases,
		strategist, composer, resultCache)

	// Background scheduler
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(cacheRepo, curatedRepo, client)
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	apiHandler := api.NewHandler(orchestrator, ruleRepo, ruleRepo, curatedRepo, cacheRepo, client, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
