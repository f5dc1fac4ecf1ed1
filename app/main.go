package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/riskwire/riskwire/app/api"
	"github.com/riskwire/riskwire/app/catalog"
	"github.com/riskwire/riskwire/app/cfg"
	"github.com/riskwire/riskwire/app/geo"
	"github.com/riskwire/riskwire/app/ingest"
	"github.com/riskwire/riskwire/app/llm"
	"github.com/riskwire/riskwire/app/location"
	"github.com/riskwire/riskwire/app/metrics"
	"github.com/riskwire/riskwire/app/resilience"
	"github.com/riskwire/riskwire/app/store"
	"github.com/riskwire/riskwire/app/throttle"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully.
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting riskwire", "version", appCfg.Version)

	// Persistence. Running without it silently discarding alerts is the one
	// failure mode operators never notice, so it needs an explicit opt-in.
	var alertStore store.AlertStore
	var repo *store.AlertRepository
	if appCfg.DBPath == "" {
		if !appCfg.AllowDryRun {
			slog.Error("Persistence is disabled and --allow-dry-run is not set")
			os.Exit(1)
		}
		slog.Warn("Running in dry-run mode, alerts will be discarded")
		alertStore = store.Discard{}
	} else {
		db, err := store.NewDB(appCfg.DBPath)
		if err != nil {
			slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		version, dirty, err := store.RunMigrations(db)
		if err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

		repo = store.NewAlertRepository(db)
		alertStore = repo
	}

	// Feed catalog.
	feeds, err := catalog.Load(appCfg.CatalogDir, os.Getenv("RISKWIRE_EXTRA_FEEDS"))
	if err != nil {
		slog.Error("Failed to load feed catalog", "dir", appCfg.CatalogDir, "error", err)
		os.Exit(1)
	}
	if len(feeds) == 0 {
		slog.Error("Feed catalog is empty")
		os.Exit(1)
	}
	slog.Info("Feed catalog loaded", "feeds", len(feeds))

	collector := metrics.NewCollector()

	breakerCfg := resilience.DefaultBreakerConfig()
	breakerCfg.FailureThreshold = appCfg.BreakerFailureThreshold
	breakerCfg.FailureRateThreshold = appCfg.BreakerFailureRate
	breakerCfg.VolumeThreshold = appCfg.BreakerVolumeThreshold
	breakerCfg.RecoveryTimeout = time.Duration(appCfg.BreakerRecoveryTimeout) * time.Second

	serviceDefaults := resilience.ServiceConfig{
		TokensPerMinute: appCfg.LLMTokensPerMinute,
		Breaker:         breakerCfg,
		Retry:           resilience.DefaultRetryConfig(),
	}
	registry := resilience.NewRegistry(serviceDefaults, resilience.ParseServiceOverrides(appCfg.ServiceOverrides, serviceDefaults))

	// Geocoding with optional redis cache.
	var geocoder location.Geocoder
	if appCfg.GeocodeEnabled {
		var cache *redis.Client
		if appCfg.RedisAddr != "" {
			cache = redis.NewClient(&redis.Options{Addr: appCfg.RedisAddr})
			defer cache.Close()
		}
		geocoder = geo.NewClient(appCfg.GeocodeEndpoint, appCfg.UserAgent, cache)
	}

	engine := location.NewEngine(location.Config{
		GeocodeEnabled: appCfg.GeocodeEnabled,
	}, geocoder)

	// The LLM tier only runs with a key configured; without one the engine
	// stops at the deterministic tiers.
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	var batcher *location.Batcher
	if appCfg.LLMKey != "" {
		provider := llm.NewOpenAIClient(appCfg.LLMEndpoint, appCfg.LLMModel, appCfg.LLMKey)
		guarded := llm.NewGuarded("llm", provider, registry, collector, llm.Options{
			Temperature: 0,
			MaxTokens:   1024,
			Timeout:     45 * time.Second,
		})

		batchCfg := location.DefaultBatchConfig()
		batchCfg.SizeThreshold = appCfg.BatchSize
		batchCfg.FlushInterval = time.Duration(appCfg.BatchFlushInterval) * time.Second

		batcher = location.NewBatcher(batchCfg, guarded, engine.Enrich)
		engine.SetBatcher(batcher)
		go batcher.Run(runCtx)
		slog.Info("LLM location tier enabled", "model", appCfg.LLMModel, "batch_size", batchCfg.SizeThreshold)
	} else {
		slog.Info("LLM location tier disabled (LLM_KEY not set)")
	}

	opts := ingest.DefaultOptions()
	opts.UserAgent = appCfg.UserAgent
	opts.FetchTimeout = time.Duration(appCfg.FetchTimeout) * time.Second
	opts.FreshnessWindow = time.Duration(appCfg.FreshnessDays) * 24 * time.Hour
	opts.MinTextLen = appCfg.MinTextLen
	opts.MaxConcurrent = appCfg.FetchConcurrency
	opts.MaxEntriesPerRun = appCfg.MaxEntriesPerRun
	opts.FulltextEnabled = appCfg.FulltextEnabled
	opts.FulltextTimeout = time.Duration(appCfg.FulltextTimeout) * time.Second
	opts.FulltextMaxBytes = appCfg.FulltextMaxBytes

	hostThrottle := throttle.NewHostThrottle(appCfg.ThrottleEnabled, appCfg.ThrottleRate, appCfg.ThrottleBurst)
	processor := ingest.NewProcessor(opts, hostThrottle, engine, batcher, alertStore, collector)

	// Ops HTTP server.
	apiHandler := api.NewHandler(repo, collector, registry, appCfg.Version)
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

	// Ingestion loop: one run at startup, then one per interval.
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)

		interval := time.Duration(appCfg.SchedulerInterval) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if _, err := processor.Run(runCtx, feeds); err != nil {
				slog.Error("Ingestion run failed", "error", err)
			}
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	// Stop the ingestion loop and the batcher. Cancelling the run context
	// triggers the batcher's final drain.
	cancelRun()
	select {
	case <-loopDone:
	case <-time.After(30 * time.Second):
		slog.Warn("Ingestion loop did not stop in time")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
