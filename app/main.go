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

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-digest/app/api"
	"github.com/lysyi3m/news-digest/app/cfg"
	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/dedup"
	"github.com/lysyi3m/news-digest/app/feed"
	"github.com/lysyi3m/news-digest/app/summarizer"
	"github.com/lysyi3m/news-digest/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fatal("Failed to load configuration", err)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting news digest", "version", appCfg.Version)

	sources, err := feed.LoadSources(appCfg.FeedsFile)
	if err != nil {
		fatal("Failed to load feeds", err)
	}

	enabled, err := feed.EnabledSources(sources)
	if err != nil {
		fatal("Failed to load feeds", err)
	}
	slog.Info("Feeds loaded", "file", appCfg.FeedsFile, "total", len(sources), "enabled", len(enabled))

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		fatal("Failed to open database", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		fatal("Failed to run migrations", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "version", version, "dirty", dirty)

	runRepo := database.NewRunRepository(db)
	logPreviousRun(runRepo)

	var backend dedup.Backend
	switch appCfg.SeenStore {
	case cfg.SeenStoreSQLite:
		backend = database.NewSeenRepository(db)
		slog.Info("Seen urls stored in database", "path", appCfg.DBPath)
	default:
		backend = dedup.NewJSONFile(appCfg.SeenFile)
		slog.Info("Seen urls stored in file", "path", appCfg.SeenFile)
	}

	httpClient := &http.Client{}

	fetcher, err := feed.NewFetcher(httpClient, appCfg.UserAgent, appCfg.AcceptLanguage, appCfg.FetchTimeout)
	if err != nil {
		fatal("Failed to create article fetcher", err)
	}

	summaryClient := summarizer.NewClient(summarizer.Config{
		Endpoint: appCfg.OpenAIURL,
		Model:    appCfg.OpenAIModel,
		APIKey:   appCfg.OpenAIAPIKey,
		RPM:      appCfg.SummarizerRPM,
		Timeout:  appCfg.SummarizerTimeout,
	})

	pipeline := tasks.NewPipeline(
		enabled,
		feed.NewReader(httpClient, feed.NewParser(), appCfg.UserAgent),
		feed.NewFilterer(),
		fetcher,
		feed.NewContentExtractor(appCfg.MaxChars, appCfg.ReadabilityFallback),
		summaryClient,
		dedup.NewStore(backend),
		feed.NewGenerator(appCfg.DashboardURL, appCfg.Version),
		runRepo,
		appCfg.ArtifactPath,
	)

	if appCfg.FeedPath != "" {
		pipeline.WithFeed(feed.NewRSSGenerator(appCfg.PublicURL, appCfg.Version), appCfg.FeedPath)
	}

	if appCfg.RunOnce {
		runOnce(pipeline)
		return
	}

	scheduler := tasks.NewScheduler(pipeline, appCfg.SchedulerInterval)
	scheduler.Start()
	defer scheduler.Stop()

	if !appCfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	server := api.NewServer(api.NewHandler(appCfg.ArtifactPath, appCfg.FeedPath, scheduler))

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server started", "port", appCfg.Port, "digest", fmt.Sprintf("http://localhost:%s/", appCfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func runOnce(pipeline *tasks.Pipeline) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.Run(ctx)
	if err != nil {
		slog.Error("Pipeline run failed", "error", err)
		stop()
		os.Exit(1)
	}

	slog.Info("Digest ready", "path", report.ArtifactPath, "entries", report.Processed)
}

func logPreviousRun(runRepo *database.RunRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	run, err := runRepo.LatestRun(ctx)
	if err != nil {
		slog.Warn("Failed to read run history", "error", err)
		return
	}
	if run == nil {
		slog.Info("No previous runs recorded")
		return
	}

	failed := 0
	for _, item := range run.Items {
		if item.Status == tasks.StatusFailed {
			failed++
		}
	}

	slog.Info("Previous run",
		"run", run.ID,
		"started_at", run.StartedAt.In(time.Local).Format(time.RFC3339),
		"duration", run.FinishedAt.Sub(run.StartedAt),
		"processed", run.Processed,
		"failed_items", failed)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
