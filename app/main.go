package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"newsbrief/app/cfg"
	"newsbrief/app/database"
	"newsbrief/app/dedup"
	"newsbrief/app/digest"
	"newsbrief/app/feed"
	"newsbrief/app/notifier"
	"newsbrief/app/sources"
	"newsbrief/app/summary"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting newsbrief run", "version", appCfg.Version, "timezone", appCfg.Timezone)

	src, err := sources.Load(appCfg.SourcesFile)
	if err != nil {
		slog.Error("Failed to load sources", "error", err)
		os.Exit(1)
	}
	slog.Info("Sources loaded", "feeds", len(src.Feeds), "keywords", len(src.Keywords), "brands", len(src.Brands))

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open seen-items database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	store := database.NewSeenRepository(db)

	httpClient := &http.Client{}
	runner := digest.NewRunner(src,
		feed.NewParser(httpClient, appCfg.UserAgent, appCfg.FetchTimeout, appCfg.Location),
		feed.NewFilterer(src.Keywords),
		feed.NewExtractor(httpClient, appCfg.UserAgent, appCfg.FetchTimeout),
		dedup.New(store, appCfg.FuzzyThreshold),
		summary.New(),
		notifier.New(appCfg.SlackWebhook, appCfg.NotifyTimeout, src.Brands),
		store,
		digest.Options{
			Location:          appCfg.Location,
			RecencyWindow:     time.Duration(appCfg.RecencyDays) * 24 * time.Hour,
			MaxItems:          appCfg.MaxItems,
			FingerprintPrefix: appCfg.FingerprintPrefix,
		})

	if err := runner.Run(context.Background()); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}

	if count, err := store.Count(); err == nil {
		slog.Info("Seen store size", "records", count)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
