package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"my-discord-bot/internal/config"
	"my-discord-bot/internal/discord"
	"my-discord-bot/internal/feed"
	"my-discord-bot/internal/store"
	"my-discord-bot/internal/summary"
	"my-discord-bot/internal/tracker"
)

var (
	configPath = flag.String("config", "config.toml", "Path to configuration file")
	runTimeout = flag.Duration("timeout", 0, "Overall run deadline (0 disables it)")
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: my-discord-bot [flags] [<rss_links_file> [<discord_webhook_url>]]")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *runTimeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, *runTimeout)
		defer timeoutCancel()
	}

	if err := run(ctx, log, flag.Args()); err != nil {
		log.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, args []string) error {
	cfg, err := config.Load(*configPath, args)
	if err != nil {
		return err
	}

	feedURLs, err := feed.ReadLinks(cfg.Feeds.Path)
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close()

	var sender discord.Sender
	if cfg.Mode() == config.ModeDevelopment {
		log.Info("Development mode, entries are logged instead of posted")
		sender = discord.NewLogSender(log)
	} else {
		sender, err = discord.NewWebhookSender(cfg.Webhook.URL, cfg.Webhook.SendTimeout(), log)
		if err != nil {
			return err
		}
	}

	fetcher := feed.NewFetcher(cfg.Feeds.MaxPerFeed, cfg.Feeds.FetchTimeout(), log)

	policy := tracker.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.Webhook.MaxAttempts

	tr := tracker.New(st, fetcher, sender, log,
		tracker.WithRetryPolicy(policy),
		tracker.WithPause(cfg.Webhook.PostPause()),
		tracker.WithRetention(cfg.Storage.RetentionAge()),
	)

	runSummary, err := tr.Run(ctx, feedURLs)
	if runSummary != nil {
		logSummary(log, runSummary)
		if emitErr := summary.Emit(runSummary); emitErr != nil {
			log.Error("Failed to emit step summary", "error", emitErr)
		}
	}

	if cfg.Mode() == config.ModeDevelopment {
		dumpRecord(context.WithoutCancel(ctx), log, st)
	}

	return err
}

// dumpRecord logs the persisted sent-entries set after a development
// run so the state written by the run can be inspected.
func dumpRecord(ctx context.Context, log *slog.Logger, st store.Store) {
	record, err := st.Load(ctx)
	if err != nil {
		log.Error("Failed to dump sent record", "error", err)
		return
	}

	log.Info("Sent record", "entries", record.Len())
	for _, key := range record.Keys() {
		log.Info("Sent entry", "source", key.SourceURL, "id", key.EntryID)
	}
}

func logSummary(log *slog.Logger, s *tracker.Summary) {
	fetched, newEntries, delivered, failed := s.Totals()
	log.Info("Run finished",
		"feeds", len(s.Feeds),
		"fetched", fetched,
		"new", newEntries,
		"delivered", delivered,
		"failed", failed)

	for _, feedStats := range s.FailedFeeds() {
		log.Warn("Feed failed", "url", feedStats.SourceURL, "error", feedStats.FetchErr)
	}
}
