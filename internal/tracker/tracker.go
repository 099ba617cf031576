package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"my-discord-bot/internal/discord"
	"my-discord-bot/internal/feed"
	"my-discord-bot/internal/store"
)

// Fetcher is the collaborator contract the tracker consumes: per-feed
// results in feed-list order, entries oldest-to-newest, failures isolated
// per feed.
type Fetcher interface {
	FetchAll(ctx context.Context, sourceURLs []string) []feed.Result
}

// Tracker decides which fetched entries are new, delivers them in a
// deterministic order and persists exactly the set of successful
// deliveries.
type Tracker struct {
	store   store.Store
	fetcher Fetcher
	sender  discord.Sender
	policy  RetryPolicy

	pause     time.Duration // wait between consecutive posts
	retention time.Duration // 0 disables pruning
	log       *slog.Logger
}

type Option func(*Tracker)

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(t *Tracker) { t.policy = policy }
}

func WithPause(pause time.Duration) Option {
	return func(t *Tracker) { t.pause = pause }
}

func WithRetention(age time.Duration) Option {
	return func(t *Tracker) { t.retention = age }
}

func New(st store.Store, fetcher Fetcher, sender discord.Sender, log *slog.Logger, opts ...Option) *Tracker {
	tracker := &Tracker{
		store:   st,
		fetcher: fetcher,
		sender:  sender,
		policy:  DefaultRetryPolicy(),
		log:     log,
	}

	for _, opt := range opts {
		opt(tracker)
	}

	return tracker
}

// FilterNew returns the entries whose (source URL, ID) is absent from
// record, preserving input order.
func FilterNew(entries []feed.Entry, record *store.Record) []feed.Entry {
	fresh := make([]feed.Entry, 0, len(entries))
	for _, entry := range entries {
		if !record.Has(store.Key{SourceURL: entry.SourceURL, EntryID: entry.ID}) {
			fresh = append(fresh, entry)
		}
	}
	return fresh
}

// Run executes one full cycle: load the record, fetch every feed, filter
// out previously sent entries, deliver the rest in order and commit the
// record once. A context deadline mid-delivery stops new posts but still
// commits what already succeeded; a failed entry stays out of the record
// and is retried on the next scheduled run.
func (t *Tracker) Run(ctx context.Context, feedURLs []string) (*Summary, error) {
	record, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sent record: %w", err)
	}

	t.log.Info("Sent record loaded", "entries", record.Len(), "feeds", len(feedURLs))

	results := t.fetcher.FetchAll(ctx, feedURLs)

	summary := &Summary{Feeds: make([]FeedStats, len(results))}

	type pendingEntry struct {
		entry feed.Entry
		stats *FeedStats
	}
	var queue []pendingEntry

	for i, result := range results {
		stats := &summary.Feeds[i]
		stats.SourceURL = result.SourceURL
		stats.FeedTitle = result.FeedTitle

		if result.Err != nil {
			stats.FetchErr = result.Err.Error()
			continue
		}

		stats.Available = result.Available
		stats.Selected = len(result.Entries)

		fresh := FilterNew(result.Entries, record)
		stats.New = len(fresh)

		for _, entry := range result.Entries {
			if record.Has(store.Key{SourceURL: entry.SourceURL, EntryID: entry.ID}) {
				stats.Duplicates = append(stats.Duplicates, entry.Link)
			}
		}
		stats.Duplicate = len(stats.Duplicates)

		for _, entry := range fresh {
			queue = append(queue, pendingEntry{entry: entry, stats: stats})
		}
	}

	deadlineHit := false
	for _, pending := range queue {
		if ctx.Err() != nil {
			if !deadlineHit {
				deadlineHit = true
				t.log.Warn("Run deadline reached, committing partial progress")
			}
			pending.stats.Failed++
			continue
		}

		entry := pending.entry
		if err := t.deliver(ctx, entry); err != nil {
			pending.stats.Failed++
			t.log.Error("Entry delivery failed",
				"feed", entry.FeedTitle,
				"link", entry.Link,
				"error", err)
			continue
		}

		key := store.Key{SourceURL: entry.SourceURL, EntryID: entry.ID}
		record.Add(key, entry.Link, time.Now().UTC())
		pending.stats.Posted++

		if t.pause > 0 {
			wait(ctx, t.pause)
		}
	}

	// Committing must survive a spent deadline: losing confirmed
	// deliveries would re-post them next run.
	commitCtx := context.WithoutCancel(ctx)

	if t.retention > 0 {
		pruned, err := t.store.DeleteOlderThan(commitCtx, t.retention)
		if err != nil {
			t.log.Error("Retention prune failed", "error", err)
		} else if pruned > 0 {
			t.log.Info("Pruned old sent entries", "count", pruned, "age", t.retention)
		}
	}

	if err := t.store.Commit(commitCtx, record); err != nil {
		return summary, fmt.Errorf("commit sent record: %w", err)
	}

	return summary, nil
}

func (t *Tracker) deliver(ctx context.Context, entry feed.Entry) error {
	for attempt := 1; ; attempt++ {
		err := t.sender.Send(ctx, entry)
		if err == nil {
			return nil
		}

		delay, retry := t.policy.Next(attempt, err)
		if !retry {
			return err
		}

		t.log.Warn("Delivery attempt failed, retrying",
			"feed", entry.FeedTitle,
			"attempt", attempt,
			"delay", delay,
			"error", err)

		if waitErr := wait(ctx, delay); waitErr != nil {
			return err
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
