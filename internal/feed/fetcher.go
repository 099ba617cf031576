package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/mmcdole/gofeed"
)

const maxConcurrentFetches = 5

// FetchError marks a per-feed failure (network, parse, malformed feed).
// It never aborts processing of other feeds.
type FetchError struct {
	SourceURL string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.SourceURL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result holds the outcome of fetching one feed. Available is the entry
// count before the per-feed cap is applied.
type Result struct {
	SourceURL string
	FeedTitle string
	Available int
	Entries   []Entry
	Err       error
}

type Fetcher struct {
	parser     *gofeed.Parser
	maxPerFeed int
	log        *slog.Logger
}

func NewFetcher(maxPerFeed int, timeout time.Duration, log *slog.Logger) *Fetcher {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = timeout

	parser := gofeed.NewParser()
	parser.Client = retryClient.StandardClient()

	return &Fetcher{
		parser:     parser,
		maxPerFeed: maxPerFeed,
		log:        log,
	}
}

// Fetch retrieves and parses one feed. Entries come back ordered
// oldest-to-newest, capped to the newest maxPerFeed.
func (f *Fetcher) Fetch(ctx context.Context, sourceURL string) (Result, error) {
	result := Result{SourceURL: sourceURL}

	parsed, err := f.parser.ParseURLWithContext(sourceURL, ctx)
	if err != nil {
		result.Err = &FetchError{SourceURL: sourceURL, Err: err}
		return result, result.Err
	}

	result.FeedTitle = parsed.Title
	if result.FeedTitle == "" {
		result.FeedTitle = sourceURL
	}

	result.Available = len(parsed.Items)

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		if item.Link == "" {
			f.log.Warn("Skipping entry with no link", "feed", result.FeedTitle)
			continue
		}
		entries = append(entries, newEntry(item, sourceURL, result.FeedTitle))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PublishedAt.Before(entries[j].PublishedAt)
	})

	// Keep the newest entries; they are still delivered oldest-first.
	if len(entries) > f.maxPerFeed {
		entries = entries[len(entries)-f.maxPerFeed:]
	}

	result.Entries = entries
	return result, nil
}

// FetchAll fetches every feed concurrently with a bounded number of
// in-flight requests. Results preserve the input order so delivery stays
// deterministic across runs.
func (f *Fetcher) FetchAll(ctx context.Context, sourceURLs []string) []Result {
	results := make([]Result, len(sourceURLs))

	var wg sync.WaitGroup
	semCh := make(chan struct{}, maxConcurrentFetches)

	for i, sourceURL := range sourceURLs {
		wg.Add(1)
		semCh <- struct{}{}

		go func(i int, sourceURL string) {
			defer wg.Done()
			defer func() { <-semCh }()

			result, err := f.Fetch(ctx, sourceURL)
			if err != nil {
				f.log.Warn("Feed fetch failed", "url", sourceURL, "error", err)
			}
			results[i] = result
		}(i, sourceURL)
	}

	wg.Wait()
	return results
}
