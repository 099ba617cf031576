package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func rssDocument(feedTitle string, items ...string) string {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>` + feedTitle + `</title>`
	for _, item := range items {
		doc += item
	}
	return doc + `</channel></rss>`
}

func rssItem(title, link, guid, pubDate, description string) string {
	item := "<item>"
	if title != "" {
		item += "<title>" + title + "</title>"
	}
	if link != "" {
		item += "<link>" + link + "</link>"
	}
	if guid != "" {
		item += "<guid>" + guid + "</guid>"
	}
	if pubDate != "" {
		item += "<pubDate>" + pubDate + "</pubDate>"
	}
	if description != "" {
		item += "<description><![CDATA[" + description + "]]></description>"
	}
	return item + "</item>"
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func testFetcher(maxPerFeed int) *Fetcher {
	return NewFetcher(maxPerFeed, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchOrdersOldestToNewest(t *testing.T) {
	server := serveFeed(t, rssDocument("Example Feed",
		rssItem("Newest", "https://example.com/3", "3", "Wed, 04 Jan 2006 15:04:05 GMT", ""),
		rssItem("Oldest", "https://example.com/1", "1", "Mon, 02 Jan 2006 15:04:05 GMT", ""),
		rssItem("Middle", "https://example.com/2", "2", "Tue, 03 Jan 2006 15:04:05 GMT", ""),
	))

	result, err := testFetcher(10).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "Example Feed", result.FeedTitle)
	require.Equal(t, 3, result.Available)

	var ids []string
	for _, entry := range result.Entries {
		ids = append(ids, entry.ID)
	}
	require.Equal(t, []string{"1", "2", "3"}, ids)
	require.Equal(t, server.URL, result.Entries[0].SourceURL)
}

func TestFetchCapsToNewestEntries(t *testing.T) {
	server := serveFeed(t, rssDocument("Example Feed",
		rssItem("A", "https://example.com/1", "1", "Mon, 02 Jan 2006 15:04:05 GMT", ""),
		rssItem("B", "https://example.com/2", "2", "Tue, 03 Jan 2006 15:04:05 GMT", ""),
		rssItem("C", "https://example.com/3", "3", "Wed, 04 Jan 2006 15:04:05 GMT", ""),
	))

	result, err := testFetcher(2).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, 3, result.Available)
	require.Len(t, result.Entries, 2)

	// Newest two survive the cap, still oldest-first.
	require.Equal(t, "2", result.Entries[0].ID)
	require.Equal(t, "3", result.Entries[1].ID)
}

func TestFetchFallsBackToHashedID(t *testing.T) {
	server := serveFeed(t, rssDocument("Example Feed",
		rssItem("No GUID", "https://example.com/x", "", "Mon, 02 Jan 2006 15:04:05 GMT", ""),
	))

	result, err := testFetcher(10).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)

	entry := result.Entries[0]
	require.NotEmpty(t, entry.ID)
	require.Equal(t, fallbackID("https://example.com/x", "No GUID"), entry.ID)
}

func TestFetchSkipsEntriesWithoutLink(t *testing.T) {
	server := serveFeed(t, rssDocument("Example Feed",
		rssItem("Linkless", "", "nolink", "", ""),
		rssItem("Linked", "https://example.com/ok", "ok", "", ""),
	))

	result, err := testFetcher(10).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	require.Equal(t, "ok", result.Entries[0].ID)
}

func TestFetchStripsHTMLFromSummary(t *testing.T) {
	server := serveFeed(t, rssDocument("Example Feed",
		rssItem("Rich", "https://example.com/rich", "rich", "",
			"<p>Hello <b>bold</b> &amp; plain</p>"),
	))

	result, err := testFetcher(10).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "Hello bold & plain", result.Entries[0].Summary)
}

func TestFetchReportsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	result, err := testFetcher(10).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	require.Equal(t, err, result.Err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, server.URL, fetchErr.SourceURL)
}

func TestFetchAllPreservesFeedOrder(t *testing.T) {
	first := serveFeed(t, rssDocument("First Feed",
		rssItem("A", "https://example.com/a", "a", "", "")))
	second := serveFeed(t, rssDocument("Second Feed",
		rssItem("B", "https://example.com/b", "b", "", "")))
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	urls := []string{first.URL, broken.URL, second.URL}
	results := testFetcher(10).FetchAll(context.Background(), urls)

	require.Len(t, results, 3)
	require.Equal(t, "First Feed", results[0].FeedTitle)
	require.Error(t, results[1].Err)
	require.Equal(t, "Second Feed", results[2].FeedTitle)
}
