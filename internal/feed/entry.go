package feed

import (
	"crypto/sha256"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

// Entry is one item from an RSS/Atom feed, immutable once produced.
type Entry struct {
	// ID is the feed-native GUID when present, otherwise a hash of
	// link+title so that entries stay identifiable across fetches.
	ID          string
	SourceURL   string
	FeedTitle   string
	Title       string
	Link        string
	Author      string
	Summary     string
	PublishedAt time.Time // zero when the feed gives none
}

func newEntry(item *gofeed.Item, sourceURL, feedTitle string) Entry {
	entry := Entry{
		ID:        item.GUID,
		SourceURL: sourceURL,
		FeedTitle: feedTitle,
		Title:     item.Title,
		Link:      item.Link,
		Summary:   stripHTML(item.Description),
	}

	if entry.ID == "" {
		entry.ID = fallbackID(item.Link, item.Title)
	}

	if item.PublishedParsed != nil {
		entry.PublishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		entry.PublishedAt = item.UpdatedParsed.UTC()
	}

	if len(item.Authors) > 0 && item.Authors[0] != nil {
		entry.Author = item.Authors[0].Name
	}

	return entry
}

func fallbackID(link, title string) string {
	sum := sha256.Sum256([]byte(link + "\n" + title))
	return fmt.Sprintf("%x", sum)
}

var htmlStripper = bluemonday.StrictPolicy()

func stripHTML(s string) string {
	s = htmlStripper.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}
