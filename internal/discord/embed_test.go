package discord

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"my-discord-bot/internal/feed"
)

func TestBuildEmbed(t *testing.T) {
	publishedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := feed.Entry{
		ID:          "one",
		SourceURL:   "https://example.com/feed.xml",
		FeedTitle:   "Example Feed",
		Title:       "A Post",
		Link:        "https://example.com/post/1",
		Author:      "ada",
		Summary:     "Plain summary",
		PublishedAt: publishedAt,
	}

	embed := BuildEmbed(entry)

	require.Equal(t, "A Post", embed.Title)
	require.Equal(t, entry.Link, embed.URL)
	require.Equal(t, "Plain summary", embed.Description)
	require.Equal(t, FeedColor("Example Feed"), embed.Color)
	require.Equal(t, "Example Feed", embed.Footer.Text)
	require.Equal(t, "2024-03-01T12:00:00Z", embed.Timestamp)
	require.Equal(t, "ada", embed.Author.Name)
}

func TestBuildEmbedDefaultsAndLimits(t *testing.T) {
	entry := feed.Entry{
		FeedTitle: "Feed",
		Link:      "https://example.com/post/2",
		Summary:   strings.Repeat("s", 1000),
	}

	embed := BuildEmbed(entry)

	require.Equal(t, "Untitled", embed.Title)
	require.Len(t, embed.Description, maxDescriptionLen)
	require.True(t, strings.HasSuffix(embed.Description, "..."))
	require.Empty(t, embed.Timestamp)
	require.Nil(t, embed.Author)

	long := feed.Entry{
		FeedTitle: "Feed",
		Title:     strings.Repeat("t", 400),
		Link:      "https://example.com/post/3",
	}
	require.Len(t, BuildEmbed(long).Title, maxTitleLen)
}

func TestBuildEmbedKeepsMultiByteSummariesValid(t *testing.T) {
	// 200 code points but 400 bytes: short enough to stay untouched.
	short := feed.Entry{
		FeedTitle: "Feed",
		Link:      "https://example.com/post/4",
		Summary:   strings.Repeat("é", 200),
	}
	require.Equal(t, short.Summary, BuildEmbed(short).Description)

	long := feed.Entry{
		FeedTitle: "Feed",
		Link:      "https://example.com/post/5",
		Summary:   strings.Repeat("é", 400),
	}
	description := BuildEmbed(long).Description
	require.True(t, utf8.ValidString(description))
	require.Equal(t, maxDescriptionLen, utf8.RuneCountInString(description))
	require.True(t, strings.HasSuffix(description, "..."))
}

func TestFeedColorIsStableAnd24Bit(t *testing.T) {
	first := FeedColor("Example Feed")
	second := FeedColor("Example Feed")
	other := FeedColor("Other Feed")

	require.Equal(t, first, second)
	require.NotEqual(t, first, other)
	require.LessOrEqual(t, first, 0xFFFFFF)
	require.GreaterOrEqual(t, first, 0)
}
