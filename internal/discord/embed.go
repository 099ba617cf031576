package discord

import (
	"hash/fnv"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"my-discord-bot/internal/feed"
)

const (
	maxTitleLen       = 256
	maxDescriptionLen = 300
	maxFooterLen      = 2048
	maxAuthorLen      = 256
)

// BuildEmbed renders one feed entry as a Discord embed. The feed title
// drives a deterministic accent color so each feed stays visually
// recognizable across runs.
func BuildEmbed(entry feed.Entry) *discordgo.MessageEmbed {
	title := entry.Title
	if title == "" {
		title = "Untitled"
	}

	embed := &discordgo.MessageEmbed{
		Title:       truncate(title, maxTitleLen),
		URL:         entry.Link,
		Description: truncate(entry.Summary, maxDescriptionLen),
		Color:       FeedColor(entry.FeedTitle),
		Footer: &discordgo.MessageEmbedFooter{
			Text: truncate(entry.FeedTitle, maxFooterLen),
		},
	}

	if !entry.PublishedAt.IsZero() {
		embed.Timestamp = entry.PublishedAt.UTC().Format(time.RFC3339)
	}

	if entry.Author != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name: truncate(entry.Author, maxAuthorLen),
		}
	}

	return embed
}

// FeedColor maps a feed title to a stable 24-bit color.
func FeedColor(feedTitle string) int {
	h := fnv.New32a()
	h.Write([]byte(feedTitle))
	return int(h.Sum32() & 0xFFFFFF)
}

// truncate limits s to limit code points. Cutting on a byte offset
// could split a multi-byte rune and ship invalid UTF-8 to the webhook.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit-3]) + "..."
}
