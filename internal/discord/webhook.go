package discord

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"my-discord-bot/internal/feed"
)

// Sender posts one entry to the configured chat endpoint.
type Sender interface {
	Send(ctx context.Context, entry feed.Entry) error
}

// WebhookSender executes a Discord webhook. The REST client is used
// without ever opening a gateway session; webhooks need no bot token.
type WebhookSender struct {
	session *discordgo.Session
	id      string
	token   string
	log     *slog.Logger
}

func NewWebhookSender(webhookURL string, timeout time.Duration, log *slog.Logger) (*WebhookSender, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Client.Timeout = timeout
	// Rate limiting and retries are handled by the caller's backoff
	// policy; surface 429s instead of sleeping inside the library.
	session.ShouldRetryOnRateLimit = false
	session.MaxRestRetries = 0

	return &WebhookSender{
		session: session,
		id:      id,
		token:   token,
		log:     log,
	}, nil
}

func (s *WebhookSender) Send(ctx context.Context, entry feed.Entry) error {
	params := &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{BuildEmbed(entry)},
	}

	_, err := s.session.WebhookExecute(s.id, s.token, false, params, discordgo.WithContext(ctx))
	if err != nil {
		return classify(err)
	}

	return nil
}

// ParseWebhookURL splits a Discord webhook URL into its id and token.
// The token part is a secret, callers must never log the raw URL.
func ParseWebhookURL(webhookURL string) (id, token string, err error) {
	parsed, err := url.Parse(webhookURL)
	if err != nil {
		// url.Error echoes the full URL, which would leak the token
		// into logs. Report the failure without it.
		return "", "", fmt.Errorf("webhook URL is not a valid URL")
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, part := range parts {
		if part == "webhooks" && len(parts) >= i+3 {
			return parts[i+1], parts[i+2], nil
		}
	}

	return "", "", fmt.Errorf("webhook URL has no id/token path")
}

// LogSender is the development-mode sender: it renders the embed and
// reports success without any network I/O.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, entry feed.Entry) error {
	embed := BuildEmbed(entry)
	s.log.Info("Would post embed",
		"title", embed.Title,
		"url", embed.URL,
		"color", embed.Color,
		"footer", embed.Footer.Text)
	return nil
}
