package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"my-discord-bot/internal/discord"
)

func TestRetryPolicyNext(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Second,
	}

	transient := &discord.DeliveryError{Kind: discord.Transient, Err: errors.New("boom")}
	rejected := &discord.DeliveryError{Kind: discord.Rejected, Err: errors.New("bad payload")}
	rateLimited := &discord.DeliveryError{
		Kind:       discord.RateLimited,
		RetryAfter: 2 * time.Second,
		Err:        errors.New("429"),
	}
	rateLimitedHuge := &discord.DeliveryError{
		Kind:       discord.RateLimited,
		RetryAfter: time.Minute,
		Err:        errors.New("429"),
	}

	tests := []struct {
		name      string
		attempt   int
		err       error
		wantDelay time.Duration
		wantRetry bool
	}{
		{"transient first attempt", 1, transient, time.Second, true},
		{"transient backs off exponentially", 2, transient, 2 * time.Second, true},
		{"transient attempts exhausted", 3, transient, 0, false},
		{"rejected is never retried", 1, rejected, 0, false},
		{"rate limited honors retry-after", 1, rateLimited, 2 * time.Second, true},
		{"rate limited capped at max delay", 1, rateLimitedHuge, 5 * time.Second, true},
		{"unclassified error treated as transient", 1, errors.New("plain"), time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay, retry := policy.Next(tt.attempt, tt.err)
			require.Equal(t, tt.wantRetry, retry)
			require.Equal(t, tt.wantDelay, delay)
		})
	}
}

func TestRetryPolicyDelayNeverExceedsMax(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 10, BaseDelay: time.Second, MaxDelay: 4 * time.Second}

	for attempt := 1; attempt < 10; attempt++ {
		delay, retry := policy.Next(attempt, errors.New("x"))
		require.True(t, retry)
		require.LessOrEqual(t, delay, 4*time.Second)
	}
}

func TestRetryPolicyRateLimitedWithoutHint(t *testing.T) {
	policy := DefaultRetryPolicy()
	err := &discord.DeliveryError{Kind: discord.RateLimited, Err: errors.New("429")}

	delay, retry := policy.Next(1, err)
	require.True(t, retry)
	require.Equal(t, policy.BaseDelay, delay)
}
