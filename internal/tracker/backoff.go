package tracker

import (
	"errors"
	"time"

	"my-discord-bot/internal/discord"
)

// RetryPolicy decides, from the attempt count and the error kind alone,
// whether a failed delivery should be retried and after how long. It
// performs no I/O and holds no state.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Next reports the delay before retry number attempt+1. attempt is the
// number of failed attempts so far, starting at 1.
func (p RetryPolicy) Next(attempt int, err error) (time.Duration, bool) {
	if attempt >= p.MaxAttempts {
		return 0, false
	}

	var deliveryErr *discord.DeliveryError
	if errors.As(err, &deliveryErr) {
		switch deliveryErr.Kind {
		case discord.Rejected:
			return 0, false
		case discord.RateLimited:
			delay := deliveryErr.RetryAfter
			if delay <= 0 {
				delay = p.BaseDelay
			}
			return min(delay, p.MaxDelay), true
		}
	}

	delay := p.BaseDelay << (attempt - 1)
	return min(delay, p.MaxDelay), true
}
