package discord

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

type ErrorKind int

const (
	// Transient covers network failures and server errors; worth a
	// bounded number of retries.
	Transient ErrorKind = iota
	// RateLimited is HTTP 429; retry after the server-provided delay.
	RateLimited
	// Rejected is a permanent client error (malformed payload, dead
	// webhook). Never retried, logged and skipped.
	Rejected
)

func (k ErrorKind) String() string {
	switch k {
	case RateLimited:
		return "rate_limited"
	case Rejected:
		return "rejected"
	default:
		return "transient"
	}
}

type DeliveryError struct {
	Kind       ErrorKind
	RetryAfter time.Duration // set for RateLimited when the server says so
	Err        error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed (%s): %v", e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func classify(err error) *DeliveryError {
	var rateLimitErr *discordgo.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &DeliveryError{
			Kind:       RateLimited,
			RetryAfter: rateLimitErr.RetryAfter,
			Err:        err,
		}
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		status := restErr.Response.StatusCode
		switch {
		case status == http.StatusTooManyRequests:
			return &DeliveryError{Kind: RateLimited, Err: err}
		case status >= 400 && status < 500:
			return &DeliveryError{Kind: Rejected, Err: err}
		}
	}

	return &DeliveryError{Kind: Transient, Err: err}
}
