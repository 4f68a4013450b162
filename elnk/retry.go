package elnk

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultMaxRetries is the number of attempts made by CreateShortURLWithRetry
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the base of the linear backoff
	DefaultRetryDelay = time.Second
)

// RetryOptions controls CreateShortURLWithRetry. Zero values take the defaults.
type RetryOptions struct {
	// MaxRetries is the total number of attempts
	MaxRetries int
	// RetryDelay is multiplied by the attempt number before each retry
	RetryDelay time.Duration
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	return o
}

// CreateShortURLWithRetry calls CreateShortURL until it succeeds, fails with
// a client error (4xx), or MaxRetries attempts have been made. Failures with
// no status code or a 5xx status are retried after RetryDelay*attempt.
func (c *Client) CreateShortURLWithRetry(ctx context.Context, originalURL, customAlias string, opts RetryOptions) (*ShortLink, error) {
	opts = opts.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		short, err := c.CreateShortURL(ctx, originalURL, customAlias)
		if err == nil {
			return short, nil
		}
		lastErr = err

		if !IsRetryable(err) || ctx.Err() != nil || attempt == opts.MaxRetries {
			break
		}

		delay := opts.RetryDelay * time.Duration(attempt)
		c.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_retries", opts.MaxRetries).
			Dur("delay", delay).
			Msg("Short URL creation failed, retrying")
		c.metrics.retried()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = errors.New("failed to create short URL after multiple attempts")
	}
	return nil, lastErr
}
