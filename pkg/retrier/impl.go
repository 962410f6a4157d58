/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package retrier

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// New creates a Retrier with provided Config, validating parameters
func New(cfg Config) (*Retrier, error) {
	if cfg.InitialDelay <= 0 || cfg.MaxDelay < cfg.InitialDelay ||
		cfg.Multiplier < 1 || cfg.JitterFactor < 0 || cfg.JitterFactor > 1 || cfg.MaxAttempts < 0 {
		return nil, ErrInvalidConfig
	}
	return &Retrier{
		cfg:          cfg,
		currentDelay: cfg.InitialDelay,
	}, nil
}

// NextDelay returns the current delay with jitter applied and grows the delay for the next call
func (r *Retrier) NextDelay() time.Duration {
	base := r.currentDelay
	next := time.Duration(float64(base) * r.cfg.Multiplier)
	if next > r.cfg.MaxDelay {
		next = r.cfg.MaxDelay
	}
	r.currentDelay = next

	// offset in [-JitterFactor*base, +JitterFactor*base]
	offset := (rand.Float64()*2 - 1) * r.cfg.JitterFactor * float64(base)
	delay := base + time.Duration(offset)
	if delay < 0 {
		delay = 0
	}
	return delay
}

// Run retries operation until success, a non-retriable error, exhausted attempts or context cancellation
func (r *Retrier) Run(ctx context.Context, operation func() error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := operation()
		if err == nil {
			return nil
		}
		switch r.classify(err) {
		case Accept:
			return nil
		case Abort:
			return err
		}
		if r.cfg.MaxAttempts > 0 && attempt >= r.cfg.MaxAttempts {
			return err
		}

		delay := r.NextDelay()
		var ra IRetryAfter
		if errors.As(err, &ra) && ra.RetryAfter() > delay {
			delay = ra.RetryAfter()
		}
		if r.cfg.OnError != nil {
			r.cfg.OnError(attempt, delay, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (r *Retrier) classify(err error) Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Abort
	}
	for _, acceptable := range r.cfg.Acceptable {
		if errors.Is(err, acceptable) {
			return Accept
		}
	}
	if len(r.cfg.RetryOnlyOn) == 0 {
		return DoRetry
	}
	for _, retriable := range r.cfg.RetryOnlyOn {
		if errors.Is(err, retriable) {
			return DoRetry
		}
	}
	return Abort
}
