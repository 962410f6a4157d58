/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package retrier

import "time"

type Action int

// Config holds backoff parameters and error-handling policies
type Config struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// between 0 and 1
	JitterFactor float64

	// 0 -> retry until ctx is done
	MaxAttempts int

	// OnError is called before the sleep which follows a retried error
	OnError func(attempt int, delay time.Duration, err error)

	// retry on any error from RetryOnlyOn, abort on any other error
	// empty -> any error (except context cancellation) is retried
	RetryOnlyOn []error

	// errors treated as success
	Acceptable []error
}

// IRetryAfter is implemented by errors which tell the minimal delay before the next attempt, e.g. from Retry-After header
type IRetryAfter interface {
	RetryAfter() time.Duration
}

// Retrier executes operations with backoff and jitter
type Retrier struct {
	cfg          Config
	currentDelay time.Duration
}
