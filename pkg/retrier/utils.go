/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package retrier

import (
	"context"
	"time"
)

func NewConfig(initialDelay, maxDelay time.Duration) Config {
	return Config{
		InitialDelay: initialDelay,
		MaxDelay:     maxDelay,
		Multiplier:   DefaultMultiplier,
		JitterFactor: DefaultJitterFactor,
	}
}

// Retry executes op with retry logic and returns the result of the last attempt
func Retry[T any](ctx context.Context, cfg Config, op func() (T, error)) (T, error) {
	r, err := New(cfg)
	var result T
	if err != nil {
		return result, err
	}
	err = r.Run(ctx, func() error {
		var opErr error
		result, opErr = op()
		return opErr
	})
	return result, err
}

func RetryErr(ctx context.Context, cfg Config, op func() error) error {
	_, err := Retry(ctx, cfg, func() (any, error) {
		return nil, op()
	})
	return err
}
