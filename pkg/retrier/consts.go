/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package retrier

const (
	DefaultJitterFactor = 0.5
	DefaultMultiplier   = 2
)

const (
	DoRetry Action = iota

	// consider the current error as an acceptable result, return nil
	Accept

	// further retries are senseless, return the current error
	Abort
)
