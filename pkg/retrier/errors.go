/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package retrier

import "errors"

// ErrInvalidConfig is returned when Config has invalid values
var ErrInvalidConfig = errors.New("invalid retry config")
