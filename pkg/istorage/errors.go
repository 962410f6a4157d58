/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package istorage

import "errors"

var (
	ErrReadOnlyTx        = errors.New("read-only transaction")
	ErrStoreClosed       = errors.New("store is closed")
	ErrMalformedIdentity = errors.New("malformed entity identity")
	ErrEmptySet          = errors.New("entity set name is empty")
)
