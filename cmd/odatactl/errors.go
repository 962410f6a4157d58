/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

import "errors"

var (
	ErrNoServiceRoot     = errors.New("service root is not set, use --service or the service key of the script")
	ErrUnknownOperation  = errors.New("unknown operation")
	ErrUnknownReference  = errors.New("unknown reference")
	ErrMalformedHeader   = errors.New("header must be Name: value")
	ErrUnknownPreference = errors.New("unknown response preference")
)
