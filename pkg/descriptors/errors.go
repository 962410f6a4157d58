/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package descriptors

import "errors"

var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrWrongDescriptorKind    = errors.New("wrong descriptor kind")
)
