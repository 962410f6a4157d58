/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package tracker

import "github.com/voedger/odata/pkg/descriptors"

func New() *Tracker {
	return &Tracker{
		arena:    map[descriptors.Handle]*descriptors.Descriptor{},
		byObject: map[any]descriptors.Handle{},
		links:    map[linkKey]descriptors.Handle{},
		streams:  map[streamKey]descriptors.Handle{},
	}
}
