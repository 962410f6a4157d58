/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package tracker

import (
	"sync/atomic"

	"github.com/voedger/odata/pkg/descriptors"
)

// Tracker owns every descriptor of one client session. Single writer: mutations are allowed only between
// save rounds, see BeginSave
type Tracker struct {
	arena    map[descriptors.Handle]*descriptors.Descriptor
	byObject map[any]descriptors.Handle
	links    map[linkKey]descriptors.Handle
	streams  map[streamKey]descriptors.Handle

	lastHandle      descriptors.Handle
	lastAttachOrder uint64
	lastChangeOrder uint64

	saving atomic.Bool
}

// target is NullHandle for single-valued links
type linkKey struct {
	source descriptors.Handle
	nav    string
	target descriptors.Handle
}

type streamKey struct {
	entity descriptors.Handle
	name   string
}

type orderNode struct {
	d        *descriptors.Descriptor
	inDegree int
	next     []*orderNode
}

// min-heap by attach order
type readyQueue []*orderNode
