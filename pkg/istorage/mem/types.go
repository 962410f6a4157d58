/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package mem

import (
	"sync"

	"github.com/voedger/odata/pkg/istorage"
)

type recordSet map[int64]*istorage.Record

// committed sets are never changed in place: Update works on a copy and swaps it in on success
type store struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	sets    map[string]recordSet
	seq     map[string]int64
	closed  bool
}

type tx struct {
	sets     map[string]recordSet
	seq      map[string]int64
	writable bool
	// sets already copied by this transaction
	copied map[string]bool
}
