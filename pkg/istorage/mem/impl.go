/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package mem

import (
	"context"
	"sort"

	"golang.org/x/exp/maps"

	"github.com/voedger/odata/pkg/istorage"
)

func (s *store) View(ctx context.Context, fn func(istorage.ITx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return istorage.ErrStoreClosed
	}
	t := &tx{sets: s.sets, seq: s.seq}
	s.mu.RUnlock()
	return fn(t)
}

func (s *store) Update(ctx context.Context, fn func(istorage.ITx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return istorage.ErrStoreClosed
	}
	t := &tx{
		sets:     maps.Clone(s.sets),
		seq:      maps.Clone(s.seq),
		writable: true,
		copied:   map[string]bool{},
	}
	s.mu.RUnlock()

	if err := fn(t); err != nil {
		return err
	}

	s.mu.Lock()
	s.sets = t.sets
	s.seq = t.seq
	s.mu.Unlock()
	return nil
}

func (s *store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (t *tx) Get(set string, key int64) (*istorage.Record, bool, error) {
	r, ok := t.sets[set][key]
	if !ok {
		return nil, false, nil
	}
	return r.Clone(), true, nil
}

func (t *tx) Put(r *istorage.Record) error {
	if !t.writable {
		return istorage.ErrReadOnlyTx
	}
	if len(r.Set) == 0 {
		return istorage.ErrEmptySet
	}
	t.writableSet(r.Set)[r.Key] = r.Clone()
	return nil
}

func (t *tx) Delete(set string, key int64) (bool, error) {
	if !t.writable {
		return false, istorage.ErrReadOnlyTx
	}
	if _, ok := t.sets[set][key]; !ok {
		return false, nil
	}
	delete(t.writableSet(set), key)
	return true, nil
}

func (t *tx) List(set string, cb func(*istorage.Record) error) error {
	rs := t.sets[set]
	keys := maps.Keys(rs)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, key := range keys {
		if err := cb(rs[key].Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) NextKey(set string) (int64, error) {
	if !t.writable {
		return 0, istorage.ErrReadOnlyTx
	}
	for {
		t.seq[set]++
		key := t.seq[set]
		if _, used := t.sets[set][key]; !used {
			return key, nil
		}
	}
}

func (t *tx) writableSet(set string) recordSet {
	if !t.copied[set] {
		t.sets[set] = maps.Clone(t.sets[set])
		if t.sets[set] == nil {
			t.sets[set] = recordSet{}
		}
		t.copied[set] = true
	}
	return t.sets[set]
}
