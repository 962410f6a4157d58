/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package bbolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/voedger/odata/pkg/istorage"
)

func (s *store) View(ctx context.Context, fn func(istorage.ITx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return convertErr(s.db.View(func(btx *bolt.Tx) error {
		return fn(&tx{btx: btx})
	}))
}

func (s *store) Update(ctx context.Context, fn func(istorage.ITx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return convertErr(s.db.Update(func(btx *bolt.Tx) error {
		return fn(&tx{btx: btx})
	}))
}

func (s *store) Close() error {
	return s.db.Close()
}

func (t *tx) Get(set string, key int64) (*istorage.Record, bool, error) {
	bucket := t.setBucket(set)
	if bucket == nil {
		return nil, false, nil
	}
	v := bucket.Get(encodeKey(key))
	if v == nil {
		return nil, false, nil
	}
	r, err := decodeRecord(v)
	return r, err == nil, err
}

func (t *tx) Put(r *istorage.Record) error {
	if !t.btx.Writable() {
		return istorage.ErrReadOnlyTx
	}
	if len(r.Set) == 0 {
		return istorage.ErrEmptySet
	}
	bucket, err := t.dataBucket().CreateBucketIfNotExists([]byte(r.Set))
	if err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", r.Identity(), err)
	}
	return bucket.Put(encodeKey(r.Key), data)
}

func (t *tx) Delete(set string, key int64) (bool, error) {
	if !t.btx.Writable() {
		return false, istorage.ErrReadOnlyTx
	}
	bucket := t.setBucket(set)
	if bucket == nil {
		return false, nil
	}
	k := encodeKey(key)
	if bucket.Get(k) == nil {
		return false, nil
	}
	return true, bucket.Delete(k)
}

func (t *tx) List(set string, cb func(*istorage.Record) error) error {
	bucket := t.setBucket(set)
	if bucket == nil {
		return nil
	}
	c := bucket.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		r, err := decodeRecord(v)
		if err != nil {
			return err
		}
		if err := cb(r); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) NextKey(set string) (int64, error) {
	if !t.btx.Writable() {
		return 0, istorage.ErrReadOnlyTx
	}
	if len(set) == 0 {
		return 0, istorage.ErrEmptySet
	}
	bucket, err := t.dataBucket().CreateBucketIfNotExists([]byte(set))
	if err != nil {
		return 0, err
	}
	for {
		seq, err := bucket.NextSequence()
		if err != nil {
			return 0, err
		}
		key := int64(seq)
		if bucket.Get(encodeKey(key)) == nil {
			return key, nil
		}
	}
}

func (t *tx) dataBucket() *bolt.Bucket {
	return t.btx.Bucket([]byte(dataBucketName))
}

func (t *tx) setBucket(set string) *bolt.Bucket {
	return t.dataBucket().Bucket([]byte(set))
}

// sign bit is flipped to keep negative keys before positive ones in byte order
func encodeKey(key int64) []byte {
	res := make([]byte, keySize)
	binary.BigEndian.PutUint64(res, uint64(key)^signBit)
	return res
}

func decodeRecord(data []byte) (*istorage.Record, error) {
	r := &istorage.Record{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return r, nil
}

func convertErr(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return fmt.Errorf("%w: %w", istorage.ErrStoreClosed, err)
	}
	return err
}
