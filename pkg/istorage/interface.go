/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package istorage

import "context"

// IStore is a transactional record store, implemented by a certain driver
// @ConcurrentAccess
type IStore interface {
	// read-only transaction
	View(ctx context.Context, fn func(tx ITx) error) error

	// fn returns error -> nothing is written
	// Update calls are serialized
	Update(ctx context.Context, fn func(tx ITx) error) error

	Close() error
}

// ITx is valid inside View or Update callback only
type ITx interface {
	// ok == false means that record does not exist
	Get(set string, key int64) (r *Record, ok bool, err error)

	// returns ErrReadOnlyTx inside View
	Put(r *Record) error

	// ok == false means that record does not exist
	// returns ErrReadOnlyTx inside View
	Delete(set string, key int64) (ok bool, err error)

	// records of the set in key order
	List(set string, cb func(r *Record) error) error

	// returns key which is not used in the set yet
	// returns ErrReadOnlyTx inside View
	NextKey(set string) (int64, error)
}
