/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package bbolt

import (
	"time"

	bolt "go.etcd.io/bbolt"
)

type ParamsType struct {
	// path to the database file, created if missing
	DBPath string

	// 0 -> defaultOpenTimout
	OpenTimeout time.Duration
}

type store struct {
	db *bolt.DB
}

type tx struct {
	btx *bolt.Tx
}
