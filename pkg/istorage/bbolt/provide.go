/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package bbolt

import (
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/voedger/odata/pkg/istorage"
)

// Provide opens or creates the database file
func Provide(params ParamsType) (istorage.IStore, error) {
	if dir := filepath.Dir(params.DBPath); len(dir) > 0 {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			// notest
			return nil, err
		}
	}
	timeout := params.OpenTimeout
	if timeout == 0 {
		timeout = defaultOpenTimout
	}
	db, err := bolt.Open(params.DBPath, fileMode, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", params.DBPath, err)
	}
	if err := initDB(db); err != nil {
		// notest
		db.Close()
		return nil, err
	}
	return &store{db: db}, nil
}

func initDB(db *bolt.DB) error {
	return db.Update(func(btx *bolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists([]byte(dataBucketName))
		return err
	})
}
