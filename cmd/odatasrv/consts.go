/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

const (
	storageMem   = "mem"
	storageBBolt = "bbolt"

	defaultBBoltPath = "odata.db"
	httpServiceName  = "http"
)
