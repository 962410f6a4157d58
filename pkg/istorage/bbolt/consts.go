/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package bbolt

import (
	"os"
	"time"
)

const (
	dataBucketName                = "dataBucket"
	fileMode          os.FileMode = 0o600
	defaultOpenTimout             = time.Second
	keySize                       = 8
	signBit                       = uint64(1) << 63
)
