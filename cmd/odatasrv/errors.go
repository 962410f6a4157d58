/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

import "errors"

var ErrUnknownStorageDriver = errors.New("unknown storage driver")
