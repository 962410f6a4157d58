/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package iservices

import "errors"

var ErrAtLeastOneServiceFailedToStart = errors.New("at least one service failed to start")
