/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package coreutils

import (
	"net"
	"strconv"
)

// ServerAddress returns listen address. Empty host -> all interfaces
func ServerAddress(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
