/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package router

import "time"

const (
	DefaultPort                   = 8080
	DefaultServicePath            = "/odata"
	DefaultReadHeaderTimeout      = 15 * time.Second
	DefaultRetryAfterSecondsOn503 = 1
	URLPlaceholder_resource       = "resource"
	batchSegment                  = "$batch"
	schemeHTTP                    = "http"
	schemeHTTPS                   = "https"
)
