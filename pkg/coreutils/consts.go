/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package coreutils

const (
	ContentType                 = "Content-Type"
	Accept                      = "Accept"
	Location                    = "Location"
	ETag                        = "ETag"
	RetryAfter                  = "Retry-After"
	ContentType_ApplicationJSON = "application/json"
	ContentType_TextPlain       = "text/plain"
	ContentType_OctetStream     = "application/octet-stream"
)

// 424 is not declared in net/http
const StatusFailedDependency = 424
