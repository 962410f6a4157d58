/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package batch

const (
	HeaderContentType             = "Content-Type"
	HeaderContentID               = "Content-ID"
	HeaderContentLength           = "Content-Length"
	HeaderContentTransferEncoding = "Content-Transfer-Encoding"

	ContentTypeMultipartMixed = "multipart/mixed"
	ContentTypeHTTP           = "application/http"
	TransferEncodingBinary    = "binary"

	BoundaryPrefixBatch     = "batch"
	BoundaryPrefixChangeset = "changeset"

	httpVersion   = "HTTP/1.1"
	boundaryParam = "boundary"
	crlf          = "\r\n"
)
