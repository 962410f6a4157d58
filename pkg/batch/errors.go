/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package batch

import "errors"

var (
	ErrNotMultipart        = errors.New("multipart/mixed content expected")
	ErrNoBoundary          = errors.New("boundary parameter is missing")
	ErrUnsupportedPartType = errors.New("unsupported batch part content type")
	ErrNestedChangeset     = errors.New("changeset inside a changeset")
	ErrMalformedStartLine  = errors.New("malformed start line")
)
