/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package batch

import "net/http"

// Request is one operation embedded in a batch request
type Request struct {
	ContentID string
	Method    string
	// relative to the service root, may start with $<Content-ID>
	URL    string
	Header http.Header
	Body   []byte
}

// Response is one operation result embedded in a batch response
type Response struct {
	ContentID  string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RequestPart is a top-level part of a batch request: a single operation or a changeset of operations
type RequestPart struct {
	IsChangeset bool
	Requests    []*Request
}

// ResponsePart is a top-level part of a batch response. A changeset that failed as a whole is answered
// with a single non-changeset part
type ResponsePart struct {
	IsChangeset bool
	Responses   []*Response
}
