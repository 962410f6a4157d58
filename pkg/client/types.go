/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package client

import (
	"net/http"

	"github.com/voedger/odata/pkg/batch"
	"github.com/voedger/odata/pkg/descriptors"
	"github.com/voedger/odata/pkg/retrier"
	"github.com/voedger/odata/pkg/tracker"
)

type SaveChangesOptions int

type ResponsePreference int

// Context tracks objects and submits their changes. Not safe for concurrent use
type Context struct {
	serviceRoot string
	tracker     *tracker.Tracker
	codec       IPayloadCodec
	transport   ITransport
	useETags    bool
	preference  ResponsePreference
	header      http.Header
	httpClient  *http.Client
	retry       retrier.Config
}

type Option func(*Context)

// ChangeOperationResponse is the outcome of one submitted change
type ChangeOperationResponse struct {
	descriptor *descriptors.Descriptor
	statusCode int
	header     http.Header
	err        error
}

// OperationRequest describes a service operation invocation or a read request
type OperationRequest struct {
	Title string

	// empty -> POST if Parameters is not nil, GET otherwise
	Method string

	// relative to the service root or absolute
	Target string

	Parameters map[string]any
}

type OperationResponse struct {
	Descriptor *descriptors.Descriptor
	StatusCode int
	Header     http.Header
	Body       []byte

	// *ServerOperationError on non-2xx
	Error error

	codec IPayloadCodec
}

type jsonCodec struct{}

type httpTransport struct {
	client *http.Client
	retry  retrier.Config
}

// plannedOp is the request planned for a descriptor
type plannedOp struct {
	d   *descriptors.Descriptor
	req *batch.Request
}
