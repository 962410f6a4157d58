/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package processor

import (
	"context"
	"net/http"
	"net/url"

	"github.com/voedger/odata/pkg/istorage"
	"github.com/voedger/odata/pkg/pipeline"
)

type Kind int

// ActionFunc implements an action. bound is nil for unbound actions
// nil result -> 204 No Content
type ActionFunc func(ctx context.Context, tx istorage.ITx, bound *istorage.Record, params map[string]any) (result any, err error)

type Params struct {
	// empty -> DefaultKeyProperty
	KeyProperty string

	// true -> updates and deletes without If-Match or If-None-Match are rejected with 428
	RequireConcurrencyToken bool

	// "Set/nav" -> entity set of the related entities. Not listed -> nav name is the entity set name
	NavigationTargets map[string]string

	Actions map[string]ActionFunc
}

type Request struct {
	Method string

	// relative to the service root, no leading slash, may start with $<Content-ID>
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte

	// absolute URL of the service root with trailing slash, used to build Location
	ServiceRoot string

	// Content-ID -> identity of the entity the request with that Content-ID addressed or created
	// empty identity means that the request failed
	ContentIDs map[string]string
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// identity of the entity the operation addressed or created
	Identity string
}

// Operation is a parsed request
type Operation struct {
	Kind     Kind
	Set      string
	Key      int64
	Property string
	Request  *Request
}

type implIProcessor struct {
	params   Params
	pipeline pipeline.ISyncPipeline
}

type opWork struct {
	tx istorage.ITx
	op *Operation

	// addressed entity, parent for CreateRelated, source for references
	record *istorage.Record

	// result of apply
	result      *istorage.Record
	results     []*istorage.Record
	refs        []string
	stream      *istorage.Stream
	actionRes   any
	notModified bool

	resp *Response
}
