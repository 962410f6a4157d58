/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/voedger/odata/pkg/batch"
	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/descriptors"
)

// Execute sends the operation as a standalone request. Non-2xx response is reported by OperationResponse.Error
func (c *Context) Execute(ctx context.Context, op OperationRequest) (*OperationResponse, error) {
	h, err := c.tracker.AddOperation(operationInfo(op))
	if err != nil {
		return nil, err
	}
	defer c.tracker.Forget(h)
	d, _ := c.tracker.Get(h)

	req, err := c.operationRequest(op)
	if err != nil {
		return nil, err
	}
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.operationResponse(d, resp), nil
}

// ExecuteBatch sends operations as top-level parts of one batch. Responses are returned in the order of ops.
// Operations the server did not process have no response
func (c *Context) ExecuteBatch(ctx context.Context, ops ...OperationRequest) ([]*OperationResponse, error) {
	if len(ops) == 0 {
		return nil, nil
	}
	ds := make([]*descriptors.Descriptor, 0, len(ops))
	defer func() {
		for _, d := range ds {
			c.tracker.Forget(d.Handle())
		}
	}()

	parts := make([]batch.RequestPart, 0, len(ops))
	for i, op := range ops {
		h, err := c.tracker.AddOperation(operationInfo(op))
		if err != nil {
			return nil, err
		}
		d, _ := c.tracker.Get(h)
		ds = append(ds, d)
		req, err := c.operationRequest(op)
		if err != nil {
			return nil, err
		}
		req.ContentID = strconv.Itoa(i + 1)
		parts = append(parts, batch.RequestPart{Requests: []*batch.Request{req}})
	}

	contentType, body, err := batch.MarshalRequest(parts)
	if err != nil {
		// notest
		return nil, err
	}
	header := c.header.Clone()
	header.Set(coreutils.ContentType, contentType)
	resp, err := c.transport.Do(ctx, &batch.Request{
		Method: http.MethodPost,
		URL:    c.serviceRoot + batchSegment,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	if err := responseError(resp); err != nil {
		return nil, err
	}
	respParts, err := batch.ReadResponse(bytes.NewReader(resp.Body), resp.Header.Get(coreutils.ContentType))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("%w: %w", ErrMalformedResponse, err)}
	}

	byContentID := map[string]*batch.Response{}
	positional := []*batch.Response{}
	for _, part := range respParts {
		for _, r := range part.Responses {
			positional = append(positional, r)
			if len(r.ContentID) > 0 {
				byContentID[r.ContentID] = r
			}
		}
	}
	res := make([]*OperationResponse, 0, len(ops))
	for i, d := range ds {
		r, ok := byContentID[strconv.Itoa(i+1)]
		if !ok {
			if i >= len(positional) {
				break
			}
			r = positional[i]
		}
		res = append(res, c.operationResponse(d, r))
	}
	return res, nil
}

func (c *Context) operationRequest(op OperationRequest) (*batch.Request, error) {
	req := &batch.Request{
		Method: op.Method,
		URL:    c.resolveTarget(op.Target),
		Header: c.header.Clone(),
	}
	if len(req.Method) == 0 {
		req.Method = http.MethodGet
		if op.Parameters != nil {
			req.Method = http.MethodPost
		}
	}
	if op.Parameters != nil {
		body, err := c.codec.Marshal(op.Parameters, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize parameters of %s: %w", op.Title, err)
		}
		req.Body = body
		req.Header.Set(coreutils.ContentType, c.codec.ContentType())
	}
	return req, nil
}

func (c *Context) operationResponse(d *descriptors.Descriptor, resp *batch.Response) *OperationResponse {
	return &OperationResponse{
		Descriptor: d,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
		Error:      responseError(resp),
		codec:      c.codec,
	}
}

func operationInfo(op OperationRequest) descriptors.OperationInfo {
	title := op.Title
	if len(title) == 0 {
		title = op.Target
	}
	return descriptors.OperationInfo{
		Title:      title,
		Target:     op.Target,
		Method:     op.Method,
		Parameters: op.Parameters,
	}
}
