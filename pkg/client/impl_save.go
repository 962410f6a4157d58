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

	"github.com/untillpro/goutils/logger"

	"github.com/voedger/odata/pkg/batch"
	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/descriptors"
	"github.com/voedger/odata/pkg/preconditions"
)

// SaveChanges submits pending changes. Local precondition failures, invalid options and cyclic dependencies are
// returned before any request is sent. Failed operations are reported by *SaveChangesError and recorded in
// Descriptor.SaveError, their descriptors keep the state
func (c *Context) SaveChanges(ctx context.Context, opts SaveChangesOptions) ([]*ChangeOperationResponse, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := c.tracker.BeginSave(); err != nil {
		return nil, err
	}
	defer c.tracker.EndSave()

	c.tracker.MarkSubmissionRoundStart()
	eligible, err := c.tracker.GetEligibleDescriptors()
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, nil
	}
	for _, d := range eligible {
		if _, err := preconditions.Evaluate(d, c.useETags); err != nil {
			d.SaveError = err
			return nil, err
		}
	}
	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("saving %d changes, options %d", len(eligible), opts))
	}

	var responses []*ChangeOperationResponse
	switch {
	case opts.Has(BatchWithSingleChangeset):
		responses = c.saveInBatch(ctx, eligible, opts, true)
	case opts.Has(BatchWithIndependentOperations):
		responses = c.saveInBatch(ctx, eligible, opts, false)
	default:
		responses = c.saveSequentially(ctx, eligible, opts)
	}

	failed := false
	for _, r := range responses {
		if r.err != nil {
			failed = true
		} else {
			r.descriptor.ClearChanges()
		}
	}
	if failed {
		return responses, &SaveChangesError{Responses: responses}
	}
	return responses, nil
}

// saveSequentially sends one request per descriptor. The request is built after the previous response is applied
// so references to inserted entities are real edit links
func (c *Context) saveSequentially(ctx context.Context, eligible []*descriptors.Descriptor, opts SaveChangesOptions) []*ChangeOperationResponse {
	res := make([]*ChangeOperationResponse, 0, len(eligible))
	for _, d := range eligible {
		var r *ChangeOperationResponse
		req, err := c.buildRequest(d, opts, nil)
		if err != nil {
			r = applyFailure(d, nil, err)
		} else {
			d.ContentGeneratedForSave = true
			resp, err := c.transport.Do(ctx, req)
			if err != nil {
				r = applyFailure(d, nil, err)
			} else {
				r = c.applyResponse(d, resp)
			}
		}
		res = append(res, r)
		if r.err != nil && (!opts.Has(ContinueOnError) || ctx.Err() != nil) {
			break
		}
	}
	return res
}

// saveInBatch sends every descriptor in one batch: in one changeset if single, otherwise in a changeset per descriptor
func (c *Context) saveInBatch(ctx context.Context, eligible []*descriptors.Descriptor, opts SaveChangesOptions, single bool) []*ChangeOperationResponse {
	contentIDs := map[descriptors.Handle]string{}
	changesets := [][]plannedOp{}
	notBuilt := []*ChangeOperationResponse{}
	for i, d := range eligible {
		req, err := c.buildRequest(d, opts, contentIDs)
		if err != nil {
			if single {
				// the changeset fails as a whole
				res := make([]*ChangeOperationResponse, 0, len(eligible))
				for _, other := range eligible {
					res = append(res, applyFailure(other, nil, err))
				}
				return res
			}
			notBuilt = append(notBuilt, applyFailure(d, nil, err))
			if !opts.Has(ContinueOnError) {
				return notBuilt
			}
			continue
		}
		req.ContentID = strconv.Itoa(i + 1)
		contentIDs[d.Handle()] = req.ContentID
		op := plannedOp{d: d, req: req}
		if single && len(changesets) > 0 {
			changesets[0] = append(changesets[0], op)
		} else {
			changesets = append(changesets, []plannedOp{op})
		}
	}

	if len(changesets) == 0 {
		return notBuilt
	}

	parts := make([]batch.RequestPart, 0, len(changesets))
	for _, cs := range changesets {
		part := batch.RequestPart{IsChangeset: true}
		for _, op := range cs {
			part.Requests = append(part.Requests, op.req)
			op.d.ContentGeneratedForSave = true
		}
		parts = append(parts, part)
	}
	contentType, body, err := batch.MarshalRequest(parts)
	if err != nil {
		// notest
		return append(failAll(changesets, nil, err), notBuilt...)
	}
	header := c.header.Clone()
	header.Set(coreutils.ContentType, contentType)
	if opts.Has(ContinueOnError) {
		header.Set(headerPrefer, preferContinueOnError)
	}
	resp, err := c.transport.Do(ctx, &batch.Request{
		Method: http.MethodPost,
		URL:    c.serviceRoot + batchSegment,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return append(failAll(changesets, nil, err), notBuilt...)
	}
	if err := responseError(resp); err != nil {
		return append(failAll(changesets, resp, err), notBuilt...)
	}
	respParts, err := batch.ReadResponse(bytes.NewReader(resp.Body), resp.Header.Get(coreutils.ContentType))
	if err != nil {
		return append(failAll(changesets, resp, &TransportError{Err: fmt.Errorf("%w: %w", ErrMalformedResponse, err)}), notBuilt...)
	}
	return append(c.correlate(changesets, respParts), notBuilt...)
}

// correlate walks response parts in request order. Responses are matched by Content-ID, by position if the
// Content-ID is not echoed. A changeset is atomic: if any of its operations has no successful response then
// every descriptor of the changeset fails with that error and none transitions.
// Changesets with no response part were not processed by the server
func (c *Context) correlate(changesets [][]plannedOp, respParts []batch.ResponsePart) []*ChangeOperationResponse {
	res := []*ChangeOperationResponse{}
	for i, cs := range changesets {
		if i >= len(respParts) {
			if logger.IsVerbose() {
				logger.Verbose(fmt.Sprintf("%d changesets are not processed", len(changesets)-i))
			}
			break
		}
		part := respParts[i]
		if !part.IsChangeset && len(part.Responses) == 1 && responseError(part.Responses[0]) != nil {
			resp := part.Responses[0]
			res = append(res, failAll([][]plannedOp{cs}, resp, responseError(resp))...)
			continue
		}
		matched, failedResp, err := matchResponses(cs, part)
		if err != nil {
			res = append(res, failAll([][]plannedOp{cs}, failedResp, err)...)
			continue
		}
		for j, op := range cs {
			res = append(res, c.applyResponse(op.d, matched[j]))
		}
	}
	return res
}

// matchResponses returns responses in the order of ops or the first failure of the changeset
func matchResponses(cs []plannedOp, part batch.ResponsePart) (matched []*batch.Response, failedResp *batch.Response, err error) {
	byContentID := make(map[string]*batch.Response, len(part.Responses))
	for _, resp := range part.Responses {
		if len(resp.ContentID) > 0 {
			byContentID[resp.ContentID] = resp
		}
	}
	matched = make([]*batch.Response, 0, len(cs))
	for j, op := range cs {
		resp, ok := byContentID[op.req.ContentID]
		if !ok && j < len(part.Responses) {
			resp, ok = part.Responses[j], true
		}
		if !ok {
			return nil, nil, fmt.Errorf("%w: no response for Content-ID %s", ErrMalformedResponse, op.req.ContentID)
		}
		if err := responseError(resp); err != nil {
			return nil, resp, err
		}
		matched = append(matched, resp)
	}
	return matched, nil, nil
}

func failAll(changesets [][]plannedOp, resp *batch.Response, err error) []*ChangeOperationResponse {
	res := []*ChangeOperationResponse{}
	for _, cs := range changesets {
		for _, op := range cs {
			res = append(res, applyFailure(op.d, resp, err))
		}
	}
	return res
}
