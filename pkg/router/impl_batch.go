/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package router

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/untillpro/goutils/logger"
	"golang.org/x/exp/maps"

	"github.com/voedger/odata/pkg/batch"
	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/istorage"
	"github.com/voedger/odata/pkg/processor"
)

// executeBatch applies parts in order. Changesets are atomic. contentIDs are visible to every later part of the batch,
// a Content-ID of a failed request resolves to 424
func (s *httpService) executeBatch(ctx context.Context, parts []batch.RequestPart, serviceRoot string, continueOnError bool) []batch.ResponsePart {
	contentIDs := map[string]string{}
	res := make([]batch.ResponsePart, 0, len(parts))
	for i, part := range parts {
		var respPart batch.ResponsePart
		var failed bool
		if part.IsChangeset {
			respPart, failed = s.executeChangeset(ctx, part.Requests, serviceRoot, contentIDs)
		} else {
			respPart, failed = s.executeOperations(ctx, part.Requests, serviceRoot, contentIDs)
		}
		res = append(res, respPart)
		if failed && !continueOnError {
			if logger.IsVerbose() {
				logger.Verbose(fmt.Sprintf("batch part %d failed, %d parts skipped", i, len(parts)-i-1))
			}
			break
		}
	}
	return res
}

func (s *httpService) executeChangeset(ctx context.Context, reqs []*batch.Request, serviceRoot string, contentIDs map[string]string) (batch.ResponsePart, bool) {
	ids := maps.Clone(contentIDs)
	responses := make([]*batch.Response, 0, len(reqs))
	var failedResp *batch.Response
	err := s.store.Update(ctx, func(tx istorage.ITx) error {
		for _, r := range reqs {
			pReq, err := toProcessorRequest(r, s.ServicePath, serviceRoot, ids)
			if err == nil {
				var op *processor.Operation
				if op, err = s.proc.ParseRequest(pReq); err == nil {
					var resp *processor.Response
					if resp, err = s.proc.Apply(ctx, tx, op); err == nil {
						if len(r.ContentID) > 0 {
							ids[r.ContentID] = resp.Identity
						}
						responses = append(responses, toBatchResponse(r.ContentID, resp))
						continue
					}
				}
			}
			failedResp = toBatchResponse(r.ContentID, processor.ErrorResponse(err))
			return err
		}
		return nil
	})
	if err != nil {
		if failedResp == nil {
			failedResp = toBatchResponse("", processor.ErrorResponse(err))
		}
		for _, r := range reqs {
			if len(r.ContentID) > 0 {
				contentIDs[r.ContentID] = ""
			}
		}
		logger.Verbose("changeset rolled back:", err)
		return batch.ResponsePart{Responses: []*batch.Response{failedResp}}, true
	}
	maps.Copy(contentIDs, ids)
	return batch.ResponsePart{IsChangeset: true, Responses: responses}, false
}

// executeOperations executes top-level requests, each one in its own transaction
func (s *httpService) executeOperations(ctx context.Context, reqs []*batch.Request, serviceRoot string, contentIDs map[string]string) (res batch.ResponsePart, failed bool) {
	for _, r := range reqs {
		var resp *processor.Response
		pReq, err := toProcessorRequest(r, s.ServicePath, serviceRoot, contentIDs)
		if err != nil {
			resp = processor.ErrorResponse(err)
		} else {
			resp = s.proc.Execute(ctx, s.store, pReq)
		}
		succeeded := resp.StatusCode < http.StatusBadRequest
		if len(r.ContentID) > 0 {
			contentIDs[r.ContentID] = ""
			if succeeded {
				contentIDs[r.ContentID] = resp.Identity
			}
		}
		failed = failed || !succeeded
		res.Responses = append(res.Responses, toBatchResponse(r.ContentID, resp))
	}
	return res, failed
}

// toProcessorRequest accepts absolute URLs, absolute paths and paths relative to the service root
func toProcessorRequest(r *batch.Request, servicePath string, serviceRoot string, contentIDs map[string]string) (*processor.Request, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, coreutils.NewHTTPError(http.StatusBadRequest, err)
	}
	resPath := u.Path
	if u.IsAbs() || strings.HasPrefix(resPath, "/") {
		trimmed := strings.TrimPrefix(resPath, strings.TrimSuffix(servicePath, "/")+"/")
		if trimmed == resPath && servicePath != "/" {
			return nil, coreutils.NewHTTPErrorf(http.StatusNotFound, "resource is out of the service: ", r.URL)
		}
		resPath = trimmed
	}
	header := r.Header
	if header == nil {
		header = http.Header{}
	}
	return &processor.Request{
		Method:      r.Method,
		Path:        resPath,
		Query:       u.Query(),
		Header:      header,
		Body:        r.Body,
		ServiceRoot: serviceRoot,
		ContentIDs:  contentIDs,
	}, nil
}

func toBatchResponse(contentID string, resp *processor.Response) *batch.Response {
	return &batch.Response{
		ContentID:  contentID,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}
}
