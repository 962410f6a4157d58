/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package processor

import (
	"context"
	"fmt"
	"net/http"

	"github.com/untillpro/goutils/logger"

	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/istorage"
)

func (p *implIProcessor) Execute(ctx context.Context, store istorage.IStore, req *Request) *Response {
	op, err := p.ParseRequest(req)
	if err != nil {
		return ErrorResponse(err)
	}
	var resp *Response
	apply := func(tx istorage.ITx) (err error) {
		resp, err = p.Apply(ctx, tx, op)
		return err
	}
	if op.ReadOnly() {
		err = store.View(ctx, apply)
	} else {
		err = store.Update(ctx, apply)
	}
	if err != nil {
		return ErrorResponse(err)
	}
	return resp
}

func (p *implIProcessor) Apply(ctx context.Context, tx istorage.ITx, op *Operation) (*Response, error) {
	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("%s %s -> %s", op.Request.Method, op.Request.Path, op.Kind))
	}
	work := &opWork{tx: tx, op: op}
	if err := p.pipeline.DoSync(ctx, work); err != nil {
		if logger.IsVerbose() {
			logger.Verbose(fmt.Sprintf("%s %s failed: %s", op.Request.Method, op.Request.Path, err))
		}
		return nil, err
	}
	return work.resp, nil
}

func (p *implIProcessor) resolveTarget(_ context.Context, work interface{}) (err error) {
	w := work.(*opWork)
	op := w.op
	switch op.Kind {
	case KindList, KindCreate:
		return nil
	case KindInvokeAction:
		if len(op.Set) == 0 {
			return nil
		}
	}
	r, ok, err := w.tx.Get(op.Set, op.Key)
	if err != nil {
		return err
	}
	if !ok {
		return errNotFound(istorage.Identity(op.Set, op.Key))
	}
	w.record = r
	if op.Kind == KindReadStream || op.Kind == KindWriteStream {
		w.stream = r.Streams[op.Property]
	}
	return nil
}

func (p *implIProcessor) checkPreconditions(_ context.Context, work interface{}) (err error) {
	w := work.(*opWork)
	header := w.op.Request.Header
	switch w.op.Kind {
	case KindRead:
		w.notModified = tokenMatches(header.Get(HeaderIfNoneMatch), ETag(w.record.Version))
	case KindUpdate, KindReplace, KindDelete:
		return p.evaluate(header, true, ETag(w.record.Version))
	case KindWriteStream:
		if w.stream == nil {
			return p.evaluate(header, false, "")
		}
		return p.evaluate(header, true, ETag(w.stream.Version))
	}
	return nil
}

// evaluate checks conditional headers against the current state of the resource
func (p *implIProcessor) evaluate(header http.Header, exists bool, etag string) error {
	ifMatch := header.Get(HeaderIfMatch)
	ifNoneMatch := header.Get(HeaderIfNoneMatch)
	if len(ifMatch) == 0 && len(ifNoneMatch) == 0 {
		if p.params.RequireConcurrencyToken && exists {
			return coreutils.NewHTTPErrorf(http.StatusPreconditionRequired, "If-Match or If-None-Match header is required")
		}
		return nil
	}
	if len(ifMatch) > 0 && (!exists || !tokenMatches(ifMatch, etag)) {
		return coreutils.NewHTTPErrorf(http.StatusPreconditionFailed, "If-Match ", ifMatch, " does not match ", etag)
	}
	if len(ifNoneMatch) > 0 && exists && tokenMatches(ifNoneMatch, etag) {
		return coreutils.NewHTTPErrorf(http.StatusPreconditionFailed, "If-None-Match ", ifNoneMatch, " matches ", etag)
	}
	return nil
}

func (p *implIProcessor) apply(ctx context.Context, work interface{}) (err error) {
	w := work.(*opWork)
	op := w.op
	switch op.Kind {
	case KindList:
		return w.tx.List(op.Set, func(r *istorage.Record) error {
			w.results = append(w.results, r)
			return nil
		})
	case KindRead:
		w.result = w.record
	case KindCreate:
		w.result, err = p.create(w, op.Set)
	case KindCreateRelated:
		if w.result, err = p.create(w, p.navigationTarget(op.Set, op.Property)); err != nil {
			return err
		}
		addLink(w.record, op.Property, w.result.Identity())
		return w.tx.Put(w.record)
	case KindUpdate, KindReplace:
		return p.update(w)
	case KindDelete:
		_, err = w.tx.Delete(op.Set, op.Key)
	case KindListRelated:
		for _, identity := range w.record.Links[op.Property] {
			r, ok, err := getByIdentity(w.tx, identity)
			if err != nil {
				return err
			}
			if ok {
				w.results = append(w.results, r)
			}
		}
	case KindListRefs:
		w.refs = w.record.Links[op.Property]
	case KindAddRef, KindSetRef:
		return p.writeRef(w)
	case KindDeleteRef:
		return p.deleteRef(w)
	case KindReadStream:
		if w.stream == nil {
			return errNotFound(w.record.Identity() + "/" + op.Property)
		}
	case KindWriteStream:
		return p.writeStream(w)
	case KindInvokeAction:
		return p.invokeAction(ctx, w)
	}
	return err
}

func (p *implIProcessor) buildResponse(_ context.Context, work interface{}) (err error) {
	w := work.(*opWork)
	op := w.op
	req := op.Request
	resp := &Response{Header: http.Header{}}
	if w.record != nil {
		resp.Identity = w.record.Identity()
	}

	switch op.Kind {
	case KindList, KindListRelated:
		values := make([]map[string]any, 0, len(w.results))
		for _, r := range w.results {
			values = append(values, p.representation(r, req.ServiceRoot))
		}
		err = resp.setJSON(http.StatusOK, map[string]any{collectionValue: values})
	case KindRead:
		resp.Header.Set(coreutils.ETag, ETag(w.record.Version))
		if w.notModified {
			resp.StatusCode = http.StatusNotModified
			break
		}
		err = resp.setJSON(http.StatusOK, p.representation(w.record, req.ServiceRoot))
	case KindCreate, KindCreateRelated:
		resp.Identity = w.result.Identity()
		location := req.ServiceRoot + resp.Identity
		resp.Header.Set(coreutils.Location, location)
		resp.Header.Set(HeaderODataEntityID, location)
		resp.Header.Set(coreutils.ETag, ETag(w.result.Version))
		if HasPreference(req.Header, PreferReturnMinimal) {
			resp.Header.Set(HeaderPreferenceApplied, PreferReturnMinimal)
			resp.StatusCode = http.StatusNoContent
			break
		}
		err = resp.setJSON(http.StatusCreated, p.representation(w.result, req.ServiceRoot))
	case KindUpdate, KindReplace:
		resp.Header.Set(coreutils.ETag, ETag(w.result.Version))
		if HasPreference(req.Header, PreferReturnContent) {
			resp.Header.Set(HeaderPreferenceApplied, PreferReturnContent)
			err = resp.setJSON(http.StatusOK, p.representation(w.result, req.ServiceRoot))
			break
		}
		resp.StatusCode = http.StatusNoContent
	case KindListRefs:
		values := make([]map[string]any, 0, len(w.refs))
		for _, identity := range w.refs {
			values = append(values, map[string]any{AnnotationID: req.ServiceRoot + identity})
		}
		err = resp.setJSON(http.StatusOK, map[string]any{collectionValue: values})
	case KindReadStream:
		resp.StatusCode = http.StatusOK
		resp.Header.Set(coreutils.ContentType, w.stream.ContentType)
		resp.Header.Set(coreutils.ETag, ETag(w.stream.Version))
		resp.Body = w.stream.Content
	case KindWriteStream:
		resp.StatusCode = http.StatusNoContent
		resp.Header.Set(coreutils.ETag, ETag(w.stream.Version))
	case KindInvokeAction:
		if w.actionRes == nil {
			resp.StatusCode = http.StatusNoContent
			break
		}
		err = resp.setJSON(http.StatusOK, w.actionRes)
	default:
		resp.StatusCode = http.StatusNoContent
	}
	w.resp = resp
	return err
}
