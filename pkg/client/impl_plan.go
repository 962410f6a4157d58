/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/voedger/odata/pkg/batch"
	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/descriptors"
	"github.com/voedger/odata/pkg/preconditions"
)

// buildRequest plans the request for the descriptor. contentIDs are Content-IDs of entities inserted earlier
// in the same batch, nil outside of a batch
func (c *Context) buildRequest(d *descriptors.Descriptor, opts SaveChangesOptions, contentIDs map[descriptors.Handle]string) (*batch.Request, error) {
	req := &batch.Request{Header: c.header.Clone()}
	var err error
	switch d.Kind() {
	case descriptors.KindEntity:
		err = c.planEntity(req, d, opts, contentIDs)
	case descriptors.KindLink:
		err = c.planLink(req, d, contentIDs)
	case descriptors.KindNamedStream:
		err = c.planStream(req, d, contentIDs)
	default:
		err = fmt.Errorf("%w: %s can not be saved", descriptors.ErrWrongDescriptorKind, d)
	}
	if err != nil {
		return nil, err
	}

	cond, err := preconditions.Evaluate(d, c.useETags)
	if err != nil {
		return nil, err
	}
	if !cond.IsNone() {
		req.Header.Set(cond.Header, cond.Token)
	}
	return req, nil
}

func (c *Context) planEntity(req *batch.Request, d *descriptors.Descriptor, opts SaveChangesOptions, contentIDs map[descriptors.Handle]string) (err error) {
	e := d.Entity
	var props []string
	switch d.State() {
	case descriptors.Added:
		req.Method = http.MethodPost
		req.URL = c.serviceRoot + e.EntitySet
		if e.Parent != descriptors.NullHandle {
			parent, err := c.entityRef(e.Parent, contentIDs)
			if err != nil {
				return err
			}
			req.URL = parent + "/" + e.ParentProperty
		}
		if opts.Has(PostOnlySetProperties) {
			props = e.SetProperties
		}
	case descriptors.Modified:
		req.Method = http.MethodPatch
		if opts.Has(ReplaceOnUpdate) {
			req.Method = http.MethodPut
		} else {
			props = e.SetProperties
		}
		req.URL = c.editLink(d)
	case descriptors.Deleted:
		req.Method = http.MethodDelete
		req.URL = c.editLink(d)
		return nil
	}

	if req.Body, err = c.codec.Marshal(e.Object, props); err != nil {
		return fmt.Errorf("failed to serialize %s: %w", d, err)
	}
	req.Header.Set(coreutils.ContentType, c.codec.ContentType())
	switch c.preference {
	case PreferenceIncludeContent:
		req.Header.Set(headerPrefer, preferReturnContent)
	case PreferenceNoContent:
		req.Header.Set(headerPrefer, preferReturnMinimal)
	}
	return nil
}

func (c *Context) planLink(req *batch.Request, d *descriptors.Descriptor, contentIDs map[descriptors.Handle]string) error {
	l := d.Link
	source, err := c.entityRef(l.Source, contentIDs)
	if err != nil {
		return err
	}
	req.URL = source + "/" + l.SourceProperty + "/" + refSegment
	if l.Target == descriptors.NullHandle {
		// single-valued link is unset
		req.Method = http.MethodDelete
		return nil
	}
	target, err := c.entityRef(l.Target, contentIDs)
	if err != nil {
		return err
	}
	switch d.State() {
	case descriptors.Deleted:
		req.Method = http.MethodDelete
		req.URL += "?" + url.Values{queryID: {target}}.Encode()
		return nil
	case descriptors.Modified:
		req.Method = http.MethodPut
	default:
		req.Method = http.MethodPost
	}
	if req.Body, err = json.Marshal(map[string]string{annotationID: target}); err != nil {
		// notest
		return err
	}
	req.Header.Set(coreutils.ContentType, coreutils.ContentType_ApplicationJSON)
	return nil
}

func (c *Context) planStream(req *batch.Request, d *descriptors.Descriptor, contentIDs map[descriptors.Handle]string) error {
	s := d.Stream
	entity, err := c.entityRef(s.Entity, contentIDs)
	if err != nil {
		return err
	}
	req.Method = http.MethodPut
	req.URL = entity + "/" + s.Name + "/" + valueSegment
	req.Body = s.Content
	contentType := s.ContentType
	if len(contentType) == 0 {
		contentType = coreutils.ContentType_OctetStream
	}
	req.Header.Set(coreutils.ContentType, contentType)
	return nil
}

// entityRef returns the edit link of a persisted entity or $<Content-ID> of an entity inserted earlier in the batch
func (c *Context) entityRef(h descriptors.Handle, contentIDs map[descriptors.Handle]string) (string, error) {
	d, ok := c.tracker.Get(h)
	if !ok {
		return "", fmt.Errorf("%w: handle %d", ErrUnresolvedReference, h)
	}
	if len(d.Entity.Identity) > 0 {
		return c.editLink(d), nil
	}
	if id, ok := contentIDs[h]; ok {
		return contentIDPrefix + id, nil
	}
	return "", unresolvedReference(d)
}

func (c *Context) editLink(d *descriptors.Descriptor) string {
	if len(d.Entity.EditLink) > 0 {
		return d.Entity.EditLink
	}
	return c.serviceRoot + d.Entity.Identity
}

// resolveTarget makes the operation target absolute
func (c *Context) resolveTarget(target string) string {
	if u, err := url.Parse(target); err == nil && u.IsAbs() {
		return target
	}
	return c.serviceRoot + target
}
