/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package client

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/untillpro/goutils/logger"

	"github.com/voedger/odata/pkg/batch"
	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/descriptors"
)

// applyResponse applies the response to the descriptor it was sent for. 2xx -> the state transition is applied,
// otherwise the error is recorded in SaveError and the state is kept.
// A result is applied at most once per round
func (c *Context) applyResponse(d *descriptors.Descriptor, resp *batch.Response) *ChangeOperationResponse {
	res := &ChangeOperationResponse{
		descriptor: d,
		statusCode: resp.StatusCode,
		header:     resp.Header,
	}
	if d.SaveResultWasProcessed != 0 {
		logger.Verbose(fmt.Sprintf("%s: result is already applied, %d skipped", d, resp.StatusCode))
		return res
	}
	if res.err = responseError(resp); res.err == nil {
		res.err = c.applySuccess(d, resp)
	}
	if res.err != nil {
		d.SaveError = res.err
		if resp.StatusCode == http.StatusPreconditionRequired && d.Kind() == descriptors.KindEntity {
			d.Entity.TokenRequired = true
		}
	}
	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("%s: %d", d, resp.StatusCode))
	}
	return res
}

// applyFailure records an error which is not a response to the descriptor's own request
func applyFailure(d *descriptors.Descriptor, resp *batch.Response, err error) *ChangeOperationResponse {
	d.SaveError = err
	res := &ChangeOperationResponse{descriptor: d, err: err}
	if resp != nil {
		res.statusCode = resp.StatusCode
		res.header = resp.Header
	}
	return res
}

func (c *Context) applySuccess(d *descriptors.Descriptor, resp *batch.Response) error {
	prevState := d.State()
	switch d.Kind() {
	case descriptors.KindEntity:
		if err := c.applyEntityResponse(d, resp); err != nil {
			return err
		}
	case descriptors.KindNamedStream:
		if etag := resp.Header.Get(coreutils.ETag); len(etag) > 0 {
			d.Stream.ETag = etag
		}
		d.Stream.Intent = descriptors.Intent{}
	}

	newState := descriptors.Unchanged
	forget := false
	switch {
	case prevState == descriptors.Deleted:
		newState = descriptors.Detached
		forget = true
	case d.Kind() == descriptors.KindLink && d.Link.Target == descriptors.NullHandle:
		// unset single-valued link
		forget = true
	}
	if err := d.ApplySaveResult(newState); err != nil {
		return err
	}
	if forget {
		c.tracker.Forget(d.Handle())
	}
	return nil
}

func (c *Context) applyEntityResponse(d *descriptors.Descriptor, resp *batch.Response) error {
	e := d.Entity
	if len(resp.Body) > 0 && d.State() != descriptors.Deleted {
		if err := c.codec.Unmarshal(resp.Body, e.Object); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, d, err)
		}
	}
	if d.State() == descriptors.Added {
		location := resp.Header.Get(coreutils.Location)
		if len(location) == 0 {
			location = resp.Header.Get(headerODataEntityID)
		}
		if len(location) == 0 {
			return fmt.Errorf("%w: %s: Location header is missing", ErrMalformedResponse, d)
		}
		identity, err := identityOf(location)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, d, err)
		}
		e.Identity = identity
		e.EditLink = location
		e.Parent = descriptors.NullHandle
		e.ParentProperty = ""
	}
	if etag := resp.Header.Get(coreutils.ETag); len(etag) > 0 {
		e.ETag = etag
	}
	e.Intent = descriptors.Intent{}
	e.SetProperties = nil
	return nil
}

// identityOf returns the last path segment of the entity URL, e.g. Customers(1)
func identityOf(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	identity := path.Base(u.Path)
	if !strings.HasSuffix(identity, ")") {
		return "", fmt.Errorf("entity URL expected: %s", location)
	}
	return identity, nil
}
