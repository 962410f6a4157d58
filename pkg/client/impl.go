/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package client

import (
	"net/http"

	"github.com/voedger/odata/pkg/descriptors"
)

// AddObject starts tracking a new entity which is inserted into the entity set on the next save
func (c *Context) AddObject(entitySet string, obj any) error {
	_, err := c.tracker.AddEntity(entitySet, obj)
	return err
}

// AddRelatedObject adds a new entity which is inserted through the navigation property of source
func (c *Context) AddRelatedObject(source any, nav string, entitySet string, obj any) error {
	_, err := c.tracker.AddRelatedEntity(source, nav, entitySet, obj)
	return err
}

// AttachTo starts tracking an existing entity as Unchanged. identity is relative to the service root,
// e.g. Customers(1). etag may be empty
func (c *Context) AttachTo(entitySet string, identity string, etag string, obj any) error {
	_, err := c.tracker.AttachEntity(entitySet, identity, c.serviceRoot+identity, etag, obj)
	return err
}

// UpdateObject marks the entity as modified. Listed properties are the only ones sent by PATCH
func (c *Context) UpdateObject(obj any, props ...string) error {
	if err := c.tracker.UpdateEntity(obj); err != nil {
		return err
	}
	return c.tracker.MarkPropertiesSet(obj, props...)
}

// MarkPropertiesSet lists properties sent on insert with PostOnlySetProperties
func (c *Context) MarkPropertiesSet(obj any, props ...string) error {
	return c.tracker.MarkPropertiesSet(obj, props...)
}

// DeleteObject marks the entity for delete. Deleting an added entity cancels its insert
func (c *Context) DeleteObject(obj any) error {
	return c.tracker.DeleteEntity(obj)
}

func (c *Context) AddLink(source any, nav string, target any) error {
	_, err := c.tracker.AddLink(source, nav, target)
	return err
}

// AttachLink starts tracking an existing relationship
func (c *Context) AttachLink(source any, nav string, target any) error {
	_, err := c.tracker.AttachLink(source, nav, target)
	return err
}

func (c *Context) DeleteLink(source any, nav string, target any) error {
	_, err := c.tracker.DeleteLink(source, nav, target)
	return err
}

// SetLink sets the single-valued navigation property. nil target unsets it
func (c *Context) SetLink(source any, nav string, target any) error {
	_, err := c.tracker.SetLink(source, nav, target)
	return err
}

// SetSaveStream sets content of the named stream of the entity
func (c *Context) SetSaveStream(obj any, name string, contentType string, content []byte) error {
	_, err := c.tracker.SetStream(obj, name, contentType, content)
	return err
}

// SetIntent sets the condition for the next mutation of the entity, see descriptors.IfMatch and descriptors.IfNoneMatch
func (c *Context) SetIntent(obj any, intent descriptors.Intent) error {
	return c.tracker.SetIntent(obj, intent)
}

// Detach stops tracking the entity together with its links and streams
func (c *Context) Detach(obj any) error {
	return c.tracker.Detach(obj)
}

// Descriptor returns the descriptor of a tracked entity
func (c *Context) Descriptor(obj any) (*descriptors.Descriptor, bool) {
	return c.tracker.Entity(obj)
}

// Descriptors returns every tracked descriptor in attach order
func (c *Context) Descriptors() []*descriptors.Descriptor {
	return c.tracker.Descriptors()
}

func (c *Context) ServiceRoot() string {
	return c.serviceRoot
}

func (r *ChangeOperationResponse) Descriptor() *descriptors.Descriptor { return r.descriptor }
func (r *ChangeOperationResponse) StatusCode() int                     { return r.statusCode }
func (r *ChangeOperationResponse) Header() http.Header                 { return r.header }
func (r *ChangeOperationResponse) Error() error                        { return r.err }

// Decode unmarshals the response body into v
func (r *OperationResponse) Decode(v any) error {
	return r.codec.Unmarshal(r.Body, v)
}

func (o SaveChangesOptions) Has(flag SaveChangesOptions) bool {
	return o&flag == flag
}

func (o SaveChangesOptions) validate() error {
	if o.Has(BatchWithSingleChangeset) && o.Has(BatchWithIndependentOperations) {
		return ErrInvalidSaveOptions
	}
	return nil
}
