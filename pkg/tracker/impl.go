/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package tracker

import (
	"fmt"
	"reflect"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/voedger/odata/pkg/descriptors"
)

// BeginSave enters a save round. A second call before EndSave fails
func (t *Tracker) BeginSave() error {
	if !t.saving.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	return nil
}

func (t *Tracker) EndSave() {
	t.saving.Store(false)
}

func (t *Tracker) checkNotSaving() error {
	if t.saving.Load() {
		return ErrSaveInProgress
	}
	return nil
}

func (t *Tracker) AddEntity(entitySet string, obj any) (descriptors.Handle, error) {
	return t.addEntity(entitySet, obj, descriptors.NullHandle, "")
}

// AddRelatedEntity adds a new entity which is inserted through the navigation property of source
func (t *Tracker) AddRelatedEntity(source any, nav string, entitySet string, obj any) (descriptors.Handle, error) {
	if len(nav) == 0 {
		return descriptors.NullHandle, ErrEmptyPropertyName
	}
	parent, err := t.entityOf(source)
	if err != nil {
		return descriptors.NullHandle, err
	}
	if parent.State() == descriptors.Deleted {
		return descriptors.NullHandle, fmt.Errorf("%w: %s", ErrEntityIsDeleted, parent)
	}
	return t.addEntity(entitySet, obj, parent.Handle(), nav)
}

func (t *Tracker) addEntity(entitySet string, obj any, parent descriptors.Handle, parentProperty string) (descriptors.Handle, error) {
	if err := t.checkNotSaving(); err != nil {
		return descriptors.NullHandle, err
	}
	if err := t.checkNewObject(entitySet, obj); err != nil {
		return descriptors.NullHandle, err
	}
	d := descriptors.NewEntity(t.nextHandle(), descriptors.EntityInfo{
		EntitySet:      entitySet,
		Object:         obj,
		Parent:         parent,
		ParentProperty: parentProperty,
	}, descriptors.Detached)
	if err := d.SetState(descriptors.Added); err != nil {
		// notest
		return descriptors.NullHandle, err
	}
	t.track(d)
	t.byObject[obj] = d.Handle()
	return d.Handle(), nil
}

// AttachEntity starts tracking an existing resource as Unchanged
func (t *Tracker) AttachEntity(entitySet string, identity string, editLink string, etag string, obj any) (descriptors.Handle, error) {
	if err := t.checkNotSaving(); err != nil {
		return descriptors.NullHandle, err
	}
	if err := t.checkNewObject(entitySet, obj); err != nil {
		return descriptors.NullHandle, err
	}
	d := descriptors.NewEntity(t.nextHandle(), descriptors.EntityInfo{
		EntitySet: entitySet,
		Identity:  identity,
		EditLink:  editLink,
		ETag:      etag,
		Object:    obj,
	}, descriptors.Unchanged)
	t.track(d)
	t.byObject[obj] = d.Handle()
	return d.Handle(), nil
}

// UpdateEntity marks the entity as modified. No-op for Added and Modified entities
func (t *Tracker) UpdateEntity(obj any) error {
	if err := t.checkNotSaving(); err != nil {
		return err
	}
	d, err := t.entityOf(obj)
	if err != nil {
		return err
	}
	if d.State() == descriptors.Added {
		return nil
	}
	return d.SetState(descriptors.Modified)
}

// MarkPropertiesSet records explicitly set properties of the entity
func (t *Tracker) MarkPropertiesSet(obj any, props ...string) error {
	if err := t.checkNotSaving(); err != nil {
		return err
	}
	d, err := t.entityOf(obj)
	if err != nil {
		return err
	}
	for _, p := range props {
		if len(p) == 0 {
			return ErrEmptyPropertyName
		}
		if !slices.Contains(d.Entity.SetProperties, p) {
			d.Entity.SetProperties = append(d.Entity.SetProperties, p)
		}
	}
	return nil
}

// DeleteEntity marks the entity for delete. An Added entity is cancelled and forgotten together with
// its pending links and streams
func (t *Tracker) DeleteEntity(obj any) error {
	if err := t.checkNotSaving(); err != nil {
		return err
	}
	d, err := t.entityOf(obj)
	if err != nil {
		return err
	}
	switch d.State() {
	case descriptors.Deleted:
		return nil
	case descriptors.Added:
		if err := d.SetState(descriptors.Detached); err != nil {
			// notest
			return err
		}
		t.Forget(d.Handle())
		return nil
	}
	return d.SetState(descriptors.Deleted)
}

// SetIntent sets the caller-asserted precondition for the next mutation of the entity
func (t *Tracker) SetIntent(obj any, intent descriptors.Intent) error {
	if err := t.checkNotSaving(); err != nil {
		return err
	}
	d, err := t.entityOf(obj)
	if err != nil {
		return err
	}
	return d.SetIntent(intent)
}

func (t *Tracker) AddLink(source any, nav string, target any) (descriptors.Handle, error) {
	if err := t.checkNotSaving(); err != nil {
		return descriptors.NullHandle, err
	}
	src, tgt, err := t.linkEnds(source, nav, target)
	if err != nil {
		return descriptors.NullHandle, err
	}
	key := linkKey{source: src.Handle(), nav: nav, target: tgt.Handle()}
	if h, ok := t.links[key]; ok {
		existing := t.arena[h]
		if existing.State() == descriptors.Deleted {
			// re-adding a link pending delete cancels the delete
			return h, existing.SetState(descriptors.Unchanged)
		}
		return descriptors.NullHandle, fmt.Errorf("%w: %s", ErrAlreadyTracked, existing)
	}
	d := descriptors.NewLink(t.nextHandle(), descriptors.LinkInfo{
		Source:         src.Handle(),
		SourceProperty: nav,
		Target:         tgt.Handle(),
		Collection:     true,
	}, descriptors.Detached)
	if err := d.SetState(descriptors.Added); err != nil {
		// notest
		return descriptors.NullHandle, err
	}
	t.track(d)
	t.links[key] = d.Handle()
	return d.Handle(), nil
}

// AttachLink starts tracking an existing relationship as Unchanged
func (t *Tracker) AttachLink(source any, nav string, target any) (descriptors.Handle, error) {
	if err := t.checkNotSaving(); err != nil {
		return descriptors.NullHandle, err
	}
	src, tgt, err := t.linkEnds(source, nav, target)
	if err != nil {
		return descriptors.NullHandle, err
	}
	key := linkKey{source: src.Handle(), nav: nav, target: tgt.Handle()}
	if h, ok := t.links[key]; ok {
		return descriptors.NullHandle, fmt.Errorf("%w: %s", ErrAlreadyTracked, t.arena[h])
	}
	d := descriptors.NewLink(t.nextHandle(), descriptors.LinkInfo{
		Source:         src.Handle(),
		SourceProperty: nav,
		Target:         tgt.Handle(),
		Collection:     true,
	}, descriptors.Unchanged)
	t.track(d)
	t.links[key] = d.Handle()
	return d.Handle(), nil
}

// DeleteLink marks the relationship for removal. An Added link is cancelled and forgotten
func (t *Tracker) DeleteLink(source any, nav string, target any) (descriptors.Handle, error) {
	if err := t.checkNotSaving(); err != nil {
		return descriptors.NullHandle, err
	}
	src, tgt, err := t.linkEnds(source, nav, target)
	if err != nil {
		return descriptors.NullHandle, err
	}
	key := linkKey{source: src.Handle(), nav: nav, target: tgt.Handle()}
	if h, ok := t.links[key]; ok {
		existing := t.arena[h]
		if existing.State() == descriptors.Added {
			if err := existing.SetState(descriptors.Detached); err != nil {
				// notest
				return descriptors.NullHandle, err
			}
			t.Forget(h)
			return h, nil
		}
		return h, existing.SetState(descriptors.Deleted)
	}
	d := descriptors.NewLink(t.nextHandle(), descriptors.LinkInfo{
		Source:         src.Handle(),
		SourceProperty: nav,
		Target:         tgt.Handle(),
		Collection:     true,
	}, descriptors.Unchanged)
	if err := d.SetState(descriptors.Deleted); err != nil {
		// notest
		return descriptors.NullHandle, err
	}
	t.track(d)
	t.links[key] = d.Handle()
	return d.Handle(), nil
}

// SetLink sets or, if target is nil, unsets a single-valued navigation property
func (t *Tracker) SetLink(source any, nav string, target any) (descriptors.Handle, error) {
	if err := t.checkNotSaving(); err != nil {
		return descriptors.NullHandle, err
	}
	if len(nav) == 0 {
		return descriptors.NullHandle, ErrEmptyPropertyName
	}
	src, err := t.entityOf(source)
	if err != nil {
		return descriptors.NullHandle, err
	}
	tgtHandle := descriptors.NullHandle
	if target != nil {
		tgt, err := t.entityOf(target)
		if err != nil {
			return descriptors.NullHandle, err
		}
		tgtHandle = tgt.Handle()
	}
	key := linkKey{source: src.Handle(), nav: nav}
	if h, ok := t.links[key]; ok {
		existing := t.arena[h]
		existing.Link.Target = tgtHandle
		if existing.State() == descriptors.Added {
			return h, nil
		}
		return h, existing.SetState(descriptors.Modified)
	}
	d := descriptors.NewLink(t.nextHandle(), descriptors.LinkInfo{
		Source:         src.Handle(),
		SourceProperty: nav,
		Target:         tgtHandle,
	}, descriptors.Unchanged)
	if err := d.SetState(descriptors.Modified); err != nil {
		// notest
		return descriptors.NullHandle, err
	}
	t.track(d)
	t.links[key] = d.Handle()
	return d.Handle(), nil
}

// SetStream sets new content of a named binary stream of the entity
func (t *Tracker) SetStream(obj any, name string, contentType string, content []byte) (descriptors.Handle, error) {
	if err := t.checkNotSaving(); err != nil {
		return descriptors.NullHandle, err
	}
	if len(name) == 0 {
		return descriptors.NullHandle, ErrEmptyPropertyName
	}
	e, err := t.entityOf(obj)
	if err != nil {
		return descriptors.NullHandle, err
	}
	if e.State() == descriptors.Deleted {
		return descriptors.NullHandle, fmt.Errorf("%w: %s", ErrEntityIsDeleted, e)
	}
	key := streamKey{entity: e.Handle(), name: name}
	if h, ok := t.streams[key]; ok {
		existing := t.arena[h]
		existing.Stream.ContentType = contentType
		existing.Stream.Content = content
		return h, existing.SetState(descriptors.Modified)
	}
	d := descriptors.NewStream(t.nextHandle(), descriptors.StreamInfo{
		Entity:      e.Handle(),
		Name:        name,
		ContentType: contentType,
		Content:     content,
	}, descriptors.Unchanged)
	if err := d.SetState(descriptors.Modified); err != nil {
		// notest
		return descriptors.NullHandle, err
	}
	t.track(d)
	t.streams[key] = d.Handle()
	return d.Handle(), nil
}

// AddOperation tracks an invoked operation. It never takes part in a save round
func (t *Tracker) AddOperation(info descriptors.OperationInfo) (descriptors.Handle, error) {
	if err := t.checkNotSaving(); err != nil {
		return descriptors.NullHandle, err
	}
	d := descriptors.NewOperation(t.nextHandle(), info)
	t.track(d)
	return d.Handle(), nil
}

// Detach stops tracking the entity and everything that references it
func (t *Tracker) Detach(obj any) error {
	if err := t.checkNotSaving(); err != nil {
		return err
	}
	d, err := t.entityOf(obj)
	if err != nil {
		return err
	}
	t.Forget(d.Handle())
	return nil
}

// DetachHandle stops tracking the descriptor. Detaching an entity detaches its links and streams too
func (t *Tracker) DetachHandle(h descriptors.Handle) error {
	if err := t.checkNotSaving(); err != nil {
		return err
	}
	if _, ok := t.arena[h]; !ok {
		return fmt.Errorf("%w: handle %d", ErrNotTracked, h)
	}
	t.Forget(h)
	return nil
}

// Forget removes the descriptor from tracking. Dependent links and streams of an entity are removed,
// entities related-added through it become plain inserts.
// Allowed during a save round: used when a delete is confirmed
func (t *Tracker) Forget(h descriptors.Handle) {
	d, ok := t.arena[h]
	if !ok {
		return
	}
	delete(t.arena, h)
	d.Detach()
	switch d.Kind() {
	case descriptors.KindEntity:
		delete(t.byObject, d.Entity.Object)
		for _, other := range t.arena {
			switch other.Kind() {
			case descriptors.KindLink:
				if other.Link.Source == h || other.Link.Target == h {
					t.Forget(other.Handle())
				}
			case descriptors.KindNamedStream:
				if other.Stream.Entity == h {
					t.Forget(other.Handle())
				}
			case descriptors.KindEntity:
				if other.Entity.Parent == h {
					other.Entity.Parent = descriptors.NullHandle
					other.Entity.ParentProperty = ""
				}
			}
		}
	case descriptors.KindLink:
		for key, lh := range t.links {
			if lh == h {
				delete(t.links, key)
			}
		}
	case descriptors.KindNamedStream:
		delete(t.streams, streamKey{entity: d.Stream.Entity, name: d.Stream.Name})
	}
}

func (t *Tracker) Get(h descriptors.Handle) (*descriptors.Descriptor, bool) {
	d, ok := t.arena[h]
	return d, ok
}

// Entity returns the descriptor of a tracked object
func (t *Tracker) Entity(obj any) (*descriptors.Descriptor, bool) {
	if !isPointer(obj) {
		return nil, false
	}
	h, ok := t.byObject[obj]
	if !ok {
		return nil, false
	}
	return t.arena[h], true
}

// Descriptors returns every tracked descriptor in attach order
func (t *Tracker) Descriptors() []*descriptors.Descriptor {
	res := make([]*descriptors.Descriptor, 0, len(t.arena))
	for _, d := range t.arena {
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].AttachOrder < res[j].AttachOrder })
	return res
}

func (t *Tracker) Len() int {
	return len(t.arena)
}

// MarkSubmissionRoundStart resets per-round content bookkeeping of every descriptor
func (t *Tracker) MarkSubmissionRoundStart() {
	for _, d := range t.arena {
		d.ContentGeneratedForSave = false
		d.SaveResultWasProcessed = 0
	}
}

func (t *Tracker) track(d *descriptors.Descriptor) {
	t.lastAttachOrder++
	d.AttachOrder = t.lastAttachOrder
	t.arena[d.Handle()] = d
}

func (t *Tracker) nextHandle() descriptors.Handle {
	t.lastHandle++
	return t.lastHandle
}

func (t *Tracker) checkNewObject(entitySet string, obj any) error {
	if len(entitySet) == 0 {
		return ErrEmptyEntitySet
	}
	if !isPointer(obj) {
		return ErrNotPointer
	}
	if h, ok := t.byObject[obj]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyTracked, t.arena[h])
	}
	return nil
}

func (t *Tracker) entityOf(obj any) (*descriptors.Descriptor, error) {
	if !isPointer(obj) {
		return nil, ErrNotPointer
	}
	h, ok := t.byObject[obj]
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotTracked, obj)
	}
	return t.arena[h], nil
}

func (t *Tracker) linkEnds(source any, nav string, target any) (src, tgt *descriptors.Descriptor, err error) {
	if len(nav) == 0 {
		return nil, nil, ErrEmptyPropertyName
	}
	if src, err = t.entityOf(source); err != nil {
		return nil, nil, err
	}
	if tgt, err = t.entityOf(target); err != nil {
		return nil, nil, err
	}
	return src, tgt, nil
}

func isPointer(obj any) bool {
	if obj == nil {
		return false
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && !v.IsNil()
}
