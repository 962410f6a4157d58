/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package descriptors

import (
	"fmt"
	"strconv"
)

func (s EntityState) IsModified() bool {
	return s != Unchanged
}

func (s EntityState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "EntityState(" + strconv.Itoa(int(s)) + ")"
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

func IfMatch(token string) Intent {
	return Intent{Kind: ConditionIfMatch, Token: token}
}

func IfNoneMatch(token string) Intent {
	return Intent{Kind: ConditionIfNoneMatch, Token: token}
}

func NewEntity(h Handle, info EntityInfo, state EntityState) *Descriptor {
	d := newDescriptor(h, KindEntity, state)
	d.Entity = &info
	return d
}

func NewLink(h Handle, info LinkInfo, state EntityState) *Descriptor {
	d := newDescriptor(h, KindLink, state)
	d.Link = &info
	return d
}

func NewStream(h Handle, info StreamInfo, state EntityState) *Descriptor {
	d := newDescriptor(h, KindNamedStream, state)
	d.Stream = &info
	return d
}

// NewOperation creates an invoked operation descriptor, always Unchanged
func NewOperation(h Handle, info OperationInfo) *Descriptor {
	d := newDescriptor(h, KindOperation, Unchanged)
	d.Operation = &info
	return d
}

func newDescriptor(h Handle, kind Kind, state EntityState) *Descriptor {
	return &Descriptor{
		handle:      h,
		kind:        kind,
		state:       state,
		ChangeOrder: ChangeOrderNone,
	}
}

func (d *Descriptor) Handle() Handle     { return d.handle }
func (d *Descriptor) Kind() Kind         { return d.kind }
func (d *Descriptor) State() EntityState { return d.state }

func (d *Descriptor) IsModified() bool {
	return d.state.IsModified()
}

// HasPayload is false for operation descriptors: they contribute nothing to a save round
func (d *Descriptor) HasPayload() bool {
	return d.kind != KindOperation
}

// SetState applies a legal transition. Transition to the same state is a no-op
func (d *Descriptor) SetState(newState EntityState) error {
	if newState == d.state {
		return nil
	}
	if legalTransitions[d.state]&newState == 0 {
		return fmt.Errorf("%w: %s %s -> %s", ErrInvalidStateTransition, d, d.state, newState)
	}
	d.state = newState
	return nil
}

// ApplySaveResult transitions the descriptor after a confirmed successful response and remembers the
// state the result was applied to
func (d *Descriptor) ApplySaveResult(newState EntityState) error {
	prev := d.state
	if err := d.SetState(newState); err != nil {
		return err
	}
	d.SaveResultWasProcessed = prev
	d.SaveError = nil
	return nil
}

// Detach removes the descriptor from the state machine on caller's request, whatever the state is
func (d *Descriptor) Detach() {
	d.state = Detached
}

// ClearChanges resets per-round bookkeeping once the round is known to be durable. State is kept
func (d *Descriptor) ClearChanges() {
	if d.kind == KindOperation {
		return
	}
	d.ContentGeneratedForSave = false
	d.ChangeOrder = ChangeOrderNone
}

// ETag returns the cached concurrency token of an entity or a named stream
func (d *Descriptor) ETag() string {
	switch d.kind {
	case KindEntity:
		return d.Entity.ETag
	case KindNamedStream:
		return d.Stream.ETag
	}
	return ""
}

func (d *Descriptor) SetETag(etag string) {
	switch d.kind {
	case KindEntity:
		d.Entity.ETag = etag
	case KindNamedStream:
		d.Stream.ETag = etag
	}
}

// Intent returns the caller-asserted precondition of an entity or a named stream
func (d *Descriptor) Intent() Intent {
	switch d.kind {
	case KindEntity:
		return d.Entity.Intent
	case KindNamedStream:
		return d.Stream.Intent
	}
	return Intent{}
}

func (d *Descriptor) SetIntent(intent Intent) error {
	switch d.kind {
	case KindEntity:
		d.Entity.Intent = intent
	case KindNamedStream:
		d.Stream.Intent = intent
	default:
		return fmt.Errorf("%w: %s does not carry a concurrency token", ErrWrongDescriptorKind, d)
	}
	return nil
}

func (d *Descriptor) String() string {
	switch d.kind {
	case KindEntity:
		if len(d.Entity.Identity) > 0 {
			return fmt.Sprintf("entity %s", d.Entity.Identity)
		}
		return fmt.Sprintf("entity #%d of %s", d.handle, d.Entity.EntitySet)
	case KindLink:
		return fmt.Sprintf("link #%d %d.%s->%d", d.handle, d.Link.Source, d.Link.SourceProperty, d.Link.Target)
	case KindNamedStream:
		return fmt.Sprintf("stream #%d %d/%s", d.handle, d.Stream.Entity, d.Stream.Name)
	case KindOperation:
		return fmt.Sprintf("operation #%d %s", d.handle, d.Operation.Title)
	}
	return fmt.Sprintf("descriptor #%d", d.handle)
}
