/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package descriptors

type EntityState uint8

type Kind uint8

// Handle is a stable arena index handed out by the change tracker. Never reused within one tracker.
type Handle uint64

type ConditionKind uint8

// Intent is the caller-asserted precondition for the next mutation of a resource
type Intent struct {
	Kind  ConditionKind
	Token string
}

// Descriptor is an in-memory record of one pending change.
// Common fields are shared by all kinds, exactly one of the variant payloads is not nil.
type Descriptor struct {
	handle Handle
	kind   Kind
	state  EntityState

	// AttachOrder is the position in which the descriptor was started to be tracked, used as a tie-break
	AttachOrder uint64

	ChangeOrder             uint64
	ContentGeneratedForSave bool
	SaveResultWasProcessed  EntityState // state the result of the current round was applied to, zero if none
	SaveError               error

	Entity    *EntityInfo
	Link      *LinkInfo
	Stream    *StreamInfo
	Operation *OperationInfo
}

type EntityInfo struct {
	EntitySet string

	// Identity is the canonical relative resource path, e.g. Customers(1). Empty until persisted
	Identity string
	EditLink string
	ETag     string

	// server requires a concurrency token to mutate the resource
	TokenRequired bool

	// Object is the user-visible tracked object. Compared by reference
	Object any

	// SetProperties lists explicitly set properties, used by post-only-set-properties inserts
	SetProperties []string

	// not NullHandle -> inserted through the parent's navigation property
	Parent         Handle
	ParentProperty string

	Intent Intent
}

type LinkInfo struct {
	Source         Handle
	SourceProperty string

	// NullHandle for a single-valued link being unset
	Target Handle

	// Collection is false for single-valued navigation properties set by SetLink
	Collection bool
}

type StreamInfo struct {
	Entity      Handle
	Name        string
	ContentType string
	Content     []byte
	ETag        string
	Intent      Intent
}

type OperationInfo struct {
	Title      string
	Metadata   string
	Target     string
	Method     string
	Parameters map[string]any
}
