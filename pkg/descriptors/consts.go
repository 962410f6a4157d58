/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package descriptors

import "math"

// EntityState flags are mutually exclusive
const (
	Detached EntityState = 1 << iota
	Unchanged
	Added
	Deleted
	Modified
)

const (
	KindEntity Kind = iota
	KindLink
	KindNamedStream
	KindOperation
)

const (
	ConditionNone ConditionKind = iota
	ConditionIfMatch
	ConditionIfNoneMatch
)

const (
	// ChangeOrderNone means "not yet ordered"
	ChangeOrderNone uint64 = math.MaxUint64

	NullHandle Handle = 0

	// AnyToken matches any version of an existing resource
	AnyToken = "*"
)

// allowed destinations per source state
var legalTransitions = map[EntityState]EntityState{
	Detached:  Added,
	Added:     Detached | Unchanged,
	Unchanged: Modified | Deleted,
	Modified:  Deleted | Unchanged,
	Deleted:   Unchanged | Detached,
}

var stateNames = map[EntityState]string{
	Detached:  "Detached",
	Unchanged: "Unchanged",
	Added:     "Added",
	Deleted:   "Deleted",
	Modified:  "Modified",
}

var kindNames = map[Kind]string{
	KindEntity:      "Entity",
	KindLink:        "Link",
	KindNamedStream: "NamedStream",
	KindOperation:   "Operation",
}
