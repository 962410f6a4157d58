/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package preconditions

const (
	HeaderIfMatch     = "If-Match"
	HeaderIfNoneMatch = "If-None-Match"
)

const (
	VerbNone Verb = iota
	VerbInsert
	VerbUpdate
	VerbDelete
	VerbLink
)

var NoPrecondition = Condition{}
