/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

const (
	opAdd        = "add"
	opAddRelated = "addRelated"
	opUpdate     = "update"
	opDelete     = "delete"
	opLink       = "link"
	opUnlink     = "unlink"
	opSetLink    = "setLink"
	opStream     = "stream"
)

const (
	preferRepresentation = "representation"
	preferMinimal        = "minimal"
)
