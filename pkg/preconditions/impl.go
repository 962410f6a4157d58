/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package preconditions

import (
	"github.com/voedger/odata/pkg/descriptors"
)

// VerbOf returns what kind of mutation the descriptor will be submitted as
func VerbOf(d *descriptors.Descriptor) Verb {
	switch d.Kind() {
	case descriptors.KindLink:
		return VerbLink
	case descriptors.KindNamedStream:
		if d.State() == descriptors.Modified {
			return VerbUpdate
		}
		return VerbNone
	case descriptors.KindEntity:
		switch d.State() {
		case descriptors.Added:
			return VerbInsert
		case descriptors.Modified:
			return VerbUpdate
		case descriptors.Deleted:
			return VerbDelete
		}
	}
	return VerbNone
}

// Evaluate decides which conditional header guards the next mutation of the descriptor.
// useETags == true -> the cached token is sent as If-Match when the caller asserted nothing.
// Returns *LocalPreconditionError if the outcome is already known locally.
func Evaluate(d *descriptors.Descriptor, useETags bool) (Condition, error) {
	switch VerbOf(d) {
	case VerbUpdate, VerbDelete:
	default:
		return NoPrecondition, nil
	}

	intent := d.Intent()
	cached := d.ETag()
	switch intent.Kind {
	case descriptors.ConditionIfMatch:
		if intent.Token != descriptors.AnyToken && len(cached) > 0 && intent.Token != cached {
			return NoPrecondition, preconditionFailed(d, "If-Match %s, cached %s", intent.Token, cached)
		}
		return Condition{Header: HeaderIfMatch, Token: intent.Token}, nil
	case descriptors.ConditionIfNoneMatch:
		if intent.Token == descriptors.AnyToken || (len(cached) > 0 && intent.Token == cached) {
			return NoPrecondition, preconditionFailed(d, "If-None-Match %s, cached %s", intent.Token, cached)
		}
		return Condition{Header: HeaderIfNoneMatch, Token: intent.Token}, nil
	}

	if len(cached) == 0 {
		return NoPrecondition, nil
	}
	if useETags {
		return Condition{Header: HeaderIfMatch, Token: cached}, nil
	}
	if d.Kind() == descriptors.KindEntity && d.Entity.TokenRequired {
		return NoPrecondition, preconditionRequired(d)
	}
	return NoPrecondition, nil
}
