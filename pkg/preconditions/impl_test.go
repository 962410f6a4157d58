/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package preconditions

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voedger/odata/pkg/descriptors"
)

func entity(state descriptors.EntityState, etag string, intent descriptors.Intent) *descriptors.Descriptor {
	return descriptors.NewEntity(1, descriptors.EntityInfo{
		EntitySet: "Customers",
		Identity:  "Customers(1)",
		ETag:      etag,
		Intent:    intent,
	}, state)
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name     string
		d        *descriptors.Descriptor
		useETags bool
		expected Condition
	}{
		{"insert", entity(descriptors.Added, "", descriptors.IfMatch("x")), true, NoPrecondition},
		{"update without token", entity(descriptors.Modified, "", descriptors.Intent{}), true, NoPrecondition},
		{"update, auto If-Match", entity(descriptors.Modified, `"v1"`, descriptors.Intent{}), true, Condition{HeaderIfMatch, `"v1"`}},
		{"update, token, etags disabled", entity(descriptors.Modified, `"v1"`, descriptors.Intent{}), false, NoPrecondition},
		{"delete, matching If-Match", entity(descriptors.Deleted, `"v1"`, descriptors.IfMatch(`"v1"`)), true, Condition{HeaderIfMatch, `"v1"`}},
		{"delete, If-Match *", entity(descriptors.Deleted, `"v1"`, descriptors.IfMatch("*")), true, Condition{HeaderIfMatch, "*"}},
		{"update, If-Match, unknown cached", entity(descriptors.Modified, "", descriptors.IfMatch(`"v7"`)), true, Condition{HeaderIfMatch, `"v7"`}},
		{"update, If-None-Match other", entity(descriptors.Modified, `"v1"`, descriptors.IfNoneMatch(`"v0"`)), true, Condition{HeaderIfNoneMatch, `"v0"`}},
		{"link", descriptors.NewLink(2, descriptors.LinkInfo{Source: 1, SourceProperty: "Orders", Target: 3}, descriptors.Added), true, NoPrecondition},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cond, err := Evaluate(c.d, c.useETags)
			require.NoError(t, err)
			require.Equal(t, c.expected, cond)
		})
	}
}

func TestEvaluate_PreconditionFailedLocally(t *testing.T) {
	cases := []struct {
		name string
		d    *descriptors.Descriptor
	}{
		{"If-Match mismatch", entity(descriptors.Modified, `"v1"`, descriptors.IfMatch(`"v2"`))},
		{"If-None-Match equal", entity(descriptors.Deleted, `"v1"`, descriptors.IfNoneMatch(`"v1"`))},
		{"If-None-Match *", entity(descriptors.Modified, "", descriptors.IfNoneMatch("*"))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Evaluate(c.d, true)
			require.ErrorIs(t, err, ErrPreconditionFailed)
			var local *LocalPreconditionError
			require.True(t, errors.As(err, &local))
			require.Equal(t, http.StatusPreconditionFailed, local.StatusCode)
			require.Same(t, c.d, local.Descriptor)
		})
	}
}

func TestEvaluate_PreconditionRequiredLocally(t *testing.T) {
	require := require.New(t)
	d := entity(descriptors.Modified, `"v1"`, descriptors.Intent{})
	d.Entity.TokenRequired = true

	_, err := Evaluate(d, false)
	require.ErrorIs(err, ErrPreconditionRequired)
	var local *LocalPreconditionError
	require.ErrorAs(err, &local)
	require.Equal(http.StatusPreconditionRequired, local.StatusCode)

	// cached token is used automatically -> nothing to raise
	cond, err := Evaluate(d, true)
	require.NoError(err)
	require.Equal(Condition{HeaderIfMatch, `"v1"`}, cond)
}

func TestVerbOf(t *testing.T) {
	require := require.New(t)
	require.Equal(VerbInsert, VerbOf(entity(descriptors.Added, "", descriptors.Intent{})))
	require.Equal(VerbUpdate, VerbOf(entity(descriptors.Modified, "", descriptors.Intent{})))
	require.Equal(VerbDelete, VerbOf(entity(descriptors.Deleted, "", descriptors.Intent{})))
	require.Equal(VerbNone, VerbOf(entity(descriptors.Unchanged, "", descriptors.Intent{})))
	require.Equal(VerbUpdate, VerbOf(descriptors.NewStream(2, descriptors.StreamInfo{Entity: 1, Name: "Photo"}, descriptors.Modified)))
	require.Equal(VerbNone, VerbOf(descriptors.NewOperation(3, descriptors.OperationInfo{})))
}
