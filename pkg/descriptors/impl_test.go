/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package descriptors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsModified(t *testing.T) {
	require := require.New(t)
	for _, s := range []EntityState{Detached, Added, Deleted, Modified} {
		require.True(s.IsModified(), s)
	}
	require.False(Unchanged.IsModified())
}

func TestLegalTransitions(t *testing.T) {
	cases := []struct {
		from, to EntityState
	}{
		{Detached, Added},
		{Added, Detached},
		{Unchanged, Modified},
		{Unchanged, Deleted},
		{Modified, Deleted},
		{Added, Unchanged},
		{Modified, Unchanged},
		{Deleted, Unchanged},
		{Deleted, Detached},
	}
	for _, c := range cases {
		t.Run(c.from.String()+"->"+c.to.String(), func(t *testing.T) {
			d := NewEntity(1, EntityInfo{EntitySet: "Customers"}, c.from)
			require.NoError(t, d.SetState(c.to))
			require.Equal(t, c.to, d.State())
		})
	}
}

func TestIllegalTransitions(t *testing.T) {
	cases := []struct {
		from, to EntityState
	}{
		{Detached, Unchanged},
		{Detached, Modified},
		{Detached, Deleted},
		{Added, Modified},
		{Added, Deleted},
		{Unchanged, Added},
		{Unchanged, Detached},
		{Modified, Added},
		{Modified, Detached},
		{Deleted, Added},
		{Deleted, Modified},
	}
	for _, c := range cases {
		t.Run(c.from.String()+"->"+c.to.String(), func(t *testing.T) {
			d := NewEntity(1, EntityInfo{EntitySet: "Customers"}, c.from)
			err := d.SetState(c.to)
			require.ErrorIs(t, err, ErrInvalidStateTransition)
			require.Equal(t, c.from, d.State())
		})
	}
}

func TestApplySaveResult(t *testing.T) {
	require := require.New(t)
	d := NewEntity(1, EntityInfo{EntitySet: "Customers"}, Modified)
	d.SaveError = errors.New("previous attempt")
	require.NoError(d.ApplySaveResult(Unchanged))
	require.Equal(Unchanged, d.State())
	require.Equal(Modified, d.SaveResultWasProcessed)
	require.NoError(d.SaveError)

	require.ErrorIs(d.ApplySaveResult(Added), ErrInvalidStateTransition)
	require.Equal(Modified, d.SaveResultWasProcessed)
}

func TestClearChanges(t *testing.T) {
	require := require.New(t)

	d := NewEntity(1, EntityInfo{EntitySet: "Customers"}, Modified)
	d.ChangeOrder = 5
	d.ContentGeneratedForSave = true
	d.ClearChanges()
	require.Equal(ChangeOrderNone, d.ChangeOrder)
	require.False(d.ContentGeneratedForSave)
	require.Equal(Modified, d.State())

	op := NewOperation(2, OperationInfo{Title: "Discount"})
	require.Equal(Unchanged, op.State())
	require.False(op.HasPayload())
	op.ChangeOrder = 7
	op.ClearChanges()
	require.Equal(uint64(7), op.ChangeOrder)
}

func TestTokenAccessors(t *testing.T) {
	require := require.New(t)

	e := NewEntity(1, EntityInfo{EntitySet: "Customers", ETag: `W/"1"`}, Unchanged)
	require.Equal(`W/"1"`, e.ETag())
	e.SetETag(`W/"2"`)
	require.Equal(`W/"2"`, e.Entity.ETag)
	require.NoError(e.SetIntent(IfMatch(`W/"2"`)))
	require.Equal(IfMatch(`W/"2"`), e.Intent())

	s := NewStream(2, StreamInfo{Entity: 1, Name: "Photo"}, Modified)
	require.NoError(s.SetIntent(IfNoneMatch(AnyToken)))
	require.Equal(ConditionIfNoneMatch, s.Intent().Kind)

	l := NewLink(3, LinkInfo{Source: 1, SourceProperty: "Orders", Target: 4, Collection: true}, Added)
	require.ErrorIs(l.SetIntent(IfMatch("x")), ErrWrongDescriptorKind)
	require.Empty(l.ETag())
}
