/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package tracker

import (
	"container/heap"
	"fmt"
	"strings"

	"github.com/voedger/odata/pkg/descriptors"
)

// GetEligibleDescriptors returns modified descriptors which carry a payload, ordered so that
// - an Added entity precedes Added/Modified links naming it, its named streams and entities related-added through it
// - a Deleted link precedes the deletion of either endpoint
// Ties are broken by attach order. ChangeOrder is assigned in the returned order.
func (t *Tracker) GetEligibleDescriptors() ([]*descriptors.Descriptor, error) {
	nodes := map[descriptors.Handle]*orderNode{}
	for _, d := range t.arena {
		if d.IsModified() && d.HasPayload() {
			nodes[d.Handle()] = &orderNode{d: d}
		}
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	// before -> after
	dependsOn := func(after *orderNode, before descriptors.Handle, beforeState descriptors.EntityState) {
		b, ok := nodes[before]
		if !ok || b.d.State() != beforeState {
			return
		}
		b.next = append(b.next, after)
		after.inDegree++
	}
	precedes := func(before *orderNode, after descriptors.Handle, afterState descriptors.EntityState) {
		a, ok := nodes[after]
		if !ok || a.d.State() != afterState {
			return
		}
		before.next = append(before.next, a)
		a.inDegree++
	}
	for _, n := range nodes {
		d := n.d
		switch d.Kind() {
		case descriptors.KindLink:
			switch d.State() {
			case descriptors.Added, descriptors.Modified:
				dependsOn(n, d.Link.Source, descriptors.Added)
				if d.Link.Target != d.Link.Source {
					dependsOn(n, d.Link.Target, descriptors.Added)
				}
			case descriptors.Deleted:
				precedes(n, d.Link.Source, descriptors.Deleted)
				if d.Link.Target != d.Link.Source {
					precedes(n, d.Link.Target, descriptors.Deleted)
				}
			}
		case descriptors.KindEntity:
			if d.State() == descriptors.Added && d.Entity.Parent != descriptors.NullHandle {
				dependsOn(n, d.Entity.Parent, descriptors.Added)
			}
		case descriptors.KindNamedStream:
			dependsOn(n, d.Stream.Entity, descriptors.Added)
		}
	}

	ready := readyQueue{}
	for _, n := range nodes {
		if n.inDegree == 0 {
			ready = append(ready, n)
		}
	}
	heap.Init(&ready)

	res := make([]*descriptors.Descriptor, 0, len(nodes))
	for ready.Len() > 0 {
		n := heap.Pop(&ready).(*orderNode)
		res = append(res, n.d)
		for _, next := range n.next {
			next.inDegree--
			if next.inDegree == 0 {
				heap.Push(&ready, next)
			}
		}
	}

	if len(res) < len(nodes) {
		cycled := []string{}
		for _, n := range nodes {
			if n.inDegree > 0 {
				cycled = append(cycled, n.d.String())
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrCyclicDependency, strings.Join(cycled, ", "))
	}

	for _, d := range res {
		t.lastChangeOrder++
		d.ChangeOrder = t.lastChangeOrder
	}
	return res, nil
}

func (q readyQueue) Len() int           { return len(q) }
func (q readyQueue) Less(i, j int) bool { return q[i].d.AttachOrder < q[j].d.AttachOrder }
func (q readyQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *readyQueue) Push(x any) {
	*q = append(*q, x.(*orderNode))
}

func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
