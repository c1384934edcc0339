package ast

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
)

// NodeIndex is an opaque, non-negative integer identifying a node within
// one Arena's lifetime. Indices are stable across arena growth: once
// issued, an index's kind/offsets/attributes never change, even if the
// backing storage reallocates.
type NodeIndex int32

// NoIndex is the sentinel for "no child"/"no sibling"/"no parent".
const NoIndex NodeIndex = -1

// defaultCapacity is the arena's initial node-record capacity.
const defaultCapacity = 1024

// ErrInvalidArgument is returned by GetAttribute and record accessors when
// the index is out of range, the node kind disagrees with the requested
// attribute type, or no such attribute was attached.
var ErrInvalidArgument = errors.New("ast: invalid argument")

type record struct {
	kind             Kind
	startOffset      uint32
	endOffset        uint32
	firstChildIndex  NodeIndex
	nextSiblingIndex NodeIndex
	parentIndex      NodeIndex
}

// Arena is the central ownership structure for one file's AST: a
// struct-of-arrays vector of node records plus typed attribute side-tables,
// both keyed by NodeIndex rather than pointer. Arenas are single-owner and
// not shared between goroutines; once parsing completes, read traversal
// over an Arena requires no synchronization because nothing further
// mutates it.
type Arena struct {
	records    []record
	attributes map[reflect.Type]map[NodeIndex]Attribute
	closed     atomic.Bool
}

// NewArena creates an Arena with the given initial node-record capacity.
// A capacity <= 0 uses the default of 1024.
func NewArena(capacity int) *Arena {
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	return &Arena{
		records:    make([]record, 0, capacity),
		attributes: make(map[reflect.Type]map[NodeIndex]Attribute),
	}
}

// Allocate appends a new node record and returns its index. O(1) amortized;
// the backing slice grows (doubling, via Go's append) on capacity
// exhaustion, but previously issued indices remain valid since they name a
// logical position, not a pointer into the old backing array.
func (a *Arena) Allocate(kind Kind, startOffset, endOffset uint32) NodeIndex {
	idx := NodeIndex(len(a.records)) //nolint:gosec // arena sizes fit int32 in practice
	a.records = append(a.records, record{
		kind:             kind,
		startOffset:      startOffset,
		endOffset:        endOffset,
		firstChildIndex:  NoIndex,
		nextSiblingIndex: NoIndex,
		parentIndex:      NoIndex,
	})

	return idx
}

// AllocateWithAttribute allocates a node exactly as Allocate does, then
// attaches attr to the new index in its type's attribute table. attr's
// ValidKind must equal kind (unless it reports KindInvalid, meaning it
// applies to any kind), or the call panics: this is a programmer error at
// construction time, not a runtime lookup failure.
func (a *Arena) AllocateWithAttribute(kind Kind, startOffset, endOffset uint32, attr Attribute) NodeIndex {
	if valid := attr.ValidKind(); valid != KindInvalid && valid != kind {
		panic(fmt.Sprintf("ast: attribute %T valid for kind %s, attached to %s", attr, valid, kind))
	}

	idx := a.Allocate(kind, startOffset, endOffset)
	a.attach(idx, attr)

	return idx
}

// AddAttribute attaches attr to an already-allocated index idx, e.g. trivia
// discovered after the node's children have been built.
func (a *Arena) AddAttribute(idx NodeIndex, attr Attribute) error {
	if idx < 0 || int(idx) >= len(a.records) {
		return fmt.Errorf("%w: index %d out of range", ErrInvalidArgument, idx)
	}

	kind := a.records[idx].kind
	if valid := attr.ValidKind(); valid != KindInvalid && valid != kind {
		return fmt.Errorf("%w: attribute %T not valid for kind %s", ErrInvalidArgument, attr, kind)
	}

	a.attach(idx, attr)

	return nil
}

func (a *Arena) attach(idx NodeIndex, attr Attribute) {
	typ := reflect.TypeOf(attr)

	table, ok := a.attributes[typ]
	if !ok {
		table = make(map[NodeIndex]Attribute)
		a.attributes[typ] = table
	}

	table[idx] = attr
}

// SetFirstChild sets idx's first-child pointer, used while lowering a
// parser's concrete syntax tree into the arena.
func (a *Arena) SetFirstChild(idx, child NodeIndex) { a.records[idx].firstChildIndex = child }

// SetNextSibling sets idx's next-sibling pointer.
func (a *Arena) SetNextSibling(idx, sibling NodeIndex) { a.records[idx].nextSiblingIndex = sibling }

// SetParent sets idx's parent pointer.
func (a *Arena) SetParent(idx, parent NodeIndex) { a.records[idx].parentIndex = parent }

// Kind returns the kind of the node at idx.
func (a *Arena) Kind(idx NodeIndex) Kind { return a.records[idx].kind }

// Start returns the start byte offset of the node at idx.
func (a *Arena) Start(idx NodeIndex) uint32 { return a.records[idx].startOffset }

// End returns the end byte offset of the node at idx.
func (a *Arena) End(idx NodeIndex) uint32 { return a.records[idx].endOffset }

// FirstChild returns idx's first child, or NoIndex.
func (a *Arena) FirstChild(idx NodeIndex) NodeIndex { return a.records[idx].firstChildIndex }

// NextSibling returns idx's next sibling, or NoIndex.
func (a *Arena) NextSibling(idx NodeIndex) NodeIndex { return a.records[idx].nextSiblingIndex }

// Parent returns idx's parent, or NoIndex for the root.
func (a *Arena) Parent(idx NodeIndex) NodeIndex { return a.records[idx].parentIndex }

// Children returns idx's children in order, by walking the sibling chain.
func (a *Arena) Children(idx NodeIndex) []NodeIndex {
	var children []NodeIndex

	for child := a.FirstChild(idx); child != NoIndex; child = a.NextSibling(child) {
		children = append(children, child)
	}

	return children
}

// Len returns the number of allocated nodes.
func (a *Arena) Len() int { return len(a.records) }

// Capacity returns the backing storage's current capacity.
func (a *Arena) Capacity() int { return cap(a.records) }

// Close releases the arena's storage. Idempotent: a second call is a no-op,
// guarded by a CAS on the closed flag so concurrent callers (unexpected,
// since arenas are single-owner, but defensive all the same) never double-free.
func (a *Arena) Close() {
	if !a.closed.CompareAndSwap(false, true) {
		return
	}

	a.records = nil
	a.attributes = nil
}

// GetAttribute returns the attribute of type T attached to idx. It fails
// with ErrInvalidArgument when idx is out of range, when the node's kind
// disagrees with T.ValidKind() (for a kind-specific T), or when no
// attribute of type T was attached to idx.
func GetAttribute[T Attribute](a *Arena, idx NodeIndex) (T, error) {
	var zero T

	if idx < 0 || int(idx) >= len(a.records) {
		return zero, fmt.Errorf("%w: index %d out of range", ErrInvalidArgument, idx)
	}

	if valid := zero.ValidKind(); valid != KindInvalid && valid != a.records[idx].kind {
		return zero, fmt.Errorf("%w: %T not valid for kind %s", ErrInvalidArgument, zero, a.records[idx].kind)
	}

	table, ok := a.attributes[reflect.TypeOf(zero)]
	if !ok {
		return zero, fmt.Errorf("%w: no %T attached to index %d", ErrInvalidArgument, zero, idx)
	}

	attr, ok := table[idx]
	if !ok {
		return zero, fmt.Errorf("%w: no %T attached to index %d", ErrInvalidArgument, zero, idx)
	}

	typed, ok := attr.(T)
	if !ok {
		return zero, fmt.Errorf("%w: no %T attached to index %d", ErrInvalidArgument, zero, idx)
	}

	return typed, nil
}
