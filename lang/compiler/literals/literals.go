// Package literals provides a default implementation of the literal-table
// interface consumed by lang/compiler/env (§6 "Literal table interface").
// A real host interpreter may have its own shared, interned literal table;
// this one is self-contained so the compiler core is independently testable.
package literals

import (
	"sync"

	"github.com/dolthub/swiss"
)

// Flags tag a registered literal.
type Flags uint8

const (
	// CmdName hints that this literal is used to resolve a command name,
	// allowing the runtime to cache the resolution on the literal object.
	CmdName Flags = 1 << iota
	// Unshared forbids deduplication, to avoid type-shimmering of
	// command-name objects that must stay distinct per use site.
	Unshared
)

type entry struct {
	value    []byte
	flags    Flags
	refcount int32
}

// Table is a per-interpreter, string-hash-keyed, deduplicating pool of
// immutable literal byte values, consulted and mutated by CompileEnv during
// emission and inherited unchanged by the finalized ByteCode.
type Table struct {
	mu      sync.Mutex
	entries []entry
	dedup   *swiss.Map[string, uint32]
}

// New creates an empty literal table.
func New() *Table {
	return &Table{dedup: swiss.NewMap[string, uint32](64)}
}

// Register deduplicates bytes against prior registrations (unless Unshared
// is set) and returns its pool index, incrementing its refcount.
func (t *Table) Register(value []byte, flags Flags) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if flags&Unshared == 0 {
		if idx, ok := t.dedup.Get(string(value)); ok {
			t.entries[idx].refcount++
			return idx
		}
	}

	idx := uint32(len(t.entries))
	t.entries = append(t.entries, entry{value: append([]byte(nil), value...), flags: flags, refcount: 1})
	if flags&Unshared == 0 {
		t.dedup.Put(string(value), idx)
	}
	return idx
}

// Release decrements the refcount of the literal at idx. Callers must not
// read Value(idx) afterward if the count reaches zero; the slot itself is
// never compacted, so indices already emitted into bytecode stay valid.
func (t *Table) Release(idx uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(idx) >= len(t.entries) {
		return
	}
	t.entries[idx].refcount--
}

// Hide detaches idx from the dedup index, so future Register calls with the
// same bytes will not coalesce onto it (preventing type-shimmering, §6).
func (t *Table) Hide(idx uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(idx) >= len(t.entries) {
		return
	}
	key := string(t.entries[idx].value)
	if cur, ok := t.dedup.Get(key); ok && cur == idx {
		t.dedup.Delete(key)
	}
	t.entries[idx].flags |= Unshared
}

// Value returns the bytes registered at idx.
func (t *Table) Value(idx uint32) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[idx].value
}

// Len returns the number of (possibly zero-refcount) slots in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
