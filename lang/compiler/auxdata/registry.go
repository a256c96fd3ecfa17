// Package auxdata implements the process-wide auxiliary-data-type registry
// consumed by the compiler (§6): a name -> {dup, free} mapping, mutex
// protected, with idempotent (later-wins) registration.
package auxdata

import (
	"sync"

	"github.com/mna/tbcc/lang/compiler/bytecode"
)

// Type describes how to duplicate and release one kind of AuxData.
type Type struct {
	Dup  func(bytecode.AuxData) bytecode.AuxData
	Free func(bytecode.AuxData)
}

var (
	mu    sync.Mutex
	types = map[string]Type{}
)

// Register installs (or replaces) the Type for name. Registration is
// idempotent by name: a later call for the same name wins.
func Register(name string, t Type) {
	mu.Lock()
	defer mu.Unlock()
	types[name] = t
}

// Lookup returns the Type registered for name, if any.
func Lookup(name string) (Type, bool) {
	mu.Lock()
	defer mu.Unlock()
	t, ok := types[name]
	return t, ok
}

func init() {
	Register("foreachinfo", Type{
		Dup:  func(a bytecode.AuxData) bytecode.AuxData { return a.Dup() },
		Free: func(bytecode.AuxData) {},
	})
	Register("jumptableinfo", Type{
		Dup:  func(a bytecode.AuxData) bytecode.AuxData { return a.Dup() },
		Free: func(bytecode.AuxData) {},
	})
}
