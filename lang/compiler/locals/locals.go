// Package locals provides a default implementation of the local-variable
// frame interface consumed by lang/compiler/env (§6 "Local-variable frame
// interface"), grounded on the teacher's resolver.Binding/Scope shape
// (lang/resolver/binding.go) but narrowed to what a bytecode compiler needs
// at emission time: a name -> slot-index table plus scalar/array/link/temp
// flags, not full closure/cell resolution (that remains the job of an
// external resolver, out of scope per spec §1).
package locals

// Flags distinguish the kind of a local-variable slot.
type Flags uint8

const (
	Scalar Flags = 1 << iota
	Array
	Link // this local is a reference created by upvar/global/variable
	Temp // compiler-introduced working slot, no source name
)

// Slot is one entry of a procedure's local-variable table.
type Slot struct {
	Name  string // empty for Temp slots
	Flags Flags
}

// Frame is a procedure's local-variable table, built incrementally during
// compilation. A CompileEnv not compiling a procedure body has a nil Frame:
// all variable references in that context resolve through LOAD_STK /
// STORE_STK instead.
type Frame struct {
	slots []Slot
	byName map[string]int
}

// NewFrame creates an empty local-variable frame.
func NewFrame() *Frame {
	return &Frame{byName: make(map[string]int)}
}

// FindOrCreateLocal resolves name to a slot index, creating one if create is
// true and the name is not already bound (§6). It returns (0, false) if the
// name is absent and create is false.
func (f *Frame) FindOrCreateLocal(name string, create bool, flags Flags) (int, bool) {
	if name != "" {
		if idx, ok := f.byName[name]; ok {
			return idx, true
		}
	}
	if !create {
		return 0, false
	}
	idx := len(f.slots)
	f.slots = append(f.slots, Slot{Name: name, Flags: flags})
	if name != "" {
		f.byName[name] = idx
	}
	return idx, true
}

// NewTemp allocates an anonymous temporary slot (§6: "Temporary slots are
// created with a null name").
func (f *Frame) NewTemp(flags Flags) int {
	idx := len(f.slots)
	f.slots = append(f.slots, Slot{Flags: flags | Temp})
	return idx
}

// Len returns the number of allocated slots (the procedure's LocalCount).
func (f *Frame) Len() int { return len(f.slots) }

// Slot returns the slot record at idx.
func (f *Frame) Slot(idx int) Slot { return f.slots[idx] }

// IsArray reports whether idx was allocated with the Array flag.
func (f *Frame) IsArray(idx int) bool { return f.slots[idx].Flags&Array != 0 }

// HasDefaultFlags reports whether idx is a plain scalar with no Link flag -
// the condition under which the optimizer may swap LOAD/STORE to the
// faster direct scalar opcodes (§4.7 pass 1).
func (f *Frame) HasDefaultFlags(idx int) bool {
	s := f.slots[idx]
	return s.Flags&Scalar != 0 && s.Flags&Link == 0
}
