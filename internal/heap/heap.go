// Package heap owns the VM/Compiler-shared object heap: the intrusive
// linked list of every live object, and the intern table that canonicalizes
// strings. It is modeled as a plain Go struct passed by pointer into both
// the Compiler and the VM, rather than as process-wide globals, so that
// nothing prevents running two independent interpreters in one process
// (e.g. one per test case).
package heap

import (
	"hash/fnv"

	"ochre/internal/object"
	"ochre/internal/table"
	"ochre/internal/value"
)

// Heap is the sole root for teardown: every String and Function allocated
// through it is reachable from objects, so Free releases everything by
// dropping that list's head.
type Heap struct {
	objects value.Obj // head of the intrusive list
	Strings *table.Table
}

func New() *Heap {
	return &Heap{Strings: table.New()}
}

func hashFNV1a(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// InternString returns the canonical StringObj for chars, allocating and
// linking a new one the first time chars is seen and returning the
// existing object on every subsequent call with equal bytes. This is what
// makes two string literals with equal bytes compare equal by identity.
func (h *Heap) InternString(chars string) *object.StringObj {
	hash := hashFNV1a(chars)
	if existing := h.Strings.FindString(chars, hash); existing != nil {
		return existing
	}
	s := &object.StringObj{Chars: chars, Hash: hash}
	h.link(s)
	h.Strings.Set(s, value.NilValue())
	return s
}

// NewFunction allocates a fresh FunctionObj and links it into the heap.
// Unlike strings, functions are never interned: two functions with
// identical bytecode are still distinct values.
func (h *Heap) NewFunction() *object.FunctionObj {
	f := object.NewFunction()
	h.link(f)
	return f
}

func (h *Heap) link(o value.Obj) {
	o.(object.Linked).SetNext(h.objects)
	h.objects = o
}

// Free drops the head of the intrusive object list and replaces the intern
// table with an empty one, so every object becomes unreachable at once;
// the list itself is not walked. The heap never reclaims anything while a
// program runs; teardown happens once at shutdown.
func (h *Heap) Free() {
	h.objects = nil
	h.Strings = table.New()
}
