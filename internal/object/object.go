// Package object supplies the concrete heap object kinds: interned strings
// and compiled functions. Both thread an intrusive Next pointer so the
// VM-rooted heap list can free every live object in a single pass.
package object

import (
	"fmt"

	"ochre/internal/bytecode"
	"ochre/internal/value"
)

// StringObj is an immutable, interned byte sequence with a precomputed
// FNV-1a hash. Two StringObj with equal bytes are always the same pointer,
// because all string creation routes through the heap's intern table.
type StringObj struct {
	Chars string
	Hash  uint32
	next  value.Obj
}

func (s *StringObj) ObjType() value.ObjType { return value.ObjString }
func (s *StringObj) String() string         { return s.Chars }
func (s *StringObj) GetNext() value.Obj     { return s.next }
func (s *StringObj) SetNext(o value.Obj)    { s.next = o }

// FunctionObj is a compiled function: its arity, its own chunk of
// bytecode, and an optional name (nil for the top-level script, which
// prints as "<script>").
type FunctionObj struct {
	Arity int
	Chunk *bytecode.Chunk
	Name  *StringObj
	next  value.Obj
}

func NewFunction() *FunctionObj {
	return &FunctionObj{Chunk: bytecode.NewChunk()}
}

func (f *FunctionObj) ObjType() value.ObjType { return value.ObjFunction }
func (f *FunctionObj) GetNext() value.Obj     { return f.next }
func (f *FunctionObj) SetNext(o value.Obj)    { f.next = o }

func (f *FunctionObj) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// Linked is implemented by every Obj so the heap can walk and rebuild the
// intrusive free-everything list without a type switch per kind.
type Linked interface {
	GetNext() value.Obj
	SetNext(value.Obj)
}
