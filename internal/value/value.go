// Package value defines the runtime value representation shared by the
// compiler's constant pool and the VM's stack.
package value

import "strconv"

// Kind discriminates the variants of Value.
type Kind uint8

const (
	Nil Kind = iota
	Bool
	Number
	ObjKind
)

// Obj is satisfied by every heap-allocated object kind (String, Function).
// It carries no behavior here; object identity is what makes Obj equality
// meaningful, so the interface only needs to exist for the type assertions
// callers make on Value.AsObj and for the intrusive heap list in package heap.
type Obj interface {
	ObjType() ObjType
}

// ObjType discriminates the variants of Obj.
type ObjType uint8

const (
	ObjString ObjType = iota
	ObjFunction
)

// Value is a tagged union: exactly one of the fields is meaningful,
// selected by Kind.
type Value struct {
	kind Kind
	b    bool
	n    float64
	o    Obj
}

func NilValue() Value               { return Value{kind: Nil} }
func BoolValue(b bool) Value        { return Value{kind: Bool, b: b} }
func NumberValue(n float64) Value   { return Value{kind: Number, n: n} }
func ObjValue(o Obj) Value          { return Value{kind: ObjKind, o: o} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool    { return v.kind == Nil }
func (v Value) IsBool() bool   { return v.kind == Bool }
func (v Value) IsNumber() bool { return v.kind == Number }
func (v Value) IsObj() bool    { return v.kind == ObjKind }

func (v Value) AsBool() bool     { return v.b }
func (v Value) AsNumber() float64 { return v.n }
func (v Value) AsObj() Obj       { return v.o }

// String renders a Value using the language's print format: nil/true/false,
// %g for numbers, and the Obj's own Stringer for heap objects.
func (v Value) String() string {
	switch v.kind {
	case Nil:
		return "nil"
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Number:
		return formatNumber(v.n)
	case ObjKind:
		if s, ok := v.o.(interface{ String() string }); ok {
			return s.String()
		}
		return "<obj>"
	default:
		return "<invalid>"
	}
}

// IsFalsy implements the language's truthiness rule: nil and false are
// falsy, everything else (including 0 and "") is truthy.
func (v Value) IsFalsy() bool {
	switch v.kind {
	case Nil:
		return true
	case Bool:
		return !v.b
	default:
		return false
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Equal implements value equality: Nil==Nil, Bool/Number by value (so
// NaN != NaN falls out of the float64 == below), Obj by identity.
// Cross-kind comparisons are always false.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Nil:
		return true
	case Bool:
		return a.b == b.b
	case Number:
		return a.n == b.n
	case ObjKind:
		return a.o == b.o
	default:
		return false
	}
}
