// Package ast defines the typed AST: tagged expression/statement/function
// nodes (spec §3.2-3.4, component C). Expr and Stmt are Go interfaces with
// one concrete type per variant — the §9 redesign of the source's manual
// tagged unions with raw owning pointers into proper sum types. A parent
// node exclusively owns its children; Clone produces a disjoint tree.
// Go's garbage collector retires the matching free_expr/free_stmt: there is
// nothing to release by hand, so no Free method exists here.
package ast

// TypeKind is the closed set of type tags from spec §3.1.
type TypeKind int

const (
	Void TypeKind = iota
	Bool
	Char
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LLong
	ULLong
	Float
	Double
	LDouble
	Ptr
	Array
	Struct
	Union
	Func
	ComplexFloat
	ComplexDouble
	ComplexLDouble
	Unknown
)

func (k TypeKind) IsInteger() bool {
	switch k {
	case Bool, Char, UChar, Short, UShort, Int, UInt, Long, ULong, LLong, ULLong:
		return true
	}
	return false
}

func (k TypeKind) IsFloat() bool {
	switch k {
	case Float, Double, LDouble:
		return true
	}
	return false
}

func (k TypeKind) IsComplex() bool {
	switch k {
	case ComplexFloat, ComplexDouble, ComplexLDouble:
		return true
	}
	return false
}

func (k TypeKind) IsUnsigned() bool {
	switch k {
	case UChar, UShort, UInt, ULong, ULLong, Bool:
		return true
	}
	return false
}

// Type fully describes a C type: (kind, elem_size, array_size, tag,
// pointer metadata). Aggregate layout (member list) lives in the tag
// tables of component B (package symtab), not here — a Type only carries
// the tag name used to look a layout up.
type Type struct {
	Kind      TypeKind
	ElemSize  int   // size in bytes of this type (or, for Ptr/Array, of one element's container is Elem)
	ArraySize int64 // element count for Array; -1 if unknown/VLA
	Tag       string // struct/union/enum tag name, or typedef name resolved away
	Elem      *Type  // pointee for Ptr, element type for Array
	IsConst   bool
	IsVolatile bool
	IsRestrict bool

	// Func-specific
	Return   *Type
	Params   []*Type
	Variadic bool
}

// Size returns the storage size in bytes of the type for the given target
// pointer width (4 for 32-bit, 8 for 64-bit) — sizeof(ptr) and sizeof(long)
// are the two kinds that depend on the target (testable property 9).
func (t *Type) Size(ptrSize int) int {
	switch t.Kind {
	case Void:
		return 0
	case Bool, Char, UChar:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt, Float:
		return 4
	case Long, ULong:
		return ptrSize
	case LLong, ULLong, Double:
		return 8
	case LDouble:
		return 16
	case ComplexFloat:
		return 8
	case ComplexDouble:
		return 16
	case ComplexLDouble:
		return 32
	case Ptr, Func:
		return ptrSize
	case Array:
		if t.ArraySize < 0 {
			return 0
		}
		elemSz := 0
		if t.Elem != nil {
			elemSz = t.Elem.Size(ptrSize)
		}
		return int(t.ArraySize) * elemSz
	case Struct, Union:
		return t.ElemSize // filled in by the tag table at registration time
	}
	return t.ElemSize
}

// Align returns the alignment of the type: its size, capped at ptrSize
// for anything wider except long double and complex types, and 1 for a
// zero-size type. Struct and union types are aligned by size the same
// way; their members' alignments are not consulted.
func (t *Type) Align(ptrSize int) int {
	sz := t.Size(ptrSize)
	if sz == 0 {
		return 1
	}
	if sz > ptrSize && t.Kind != LDouble && !t.Kind.IsComplex() {
		return ptrSize
	}
	return sz
}

// Clone returns a disjoint deep copy of the type.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	c := *t
	c.Elem = t.Elem.Clone()
	c.Return = t.Return.Clone()
	if t.Params != nil {
		c.Params = make([]*Type, len(t.Params))
		for i, p := range t.Params {
			c.Params[i] = p.Clone()
		}
	}
	return &c
}

// Equal reports structural equality, ignoring qualifiers.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Ptr:
		return t.Elem.Equal(o.Elem)
	case Array:
		return t.ArraySize == o.ArraySize && t.Elem.Equal(o.Elem)
	case Struct, Union:
		return t.Tag == o.Tag
	case Func:
		if !t.Return.Equal(o.Return) || t.Variadic != o.Variadic || len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(o.Params[i]) {
				return false
			}
		}
		return true
	}
	return true
}

// Basic constructs a scalar/void Type of the given kind.
func Basic(k TypeKind) *Type { return &Type{Kind: k} }

// PointerTo constructs a pointer type.
func PointerTo(elem *Type) *Type { return &Type{Kind: Ptr, Elem: elem} }

// ArrayOf constructs an array type of the given element count (-1 if unknown).
func ArrayOf(elem *Type, n int64) *Type { return &Type{Kind: Array, Elem: elem, ArraySize: n} }
