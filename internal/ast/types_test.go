package ast

import "testing"

func TestTypeKindPredicates(t *testing.T) {
	if !Int.IsInteger() || Int.IsFloat() || Int.IsComplex() {
		t.Errorf("Int predicates wrong: integer=%v float=%v complex=%v", Int.IsInteger(), Int.IsFloat(), Int.IsComplex())
	}
	if !Double.IsFloat() || Double.IsInteger() {
		t.Errorf("Double predicates wrong")
	}
	if !ComplexDouble.IsComplex() {
		t.Errorf("ComplexDouble.IsComplex() = false")
	}
	if !UInt.IsUnsigned() || Int.IsUnsigned() {
		t.Errorf("unsigned predicate wrong: UInt=%v Int=%v", UInt.IsUnsigned(), Int.IsUnsigned())
	}
}

func TestSizeScalarsIndependentOfPtrSize(t *testing.T) {
	cases := []struct {
		k    TypeKind
		want int
	}{
		{Bool, 1}, {Char, 1}, {Short, 2}, {Int, 4}, {Float, 4},
		{LLong, 8}, {Double, 8}, {LDouble, 16},
	}
	for _, c := range cases {
		ty := Basic(c.k)
		if got := ty.Size(8); got != c.want {
			t.Errorf("Size(%v, ptr=8) = %d, want %d", c.k, got, c.want)
		}
		if got := ty.Size(4); got != c.want {
			t.Errorf("Size(%v, ptr=4) = %d, want %d", c.k, got, c.want)
		}
	}
}

func TestSizeLongAndPointerTrackPtrSize(t *testing.T) {
	long := Basic(Long)
	if got := long.Size(8); got != 8 {
		t.Errorf("Size(Long, ptr=8) = %d, want 8", got)
	}
	if got := long.Size(4); got != 4 {
		t.Errorf("Size(Long, ptr=4) = %d, want 4", got)
	}

	ptr := PointerTo(Basic(Int))
	if got := ptr.Size(8); got != 8 {
		t.Errorf("Size(*int, ptr=8) = %d, want 8", got)
	}
	if got := ptr.Size(4); got != 4 {
		t.Errorf("Size(*int, ptr=4) = %d, want 4", got)
	}
}

func TestSizeArrayMultipliesElemByCount(t *testing.T) {
	arr := ArrayOf(Basic(Int), 10)
	if got := arr.Size(8); got != 40 {
		t.Errorf("Size([10]int) = %d, want 40", got)
	}
	vla := ArrayOf(Basic(Int), -1)
	if got := vla.Size(8); got != 0 {
		t.Errorf("Size(VLA) = %d, want 0", got)
	}
}

func TestAlignMatchesSizeUnlessCappedAtPtrSize(t *testing.T) {
	llong := Basic(LLong) // size 8
	if got := llong.Align(4); got != 4 {
		t.Errorf("Align(long long, ptr=4) = %d, want 4 (capped)", got)
	}
	if got := llong.Align(8); got != 8 {
		t.Errorf("Align(long long, ptr=8) = %d, want 8", got)
	}
	ld := Basic(LDouble) // size 16, never capped
	if got := ld.Align(8); got != 16 {
		t.Errorf("Align(long double, ptr=8) = %d, want 16 (uncapped)", got)
	}
}

func TestCloneProducesDisjointTree(t *testing.T) {
	orig := PointerTo(Basic(Int))
	clone := orig.Clone()
	clone.Elem.Kind = Float
	if orig.Elem.Kind != Int {
		t.Errorf("mutating clone's Elem affected the original: %v", orig.Elem.Kind)
	}
}

func TestCloneNilIsNil(t *testing.T) {
	var t0 *Type
	if got := t0.Clone(); got != nil {
		t.Errorf("Clone of nil = %v, want nil", got)
	}
}

func TestEqualIgnoresQualifiers(t *testing.T) {
	a := &Type{Kind: Int, IsConst: true}
	b := &Type{Kind: Int, IsConst: false, IsVolatile: true}
	if !a.Equal(b) {
		t.Errorf("Equal() = false for types differing only in qualifiers")
	}
}

func TestEqualStructComparesTagOnly(t *testing.T) {
	a := &Type{Kind: Struct, Tag: "point", ElemSize: 8}
	b := &Type{Kind: Struct, Tag: "point", ElemSize: 999}
	c := &Type{Kind: Struct, Tag: "other"}
	if !a.Equal(b) {
		t.Errorf("Equal() = false for same-tag structs with different ElemSize")
	}
	if a.Equal(c) {
		t.Errorf("Equal() = true for differently-tagged structs")
	}
}

func TestEqualFuncComparesReturnParamsAndVariadic(t *testing.T) {
	f1 := &Type{Kind: Func, Return: Basic(Int), Params: []*Type{Basic(Int), Basic(Float)}}
	f2 := &Type{Kind: Func, Return: Basic(Int), Params: []*Type{Basic(Int), Basic(Float)}}
	if !f1.Equal(f2) {
		t.Errorf("Equal() = false for structurally identical function types")
	}
	f3 := &Type{Kind: Func, Return: Basic(Int), Params: []*Type{Basic(Int)}, Variadic: true}
	if f1.Equal(f3) {
		t.Errorf("Equal() = true despite differing param count/variadic")
	}
}
