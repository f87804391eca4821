package symtab

import "testing"

func TestVarTableScopingShadowsInnermost(t *testing.T) {
	vars := NewVarTable()
	vars.Declare("x", &VarSymbol{Name: "x", IsGlobal: true})

	exit := vars.Enter()
	vars.Declare("x", &VarSymbol{Name: "x"})
	sym, ok := vars.Lookup("x")
	if !ok || sym.IsGlobal {
		t.Fatalf("inner x did not shadow outer x: %+v", sym)
	}
	exit()

	sym, ok = vars.Lookup("x")
	if !ok || !sym.IsGlobal {
		t.Fatalf("after scope exit, x = %+v, want the outer global binding", sym)
	}
}

func TestVarTableDeclareRejectsDuplicateInSameFrame(t *testing.T) {
	vars := NewVarTable()
	if !vars.Declare("x", &VarSymbol{Name: "x"}) {
		t.Fatalf("first Declare(x) reported a collision")
	}
	if vars.Declare("x", &VarSymbol{Name: "x"}) {
		t.Fatalf("second Declare(x) in the same frame did not report a collision")
	}
}

func TestVarTableLookupCurrentDoesNotSeeOuterFrame(t *testing.T) {
	vars := NewVarTable()
	vars.Declare("x", &VarSymbol{Name: "x"})
	defer vars.Enter()()

	if _, ok := vars.LookupCurrent("x"); ok {
		t.Fatalf("LookupCurrent saw an outer-frame binding")
	}
	if _, ok := vars.Lookup("x"); !ok {
		t.Fatalf("Lookup did not see an outer-frame binding")
	}
}

func TestVarTableDepthTracksFrames(t *testing.T) {
	vars := NewVarTable()
	if vars.Depth() != 1 {
		t.Fatalf("initial Depth() = %d, want 1", vars.Depth())
	}
	exit := vars.Enter()
	if vars.Depth() != 2 {
		t.Fatalf("Depth() after Enter() = %d, want 2", vars.Depth())
	}
	exit()
	if vars.Depth() != 1 {
		t.Fatalf("Depth() after exit = %d, want 1", vars.Depth())
	}
}

func TestFuncTableDeclareAndLookup(t *testing.T) {
	funcs := NewFuncTable()
	funcs.Declare(&FuncSymbol{Name: "add", IsVariadic: false})
	sym, ok := funcs.Lookup("add")
	if !ok || sym.Name != "add" {
		t.Fatalf("Lookup(add) = %+v, %v", sym, ok)
	}
	if _, ok := funcs.Lookup("missing"); ok {
		t.Fatalf("Lookup(missing) succeeded")
	}
	if len(funcs.All()) != 1 {
		t.Fatalf("All() = %v, want 1 entry", funcs.All())
	}
}

func TestTagTableDeclareAndMemberByName(t *testing.T) {
	tags := NewTagTable()
	tags.Declare(&TagSymbol{
		Name: "point",
		Kind: TagStruct,
		Members: []TagMember{
			{Name: "x", ByteOffset: 0},
			{Name: "y", ByteOffset: 4},
		},
		ByName: map[string]int{"x": 0, "y": 1},
	})
	tag, ok := tags.Lookup("point")
	if !ok {
		t.Fatalf("Lookup(point) failed")
	}
	m, ok := tag.MemberByName("y")
	if !ok || m.ByteOffset != 4 {
		t.Fatalf("MemberByName(y) = %+v, %v", m, ok)
	}
	if _, ok := tag.MemberByName("z"); ok {
		t.Fatalf("MemberByName(z) succeeded for a nonexistent member")
	}
}

func TestNilTagSymbolMemberByNameFails(t *testing.T) {
	var tag *TagSymbol
	if _, ok := tag.MemberByName("x"); ok {
		t.Fatalf("MemberByName on a nil *TagSymbol succeeded")
	}
}

func TestLabelTableMintsOnceAndReusesOnReference(t *testing.T) {
	n := 0
	gen := func() string { n++; return "L" + string(rune('0'+n)) }
	labels := NewLabelTable(gen)

	first := labels.Resolve("loop")
	second := labels.Resolve("loop")
	if first != second {
		t.Fatalf("Resolve(loop) minted twice: %q then %q", first, second)
	}
	if !labels.Defined("loop") {
		t.Fatalf("Defined(loop) = false after Resolve")
	}
	if labels.Defined("never_referenced") {
		t.Fatalf("Defined(never_referenced) = true")
	}
	if len(labels.All()) != 1 {
		t.Fatalf("All() = %v, want one label", labels.All())
	}
}

func TestInlineEmissionSetTryEmitOnlyOnce(t *testing.T) {
	set := NewInlineEmissionSet()
	if !set.TryEmit("f") {
		t.Fatalf("first TryEmit(f) = false")
	}
	if set.TryEmit("f") {
		t.Fatalf("second TryEmit(f) = true, want false (already emitted)")
	}
	if !set.TryEmit("g") {
		t.Fatalf("TryEmit(g) = false for a distinct function")
	}
}
