package ir

import "testing"

func TestBuilderAppendOrder(t *testing.T) {
	b := NewBuilder(new(int))
	a := b.ConstInt(1)
	c := b.ConstInt(2)
	sum := b.Emit(OpAdd, a, c)

	got := b.Slice()
	if len(got) != 3 {
		t.Fatalf("got %d instructions, want 3", len(got))
	}
	if got[2].Dest != sum || got[2].Src1 != a || got[2].Src2 != c {
		t.Fatalf("third instruction = %+v, want Dest=%d Src1=%d Src2=%d", got[2], sum, a, c)
	}
}

func TestBuilderRemoveDetaches(t *testing.T) {
	b := NewBuilder(new(int))
	b.ConstInt(1)
	mid := b.Append(&Inst{Op: OpConstInt, Imm: 2})
	b.ConstInt(3)

	b.Remove(mid)

	got := b.Slice()
	if len(got) != 2 {
		t.Fatalf("got %d instructions after remove, want 2", len(got))
	}
	for _, inst := range got {
		if inst == mid {
			t.Fatalf("removed instruction still present in list")
		}
	}
	if b.Head.Next != b.Tail {
		t.Fatalf("head/tail not adjacent after removing the middle element")
	}
}

func TestAliasSetStableByName(t *testing.T) {
	b := NewBuilder(new(int))
	a1 := b.AliasSet("x", false)
	a2 := b.AliasSet("x", false)
	if a1 != a2 {
		t.Fatalf("AliasSet(%q) returned %d then %d, want stable id", "x", a1, a2)
	}
	b1 := b.AliasSet("y", false)
	if a1 == b1 {
		t.Fatalf("distinct names %q and %q got the same alias set %d", "x", "y", a1)
	}
}

func TestAliasSetRestrictAlwaysFresh(t *testing.T) {
	b := NewBuilder(new(int))
	a1 := b.AliasSet("p", true)
	a2 := b.AliasSet("p", true)
	if a1 == a2 {
		t.Fatalf("restrict AliasSet(%q) returned the same id %d twice, want fresh ids", "p", a1)
	}
}

func TestLabelsUniqueAcrossModule(t *testing.T) {
	m := NewModule()
	b1 := m.NewFunctionBuilder()
	b2 := m.NewFunctionBuilder()
	l1 := b1.NewLabel("true")
	l2 := b2.NewLabel("true")
	if l1 == l2 {
		t.Fatalf("two function builders sharing a module produced the same label %q", l1)
	}
}
