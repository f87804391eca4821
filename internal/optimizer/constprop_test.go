package optimizer

import (
	"testing"

	"github.com/splanck/vc-sub004/internal/ir"
)

func TestConstPropagateFoldsBinaryArith(t *testing.T) {
	b := ir.NewBuilder(new(int))
	a := b.ConstInt(2)
	c := b.ConstInt(3)
	sum := b.Emit(ir.OpAdd, a, c)

	ConstPropagate(b)

	got := findInst(b, sum)
	if got.Op != ir.OpConstInt || got.Imm != 5 {
		t.Fatalf("sum instruction = %+v, want folded OpConstInt(5)", got)
	}
}

func TestConstPropagateSkipsDivisionByZero(t *testing.T) {
	b := ir.NewBuilder(new(int))
	a := b.ConstInt(1)
	zero := b.ConstInt(0)
	div := b.Emit(ir.OpDiv, a, zero)

	ConstPropagate(b)

	got := findInst(b, div)
	if got.Op == ir.OpConstInt {
		t.Fatalf("division by a constant zero was folded away; the runtime trap must survive")
	}
}

func TestConstPropagateLoadAfterConstStore(t *testing.T) {
	b := ir.NewBuilder(new(int))
	v := b.ConstInt(42)
	b.Store("x", v, 1, false)
	loaded := b.Load("x", 1, false)

	ConstPropagate(b)

	got := findInst(b, loaded)
	if got.Op != ir.OpConstInt || got.Imm != 42 {
		t.Fatalf("load of a known-constant store = %+v, want folded OpConstInt(42)", got)
	}
}

func TestConstPropagateVolatileLoadNotFolded(t *testing.T) {
	b := ir.NewBuilder(new(int))
	v := b.ConstInt(42)
	b.Store("x", v, 1, false)
	dest := b.NewValue()
	b.Append(&ir.Inst{Op: ir.OpLoad, Dest: dest, Name: "x", AliasSet: 1, IsVolatile: true})

	ConstPropagate(b)

	got := findInst(b, dest)
	if got.Op != ir.OpLoad {
		t.Fatalf("volatile load was folded to %v, must always re-read memory", got.Op)
	}
}

func TestConstPropagateCallClearsBindings(t *testing.T) {
	b := ir.NewBuilder(new(int))
	v := b.ConstInt(42)
	b.Store("x", v, 1, false)
	b.Append(&ir.Inst{Op: ir.OpCall, Name: "f"})
	loaded := b.Load("x", 1, false)

	ConstPropagate(b)

	got := findInst(b, loaded)
	if got.Op == ir.OpConstInt {
		t.Fatalf("load after an intervening call was folded to a stale constant; a call may alias any named variable")
	}
}

func findInst(b *ir.Builder, dest ir.ValueID) *ir.Inst {
	for inst := b.Head; inst != nil; inst = inst.Next {
		if inst.Dest == dest {
			return inst
		}
	}
	return nil
}
