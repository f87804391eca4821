package optimizer

import (
	"testing"

	"github.com/splanck/vc-sub004/internal/ir"
)

func TestPeepholeXPlusZero(t *testing.T) {
	b := ir.NewBuilder(new(int))
	x := b.ConstInt(7)
	zero := b.ConstInt(0)
	sum := b.Emit(ir.OpAdd, x, zero)
	use := b.Emit(ir.OpNeg, sum, 0)
	b.Append(&ir.Inst{Op: ir.OpReturn, Src1: use}) // keeps use live

	Peephole(b)

	got := findInst(b, use)
	if got.Src1 != x {
		t.Fatalf("use of x+0 still references %d after peephole, want the original %d", got.Src1, x)
	}
}

func TestPeepholeXTimesOne(t *testing.T) {
	b := ir.NewBuilder(new(int))
	x := b.ConstInt(9)
	one := b.ConstInt(1)
	prod := b.Emit(ir.OpMul, x, one)
	use := b.Emit(ir.OpNeg, prod, 0)
	b.Append(&ir.Inst{Op: ir.OpReturn, Src1: use}) // keeps use live

	Peephole(b)

	got := findInst(b, use)
	if got.Src1 != x {
		t.Fatalf("use of x*1 still references %d after peephole, want the original %d", got.Src1, x)
	}
}

func TestPeepholeDoubleNegation(t *testing.T) {
	b := ir.NewBuilder(new(int))
	x := b.ConstInt(3)
	neg1 := b.Emit(ir.OpNeg, x, 0)
	neg2 := b.Emit(ir.OpNeg, neg1, 0)
	use := b.Emit(ir.OpAdd, neg2, x)
	b.Append(&ir.Inst{Op: ir.OpReturn, Src1: use}) // keeps use live

	Peephole(b)

	got := findInst(b, use)
	if got.Src1 != x {
		t.Fatalf("use of --x still references %d after peephole, want the original %d", got.Src1, x)
	}
}

func TestPeepholeRemovesDeadPureChain(t *testing.T) {
	b := ir.NewBuilder(new(int))
	a := b.ConstInt(1)
	c := b.ConstInt(2)
	dead := b.Emit(ir.OpAdd, a, c) // never read by anything kept live below
	_ = dead
	b.Emit(ir.OpSub, a, c)

	Peephole(b)

	if got := findInst(b, dead); got != nil {
		t.Fatalf("dead pure instruction %+v survived two peephole passes", got)
	}
}

func TestPeepholeKeepsVolatileEvenIfUnread(t *testing.T) {
	b := ir.NewBuilder(new(int))
	dest := b.NewValue()
	b.Append(&ir.Inst{Op: ir.OpLoad, Dest: dest, Name: "x", IsVolatile: true})

	Peephole(b)

	if got := findInst(b, dest); got == nil {
		t.Fatalf("volatile load was removed as dead code; volatile accesses must always execute")
	}
}
