package optimizer

import (
	"testing"

	"github.com/splanck/vc-sub004/internal/ir"
)

// buildAddCallee constructs a minimal `add(a, b) { return a + b; }`
// function, the shape isInlineCandidate accepts (non-variadic, single
// return, branch-free, under maxInlineSize).
func buildAddCallee(m *ir.Module) *ir.Function {
	b := m.NewFunctionBuilder()
	b.Append(&ir.Inst{Op: ir.OpFuncBegin, Name: "add"})
	b.Append(&ir.Inst{Op: ir.OpLoadParam, Name: "a", Imm: 0})
	b.Append(&ir.Inst{Op: ir.OpLoadParam, Name: "b", Imm: 1})
	va := b.Load("a", b.AliasSet("a", false), false)
	vb := b.Load("b", b.AliasSet("b", false), false)
	sum := b.Emit(ir.OpAdd, va, vb)
	b.Append(&ir.Inst{Op: ir.OpReturn, Src1: sum})
	b.Append(&ir.Inst{Op: ir.OpFuncEnd, Name: "add"})
	return &ir.Function{Name: "add", NumParams: 2, Builder: b, Locals: []string{"a", "b"}}
}

func buildCallerCallingAdd(m *ir.Module) (*ir.Function, ir.ValueID) {
	b := m.NewFunctionBuilder()
	b.Append(&ir.Inst{Op: ir.OpFuncBegin, Name: "main"})
	x := b.ConstInt(2)
	y := b.ConstInt(3)
	b.Append(&ir.Inst{Op: ir.OpArg, Src1: x})
	b.Append(&ir.Inst{Op: ir.OpArg, Src1: y})
	callDest := b.NewValue()
	b.Append(&ir.Inst{Op: ir.OpCall, Dest: callDest, Name: "add"})
	use := b.Emit(ir.OpNeg, callDest, 0)
	b.Append(&ir.Inst{Op: ir.OpReturn, Src1: use})
	b.Append(&ir.Inst{Op: ir.OpFuncEnd, Name: "main"})
	return &ir.Function{Name: "main", Builder: b, Locals: nil}, use
}

func TestInlineSmallFunctionsRemovesCallAndSplicesBody(t *testing.T) {
	m := ir.NewModule()
	add := buildAddCallee(m)
	main, use := buildCallerCallingAdd(m)
	m.AddFunction(main)
	m.AddFunction(add)

	InlineSmallFunctions(m)

	for inst := main.Builder.Head; inst != nil; inst = inst.Next {
		if inst.Op == ir.OpCall {
			t.Fatalf("call to inlined function %q still present after InlineSmallFunctions", inst.Name)
		}
		if inst.Op == ir.OpArg {
			t.Fatalf("OpArg instruction feeding the inlined call was not removed")
		}
	}

	useInst := findInst(main.Builder, use)
	if useInst.Src1 == 0 {
		t.Fatalf("use of the call's return value was not rewired to the inlined sum")
	}

	var sawRenamedLocal bool
	for inst := main.Builder.Head; inst != nil; inst = inst.Next {
		if inst.Op == ir.OpLoad && inst.Name != "a" && inst.Name != "b" && inst.Name != "" {
			sawRenamedLocal = true
		}
	}
	if !sawRenamedLocal {
		t.Fatalf("inlined callee's locals were not renamed to avoid colliding with the caller's own names")
	}
}

func TestIsInlineCandidateRejectsRecursion(t *testing.T) {
	m := ir.NewModule()
	b := m.NewFunctionBuilder()
	b.Append(&ir.Inst{Op: ir.OpFuncBegin, Name: "fact"})
	dest := b.NewValue()
	b.Append(&ir.Inst{Op: ir.OpCall, Dest: dest, Name: "fact"})
	b.Append(&ir.Inst{Op: ir.OpReturn, Src1: dest})
	b.Append(&ir.Inst{Op: ir.OpFuncEnd, Name: "fact"})
	f := &ir.Function{Name: "fact", Builder: b}

	if isInlineCandidate(f) {
		t.Fatalf("a directly recursive function was accepted as an inline candidate")
	}
}

func TestIsInlineCandidateRejectsBranches(t *testing.T) {
	m := ir.NewModule()
	b := m.NewFunctionBuilder()
	b.Append(&ir.Inst{Op: ir.OpFuncBegin, Name: "f"})
	b.Append(&ir.Inst{Op: ir.OpLabel, Name: "L0_x"})
	b.Append(&ir.Inst{Op: ir.OpReturn})
	b.Append(&ir.Inst{Op: ir.OpFuncEnd, Name: "f"})
	f := &ir.Function{Name: "f", Builder: b}

	if isInlineCandidate(f) {
		t.Fatalf("a function with a label was accepted; inlining never remaps labels")
	}
}
