package llvmemit

import (
	"math"
	"testing"

	vcir "github.com/splanck/vc-sub004/internal/ir"
)

func buildAddModule() *vcir.Module {
	m := vcir.NewModule()
	b := m.NewFunctionBuilder()
	b.Append(&vcir.Inst{Op: vcir.OpFuncBegin, Name: "add"})
	b.Append(&vcir.Inst{Op: vcir.OpLoadParam, Name: "a", Imm: 0})
	b.Append(&vcir.Inst{Op: vcir.OpLoadParam, Name: "b", Imm: 1})
	va := b.Load("a", b.AliasSet("a", false), false)
	vb := b.Load("b", b.AliasSet("b", false), false)
	sum := b.Emit(vcir.OpAdd, va, vb)
	b.Append(&vcir.Inst{Op: vcir.OpReturn, Src1: sum})
	b.Append(&vcir.Inst{Op: vcir.OpFuncEnd, Name: "add"})
	m.AddFunction(&vcir.Function{Name: "add", NumParams: 2, Builder: b, Locals: []string{"a", "b"}})
	return m
}

func TestEmitModuleDeclaresEveryFunction(t *testing.T) {
	m := buildAddModule()
	e := New("add.c")
	e.EmitModule(m)

	if len(e.Module.Funcs) != 1 {
		t.Fatalf("Module.Funcs has %d entries, want 1", len(e.Module.Funcs))
	}
	fn := e.Module.Funcs[0]
	if fn.Name() != "add" {
		t.Fatalf("function name = %q, want %q", fn.Name(), "add")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("function has %d params, want 2", len(fn.Params))
	}
	if len(fn.Blocks) == 0 {
		t.Fatalf("function has no basic blocks")
	}
}

func TestEmitModuleTerminatesFallthroughReturn(t *testing.T) {
	m := vcir.NewModule()
	b := m.NewFunctionBuilder()
	b.Append(&vcir.Inst{Op: vcir.OpFuncBegin, Name: "noop"})
	b.Append(&vcir.Inst{Op: vcir.OpFuncEnd, Name: "noop"})
	m.AddFunction(&vcir.Function{Name: "noop", Builder: b})

	e := New("noop.c")
	e.EmitModule(m)

	fn := e.Module.Funcs[0]
	if len(fn.Blocks) == 0 || fn.Blocks[0].Term == nil {
		t.Fatalf("a function with no explicit return was left without a terminator")
	}
}

func TestFloat64FromBitsReinterprets(t *testing.T) {
	want := 3.5
	bits := int64(math.Float64bits(want))
	got := float64FromBits(bits)
	if got != want {
		t.Fatalf("float64FromBits(%d) = %v, want %v", bits, got, want)
	}
}
