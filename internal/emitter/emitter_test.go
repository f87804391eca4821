package emitter

import (
	"strings"
	"testing"

	"github.com/splanck/vc-sub004/internal/ir"
)

// buildAdd constructs `int add(int a, int b) { return a + b; }`'s IR
// directly, the same shape sema's CheckFunc would lower it to.
func buildAdd() *ir.Function {
	b := ir.NewBuilder(new(int))
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

func TestEmitFunctionPrologueEpilogue(t *testing.T) {
	e := New(W64, ATT, true)
	e.EmitFunction(buildAdd(), true)
	text := e.String()

	for _, want := range []string{
		".globl add",
		"add:",
		"push %rbp",
		"movq %rsp, %rbp",
		"add$epilogue:",
		"pop %rbp",
		"ret",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("emitted text missing %q:\n%s", want, text)
		}
	}
}

// TestEmitFunctionSpillsIncomingArgs checks that the first two integer
// arguments are moved out of their SysV argument registers (rdi/rsi) into
// their named home slots before the function body runs.
func TestEmitFunctionSpillsIncomingArgs(t *testing.T) {
	e := New(W64, ATT, true)
	e.EmitFunction(buildAdd(), true)
	text := e.String()

	if !strings.Contains(text, "movq %rdi,") {
		t.Errorf("first integer argument (rdi) was never spilled to its home slot:\n%s", text)
	}
	if !strings.Contains(text, "movq %rsi,") {
		t.Errorf("second integer argument (rsi) was never spilled to its home slot:\n%s", text)
	}
}

func TestEmitFunctionIntelSyntaxOmitsPercent(t *testing.T) {
	e := New(W64, Intel, true)
	e.EmitFunction(buildAdd(), true)
	text := e.String()

	if strings.Contains(text, "%rbp") {
		t.Errorf("Intel-syntax output still carries an AT&T register prefix:\n%s", text)
	}
	if !strings.Contains(text, "rbp") {
		t.Errorf("Intel-syntax output never mentions rbp at all:\n%s", text)
	}
}

func TestEmitModuleEmitsGlobalsBeforeFunctions(t *testing.T) {
	m := ir.NewModule()
	m.AddGlobal(ir.Global{Name: "counter", Kind: ir.OpGlobVar, Size: 8, IsZero: true})
	m.AddFunction(buildAdd())

	e := New(W64, ATT, true)
	e.EmitModule(m, map[string]bool{})
	text := e.String()

	bssIdx := strings.Index(text, ".bss")
	funcIdx := strings.Index(text, "add:")
	if bssIdx == -1 || funcIdx == -1 || bssIdx > funcIdx {
		t.Errorf("globals were not emitted before functions:\n%s", text)
	}
}

func TestFrameSizeGrowsWithLocals(t *testing.T) {
	e := New(W64, ATT, true)
	f := buildAdd()
	e.EmitFunction(f, true)
	if e.frameSz == 0 {
		t.Errorf("frame size is zero despite two named parameters needing home slots")
	}
}
