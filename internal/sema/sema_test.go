package sema

import (
	"testing"

	"github.com/splanck/vc-sub004/internal/diag"
	"github.com/splanck/vc-sub004/internal/ir"
	"github.com/splanck/vc-sub004/internal/parser"
	"github.com/splanck/vc-sub004/internal/token"
)

// compile runs the full lex -> parse -> sema pipeline, mirroring what
// driver.compileFile does for one translation unit.
func compile(t *testing.T, src string) (*ir.Module, *diag.Context) {
	t.Helper()
	toks := token.NewLexer([]byte(src)).Tokenize()
	dc := diag.NewContext()
	tu := parser.New(toks, dc).ParseTranslationUnit()
	c := NewChecker(dc, 8)
	m := c.CheckTranslationUnit(tu)
	return m, dc
}

func findFunc(m *ir.Module, name string) *ir.Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func TestCheckTranslationUnitLowersSimpleFunction(t *testing.T) {
	m, dc := compile(t, "int add(int a, int b) { return a + b; }")
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", dc.Errors)
	}
	fn := findFunc(m, "add")
	if fn == nil {
		t.Fatalf("no IR function named add in %v", m.Functions)
	}
	if fn.NumParams != 2 {
		t.Errorf("NumParams = %d, want 2", fn.NumParams)
	}
	var sawReturn bool
	for inst := fn.Builder.Head; inst != nil; inst = inst.Next {
		if inst.Op == ir.OpReturn {
			sawReturn = true
		}
	}
	if !sawReturn {
		t.Errorf("lowered body has no OpReturn")
	}
}

func TestCheckTranslationUnitFuncLocalsListsParamsThenLocals(t *testing.T) {
	m, dc := compile(t, "int f(int a) { int b; return a + b; }")
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", dc.Errors)
	}
	fn := findFunc(m, "f")
	if fn == nil {
		t.Fatalf("no IR function named f")
	}
	if len(fn.Locals) < 2 || fn.Locals[0] != "a" || fn.Locals[1] != "b" {
		t.Fatalf("Locals = %v, want [a b ...] (params before locals)", fn.Locals)
	}
}

func TestUndeclaredIdentifierReportsSemanticDiagnostic(t *testing.T) {
	_, dc := compile(t, "int f(void) { return undeclared_name; }")
	if !dc.HasErrors() {
		t.Fatalf("expected a diagnostic for an undeclared identifier")
	}
}

// TestGlobalConstIntInitializerUsableInStaticAssert checks that a
// const-initialized global is registered in globalConsts (via the
// checker's own evaluator, whose LookupConst resolves against it) rather
// than only emitted as a runtime global: a _Static_assert referencing it
// must evaluate as true, not fail or error.
func TestGlobalConstIntInitializerUsableInStaticAssert(t *testing.T) {
	_, dc := compile(t, `const int k = 5; _Static_assert(k == 5, "k is 5");`)
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics evaluating a static_assert against a const global: %v", dc.Errors)
	}
}

func TestStaticAssertFailureReportsDiagnostic(t *testing.T) {
	_, dc := compile(t, `_Static_assert(1 == 2, "never true");`)
	if !dc.HasErrors() {
		t.Fatalf("expected a diagnostic for a failing _Static_assert")
	}
}

func TestStaticAssertSuccessNoDiagnostic(t *testing.T) {
	_, dc := compile(t, `_Static_assert(1 == 1, "always true");`)
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics for a passing _Static_assert: %v", dc.Errors)
	}
}

func TestStructMemberAccessLowersOffset(t *testing.T) {
	m, dc := compile(t, `
struct point { int x; int y; };
int f(void) {
	struct point p;
	p.x = 1;
	return p.y;
}`)
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", dc.Errors)
	}
	fn := findFunc(m, "f")
	if fn == nil {
		t.Fatalf("no IR function named f")
	}
	var sawPtrAdd bool
	for inst := fn.Builder.Head; inst != nil; inst = inst.Next {
		if inst.Op == ir.OpPtrAdd {
			sawPtrAdd = true
		}
	}
	if !sawPtrAdd {
		t.Errorf("p.y lowered without an OpPtrAdd for y's nonzero offset")
	}
}
