package consteval

import (
	"math"
	"testing"

	"github.com/splanck/vc-sub004/internal/ast"
)

func lit(v int64) *ast.Literal { return &ast.Literal{LitKind: ast.LitInt, IntVal: v} }

func TestEvalBasicArithmetic(t *testing.T) {
	ev := &Evaluator{PtrSize: 8}
	e := &ast.Binary{Op: "+", X: lit(2), Y: &ast.Binary{Op: "*", X: lit(3), Y: lit(4)}}
	v, err := ev.Eval(e)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if v != 14 {
		t.Errorf("Eval(2 + 3 * 4) = %d, want 14", v)
	}
}

func TestEvalDivisionByZeroFails(t *testing.T) {
	ev := &Evaluator{PtrSize: 8}
	_, err := ev.Eval(&ast.Binary{Op: "/", X: lit(1), Y: lit(0)})
	if err == nil {
		t.Fatalf("Eval(1 / 0) did not error")
	}
}

func TestEvalAdditionOverflowFails(t *testing.T) {
	ev := &Evaluator{PtrSize: 8}
	_, err := ev.Eval(&ast.Binary{Op: "+", X: lit(math.MaxInt64), Y: lit(1)})
	if err == nil {
		t.Fatalf("Eval(MaxInt64 + 1) did not error")
	}
}

func TestEvalShiftOutOfRangeFails(t *testing.T) {
	ev := &Evaluator{PtrSize: 8}
	_, err := ev.Eval(&ast.Binary{Op: "<<", X: lit(1), Y: lit(64)})
	if err == nil {
		t.Fatalf("Eval(1 << 64) did not error")
	}
}

func TestEvalTernarySelectsBranchWithoutEvaluatingOther(t *testing.T) {
	ev := &Evaluator{PtrSize: 8}
	// The else-branch divides by zero; it must never be evaluated since cond is true.
	e := &ast.Ternary{Cond: lit(1), Then: lit(7), Else: &ast.Binary{Op: "/", X: lit(1), Y: lit(0)}}
	v, err := ev.Eval(e)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if v != 7 {
		t.Errorf("Eval(1 ? 7 : 1/0) = %d, want 7", v)
	}
}

func TestEvalIdentResolvesViaLookupConst(t *testing.T) {
	ev := &Evaluator{PtrSize: 8, LookupConst: func(name string) (int64, bool) {
		if name == "k" {
			return 42, true
		}
		return 0, false
	}}
	v, err := ev.Eval(&ast.Ident{Name: "k"})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if v != 42 {
		t.Errorf("Eval(k) = %d, want 42", v)
	}
}

func TestEvalUnresolvedIdentFails(t *testing.T) {
	ev := &Evaluator{PtrSize: 8}
	_, err := ev.Eval(&ast.Ident{Name: "unresolved"})
	if err == nil {
		t.Fatalf("Eval of an identifier with no LookupConst did not error")
	}
}

func TestEvalSizeofTypeUsesPtrSize(t *testing.T) {
	ev := &Evaluator{PtrSize: 4}
	v, err := ev.Eval(&ast.SizeofType{Type: ast.PointerTo(ast.Basic(ast.Int))})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if v != 4 {
		t.Errorf("Eval(sizeof(int*), ptrSize=4) = %d, want 4", v)
	}
}

func TestEvalCastTruncatesToTargetWidth(t *testing.T) {
	ev := &Evaluator{PtrSize: 8}
	v, err := ev.Eval(&ast.Cast{Type: ast.Basic(ast.Char), X: lit(300)})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if v != 44 { // 300 - 256: low byte of 300 read as a signed char
		t.Errorf("Eval((char)300) = %d, want 44", v)
	}
}

func TestEvalLogicalOperatorsShortCircuitToBool(t *testing.T) {
	ev := &Evaluator{PtrSize: 8}
	v, err := ev.Eval(&ast.Binary{Op: "&&", X: lit(5), Y: lit(0)})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if v != 0 {
		t.Errorf("Eval(5 && 0) = %d, want 0", v)
	}
}
