package parser

import (
	"testing"

	"github.com/splanck/vc-sub004/internal/ast"
	"github.com/splanck/vc-sub004/internal/diag"
	"github.com/splanck/vc-sub004/internal/token"
)

func parseOne(t *testing.T, src string) (TopLevel, *diag.Context) {
	t.Helper()
	toks := token.NewLexer([]byte(src)).Tokenize()
	dc := diag.NewContext()
	p := New(toks, dc)
	tu := p.ParseTranslationUnit()
	if len(tu.Items) != 1 {
		t.Fatalf("parsed %d top-level items from %q, want 1", len(tu.Items), src)
	}
	return tu.Items[0], dc
}

func TestParseFunctionDefinitionRecoversParamNames(t *testing.T) {
	item, dc := parseOne(t, "int add(int a, int b) { return a + b; }")
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", dc.Errors)
	}
	fn, ok := item.(TopFunction)
	if !ok {
		t.Fatalf("parsed %T, want TopFunction", item)
	}
	if fn.Func.Name != "add" {
		t.Errorf("Name = %q, want add", fn.Func.Name)
	}
	if len(fn.Func.Params) != 2 || fn.Func.Params[0].Name != "a" || fn.Func.Params[1].Name != "b" {
		t.Fatalf("Params = %+v, want named a, b", fn.Func.Params)
	}
	if fn.Func.Body == nil || len(fn.Func.Body.Stmts) != 1 {
		t.Fatalf("Body = %+v, want a single return statement", fn.Func.Body)
	}
}

func TestParseFunctionDeclarationNoBody(t *testing.T) {
	item, dc := parseOne(t, "int add(int a, int b);")
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", dc.Errors)
	}
	fn := item.(TopFunction)
	if fn.Func.Body != nil {
		t.Errorf("Body = %+v, want nil for a declaration with no braces", fn.Func.Body)
	}
}

func TestParseVoidParamListHasNoParams(t *testing.T) {
	item, _ := parseOne(t, "int main(void) { return 0; }")
	fn := item.(TopFunction)
	if len(fn.Func.Params) != 0 {
		t.Errorf("Params = %+v, want none for (void)", fn.Func.Params)
	}
}

func TestParseVariadicFunction(t *testing.T) {
	item, _ := parseOne(t, "int sum(int n, ...);")
	fn := item.(TopFunction)
	if !fn.Func.IsVariadic {
		t.Errorf("IsVariadic = false, want true")
	}
	if len(fn.Func.Params) != 1 || fn.Func.Params[0].Name != "n" {
		t.Fatalf("Params = %+v, want one named param n", fn.Func.Params)
	}
}

func TestParseTypedefRegistersNameForLaterUse(t *testing.T) {
	toks := token.NewLexer([]byte("typedef int myint; myint x;")).Tokenize()
	dc := diag.NewContext()
	p := New(toks, dc)
	tu := p.ParseTranslationUnit()
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", dc.Errors)
	}
	if len(tu.Items) != 2 {
		t.Fatalf("parsed %d items, want 2 (typedef + var decl)", len(tu.Items))
	}
	if _, ok := tu.Items[0].(TopTypedef); !ok {
		t.Fatalf("first item = %T, want TopTypedef", tu.Items[0])
	}
	vd, ok := tu.Items[1].(TopVarDecl)
	if !ok {
		t.Fatalf("second item = %T, want TopVarDecl", tu.Items[1])
	}
	if vd.Decl.Type.Kind != ast.Int {
		t.Errorf("x's resolved type = %v, want Int (via the myint typedef)", vd.Decl.Type.Kind)
	}
}

func TestParseStructDeclaration(t *testing.T) {
	item, dc := parseOne(t, "struct point { int x; int y; };")
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", dc.Errors)
	}
	sd, ok := item.(TopStructDecl)
	if !ok {
		t.Fatalf("parsed %T, want TopStructDecl", item)
	}
	if sd.Decl.Tag != "point" {
		t.Errorf("tag name = %q, want point", sd.Decl.Tag)
	}
}

func TestBinaryOperatorPrecedence(t *testing.T) {
	item, _ := parseOne(t, "int f(void) { return 1 + 2 * 3; }")
	fn := item.(TopFunction)
	ret := fn.Func.Body.Stmts[0].(*ast.ReturnStmt)
	top, ok := ret.X.(*ast.Binary)
	if !ok {
		t.Fatalf("top expr = %T, want *ast.Binary", ret.X)
	}
	if top.Op != "+" {
		t.Fatalf("top operator = %q, want + (lowest precedence at the root)", top.Op)
	}
	rhs, ok := top.Y.(*ast.Binary)
	if !ok || rhs.Op != "*" {
		t.Fatalf("right operand = %+v, want a * binary (tighter precedence nested deeper)", top.Y)
	}
}

func TestLogicalAndBindsTighterThanLogicalOr(t *testing.T) {
	item, _ := parseOne(t, "int f(void) { return 1 || 2 && 3; }")
	fn := item.(TopFunction)
	ret := fn.Func.Body.Stmts[0].(*ast.ReturnStmt)
	top, ok := ret.X.(*ast.Binary)
	if !ok || top.Op != "||" {
		t.Fatalf("top expr = %+v, want an || binary", ret.X)
	}
	if _, ok := top.Y.(*ast.Binary); !ok {
		t.Fatalf("right operand of || = %T, want nested && binary", top.Y)
	}
}

func TestParseIfElseStatement(t *testing.T) {
	item, _ := parseOne(t, "int f(void) { if (1) return 1; else return 2; }")
	fn := item.(TopFunction)
	ifs, ok := fn.Func.Body.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("stmt = %T, want *ast.IfStmt", fn.Func.Body.Stmts[0])
	}
	if ifs.Else == nil {
		t.Fatalf("Else = nil, want a return statement")
	}
}

func TestParseDeclaratorPointerAndArraySuffix(t *testing.T) {
	item, dc := parseOne(t, "int *p;")
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", dc.Errors)
	}
	vd := item.(TopVarDecl)
	if vd.Decl.Type.Kind != ast.Ptr || vd.Decl.Type.Elem.Kind != ast.Int {
		t.Fatalf("type = %+v, want *int", vd.Decl.Type)
	}

	item, dc = parseOne(t, "int arr[10];")
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", dc.Errors)
	}
	vd = item.(TopVarDecl)
	if vd.Decl.Type.Kind != ast.Array || vd.Decl.Type.ArraySize != 10 {
		t.Fatalf("type = %+v, want int[10]", vd.Decl.Type)
	}
}

func TestParseFunctionPointerDeclarator(t *testing.T) {
	item, dc := parseOne(t, "int (*f)(int, int);")
	if dc.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", dc.Errors)
	}
	vd := item.(TopVarDecl)
	if vd.Decl.Type.Kind != ast.Ptr || vd.Decl.Type.Elem.Kind != ast.Func {
		t.Fatalf("type = %+v, want pointer to function", vd.Decl.Type)
	}
	if len(vd.Decl.Type.Elem.Params) != 2 {
		t.Fatalf("function pointee has %d params, want 2", len(vd.Decl.Type.Elem.Params))
	}
}

func TestMissingSemicolonReportsSyntaxDiagnostic(t *testing.T) {
	toks := token.NewLexer([]byte("int x")).Tokenize()
	dc := diag.NewContext()
	p := New(toks, dc)
	p.ParseTranslationUnit()
	if !dc.HasErrors() {
		t.Fatalf("expected a syntax diagnostic for a missing semicolon")
	}
}
