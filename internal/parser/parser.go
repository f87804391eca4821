// Package parser implements recursive-descent parsing of the supported C
// subset into a typed AST (spec §4.2, component D). The parser is a
// positionally indexed token stream with two primitives: peek (current
// token, or EOF) and match (advance on success). A routine that fails must
// restore the position it entered with, so that higher-level alternatives
// can try next — position-rewind via snapshot indices, not exceptions
// (§9).
package parser

import (
	"github.com/splanck/vc-sub004/internal/ast"
	"github.com/splanck/vc-sub004/internal/diag"
	"github.com/splanck/vc-sub004/internal/symtab"
	"github.com/splanck/vc-sub004/internal/token"
)

// Parser holds the token stream and scratch tables needed to disambiguate
// declarations from expressions (a bare identifier is a type name only if
// it names a typedef seen so far).
type Parser struct {
	toks     []token.Token
	pos      int
	diagCtx  *diag.Context
	typedefs map[string]bool
	tags     map[string]bool

	// lastParams captures the named parameter list (with names, unlike
	// the *ast.Type-only list folded into a Func type's Params) from the
	// most recently parsed function-declarator suffix, so a top-level
	// function definition can recover parameter names after
	// parseDeclarator has already consumed "(params)" generically.
	lastParams []ast.Param
}

// New creates a parser over a full token stream (EOF-terminated).
func New(toks []token.Token, diagCtx *diag.Context) *Parser {
	return &Parser{toks: toks, diagCtx: diagCtx, typedefs: make(map[string]bool), tags: make(map[string]bool)}
}

// snapshot captures the cursor so a failed alternative can rewind cheaply.
type snapshot struct{ pos int }

func (p *Parser) mark() snapshot     { return snapshot{pos: p.pos} }
func (p *Parser) restore(s snapshot) { p.pos = s.pos }

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(off int) token.Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(kinds ...token.Kind) bool {
	cur := p.peek().Kind
	for _, k := range kinds {
		if cur == k {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) checkAny(kinds ...token.Kind) bool {
	cur := p.peek().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

// expect consumes a token of kind k or reports a syntax diagnostic at the
// current position; on a mismatch it returns the current token without
// consuming it.
func (p *Parser) expect(k token.Kind) token.Token {
	t := p.peek()
	if t.Kind != k {
		p.diagCtx.Report(diag.Syntax, t.Line, t.Col, "expected %s, got %s", k, t.Kind)
		return t
	}
	return p.advance()
}

func (p *Parser) pos_() ast.Pos {
	t := p.peek()
	return ast.Pos{Line: t.Line, Col: t.Col}
}

// ParseTranslationUnit parses every top-level entity until EOF.
func (p *Parser) ParseTranslationUnit() *TranslationUnit {
	tu := &TranslationUnit{}
	for !p.at(token.EOF) {
		before := p.mark()
		item := p.parseTopLevel()
		if item == nil {
			if p.pos == before.pos {
				// No progress: avoid an infinite loop on unrecoverable input.
				p.advance()
			}
			continue
		}
		tu.Items = append(tu.Items, item)
	}
	return tu
}

// TranslationUnit is the parser's output: top-level declarations and
// function definitions in source order.
type TranslationUnit struct {
	Items []TopLevel
}

// TopLevel is the sum type of things that can appear at file scope.
type TopLevel interface{ topLevel() }

type TopFunction struct{ Func *ast.Function }
type TopVarDecl struct{ Decl *ast.VarDecl }
type TopTypedef struct{ Decl *ast.TypedefStmt }
type TopStructDecl struct{ Decl *ast.StructDecl }
type TopUnionDecl struct{ Decl *ast.UnionDecl }
type TopEnumDecl struct{ Decl *ast.EnumDecl }
type TopStaticAssert struct{ Decl *ast.StaticAssertStmt }

func (TopFunction) topLevel()     {}
func (TopVarDecl) topLevel()      {}
func (TopTypedef) topLevel()      {}
func (TopStructDecl) topLevel()   {}
func (TopUnionDecl) topLevel()    {}
func (TopEnumDecl) topLevel()     {}
func (TopStaticAssert) topLevel() {}

// parseTopLevel dispatches on the next top-level entity, rewinding to the
// entry snapshot when a choice turns out wrong (§4.2).
func (p *Parser) parseTopLevel() TopLevel {
	start := p.mark()

	if p.at(token.KW_STATIC_ASSERT) {
		return TopStaticAssert{Decl: p.parseStaticAssert()}
	}

	spec := p.parseDeclSpecifiers()

	if spec.isTypedef {
		p.restore(start)
		p.advance() // consume 'typedef'
		spec = p.parseDeclSpecifiers()
		name, typ := p.parseDeclarator(spec.base)
		p.expect(token.SEMI)
		p.typedefs[name] = true
		return TopTypedef{Decl: &ast.TypedefStmt{Name: name, Type: typ}}
	}

	if spec.tagDecl != nil {
		if p.match(token.SEMI) {
			switch d := spec.tagDecl.(type) {
			case *ast.StructDecl:
				return TopStructDecl{Decl: d}
			case *ast.UnionDecl:
				return TopUnionDecl{Decl: d}
			case *ast.EnumDecl:
				return TopEnumDecl{Decl: d}
			}
		}
		// Tag declared inline as part of a variable/function declarator
		// (`struct S { ... } var;`); fall through to declarator parsing
		// with spec.base already set to the tag type.
	}

	if p.at(token.SEMI) {
		p.advance()
		return nil
	}

	name, typ := p.parseDeclarator(spec.base)

	if typ.Kind == ast.Func {
		// parseDeclarator's generic suffix handling already consumed
		// "(params)"; p.lastParams recovers the names that a bare
		// []*ast.Type parameter list drops (§4.2).
		fn := &ast.Function{
			Name: name, Return: typ.Return, Params: p.lastParams, IsVariadic: typ.Variadic,
			IsInline: spec.isInline, IsNoreturn: spec.isNoreturn, IsStatic: spec.storage == ast.StorageStatic,
		}
		if p.match(token.SEMI) {
			return TopFunction{Func: fn}
		}
		fn.Body = p.parseBlock()
		return TopFunction{Func: fn}
	}

	decl := p.finishVarDecl(name, typ, spec)
	p.expect(token.SEMI)
	return TopVarDecl{Decl: decl}
}

func (p *Parser) parseParamList() ([]ast.Param, bool) {
	var params []ast.Param
	variadic := false
	if p.at(token.RPAREN) {
		return params, false
	}
	if p.at(token.KW_VOID) && p.peekAt(1).Kind == token.RPAREN {
		p.advance()
		return params, false
	}
	for {
		if p.match(token.ELLIPSIS) {
			variadic = true
			break
		}
		spec := p.parseDeclSpecifiers()
		name, typ := p.parseAbstractOrNamedDeclarator(spec.base)
		restrict := spec.isRestrict
		params = append(params, ast.Param{Name: name, Type: typ, Restrict: restrict})
		if !p.match(token.COMMA) {
			break
		}
	}
	return params, variadic
}

func (p *Parser) parseStaticAssert() *ast.StaticAssertStmt {
	pos := p.pos_()
	p.expect(token.KW_STATIC_ASSERT)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	msg := ""
	if p.match(token.COMMA) {
		t := p.expect(token.STRING_LIT)
		msg = t.Lexeme
	}
	p.expect(token.RPAREN)
	p.expect(token.SEMI)
	return &ast.StaticAssertStmt{StmtBase: ast.StmtBase{Pos: pos}, Cond: cond, Message: msg}
}
