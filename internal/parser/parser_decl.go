package parser

import (
	"github.com/splanck/vc-sub004/internal/ast"
	"github.com/splanck/vc-sub004/internal/diag"
	"github.com/splanck/vc-sub004/internal/token"
)

// declSpecifiers collects everything that can precede a declarator: storage
// class, type qualifiers, function specifiers, and the base type itself
// (§3.3). tagDecl is non-nil when the specifier sequence declared a new
// struct/union/enum tag inline (`struct S { ... }`).
type declSpecifiers struct {
	isTypedef   bool
	isInline    bool
	isNoreturn  bool
	isRestrict  bool
	isConst     bool
	isVolatile  bool
	storage     ast.StorageClass
	base        *ast.Type
	tagDecl     interface{} // *ast.StructDecl, *ast.UnionDecl, or *ast.EnumDecl
	alignAs     ast.Expr
}

// parseDeclSpecifiers consumes the (possibly empty) run of storage-class
// keywords, qualifiers, function specifiers, and exactly one base-type
// specifier. A bare identifier is treated as a type name only if it was
// previously registered as a typedef (§4.2) — this is what makes
// declaration-vs-expression disambiguation possible without a separate
// symbol pass ahead of parsing.
func (p *Parser) parseDeclSpecifiers() declSpecifiers {
	var spec declSpecifiers
	var kind ast.TypeKind
	haveBase := false
	sawSigned, sawUnsigned := false, false
	longCount := 0

loop:
	for {
		switch p.peek().Kind {
		case token.KW_TYPEDEF:
			spec.isTypedef = true
			p.advance()
		case token.KW_STATIC:
			spec.storage = ast.StorageStatic
			p.advance()
		case token.KW_EXTERN:
			spec.storage = ast.StorageExtern
			p.advance()
		case token.KW_REGISTER:
			spec.storage = ast.StorageRegister
			p.advance()
		case token.KW_INLINE:
			spec.isInline = true
			p.advance()
		case token.KW_NORETURN:
			spec.isNoreturn = true
			p.advance()
		case token.KW_CONST:
			spec.isConst = true
			p.advance()
		case token.KW_VOLATILE:
			spec.isVolatile = true
			p.advance()
		case token.KW_RESTRICT:
			spec.isRestrict = true
			p.advance()
		case token.KW_ALIGNAS:
			p.advance()
			p.expect(token.LPAREN)
			spec.alignAs = p.parseExpr()
			p.expect(token.RPAREN)
		case token.KW_VOID:
			kind, haveBase = ast.Void, true
			p.advance()
		case token.KW_BOOL:
			kind, haveBase = ast.Bool, true
			p.advance()
		case token.KW_CHAR:
			kind, haveBase = ast.Char, true
			p.advance()
		case token.KW_SHORT:
			kind, haveBase = ast.Short, true
			p.advance()
		case token.KW_INT:
			if !haveBase || kind == ast.Short || kind == ast.Long || kind == ast.LLong {
				// 'int' following 'short'/'long' is redundant width filler; keep the
				// width already recorded.
				if !haveBase {
					kind = ast.Int
				}
			} else {
				kind = ast.Int
			}
			haveBase = true
			p.advance()
		case token.KW_LONG:
			if kind == ast.Long {
				kind = ast.LLong
			} else if kind != ast.LDouble {
				kind = ast.Long
			}
			longCount++
			haveBase = true
			p.advance()
		case token.KW_FLOAT:
			kind, haveBase = ast.Float, true
			p.advance()
		case token.KW_DOUBLE:
			if longCount > 0 {
				kind = ast.LDouble
			} else {
				kind = ast.Double
			}
			haveBase = true
			p.advance()
		case token.KW_SIGNED:
			sawSigned = true
			if !haveBase {
				kind, haveBase = ast.Int, true
			}
			p.advance()
		case token.KW_UNSIGNED:
			sawUnsigned = true
			if !haveBase {
				kind, haveBase = ast.Int, true
			}
			p.advance()
		case token.KW_COMPLEX:
			switch kind {
			case ast.Float:
				kind = ast.ComplexFloat
			case ast.LDouble:
				kind = ast.ComplexLDouble
			default:
				kind = ast.ComplexDouble
			}
			haveBase = true
			p.advance()
		case token.KW_STRUCT, token.KW_UNION:
			spec.tagDecl = p.parseAggregateSpecifier(p.peek().Kind == token.KW_UNION)
			kind = tagDeclKind(spec.tagDecl)
			spec.base = tagDeclType(spec.tagDecl)
			haveBase = true
		case token.KW_ENUM:
			spec.tagDecl = p.parseEnumSpecifier()
			kind = ast.Int
			spec.base = ast.Basic(ast.Int)
			haveBase = true
		case token.IDENT:
			if !haveBase && p.typedefs[p.peek().Lexeme] {
				spec.base = ast.Basic(ast.Unknown)
				spec.base.Tag = p.peek().Lexeme
				haveBase = true
				p.advance()
			} else {
				break loop
			}
		default:
			break loop
		}
	}

	if sawUnsigned {
		kind = unsignedOf(kind)
	} else if sawSigned {
		kind = signedOf(kind)
	}

	if spec.base == nil {
		if !haveBase {
			kind = ast.Int // implicit int, permitted by the accepted subset
		}
		spec.base = ast.Basic(kind)
	}
	spec.base.IsConst = spec.isConst
	spec.base.IsVolatile = spec.isVolatile
	spec.base.IsRestrict = spec.isRestrict
	return spec
}

func unsignedOf(k ast.TypeKind) ast.TypeKind {
	switch k {
	case ast.Char:
		return ast.UChar
	case ast.Short:
		return ast.UShort
	case ast.Int:
		return ast.UInt
	case ast.Long:
		return ast.ULong
	case ast.LLong:
		return ast.ULLong
	}
	return k
}

func signedOf(k ast.TypeKind) ast.TypeKind {
	switch k {
	case ast.UChar:
		return ast.Char
	case ast.UShort:
		return ast.Short
	case ast.UInt:
		return ast.Int
	case ast.ULong:
		return ast.Long
	case ast.ULLong:
		return ast.LLong
	}
	return k
}

func tagDeclKind(d interface{}) ast.TypeKind {
	switch d.(type) {
	case *ast.StructDecl:
		return ast.Struct
	case *ast.UnionDecl:
		return ast.Union
	}
	return ast.Unknown
}

func tagDeclType(d interface{}) *ast.Type {
	switch v := d.(type) {
	case *ast.StructDecl:
		return &ast.Type{Kind: ast.Struct, Tag: v.Tag}
	case *ast.UnionDecl:
		return &ast.Type{Kind: ast.Union, Tag: v.Tag}
	}
	return nil
}

// parseAggregateSpecifier parses `struct|union [tag] [{ members... }]`. A
// tag with no body is a reference to a previously (or not yet) declared
// tag; a body with no tag keeps an empty Tag (no name is synthesized).
func (p *Parser) parseAggregateSpecifier(isUnion bool) interface{} {
	pos := p.pos_()
	p.advance() // 'struct' or 'union'
	tag := ""
	if p.at(token.IDENT) {
		tag = p.advance().Lexeme
	}
	var members []ast.AggregateMember
	if p.match(token.LBRACE) {
		for !p.at(token.RBRACE) && !p.at(token.EOF) {
			members = append(members, p.parseAggregateMembers()...)
		}
		p.expect(token.RBRACE)
		p.tags[tag] = true
	}
	if isUnion {
		return &ast.UnionDecl{StmtBase: ast.StmtBase{Pos: pos}, Tag: tag, Members: members}
	}
	return &ast.StructDecl{StmtBase: ast.StmtBase{Pos: pos}, Tag: tag, Members: members}
}

// parseAggregateMembers parses one member declaration, which may declare
// several members sharing a base type (`int a, b;`), and may carry a
// bit-field width or be the trailing flexible array member.
func (p *Parser) parseAggregateMembers() []ast.AggregateMember {
	spec := p.parseDeclSpecifiers()
	var out []ast.AggregateMember
	for {
		name, typ := p.parseAbstractOrNamedDeclarator(spec.base)
		bitWidth := 0
		if p.match(token.COLON) {
			w, err := p.constIntExpr(p.parseConditional())
			if err == nil {
				bitWidth = int(w)
			}
		}
		flexible := typ.Kind == ast.Array && typ.ArraySize < 0
		out = append(out, ast.AggregateMember{Name: name, Type: typ, BitWidth: bitWidth, IsFlexible: flexible})
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.SEMI)
	return out
}

// parseEnumSpecifier parses `enum [tag] [{ NAME [= expr], ... }]`.
func (p *Parser) parseEnumSpecifier() *ast.EnumDecl {
	pos := p.pos_()
	p.advance() // 'enum'
	tag := ""
	if p.at(token.IDENT) {
		tag = p.advance().Lexeme
	}
	var members []ast.AggregateMember
	if p.match(token.LBRACE) {
		for !p.at(token.RBRACE) && !p.at(token.EOF) {
			name := p.expect(token.IDENT).Lexeme
			var val ast.Expr
			if p.match(token.ASSIGN) {
				val = p.parseConditional()
			}
			members = append(members, ast.AggregateMember{Name: name, Type: ast.Basic(ast.Int), EnumValue: val})
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RBRACE)
		p.tags[tag] = true
	}
	return &ast.EnumDecl{StmtBase: ast.StmtBase{Pos: pos}, Tag: tag, Members: members}
}

// parseDeclarator parses a full (named) declarator: pointer prefixes, an
// identifier, then array or function-pointer suffixes, building the
// derived type outside-in from base (§4.2, canonical per the Open Question
// resolution recorded in DESIGN.md — the version that bottoms out in
// parseFuncPtrSuffix for the parenthesized-declarator case).
func (p *Parser) parseDeclarator(base *ast.Type) (string, *ast.Type) {
	return p.parseDeclaratorImpl(base, true)
}

// parseAbstractOrNamedDeclarator parses a declarator whose identifier is
// optional (parameter lists, abstract cast types, struct members whose
// name is still mandatory for members but reuses the same suffix logic).
func (p *Parser) parseAbstractOrNamedDeclarator(base *ast.Type) (string, *ast.Type) {
	return p.parseDeclaratorImpl(base, false)
}

func (p *Parser) parseDeclaratorImpl(base *ast.Type, requireName bool) (string, *ast.Type) {
	typ := base
	for p.match(token.STAR) {
		elem := typ
		typ = ast.PointerTo(elem)
		for p.checkAny(token.KW_CONST, token.KW_VOLATILE, token.KW_RESTRICT) {
			switch p.advance().Kind {
			case token.KW_CONST:
				typ.IsConst = true
			case token.KW_VOLATILE:
				typ.IsVolatile = true
			case token.KW_RESTRICT:
				typ.IsRestrict = true
			}
		}
	}

	if p.at(token.LPAREN) && p.declaratorStartsHere(1) {
		// Parenthesized declarator: (*name)(params) or (*name)[n], the
		// function-pointer/array-of-pointer suffix form.
		return p.parseFuncPtrSuffix(typ, requireName)
	}

	name := ""
	if p.at(token.IDENT) {
		name = p.advance().Lexeme
	} else if requireName {
		t := p.peek()
		p.diagCtx.Report(diag.Syntax, t.Line, t.Col, "expected identifier in declarator, got %s", t.Kind)
	}

	typ = p.parseDeclaratorSuffixes(typ)
	return name, typ
}

// declaratorStartsHere reports whether the token offset bytes ahead begins
// a nested declarator (`*`, identifier, or another `(`) rather than a
// parameter-list's empty/typed start — used to disambiguate
// `int (*f)(void)` from a plain `int (x)` parenthesized declarator-less
// grouping, which this subset does not otherwise produce at this position.
func (p *Parser) declaratorStartsHere(off int) bool {
	k := p.peekAt(off).Kind
	return k == token.STAR || k == token.IDENT || k == token.LPAREN
}

// parseFuncPtrSuffix parses the parenthesized inner declarator
// `(*name)` (or `(*)` when abstract) and then the trailing function-call
// or array suffix that turns it into a function pointer or array of
// pointers, e.g. `int (*f)(int, int)`.
func (p *Parser) parseFuncPtrSuffix(ptrBase *ast.Type, requireName bool) (string, *ast.Type) {
	p.expect(token.LPAREN)
	innerPtr := ptrBase
	for p.match(token.STAR) {
		innerPtr = ast.PointerTo(innerPtr)
	}
	name := ""
	if p.at(token.IDENT) {
		name = p.advance().Lexeme
	} else if requireName {
		t := p.peek()
		p.diagCtx.Report(diag.Syntax, t.Line, t.Col, "expected identifier in declarator, got %s", t.Kind)
	}
	p.expect(token.RPAREN)

	if p.at(token.LPAREN) {
		p.advance()
		params, variadic := p.parseParamList()
		p.expect(token.RPAREN)
		paramTypes := make([]*ast.Type, len(params))
		for i, pm := range params {
			paramTypes[i] = pm.Type
		}
		p.lastParams = params
		fnType := &ast.Type{Kind: ast.Func, Return: innerPtr.Elem, Params: paramTypes, Variadic: variadic}
		if innerPtr.Kind == ast.Ptr {
			fnType.Return = ptrBase
		}
		return name, ast.PointerTo(fnType)
	}

	typ := innerPtr
	typ = p.parseDeclaratorSuffixes(typ)
	return name, typ
}

// parseDeclaratorSuffixes consumes any trailing array or function-call
// suffixes following the core declarator.
func (p *Parser) parseDeclaratorSuffixes(base *ast.Type) *ast.Type {
	typ := base
	for {
		switch {
		case p.at(token.LBRACK):
			p.advance()
			size := int64(-1)
			if !p.at(token.RBRACK) {
				n, err := p.constIntExpr(p.parseConditional())
				if err == nil {
					size = n
				}
			}
			p.expect(token.RBRACK)
			typ = ast.ArrayOf(typ, size)
		case p.at(token.LPAREN):
			p.advance()
			params, variadic := p.parseParamList()
			p.expect(token.RPAREN)
			paramTypes := make([]*ast.Type, len(params))
			for i, pm := range params {
				paramTypes[i] = pm.Type
			}
			p.lastParams = params
			typ = &ast.Type{Kind: ast.Func, Return: typ, Params: paramTypes, Variadic: variadic}
		default:
			return typ
		}
	}
}

// finishVarDecl assembles a VarDecl once the declarator's name and derived
// type are known, consuming an optional `= initializer`.
func (p *Parser) finishVarDecl(name string, typ *ast.Type, spec declSpecifiers) *ast.VarDecl {
	decl := &ast.VarDecl{
		Name: name, Type: typ, Storage: spec.storage, IsInline: spec.isInline, AlignAs: spec.alignAs,
	}
	if typ.Kind == ast.Array {
		decl.ArraySize = nil // concrete bound already folded into typ.ArraySize
	}
	if typ.Kind == ast.Ptr && typ.Elem != nil && typ.Elem.Kind == ast.Func {
		decl.IsFuncPtr = true
		decl.FuncReturn = typ.Elem.Return
		decl.FuncParams = typ.Elem.Params
		decl.FuncVariadic = typ.Elem.Variadic
	}
	if p.match(token.ASSIGN) {
		if p.at(token.LBRACE) {
			decl.InitItems = p.parseInitializerList()
		} else {
			decl.Init = p.parseAssign()
		}
	}
	return decl
}

// parseInitializerList parses a brace-delimited initializer list, including
// nested designated initializers (§3.3).
func (p *Parser) parseInitializerList() []ast.InitItem {
	p.expect(token.LBRACE)
	var items []ast.InitItem
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		items = append(items, p.parseInitItem())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE)
	return items
}

func (p *Parser) parseInitItem() ast.InitItem {
	switch {
	case p.at(token.DOT):
		p.advance()
		field := p.expect(token.IDENT).Lexeme
		p.expect(token.ASSIGN)
		it := ast.InitItem{Kind: ast.InitField, Field: field}
		p.fillInitValue(&it)
		return it
	case p.at(token.LBRACK):
		p.advance()
		idx := p.parseConditional()
		p.expect(token.RBRACK)
		p.expect(token.ASSIGN)
		it := ast.InitItem{Kind: ast.InitIndex, Index: idx}
		p.fillInitValue(&it)
		return it
	default:
		it := ast.InitItem{Kind: ast.InitSimple}
		p.fillInitValue(&it)
		return it
	}
}

// fillInitValue fills either it.Nested (brace-enclosed sub-list) or
// it.Value (plain expression), the two mutually exclusive shapes an
// initializer entry can take (§3.3).
func (p *Parser) fillInitValue(it *ast.InitItem) {
	if p.at(token.LBRACE) {
		it.Nested = p.parseInitializerList()
		return
	}
	it.Value = p.parseAssign()
}
