package parser

import (
	"github.com/splanck/vc-sub004/internal/ast"
	"github.com/splanck/vc-sub004/internal/token"
)

// parseBlock parses a `{ ... }` compound statement, opening and closing a
// lexical scope for any typedefs introduced inside it (§4.4).
func (p *Parser) parseBlock() *ast.BlockStmt {
	pos := p.pos_()
	p.expect(token.LBRACE)
	outerTypedefs := make(map[string]bool, len(p.typedefs))
	for name, v := range p.typedefs {
		outerTypedefs[name] = v
	}
	blk := &ast.BlockStmt{StmtBase: ast.StmtBase{Pos: pos}}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		before := p.mark()
		s := p.parseStmt()
		if s == nil {
			if p.pos == before.pos {
				p.advance()
			}
			continue
		}
		blk.Stmts = append(blk.Stmts, s)
	}
	p.expect(token.RBRACE)
	p.typedefs = outerTypedefs
	return blk
}

// parseStmt dispatches on the next statement kind (§3.3, §4.4).
func (p *Parser) parseStmt() ast.Stmt {
	switch p.peek().Kind {
	case token.LBRACE:
		return p.parseBlock()
	case token.KW_IF:
		return p.parseIf()
	case token.KW_WHILE:
		return p.parseWhile()
	case token.KW_DO:
		return p.parseDoWhile()
	case token.KW_FOR:
		return p.parseFor()
	case token.KW_SWITCH:
		return p.parseSwitch()
	case token.KW_BREAK:
		pos := p.pos_()
		p.advance()
		p.expect(token.SEMI)
		return &ast.BreakStmt{StmtBase: ast.StmtBase{Pos: pos}}
	case token.KW_CONTINUE:
		pos := p.pos_()
		p.advance()
		p.expect(token.SEMI)
		return &ast.ContinueStmt{StmtBase: ast.StmtBase{Pos: pos}}
	case token.KW_RETURN:
		return p.parseReturn()
	case token.KW_GOTO:
		pos := p.pos_()
		p.advance()
		name := p.expect(token.IDENT).Lexeme
		p.expect(token.SEMI)
		return &ast.GotoStmt{StmtBase: ast.StmtBase{Pos: pos}, Name: name}
	case token.KW_STATIC_ASSERT:
		return p.parseStaticAssert()
	case token.KW_TYPEDEF:
		return p.parseLocalTypedef()
	case token.KW_STRUCT, token.KW_UNION, token.KW_ENUM:
		return p.parseLocalTagOrDecl()
	case token.SEMI:
		p.advance()
		return nil
	case token.IDENT:
		if p.peekAt(1).Kind == token.COLON {
			return p.parseLabel()
		}
	}
	if p.startsDeclaration() {
		return p.parseLocalVarDecl()
	}
	pos := p.pos_()
	x := p.parseExpr()
	p.expect(token.SEMI)
	return &ast.ExprStmt{StmtBase: ast.StmtBase{Pos: pos}, X: x}
}

// startsDeclaration reports whether the current position begins a
// declaration-specifier sequence (as opposed to an expression statement).
func (p *Parser) startsDeclaration() bool {
	switch p.peek().Kind {
	case token.KW_STATIC, token.KW_EXTERN, token.KW_REGISTER, token.KW_INLINE, token.KW_CONST,
		token.KW_VOLATILE, token.KW_RESTRICT, token.KW_NORETURN, token.KW_ALIGNAS,
		token.KW_VOID, token.KW_BOOL, token.KW_CHAR, token.KW_SHORT, token.KW_INT, token.KW_LONG,
		token.KW_FLOAT, token.KW_DOUBLE, token.KW_SIGNED, token.KW_UNSIGNED, token.KW_COMPLEX:
		return true
	case token.IDENT:
		return p.typedefs[p.peek().Lexeme]
	}
	return false
}

func (p *Parser) parseLocalVarDecl() ast.Stmt {
	spec := p.parseDeclSpecifiers()
	var decls []ast.Stmt
	for {
		name, typ := p.parseDeclarator(spec.base)
		decls = append(decls, p.finishVarDecl(name, typ, spec))
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.SEMI)
	if len(decls) == 1 {
		return decls[0]
	}
	blk := &ast.BlockStmt{Stmts: decls}
	return blk
}

func (p *Parser) parseLocalTypedef() ast.Stmt {
	pos := p.pos_()
	p.advance() // 'typedef'
	spec := p.parseDeclSpecifiers()
	name, typ := p.parseDeclarator(spec.base)
	p.expect(token.SEMI)
	p.typedefs[name] = true
	return &ast.TypedefStmt{StmtBase: ast.StmtBase{Pos: pos}, Name: name, Type: typ}
}

// parseLocalTagOrDecl handles a struct/union/enum appearing as a
// statement: either a bare tag declaration (`struct S { ... };`) or one
// introducing a variable of that type (`struct S { ... } s;`).
func (p *Parser) parseLocalTagOrDecl() ast.Stmt {
	spec := p.parseDeclSpecifiers()
	if p.match(token.SEMI) {
		switch d := spec.tagDecl.(type) {
		case *ast.StructDecl:
			return d
		case *ast.UnionDecl:
			return d
		case *ast.EnumDecl:
			return d
		}
		return nil
	}
	return p.parseLocalVarDeclWithSpec(spec)
}

func (p *Parser) parseLocalVarDeclWithSpec(spec declSpecifiers) ast.Stmt {
	var decls []ast.Stmt
	for {
		name, typ := p.parseDeclarator(spec.base)
		decls = append(decls, p.finishVarDecl(name, typ, spec))
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.SEMI)
	if len(decls) == 1 {
		return decls[0]
	}
	return &ast.BlockStmt{Stmts: decls}
}

func (p *Parser) parseLabel() ast.Stmt {
	pos := p.pos_()
	name := p.advance().Lexeme
	p.expect(token.COLON)
	inner := p.parseStmt()
	return &ast.LabelStmt{StmtBase: ast.StmtBase{Pos: pos}, Name: name, Stmt: inner}
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.pos_()
	p.advance() // 'if'
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	then := p.parseStmt()
	var els ast.Stmt
	if p.match(token.KW_ELSE) {
		els = p.parseStmt()
	}
	return &ast.IfStmt{StmtBase: ast.StmtBase{Pos: pos}, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.pos_()
	p.advance() // 'while'
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseStmt()
	return &ast.WhileStmt{StmtBase: ast.StmtBase{Pos: pos}, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() ast.Stmt {
	pos := p.pos_()
	p.advance() // 'do'
	body := p.parseStmt()
	p.expect(token.KW_WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	p.expect(token.SEMI)
	return &ast.DoWhileStmt{StmtBase: ast.StmtBase{Pos: pos}, Body: body, Cond: cond}
}

// parseFor parses `for (init; cond; post) body`, where init may be a
// declaration (opening its own scope, §4.4) or an expression statement.
func (p *Parser) parseFor() ast.Stmt {
	pos := p.pos_()
	p.advance() // 'for'
	p.expect(token.LPAREN)

	var init ast.Stmt
	if p.at(token.SEMI) {
		p.advance()
	} else if p.startsDeclaration() {
		spec := p.parseDeclSpecifiers()
		name, typ := p.parseDeclarator(spec.base)
		init = p.finishVarDecl(name, typ, spec)
		p.expect(token.SEMI)
	} else {
		ipos := p.pos_()
		x := p.parseExpr()
		init = &ast.ExprStmt{StmtBase: ast.StmtBase{Pos: ipos}, X: x}
		p.expect(token.SEMI)
	}

	var cond ast.Expr
	if !p.at(token.SEMI) {
		cond = p.parseExpr()
	}
	p.expect(token.SEMI)

	var post ast.Expr
	if !p.at(token.RPAREN) {
		post = p.parseExpr()
	}
	p.expect(token.RPAREN)

	body := p.parseStmt()
	return &ast.ForStmt{StmtBase: ast.StmtBase{Pos: pos}, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseSwitch() ast.Stmt {
	pos := p.pos_()
	p.advance() // 'switch'
	p.expect(token.LPAREN)
	tag := p.parseExpr()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)

	var cases []ast.SwitchCase
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		var value ast.Expr
		if p.match(token.KW_CASE) {
			value = p.parseConditional()
			p.expect(token.COLON)
		} else {
			p.expect(token.KW_DEFAULT)
			p.expect(token.COLON)
		}
		var body []ast.Stmt
		for !p.checkAny(token.KW_CASE, token.KW_DEFAULT, token.RBRACE) {
			before := p.mark()
			s := p.parseStmt()
			if s == nil {
				if p.pos == before.pos {
					p.advance()
				}
				continue
			}
			body = append(body, s)
		}
		cases = append(cases, ast.SwitchCase{Value: value, Body: body})
	}
	p.expect(token.RBRACE)
	return &ast.SwitchStmt{StmtBase: ast.StmtBase{Pos: pos}, Tag: tag, Cases: cases}
}

func (p *Parser) parseReturn() ast.Stmt {
	pos := p.pos_()
	p.advance() // 'return'
	var x ast.Expr
	if !p.at(token.SEMI) {
		x = p.parseExpr()
	}
	p.expect(token.SEMI)
	return &ast.ReturnStmt{StmtBase: ast.StmtBase{Pos: pos}, X: x}
}
