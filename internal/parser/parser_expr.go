package parser

import (
	"github.com/splanck/vc-sub004/internal/ast"
	"github.com/splanck/vc-sub004/internal/consteval"
	"github.com/splanck/vc-sub004/internal/diag"
	"github.com/splanck/vc-sub004/internal/token"
)

// parseExpr parses a full comma-free expression (assignment precedence),
// the entry point used wherever a single expression is expected (§4.2).
func (p *Parser) parseExpr() ast.Expr { return p.parseAssign() }

// constIntExpr folds a parsed expression to a compile-time constant for
// array bounds and bit-field widths, using a fresh evaluator with an
// 8-byte pointer size and no identifier lookup.
func (p *Parser) constIntExpr(e ast.Expr) (int64, error) {
	ev := &consteval.Evaluator{PtrSize: 8}
	return ev.Eval(e)
}

// parseAssign parses assignment-precedence: conditional, then an optional
// `op= rhs` tail. Compound assignment is desugared here into
// `target = target ⊕ rhs` by cloning the already-parsed target (§4.2) —
// SourceOp is kept only so later diagnostics can name the original
// operator.
func (p *Parser) parseAssign() ast.Expr {
	left := p.parseConditional()
	op, isAssign := p.peekAssignOp()
	if !isAssign {
		return left
	}
	p.advance()
	pos := left.Position()
	value := p.parseAssign()

	kind, targetOK := assignTargetKind(left)
	if !targetOK {
		t := pos
		p.diagCtx.ReportAt(diag.Syntax, diag.Location{Line: t.Line, Column: t.Col}, "invalid assignment target")
		return left
	}

	if op == "=" {
		return &ast.Assign{ExprBase: ast.ExprBase{Pos: pos}, TargetKind: kind, Target: left, Value: value, SourceOp: op}
	}
	binOp := op[:len(op)-1] // strip trailing '='
	desugared := &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: binOp, X: cloneExprForDesugar(left), Y: value}
	return &ast.Assign{ExprBase: ast.ExprBase{Pos: pos}, TargetKind: kind, Target: left, Value: desugared, SourceOp: op}
}

// cloneExprForDesugar clones the already-parsed lvalue so the desugared
// `target op rhs` reads it independently of the outer Assign.Target copy;
// side-effecting subexpressions of the target (e.g. in `a[i++] += 1`) are
// evaluated once at the lvalue-address step by the semantic/IR builder,
// not duplicated here — this only duplicates the read-path AST shape.
func cloneExprForDesugar(e ast.Expr) ast.Expr { return e.Clone() }

func assignTargetKind(e ast.Expr) (ast.AssignTargetKind, bool) {
	switch e.(type) {
	case *ast.Ident:
		return ast.AssignName, true
	case *ast.Index:
		return ast.AssignIndex, true
	case *ast.Member:
		return ast.AssignMember, true
	case *ast.Unary:
		// `*p = ...` deref assignment: surfaced with AssignName here;
		// sema recognizes Unary("*") targets directly and lowers them to
		// OpStorePtr.
		if u := e.(*ast.Unary); u.Op == "*" && !u.Postfix {
			return ast.AssignName, true
		}
	}
	return ast.AssignName, false
}

func (p *Parser) peekAssignOp() (string, bool) {
	switch p.peek().Kind {
	case token.ASSIGN:
		return "=", true
	case token.PLUS_ASSIGN:
		return "+=", true
	case token.MINUS_ASSIGN:
		return "-=", true
	case token.STAR_ASSIGN:
		return "*=", true
	case token.SLASH_ASSIGN:
		return "/=", true
	case token.PERCENT_ASSIGN:
		return "%=", true
	case token.AMP_ASSIGN:
		return "&=", true
	case token.PIPE_ASSIGN:
		return "|=", true
	case token.CARET_ASSIGN:
		return "^=", true
	case token.SHL_ASSIGN:
		return "<<=", true
	case token.SHR_ASSIGN:
		return ">>=", true
	}
	return "", false
}

// parseConditional parses `logor ['?' expr ':' conditional]`.
func (p *Parser) parseConditional() ast.Expr {
	cond := p.parseLogOr()
	if !p.match(token.QUESTION) {
		return cond
	}
	pos := cond.Position()
	then := p.parseExpr()
	p.expect(token.COLON)
	els := p.parseConditional()
	return &ast.Ternary{ExprBase: ast.ExprBase{Pos: pos}, Cond: cond, Then: then, Else: els}
}

// binaryLevel is one precedence tier in the climb from logor down to
// multiplicative; leftAssoc binary operators at each tier are built by
// parseBinaryChain (§4.2).
type binaryLevel struct {
	kinds []token.Kind
	ops   []string
	next  func(*Parser) ast.Expr
}

func (p *Parser) parseLogOr() ast.Expr {
	return p.parseBinaryChain([]token.Kind{token.OROR}, []string{"||"}, (*Parser).parseLogAnd)
}
func (p *Parser) parseLogAnd() ast.Expr {
	return p.parseBinaryChain([]token.Kind{token.ANDAND}, []string{"&&"}, (*Parser).parseBitOr)
}
func (p *Parser) parseBitOr() ast.Expr {
	return p.parseBinaryChain([]token.Kind{token.PIPE}, []string{"|"}, (*Parser).parseBitXor)
}
func (p *Parser) parseBitXor() ast.Expr {
	return p.parseBinaryChain([]token.Kind{token.CARET}, []string{"^"}, (*Parser).parseBitAnd)
}
func (p *Parser) parseBitAnd() ast.Expr {
	return p.parseBinaryChain([]token.Kind{token.AMP}, []string{"&"}, (*Parser).parseEquality)
}
func (p *Parser) parseEquality() ast.Expr {
	return p.parseBinaryChain([]token.Kind{token.EQ, token.NE}, []string{"==", "!="}, (*Parser).parseRelational)
}
func (p *Parser) parseRelational() ast.Expr {
	return p.parseBinaryChain(
		[]token.Kind{token.LT, token.LE, token.GT, token.GE},
		[]string{"<", "<=", ">", ">="},
		(*Parser).parseShift)
}
func (p *Parser) parseShift() ast.Expr {
	return p.parseBinaryChain([]token.Kind{token.SHL, token.SHR}, []string{"<<", ">>"}, (*Parser).parseAdditive)
}
func (p *Parser) parseAdditive() ast.Expr {
	return p.parseBinaryChain([]token.Kind{token.PLUS, token.MINUS}, []string{"+", "-"}, (*Parser).parseMultiplicative)
}
func (p *Parser) parseMultiplicative() ast.Expr {
	return p.parseBinaryChain(
		[]token.Kind{token.STAR, token.SLASH, token.PERCENT},
		[]string{"*", "/", "%"},
		(*Parser).parseCast)
}

// parseBinaryChain implements one left-associative precedence tier:
// parse one operand at the next tier down, then fold in as many
// same-tier operators as appear (§4.2 precedence-climbing).
func (p *Parser) parseBinaryChain(kinds []token.Kind, ops []string, next func(*Parser) ast.Expr) ast.Expr {
	left := next(p)
	for {
		matched := -1
		for i, k := range kinds {
			if p.at(k) {
				matched = i
				break
			}
		}
		if matched < 0 {
			return left
		}
		pos := left.Position()
		p.advance()
		right := next(p)
		left = &ast.Binary{ExprBase: ast.ExprBase{Pos: pos}, Op: ops[matched], X: left, Y: right}
	}
}

// parseCast parses `'(' type-name ')' cast | unary`. A parenthesized
// expression is distinguished from a cast by whether the token after '('
// starts a type (a basic-type keyword, struct/union/enum, or a registered
// typedef name) — snapshot-and-rewind if that guess is wrong (§4.2, §9).
func (p *Parser) parseCast() ast.Expr {
	if p.at(token.LPAREN) && p.startsTypeName(1) {
		start := p.mark()
		p.advance()
		typ := p.parseTypeName()
		if p.match(token.RPAREN) {
			if p.at(token.LBRACE) {
				items := p.parseInitializerList()
				return &ast.CompoundLiteral{ExprBase: ast.ExprBase{Pos: typ.pos}, Type: typ.typ, Items: items}
			}
			x := p.parseCast()
			return &ast.Cast{ExprBase: ast.ExprBase{Pos: typ.pos}, Type: typ.typ, X: x}
		}
		p.restore(start)
	}
	return p.parseUnary()
}

type typeNameResult struct {
	typ *ast.Type
	pos ast.Pos
}

// startsTypeName reports whether the token off positions ahead can begin a
// type-name (used only to decide cast-vs-parenthesized-expression).
func (p *Parser) startsTypeName(off int) bool {
	switch p.peekAt(off).Kind {
	case token.KW_VOID, token.KW_BOOL, token.KW_CHAR, token.KW_SHORT, token.KW_INT, token.KW_LONG,
		token.KW_FLOAT, token.KW_DOUBLE, token.KW_SIGNED, token.KW_UNSIGNED, token.KW_STRUCT,
		token.KW_UNION, token.KW_ENUM, token.KW_CONST, token.KW_VOLATILE, token.KW_COMPLEX:
		return true
	case token.IDENT:
		return p.typedefs[p.peekAt(off).Lexeme]
	}
	return false
}

// parseTypeName parses an abstract type-name: a declaration-specifier
// sequence followed by an optional abstract declarator (pointers/array
// suffixes, no identifier) — used by casts, sizeof(type), and
// compound-literal type operands.
func (p *Parser) parseTypeName() typeNameResult {
	pos := p.pos_()
	spec := p.parseDeclSpecifiers()
	_, typ := p.parseAbstractOrNamedDeclarator(spec.base)
	return typeNameResult{typ: typ, pos: pos}
}

// parseUnary parses prefix unary operators, prefix ++/--, sizeof,
// _Alignof, offsetof, and falls through to postfix (§4.2).
func (p *Parser) parseUnary() ast.Expr {
	pos := p.pos_()
	switch p.peek().Kind {
	case token.PLUS, token.MINUS, token.BANG, token.TILDE, token.STAR, token.AMP:
		op := opText(p.advance().Kind)
		x := p.parseCast()
		return &ast.Unary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, X: x}
	case token.INC, token.DEC:
		op := "++"
		if p.peek().Kind == token.DEC {
			op = "--"
		}
		p.advance()
		x := p.parseUnary()
		return &ast.Unary{ExprBase: ast.ExprBase{Pos: pos}, Op: op, X: x}
	case token.KW_SIZEOF:
		p.advance()
		if p.at(token.LPAREN) && p.startsTypeName(1) {
			p.advance()
			typ := p.parseTypeName()
			p.expect(token.RPAREN)
			return &ast.SizeofType{ExprBase: ast.ExprBase{Pos: pos}, Type: typ.typ}
		}
		x := p.parseUnary()
		return &ast.SizeofExpr{ExprBase: ast.ExprBase{Pos: pos}, X: x}
	case token.KW_ALIGNOF:
		p.advance()
		p.expect(token.LPAREN)
		if p.startsTypeName(0) {
			typ := p.parseTypeName()
			p.expect(token.RPAREN)
			return &ast.AlignofExpr{ExprBase: ast.ExprBase{Pos: pos}, Type: typ.typ}
		}
		x := p.parseExpr()
		p.expect(token.RPAREN)
		return &ast.AlignofExpr{ExprBase: ast.ExprBase{Pos: pos}, X: x}
	case token.KW_OFFSETOF:
		p.advance()
		p.expect(token.LPAREN)
		spec := p.parseDeclSpecifiers()
		tagName := spec.base.Tag
		p.expect(token.COMMA)
		path := []string{p.expect(token.IDENT).Lexeme}
		for p.match(token.DOT) {
			path = append(path, p.expect(token.IDENT).Lexeme)
		}
		p.expect(token.RPAREN)
		return &ast.Offsetof{ExprBase: ast.ExprBase{Pos: pos}, TagName: tagName, Path: path}
	}
	return p.parsePostfix()
}

func opText(k token.Kind) string {
	switch k {
	case token.PLUS:
		return "+"
	case token.MINUS:
		return "-"
	case token.BANG:
		return "!"
	case token.TILDE:
		return "~"
	case token.STAR:
		return "*"
	case token.AMP:
		return "&"
	}
	return "?"
}

// parsePostfix parses a primary expression followed by any run of
// postfix operators: call, index, member access, arrow, post-inc/dec.
func (p *Parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for {
		pos := e.Position()
		switch {
		case p.at(token.LPAREN):
			p.advance()
			var args []ast.Expr
			if !p.at(token.RPAREN) {
				for {
					args = append(args, p.parseAssign())
					if !p.match(token.COMMA) {
						break
					}
				}
			}
			p.expect(token.RPAREN)
			e = &ast.Call{ExprBase: ast.ExprBase{Pos: pos}, Callee: e, Args: args}
		case p.at(token.LBRACK):
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACK)
			e = &ast.Index{ExprBase: ast.ExprBase{Pos: pos}, Base: e, Idx: idx}
		case p.at(token.DOT):
			p.advance()
			field := p.expect(token.IDENT).Lexeme
			e = &ast.Member{ExprBase: ast.ExprBase{Pos: pos}, Base: e, Field: field}
		case p.at(token.ARROW):
			p.advance()
			field := p.expect(token.IDENT).Lexeme
			e = &ast.Member{ExprBase: ast.ExprBase{Pos: pos}, Base: e, Field: field, Arrow: true}
		case p.at(token.INC):
			p.advance()
			e = &ast.Unary{ExprBase: ast.ExprBase{Pos: pos}, Op: "++", X: e, Postfix: true}
		case p.at(token.DEC):
			p.advance()
			e = &ast.Unary{ExprBase: ast.ExprBase{Pos: pos}, Op: "--", X: e, Postfix: true}
		default:
			return e
		}
	}
}

// parsePrimary parses literals, identifiers, and parenthesized
// sub-expressions.
func (p *Parser) parsePrimary() ast.Expr {
	pos := p.pos_()
	t := p.peek()
	switch t.Kind {
	case token.INT_LIT:
		p.advance()
		return parseIntLiteral(pos, t.Lexeme)
	case token.FLOAT_LIT:
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Pos: pos}, LitKind: ast.LitFloat, FloatVal: parseFloatLexeme(t.Lexeme)}
	case token.STRING_LIT:
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Pos: pos}, LitKind: ast.LitString, StrVal: t.Lexeme}
	case token.WSTRING_LIT:
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Pos: pos}, LitKind: ast.LitWString, StrVal: t.Lexeme}
	case token.CHAR_LIT:
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Pos: pos}, LitKind: ast.LitChar, StrVal: t.Lexeme}
	case token.WCHAR_LIT:
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Pos: pos}, LitKind: ast.LitWChar, StrVal: t.Lexeme}
	case token.IDENT:
		p.advance()
		return &ast.Ident{ExprBase: ast.ExprBase{Pos: pos}, Name: t.Lexeme}
	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e
	}
	p.diagCtx.Report(diag.Syntax, t.Line, t.Col, "unexpected token %s in expression", t.Kind)
	p.advance()
	return &ast.Literal{ExprBase: ast.ExprBase{Pos: pos}, LitKind: ast.LitInt, IntVal: 0}
}

// parseIntLiteral decodes suffixes (u/U, l/L, ll/LL) from the raw lexeme;
// the lexer hands us the full text including suffix letters and, for hex,
// the leading "0x".
func parseIntLiteral(pos ast.Pos, lexeme string) *ast.Literal {
	digits, unsigned, longCount := splitIntSuffix(lexeme)
	v := decodeIntDigits(digits)
	return &ast.Literal{ExprBase: ast.ExprBase{Pos: pos}, LitKind: ast.LitInt, IntVal: v, IsUnsigned: unsigned, LongCount: longCount}
}

func splitIntSuffix(s string) (digits string, unsigned bool, longCount int) {
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if c == 'u' || c == 'U' {
			unsigned = true
			i--
			continue
		}
		if c == 'l' || c == 'L' {
			longCount++
			i--
			continue
		}
		break
	}
	if longCount > 2 {
		longCount = 2
	}
	return s[:i], unsigned, longCount
}

func decodeIntDigits(s string) int64 {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		var v uint64
		for i := 2; i < len(s); i++ {
			v = v*16 + uint64(hexDigitVal(s[i]))
		}
		return int64(v)
	}
	if len(s) > 1 && s[0] == '0' {
		var v uint64
		for i := 1; i < len(s); i++ {
			if s[i] < '0' || s[i] > '7' {
				break
			}
			v = v*8 + uint64(s[i]-'0')
		}
		return int64(v)
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			break
		}
		v = v*10 + uint64(s[i]-'0')
	}
	return int64(v)
}

func hexDigitVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

// parseFloatLexeme decodes a float literal's digit text, ignoring any
// trailing f/F/l/L suffix (single vs long double is resolved by the
// semantic pass from context, not recorded on the literal itself).
func parseFloatLexeme(s string) float64 {
	n := len(s)
	for n > 0 && (s[n-1] == 'f' || s[n-1] == 'F' || s[n-1] == 'l' || s[n-1] == 'L') {
		n--
	}
	s = s[:n]
	var intPart, fracPart float64
	var fracDiv float64 = 1
	i := 0
	neg := false
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		intPart = intPart*10 + float64(s[i]-'0')
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			fracPart = fracPart*10 + float64(s[i]-'0')
			fracDiv *= 10
			i++
		}
	}
	v := intPart + fracPart/fracDiv
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		expNeg := false
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			expNeg = s[i] == '-'
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			exp = exp*10 + int(s[i]-'0')
			i++
		}
		scale := 1.0
		for j := 0; j < exp; j++ {
			scale *= 10
		}
		if expNeg {
			v /= scale
		} else {
			v *= scale
		}
	}
	if neg {
		v = -v
	}
	return v
}
