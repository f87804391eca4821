package sema

import "github.com/splanck/vc-sub004/internal/ast"

// inferType recovers the static type of an already-parsed expression
// without a separate type-checking pass: it walks the same shape lowerExpr
// does, resolving identifiers and member paths against the symbol tables
// built during registration. It is used only where lowering needs the
// type to decide *how* to emit code (pointer arithmetic's element-size
// scale, a cast's source kind) — never to re-validate the program.
func (fx *funcCtx) inferType(e ast.Expr) *ast.Type {
	switch n := e.(type) {
	case *ast.Literal:
		return inferLiteralType(n)
	case *ast.Ident:
		if sym, ok := fx.lookupVar(n.Name); ok {
			return sym.Type
		}
		if f, ok := fx.c.Funcs.Lookup(n.Name); ok {
			return &ast.Type{Kind: ast.Func, Return: f.Return}
		}
		return nil
	case *ast.Unary:
		switch n.Op {
		case "*":
			t := fx.inferType(n.X)
			if t != nil {
				return t.Elem
			}
			return nil
		case "&":
			return ast.PointerTo(fx.inferType(n.X))
		case "!":
			return ast.Basic(ast.Int)
		default:
			return fx.inferType(n.X)
		}
	case *ast.Binary:
		switch n.Op {
		case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
			return ast.Basic(ast.Int)
		}
		xt := fx.inferType(n.X)
		if xt != nil && (xt.Kind == ast.Ptr || xt.Kind == ast.Array) {
			return xt
		}
		yt := fx.inferType(n.Y)
		if yt != nil && (yt.Kind == ast.Ptr || yt.Kind == ast.Array) {
			return yt
		}
		if xt != nil {
			return xt
		}
		return yt
	case *ast.Ternary:
		if t := fx.inferType(n.Then); t != nil {
			return t
		}
		return fx.inferType(n.Else)
	case *ast.Assign:
		return fx.inferType(n.Target)
	case *ast.Index:
		bt := fx.inferType(n.Base)
		if bt != nil {
			return bt.Elem
		}
		return nil
	case *ast.Member:
		return fx.inferMemberType(n)
	case *ast.Call:
		if callee, ok := n.Callee.(*ast.Ident); ok {
			if f, ok := fx.c.Funcs.Lookup(callee.Name); ok {
				return f.Return
			}
		}
		return nil
	case *ast.Cast:
		return n.Type
	case *ast.SizeofExpr, *ast.SizeofType, *ast.AlignofExpr, *ast.Offsetof:
		return ast.Basic(ast.ULong)
	case *ast.CompoundLiteral:
		return n.Type
	}
	return nil
}

func (fx *funcCtx) inferMemberType(n *ast.Member) *ast.Type {
	bt := fx.inferType(n.Base)
	if bt == nil {
		return nil
	}
	tagName := bt.Tag
	if n.Arrow {
		if bt.Elem == nil {
			return nil
		}
		tagName = bt.Elem.Tag
	}
	tag, ok := fx.c.Tags.Lookup(tagName)
	if !ok {
		return nil
	}
	m, ok := tag.MemberByName(n.Field)
	if !ok {
		return nil
	}
	return m.Type
}

func inferLiteralType(l *ast.Literal) *ast.Type {
	switch l.LitKind {
	case ast.LitFloat:
		return ast.Basic(ast.Double)
	case ast.LitString:
		return ast.PointerTo(ast.Basic(ast.Char))
	case ast.LitWString:
		return ast.PointerTo(ast.Basic(ast.Int))
	case ast.LitChar, ast.LitWChar:
		return ast.Basic(ast.Char)
	default:
		if l.LongCount >= 2 {
			if l.IsUnsigned {
				return ast.Basic(ast.ULLong)
			}
			return ast.Basic(ast.LLong)
		}
		if l.LongCount == 1 {
			if l.IsUnsigned {
				return ast.Basic(ast.ULong)
			}
			return ast.Basic(ast.Long)
		}
		if l.IsUnsigned {
			return ast.Basic(ast.UInt)
		}
		return ast.Basic(ast.Int)
	}
}
