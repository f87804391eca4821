// Package consteval implements the constant evaluator (spec §4.3,
// component E): a pure recursive fold of an AST subtree to a 64-bit signed
// value, or a precise failure — never a wrong value (testable property 3).
package consteval

import (
	"fmt"
	"math"

	"github.com/splanck/vc-sub004/internal/ast"
	"github.com/splanck/vc-sub004/internal/symtab"
)

// Error is a constant-evaluation failure: overflow, division by zero, a
// non-constant subexpression where one is required, or an unresolvable
// identifier/offsetof path.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func fail(format string, args ...interface{}) (int64, error) {
	return 0, &Error{Msg: fmt.Sprintf(format, args...)}
}

// Evaluator folds constant expressions. PtrSize fixes sizeof(ptr) and
// sizeof(long) (32 vs 64). LookupConst resolves an identifier to an
// integer-constant-expression symbol value (enum constant, or `const`
// scalar with a constant initializer) — nil means no such symbols exist.
type Evaluator struct {
	PtrSize     int
	Tags        *symtab.TagTable
	LookupConst func(name string) (int64, bool)
}

// Eval folds e to a value, or returns a non-nil error describing precisely
// why it could not (§4.3, §8 property 3).
func (ev *Evaluator) Eval(e ast.Expr) (int64, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return ev.evalLiteral(n)
	case *ast.Ident:
		if ev.LookupConst != nil {
			if v, ok := ev.LookupConst(n.Name); ok {
				return v, nil
			}
		}
		return fail("%q is not an integer constant expression", n.Name)
	case *ast.Unary:
		return ev.evalUnary(n)
	case *ast.Binary:
		return ev.evalBinary(n)
	case *ast.Ternary:
		return ev.evalTernary(n)
	case *ast.SizeofExpr:
		// sizeof evaluates the operand's type only, never its side effects.
		sz, err := ev.sizeofExprType(n.X)
		if err != nil {
			return 0, err
		}
		return int64(sz), nil
	case *ast.SizeofType:
		return int64(n.Type.Size(ev.PtrSize)), nil
	case *ast.AlignofExpr:
		if n.Type != nil {
			return int64(n.Type.Align(ev.PtrSize)), nil
		}
		sz, err := ev.sizeofExprType(n.X)
		if err != nil {
			return 0, err
		}
		return int64(sz), nil
	case *ast.Offsetof:
		return ev.evalOffsetof(n)
	case *ast.Cast:
		// A cast to an integer type is constant iff its operand is.
		v, err := ev.Eval(n.X)
		if err != nil {
			return 0, err
		}
		return truncate(v, n.Type), nil
	}
	return fail("not a constant expression")
}

func truncate(v int64, t *ast.Type) int64 {
	if t == nil {
		return v
	}
	switch t.Kind {
	case ast.Char, ast.UChar:
		return int64(int8(v))
	case ast.Short, ast.UShort:
		return int64(int16(v))
	case ast.Int, ast.UInt:
		return int64(int32(v))
	}
	return v
}

func (ev *Evaluator) evalLiteral(l *ast.Literal) (int64, error) {
	switch l.LitKind {
	case ast.LitInt:
		return l.IntVal, nil
	case ast.LitChar, ast.LitWChar:
		if len(l.StrVal) > 0 {
			return int64(l.StrVal[0]), nil
		}
		return 0, nil
	}
	return fail("not an integer constant expression")
}

// sizeofExprType evaluates only the shape needed to know the operand's
// size. A real front end carries a resolved type on every Expr after
// semantic analysis; here we recognize the common literal/ident/cast shapes
// the constant evaluator is asked to size without a full type-checker pass.
func (ev *Evaluator) sizeofExprType(e ast.Expr) (int, error) {
	switch n := e.(type) {
	case *ast.Cast:
		return n.Type.Size(ev.PtrSize), nil
	case *ast.Literal:
		switch n.LitKind {
		case ast.LitInt:
			if n.LongCount >= 2 {
				return 8, nil
			}
			if n.LongCount == 1 {
				return ev.PtrSize, nil
			}
			return 4, nil
		case ast.LitFloat:
			return 8, nil
		case ast.LitChar:
			return 1, nil
		case ast.LitString:
			return len(n.StrVal) + 1, nil
		}
	}
	return 0, &Error{Msg: "sizeof operand type requires semantic analysis"}
}

func (ev *Evaluator) evalUnary(u *ast.Unary) (int64, error) {
	if u.Postfix {
		return fail("++/-- is not a constant expression")
	}
	v, err := ev.Eval(u.X)
	if err != nil {
		return 0, err
	}
	switch u.Op {
	case "-":
		if v == math.MinInt64 {
			return fail("overflow negating %d", v)
		}
		return -v, nil
	case "+":
		return v, nil
	case "!":
		if v == 0 {
			return 1, nil
		}
		return 0, nil
	case "~":
		return ^v, nil
	}
	return fail("unsupported unary operator %q in constant expression", u.Op)
}

func (ev *Evaluator) evalTernary(t *ast.Ternary) (int64, error) {
	cond, err := ev.Eval(t.Cond)
	if err != nil {
		return 0, err
	}
	if cond != 0 {
		return ev.Eval(t.Then)
	}
	return ev.Eval(t.Else)
}

func (ev *Evaluator) evalBinary(b *ast.Binary) (int64, error) {
	x, err := ev.Eval(b.X)
	if err != nil {
		return 0, err
	}
	y, err := ev.Eval(b.Y)
	if err != nil {
		return 0, err
	}
	switch b.Op {
	case "+":
		sum := x + y
		if (y > 0 && sum < x) || (y < 0 && sum > x) {
			return fail("overflow in %d + %d", x, y)
		}
		return sum, nil
	case "-":
		diff := x - y
		if (y < 0 && diff < x) || (y > 0 && diff > x) {
			return fail("overflow in %d - %d", x, y)
		}
		return diff, nil
	case "*":
		if x == 0 || y == 0 {
			return 0, nil
		}
		p := x * y
		if (x == math.MinInt64 && y == -1) || p/y != x {
			return fail("overflow in %d * %d", x, y)
		}
		return p, nil
	case "/":
		if y == 0 {
			return fail("division by zero")
		}
		if x == math.MinInt64 && y == -1 {
			return fail("overflow in %d / %d", x, y)
		}
		return x / y, nil
	case "%":
		if y == 0 {
			return fail("modulo by zero")
		}
		return x % y, nil
	case "&":
		return x & y, nil
	case "|":
		return x | y, nil
	case "^":
		return x ^ y, nil
	case "<<":
		if y < 0 || y >= 64 {
			return fail("shift amount %d out of range", y)
		}
		return x << uint(y), nil
	case ">>":
		if y < 0 || y >= 64 {
			return fail("shift amount %d out of range", y)
		}
		return x >> uint(y), nil
	case "==":
		return boolInt(x == y), nil
	case "!=":
		return boolInt(x != y), nil
	case "<":
		return boolInt(x < y), nil
	case "<=":
		return boolInt(x <= y), nil
	case ">":
		return boolInt(x > y), nil
	case ">=":
		return boolInt(x >= y), nil
	case "&&":
		return boolInt(x != 0 && y != 0), nil
	case "||":
		return boolInt(x != 0 || y != 0), nil
	}
	return fail("unsupported binary operator %q in constant expression", b.Op)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// evalOffsetof walks the struct tag table summing member offsets along the
// designator path (§4.3). Nested paths (e.g. offsetof(S, a.b)) descend
// into each member's own aggregate tag in turn.
func (ev *Evaluator) evalOffsetof(o *ast.Offsetof) (int64, error) {
	if ev.Tags == nil {
		return fail("offsetof requires a resolved tag table")
	}
	tag, ok := ev.Tags.Lookup(o.TagName)
	if !ok {
		return fail("unknown struct/union tag %q", o.TagName)
	}
	var total int64
	for i, name := range o.Path {
		m, ok := tag.MemberByName(name)
		if !ok {
			return fail("no member %q in %q", name, o.TagName)
		}
		total += int64(m.ByteOffset)
		if i == len(o.Path)-1 {
			break
		}
		if m.Type == nil || m.Type.Tag == "" {
			return fail("member %q is not an aggregate; cannot descend further in offsetof path", name)
		}
		next, ok := ev.Tags.Lookup(m.Type.Tag)
		if !ok {
			return fail("unknown struct/union tag %q", m.Type.Tag)
		}
		tag = next
	}
	return total, nil
}
