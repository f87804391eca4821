package sema

import (
	"math"

	"github.com/splanck/vc-sub004/internal/ast"
	"github.com/splanck/vc-sub004/internal/diag"
	"github.com/splanck/vc-sub004/internal/ir"
	"github.com/splanck/vc-sub004/internal/symtab"
)

// storeName emits a named store, a thin wrapper kept so every write path
// routes through one place.
func (fx *funcCtx) storeName(name string, v ir.ValueID, aliasSet int, volatile bool) {
	fx.fn.Store(name, v, aliasSet, volatile)
}

// lowerExpr lowers one expression to an IR value id (§4.4). This is the
// single recursive entry point every expression variant's handler calls
// for its subexpressions.
func (fx *funcCtx) lowerExpr(e ast.Expr) ir.ValueID {
	switch n := e.(type) {
	case *ast.Literal:
		return fx.lowerLiteral(n)
	case *ast.Ident:
		return fx.lowerIdent(n)
	case *ast.Unary:
		return fx.lowerUnary(n)
	case *ast.Binary:
		return fx.lowerBinary(n)
	case *ast.Ternary:
		return fx.lowerTernary(n)
	case *ast.Assign:
		return fx.lowerAssign(n)
	case *ast.Index:
		return fx.lowerIndexLoad(n)
	case *ast.Member:
		return fx.lowerMemberLoad(n)
	case *ast.Call:
		return fx.lowerCall(n)
	case *ast.Cast:
		return fx.lowerCast(n)
	case *ast.SizeofExpr, *ast.SizeofType, *ast.AlignofExpr, *ast.Offsetof:
		if v, err := fx.c.evaluator().Eval(e); err == nil {
			return fx.fn.ConstInt(v)
		}
		return fx.fn.ConstInt(0)
	case *ast.CompoundLiteral:
		return fx.lowerCompoundLiteral(n)
	}
	return fx.fn.ConstInt(0)
}

func (fx *funcCtx) lowerLiteral(n *ast.Literal) ir.ValueID {
	switch n.LitKind {
	case ast.LitInt, ast.LitChar, ast.LitWChar:
		v := n.IntVal
		if n.LitKind != ast.LitInt && len(n.StrVal) > 0 {
			v = int64(n.StrVal[0])
		}
		return fx.fn.ConstInt(v)
	case ast.LitFloat:
		return fx.fn.ConstFloat(int64(math.Float64bits(n.FloatVal)))
	case ast.LitString, ast.LitWString:
		dest := fx.fn.NewValue()
		fx.fn.Append(&ir.Inst{Op: ir.OpConstString, Dest: dest, Name: n.StrVal})
		return dest
	}
	return fx.fn.ConstInt(0)
}

func (fx *funcCtx) lookupVar(name string) (*symtab.VarSymbol, bool) {
	return fx.vars.Lookup(name)
}

func (fx *funcCtx) lowerIdent(n *ast.Ident) ir.ValueID {
	sym, ok := fx.lookupVar(n.Name)
	if !ok {
		if _, isFunc := fx.c.Funcs.Lookup(n.Name); isFunc {
			// A bare function name used as a value (e.g. assigned to a
			// function pointer) decays to its address.
			dest := fx.fn.NewValue()
			fx.fn.Append(&ir.Inst{Op: ir.OpAddr, Dest: dest, Name: n.Name})
			return dest
		}
		pos := n.Position()
		fx.c.Diag.Report(diag.NameResolution, pos.Line, pos.Col, "undeclared identifier %q", n.Name)
		return fx.fn.ConstInt(0)
	}
	volatile := sym.Type != nil && sym.Type.IsVolatile
	return fx.fn.Load(n.Name, sym.AliasSet, volatile)
}

func (fx *funcCtx) lowerUnary(n *ast.Unary) ir.ValueID {
	if n.Postfix {
		return fx.lowerIncDec(n, true)
	}
	switch n.Op {
	case "++", "--":
		return fx.lowerIncDec(n, false)
	case "&":
		return fx.lowerAddrOf(n.X)
	case "*":
		ptr := fx.lowerExpr(n.X)
		return fx.fn.Emit(ir.OpLoadPtr, ptr, 0)
	}
	x := fx.lowerExpr(n.X)
	switch n.Op {
	case "-":
		return fx.fn.Emit(ir.OpNeg, x, 0)
	case "+":
		return x
	case "!":
		zero := fx.fn.ConstInt(0)
		return fx.fn.Emit(ir.OpEq, x, zero)
	case "~":
		return fx.fn.Emit(ir.OpNot, x, 0)
	}
	return x
}

// lowerAddrOf emits the address-of an lvalue: a named addr for a simple
// identifier, or a propagated pointer value for `&*p` / `&a[i]` / `&s.m`.
func (fx *funcCtx) lowerAddrOf(x ast.Expr) ir.ValueID {
	switch t := x.(type) {
	case *ast.Ident:
		sym, _ := fx.lookupVar(t.Name)
		aliasSet := 0
		if sym != nil {
			aliasSet = sym.AliasSet
		}
		dest := fx.fn.NewValue()
		fx.fn.Append(&ir.Inst{Op: ir.OpAddr, Dest: dest, Name: t.Name, AliasSet: aliasSet})
		return dest
	case *ast.Unary:
		if t.Op == "*" && !t.Postfix {
			return fx.lowerExpr(t.X) // &*p == p
		}
	case *ast.Index:
		return fx.lowerIndexAddr(t)
	case *ast.Member:
		return fx.lowerMemberAddr(t)
	}
	return fx.lowerExpr(x)
}

// lowerIncDec lowers prefix/postfix ++/--: load, add/sub 1, store back,
// yielding either the new value (prefix) or the old one (postfix).
func (fx *funcCtx) lowerIncDec(n *ast.Unary, postfix bool) ir.ValueID {
	old := fx.lowerExpr(n.X)
	one := fx.fn.ConstInt(1)
	op := ir.OpAdd
	if n.Op == "--" {
		op = ir.OpSub
	}
	updated := fx.fn.Emit(op, old, one)
	fx.storeLValue(n.X, updated)
	if postfix {
		return old
	}
	return updated
}

// storeLValue writes v into the lvalue expression target, dispatching on
// its shape exactly as Assign does (§4.4).
func (fx *funcCtx) storeLValue(target ast.Expr, v ir.ValueID) {
	switch t := target.(type) {
	case *ast.Ident:
		sym, _ := fx.lookupVar(t.Name)
		aliasSet, volatile := 0, false
		if sym != nil {
			aliasSet = sym.AliasSet
			volatile = sym.Type != nil && sym.Type.IsVolatile
		}
		fx.storeName(t.Name, v, aliasSet, volatile)
	case *ast.Unary:
		if t.Op == "*" && !t.Postfix {
			ptr := fx.lowerExpr(t.X)
			fx.fn.Append(&ir.Inst{Op: ir.OpStorePtr, Src1: ptr, Src2: v})
			return
		}
	case *ast.Index:
		fx.lowerIndexStore(t, v)
	case *ast.Member:
		fx.lowerMemberStore(t, v)
	}
}

func (fx *funcCtx) lowerBinary(n *ast.Binary) ir.ValueID {
	switch n.Op {
	case "&&":
		return fx.lowerLogical(n, true)
	case "||":
		return fx.lowerLogical(n, false)
	}
	if n.Op == "+" || n.Op == "-" {
		if v, ok := fx.lowerPointerArith(n); ok {
			return v
		}
	}
	x := fx.lowerExpr(n.X)
	y := fx.lowerExpr(n.Y)
	switch n.Op {
	case "+":
		return fx.fn.Emit(ir.OpAdd, x, y)
	case "-":
		return fx.fn.Emit(ir.OpSub, x, y)
	case "*":
		return fx.fn.Emit(ir.OpMul, x, y)
	case "/":
		return fx.fn.Emit(ir.OpDiv, x, y)
	case "%":
		return fx.fn.Emit(ir.OpMod, x, y)
	case "<<":
		return fx.fn.Emit(ir.OpShl, x, y)
	case ">>":
		return fx.fn.Emit(ir.OpShr, x, y)
	case "&":
		return fx.fn.Emit(ir.OpAnd, x, y)
	case "|":
		return fx.fn.Emit(ir.OpOr, x, y)
	case "^":
		return fx.fn.Emit(ir.OpXor, x, y)
	case "==":
		return fx.fn.Emit(ir.OpEq, x, y)
	case "!=":
		return fx.fn.Emit(ir.OpNe, x, y)
	case "<":
		return fx.fn.Emit(ir.OpLt, x, y)
	case "<=":
		return fx.fn.Emit(ir.OpLe, x, y)
	case ">":
		return fx.fn.Emit(ir.OpGt, x, y)
	case ">=":
		return fx.fn.Emit(ir.OpGe, x, y)
	}
	return x
}

// lowerPointerArith recognizes `ptr + int`, `int + ptr`, `ptr - int`, and
// `ptr - ptr`, scaling by the pointee's element size (§4.4): pointer
// difference divides by the element size (a power-of-two size shifts;
// this subset always emits the general divide, which the optimizer may
// later strength-reduce).
func (fx *funcCtx) lowerPointerArith(n *ast.Binary) (ir.ValueID, bool) {
	xt := fx.inferType(n.X)
	yt := fx.inferType(n.Y)
	xPtr := xt != nil && (xt.Kind == ast.Ptr || xt.Kind == ast.Array)
	yPtr := yt != nil && (yt.Kind == ast.Ptr || yt.Kind == ast.Array)

	switch {
	case n.Op == "-" && xPtr && yPtr:
		x := fx.lowerExpr(n.X)
		y := fx.lowerExpr(n.Y)
		diff := fx.fn.Emit(ir.OpPtrDiff, x, y)
		elemSize := int64(1)
		if xt.Elem != nil {
			elemSize = int64(xt.Elem.Size(fx.c.PtrSize))
		}
		if elemSize <= 1 {
			return diff, true
		}
		sz := fx.fn.ConstInt(elemSize)
		return fx.fn.Emit(ir.OpDiv, diff, sz), true
	case xPtr && !yPtr:
		ptr := fx.lowerExpr(n.X)
		idx := fx.lowerExpr(n.Y)
		if n.Op == "-" {
			idx = fx.fn.Emit(ir.OpNeg, idx, 0)
		}
		elemSize := int64(1)
		if xt.Elem != nil {
			elemSize = int64(xt.Elem.Size(fx.c.PtrSize))
		}
		dest := fx.fn.NewValue()
		fx.fn.Append(&ir.Inst{Op: ir.OpPtrAdd, Dest: dest, Src1: ptr, Src2: idx, Imm: elemSize})
		return dest, true
	case yPtr && !xPtr && n.Op == "+":
		ptr := fx.lowerExpr(n.Y)
		idx := fx.lowerExpr(n.X)
		elemSize := int64(1)
		if yt.Elem != nil {
			elemSize = int64(yt.Elem.Size(fx.c.PtrSize))
		}
		dest := fx.fn.NewValue()
		fx.fn.Append(&ir.Inst{Op: ir.OpPtrAdd, Dest: dest, Src1: ptr, Src2: idx, Imm: elemSize})
		return dest, true
	}
	return 0, false
}

// lowerLogical emits the short-circuit materializing form: evaluate the
// left operand, branch around the right on a short-circuiting value,
// evaluate the right operand only when needed, and merge into a single
// 0/1 result (§4.4).
func (fx *funcCtx) lowerLogical(n *ast.Binary, isAnd bool) ir.ValueID {
	x := fx.lowerExpr(n.X)
	rhsLabel := fx.fn.NewLabel("rhs")
	mergeLabel := fx.fn.NewLabel("merge")
	result := fx.fn.NewValue()

	zero := fx.fn.ConstInt(0)
	xBool := fx.fn.Emit(ir.OpNe, x, zero)
	if isAnd {
		fx.fn.Append(&ir.Inst{Op: ir.OpBcond, Src1: xBool, Name: rhsLabel, Imm: 1}) // true needs the right operand
	} else {
		fx.fn.Append(&ir.Inst{Op: ir.OpBcond, Src1: xBool, Name: rhsLabel, Imm: 0}) // false needs the right operand
	}
	shortVal := fx.fn.ConstInt(boolToInt(!isAnd))
	fx.fn.Append(&ir.Inst{Op: ir.OpStore, Src1: shortVal, Name: resultTemp(result)})
	fx.fn.Append(&ir.Inst{Op: ir.OpBr, Name: mergeLabel})

	fx.fn.Append(&ir.Inst{Op: ir.OpLabel, Name: rhsLabel})
	y := fx.lowerExpr(n.Y)
	yBool := fx.fn.Emit(ir.OpNe, y, fx.fn.ConstInt(0))
	fx.fn.Append(&ir.Inst{Op: ir.OpStore, Src1: yBool, Name: resultTemp(result)})

	fx.fn.Append(&ir.Inst{Op: ir.OpLabel, Name: mergeLabel})
	return fx.fn.Load(resultTemp(result), 0, false)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func resultTemp(id ir.ValueID) string { return "%logic" + itoa(int(id)) }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func (fx *funcCtx) lowerTernary(n *ast.Ternary) ir.ValueID {
	elseLabel := fx.fn.NewLabel("telse")
	endLabel := fx.fn.NewLabel("tend")
	result := fx.fn.NewValue()

	cond := fx.lowerExpr(n.Cond)
	fx.fn.Append(&ir.Inst{Op: ir.OpBcond, Src1: cond, Name: elseLabel})
	thenV := fx.lowerExpr(n.Then)
	fx.fn.Append(&ir.Inst{Op: ir.OpStore, Src1: thenV, Name: resultTemp(result)})
	fx.fn.Append(&ir.Inst{Op: ir.OpBr, Name: endLabel})

	fx.fn.Append(&ir.Inst{Op: ir.OpLabel, Name: elseLabel})
	elseV := fx.lowerExpr(n.Else)
	fx.fn.Append(&ir.Inst{Op: ir.OpStore, Src1: elseV, Name: resultTemp(result)})

	fx.fn.Append(&ir.Inst{Op: ir.OpLabel, Name: endLabel})
	return fx.fn.Load(resultTemp(result), 0, false)
}

// lowerAssign evaluates the rhs then stores to the already-desugared
// target (compound assignment was desugared by the parser, §4.2/§4.4).
func (fx *funcCtx) lowerAssign(n *ast.Assign) ir.ValueID {
	v := fx.lowerExpr(n.Value)
	fx.storeLValue(n.Target, v)
	return v
}

func (fx *funcCtx) lowerIndexAddr(n *ast.Index) ir.ValueID {
	base := fx.lowerExpr(n.Base)
	idx := fx.lowerExpr(n.Idx)
	elemSize := int64(1)
	if t := fx.inferType(n.Base); t != nil && t.Elem != nil {
		elemSize = int64(t.Elem.Size(fx.c.PtrSize))
	}
	dest := fx.fn.NewValue()
	fx.fn.Append(&ir.Inst{Op: ir.OpPtrAdd, Dest: dest, Src1: base, Src2: idx, Imm: elemSize})
	return dest
}

func (fx *funcCtx) lowerIndexLoad(n *ast.Index) ir.ValueID {
	addr := fx.lowerIndexAddr(n)
	return fx.fn.Emit(ir.OpLoadPtr, addr, 0)
}

func (fx *funcCtx) lowerIndexStore(n *ast.Index, v ir.ValueID) {
	addr := fx.lowerIndexAddr(n)
	fx.fn.Append(&ir.Inst{Op: ir.OpStorePtr, Src1: addr, Src2: v})
}

func (fx *funcCtx) lowerMemberAddr(n *ast.Member) ir.ValueID {
	var base ir.ValueID
	if n.Arrow {
		base = fx.lowerExpr(n.Base)
	} else {
		base = fx.lowerAddrOf(n.Base)
	}
	bt := fx.inferType(n.Base)
	tagName := ""
	if bt != nil {
		if n.Arrow && bt.Elem != nil {
			tagName = bt.Elem.Tag
		} else {
			tagName = bt.Tag
		}
	}
	offset := int64(0)
	if tag, ok := fx.c.Tags.Lookup(tagName); ok {
		if m, ok := tag.MemberByName(n.Field); ok {
			offset = int64(m.ByteOffset)
		}
	}
	if offset == 0 {
		return base
	}
	off := fx.fn.ConstInt(offset)
	return fx.fn.Emit(ir.OpPtrAdd, base, off)
}

func (fx *funcCtx) lowerMemberLoad(n *ast.Member) ir.ValueID {
	addr := fx.lowerMemberAddr(n)
	return fx.fn.Emit(ir.OpLoadPtr, addr, 0)
}

func (fx *funcCtx) lowerMemberStore(n *ast.Member, v ir.ValueID) {
	addr := fx.lowerMemberAddr(n)
	fx.fn.Append(&ir.Inst{Op: ir.OpStorePtr, Src1: addr, Src2: v})
}

func (fx *funcCtx) lowerCall(n *ast.Call) ir.ValueID {
	var argVals []ir.ValueID
	for _, a := range n.Args {
		argVals = append(argVals, fx.lowerExpr(a))
	}
	for _, v := range argVals {
		fx.fn.Append(&ir.Inst{Op: ir.OpArg, Src1: v})
	}
	callee, isName := n.Callee.(*ast.Ident)
	dest := fx.fn.NewValue()
	if isName {
		if _, isFunc := fx.c.Funcs.Lookup(callee.Name); isFunc {
			fx.fn.Append(&ir.Inst{Op: ir.OpCall, Dest: dest, Name: callee.Name, Imm: int64(len(argVals))})
			return dest
		}
	}
	fnPtr := fx.lowerExpr(n.Callee)
	fx.fn.Append(&ir.Inst{Op: ir.OpCallPtr, Dest: dest, Src1: fnPtr, Imm: int64(len(argVals))})
	return dest
}

// lowerCast packs (srcKind<<8)|dstKind into Imm, per §3.6, so the emitter
// can dispatch the int/float/pointer conversion without re-deriving the
// source type from context.
func (fx *funcCtx) lowerCast(n *ast.Cast) ir.ValueID {
	x := fx.lowerExpr(n.X)
	srcType := fx.inferType(n.X)
	srcKind := ast.Unknown
	if srcType != nil {
		srcKind = srcType.Kind
	}
	dest := fx.fn.NewValue()
	fx.fn.Append(&ir.Inst{Op: ir.OpCast, Dest: dest, Src1: x, Imm: int64(srcKind)<<8 | int64(n.Type.Kind)})
	return dest
}

func (fx *funcCtx) lowerCompoundLiteral(n *ast.CompoundLiteral) ir.ValueID {
	name := "%compound" + itoa(int(fx.fn.NewValue()))
	aliasSet := fx.fn.AliasSet(name, true)
	fx.fn.Append(&ir.Inst{Op: ir.OpAlloca, Name: name, AliasSet: aliasSet})
	fx.lowerAggregateInit(name, aliasSet, n.Type, n.Items)
	dest := fx.fn.NewValue()
	fx.fn.Append(&ir.Inst{Op: ir.OpAddr, Dest: dest, Name: name, AliasSet: aliasSet})
	return dest
}
