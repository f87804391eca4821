package optimizer

import "github.com/splanck/vc-sub004/internal/ir"

// ConstPropagate walks one function's instruction list forward, tracking
// which names currently hold a known constant value and which value ids
// were produced by a constant (literal or already-folded arithmetic), per
// the transition rules of §4.5:
//
//   - OpConstInt/OpConstFloat binds its destination value id to a known
//     constant.
//   - A non-volatile OpStore of a known-constant value binds the target
//     name to that constant; a volatile store, or one of an unknown
//     value, clears any existing binding for that name.
//   - OpLoad of a name with a known binding is rewritten in place to an
//     OpConstInt/OpConstFloat carrying the bound value — the load
//     disappears as a memory access entirely.
//   - OpCall, OpCallPtr, OpStorePtr, OpStoreIdx, and OpArg conservatively
//     clear every name binding: without alias analysis beyond the
//     AliasSet tag, any of these may write through a pointer that aliases
//     any named variable.
//   - Binary/unary arithmetic whose operands are both known constants is
//     folded to a single OpConstInt, continuing the chain.
func ConstPropagate(b *ir.Builder) {
	nameConst := make(map[string]int64)
	nameIsFloat := make(map[string]bool)
	valConst := make(map[ir.ValueID]int64)
	valIsFloat := make(map[ir.ValueID]bool)

	for inst := b.Head; inst != nil; inst = inst.Next {
		switch inst.Op {
		case ir.OpConstInt:
			valConst[inst.Dest] = inst.Imm
		case ir.OpConstFloat:
			valConst[inst.Dest] = inst.Imm
			valIsFloat[inst.Dest] = true

		case ir.OpAlloca:
			delete(nameConst, inst.Name)

		case ir.OpStore:
			if inst.IsVolatile {
				delete(nameConst, inst.Name)
				continue
			}
			if v, ok := valConst[inst.Src1]; ok {
				nameConst[inst.Name] = v
				nameIsFloat[inst.Name] = valIsFloat[inst.Src1]
			} else {
				delete(nameConst, inst.Name)
			}

		case ir.OpLoad:
			if inst.IsVolatile {
				continue
			}
			if v, ok := nameConst[inst.Name]; ok {
				isFloat := nameIsFloat[inst.Name]
				if isFloat {
					inst.Op = ir.OpConstFloat
				} else {
					inst.Op = ir.OpConstInt
				}
				inst.Imm = v
				inst.Name = ""
				inst.AliasSet = 0
				valConst[inst.Dest] = v
				valIsFloat[inst.Dest] = isFloat
			}

		case ir.OpCall, ir.OpCallPtr, ir.OpStorePtr, ir.OpStoreIdx, ir.OpArg:
			for k := range nameConst {
				delete(nameConst, k)
			}

		case ir.OpNeg, ir.OpNot:
			if x, ok := valConst[inst.Src1]; ok && !valIsFloat[inst.Src1] {
				v := foldUnary(inst.Op, x)
				inst.Op = ir.OpConstInt
				inst.Imm = v
				inst.Src1, inst.Src2 = 0, 0
				valConst[inst.Dest] = v
			}

		default:
			if isBinaryArith(inst.Op) {
				x, xok := valConst[inst.Src1]
				y, yok := valConst[inst.Src2]
				if xok && yok && !valIsFloat[inst.Src1] && !valIsFloat[inst.Src2] {
					if v, ok := foldBinary(inst.Op, x, y); ok {
						inst.Op = ir.OpConstInt
						inst.Imm = v
						inst.Src1, inst.Src2 = 0, 0
						valConst[inst.Dest] = v
					}
				}
			}
		}
	}
}

func isBinaryArith(op ir.Opcode) bool {
	switch op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod,
		ir.OpShl, ir.OpShr, ir.OpAnd, ir.OpOr, ir.OpXor,
		ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		return true
	}
	return false
}

func foldUnary(op ir.Opcode, x int64) int64 {
	switch op {
	case ir.OpNeg:
		return -x
	case ir.OpNot:
		return ^x
	}
	return x
}

// foldBinary folds an integer binary op, declining (ok == false) for a
// division or modulo by zero so the runtime operation — and its trap —
// is preserved rather than silently folded away.
func foldBinary(op ir.Opcode, x, y int64) (int64, bool) {
	switch op {
	case ir.OpAdd:
		return x + y, true
	case ir.OpSub:
		return x - y, true
	case ir.OpMul:
		return x * y, true
	case ir.OpDiv:
		if y == 0 {
			return 0, false
		}
		return x / y, true
	case ir.OpMod:
		if y == 0 {
			return 0, false
		}
		return x % y, true
	case ir.OpShl:
		return x << uint(y&63), true
	case ir.OpShr:
		return x >> uint(y&63), true
	case ir.OpAnd:
		return x & y, true
	case ir.OpOr:
		return x | y, true
	case ir.OpXor:
		return x ^ y, true
	case ir.OpEq:
		return boolInt(x == y), true
	case ir.OpNe:
		return boolInt(x != y), true
	case ir.OpLt:
		return boolInt(x < y), true
	case ir.OpLe:
		return boolInt(x <= y), true
	case ir.OpGt:
		return boolInt(x > y), true
	case ir.OpGe:
		return boolInt(x >= y), true
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
