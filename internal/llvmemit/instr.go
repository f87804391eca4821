package llvmemit

import (
	"math"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	vcir "github.com/splanck/vc-sub004/internal/ir"
)

func findFunc(funcs []*ir.Func, name string) *ir.Func {
	for _, fn := range funcs {
		if fn.Name() == name {
			return fn
		}
	}
	return nil
}

func (e *Emitter) val(f *vcir.Function, id vcir.ValueID) value.Value {
	if v, ok := e.values[id]; ok {
		return v
	}
	return constant.NewInt(wordType, 0)
}

// emitInst translates one vc three-address instruction into the
// equivalent llir instruction(s) appended to the active block, mirroring
// the opcode-by-opcode dispatch the x86 emitter uses (package emitter).
func (e *Emitter) emitInst(f *vcir.Function, inst *vcir.Inst) {
	switch inst.Op {
	case vcir.OpFuncBegin, vcir.OpFuncEnd, vcir.OpLoadParam, vcir.OpAlloca:
		// handled in emitFunc's prologue pass, or need no llir counterpart
	case vcir.OpConstInt:
		e.values[inst.Dest] = constant.NewInt(wordType, inst.Imm)
	case vcir.OpConstFloat:
		e.values[inst.Dest] = constant.NewFloat(types.Double, float64FromBits(inst.Imm))
	case vcir.OpLoad:
		slot := e.localSlot(f.Name, inst.Name)
		if slot == nil {
			slot = e.allocas[inst.Name]
		}
		e.values[inst.Dest] = e.block.NewLoad(wordType, slot)
	case vcir.OpStore, vcir.OpStoreParam:
		slot := e.localSlot(f.Name, inst.Name)
		if slot == nil {
			slot = e.allocas[inst.Name]
		}
		e.block.NewStore(e.val(f, inst.Src1), slot)
	case vcir.OpAdd, vcir.OpPtrAdd:
		e.values[inst.Dest] = e.block.NewAdd(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpSub, vcir.OpPtrDiff:
		e.values[inst.Dest] = e.block.NewSub(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpMul:
		e.values[inst.Dest] = e.block.NewMul(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpDiv:
		e.values[inst.Dest] = e.block.NewSDiv(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpMod:
		e.values[inst.Dest] = e.block.NewSRem(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpAnd:
		e.values[inst.Dest] = e.block.NewAnd(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpOr:
		e.values[inst.Dest] = e.block.NewOr(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpXor:
		e.values[inst.Dest] = e.block.NewXor(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpShl:
		e.values[inst.Dest] = e.block.NewShl(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpShr:
		e.values[inst.Dest] = e.block.NewAShr(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpNeg:
		e.values[inst.Dest] = e.block.NewSub(constant.NewInt(wordType, 0), e.val(f, inst.Src1))
	case vcir.OpNot:
		e.values[inst.Dest] = e.block.NewXor(e.val(f, inst.Src1), constant.NewInt(wordType, -1))
	case vcir.OpFAdd:
		e.values[inst.Dest] = e.block.NewFAdd(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpFSub:
		e.values[inst.Dest] = e.block.NewFSub(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpFMul:
		e.values[inst.Dest] = e.block.NewFMul(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpFDiv:
		e.values[inst.Dest] = e.block.NewFDiv(e.val(f, inst.Src1), e.val(f, inst.Src2))
	case vcir.OpEq, vcir.OpNe, vcir.OpLt, vcir.OpLe, vcir.OpGt, vcir.OpGe:
		e.values[inst.Dest] = e.block.NewZExt(
			e.block.NewICmp(intPred(inst.Op), e.val(f, inst.Src1), e.val(f, inst.Src2)), wordType)
	case vcir.OpLogAnd:
		e.values[inst.Dest] = e.block.NewAnd(e.truthy(f, inst.Src1), e.truthy(f, inst.Src2))
	case vcir.OpLogOr:
		e.values[inst.Dest] = e.block.NewOr(e.truthy(f, inst.Src1), e.truthy(f, inst.Src2))
	case vcir.OpBr:
		e.block.NewBr(e.blockFor(inst.Name))
	case vcir.OpBcond:
		thenBlock := e.blockFor(inst.Name)
		elseBlock := e.fn.NewBlock("")
		if inst.Imm == 0 { // branch to inst.Name when Src1 is zero
			e.block.NewCondBr(e.truthy(f, inst.Src1), elseBlock, thenBlock)
		} else {
			e.block.NewCondBr(e.truthy(f, inst.Src1), thenBlock, elseBlock)
		}
		e.block = elseBlock
	case vcir.OpLabel:
		target := e.blockFor(inst.Name)
		if e.block.Term == nil {
			e.block.NewBr(target)
		}
		e.block = target
	case vcir.OpReturn:
		if inst.Src1 != 0 {
			e.block.NewRet(e.val(f, inst.Src1))
		} else {
			e.block.NewRet(constant.NewInt(wordType, 0))
		}
	case vcir.OpCall:
		target := findFunc(e.Module.Funcs, inst.Name)
		if target != nil {
			var args []value.Value
			for _, a := range collectArgs(inst) {
				args = append(args, e.val(f, a))
			}
			call := e.block.NewCall(target, args...)
			if inst.Dest != 0 {
				e.values[inst.Dest] = call
			}
		}
	case vcir.OpArg:
		// consumed by the following OpCall via collectArgs
	}
}

func float64FromBits(bits int64) float64 {
	return math.Float64frombits(uint64(bits))
}

func intPred(op vcir.Opcode) enum.IPred {
	switch op {
	case vcir.OpEq:
		return enum.IPredEQ
	case vcir.OpNe:
		return enum.IPredNE
	case vcir.OpLt:
		return enum.IPredSLT
	case vcir.OpLe:
		return enum.IPredSLE
	case vcir.OpGt:
		return enum.IPredSGT
	case vcir.OpGe:
		return enum.IPredSGE
	}
	return enum.IPredEQ
}

// truthy compares a value against zero, yielding an i1 suitable for
// NewCondBr/NewAnd/NewOr the way llir requires (vc's own IR instead
// keeps truthiness as a plain nonzero word until a later materialize).
func (e *Emitter) truthy(f *vcir.Function, id vcir.ValueID) value.Value {
	return e.block.NewICmp(enum.IPredNE, e.val(f, id), constant.NewInt(wordType, 0))
}

func collectArgs(call *vcir.Inst) []vcir.ValueID {
	var args []vcir.ValueID
	for p := call.Prev; p != nil && p.Op == vcir.OpArg; p = p.Prev {
		args = append(args, p.Src1)
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return args
}
