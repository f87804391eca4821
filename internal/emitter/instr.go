package emitter

import (
	"fmt"

	"github.com/splanck/vc-sub004/internal/ir"
)

// emitInst appends the assembly text for one IR instruction, dispatching
// on opcode exactly as §4.7 describes: one emitter function per opcode
// family, each writing into the shared append-only buffer.
func (e *Emitter) emitInst(inst *ir.Inst) {
	switch inst.Op {
	case ir.OpFuncBegin, ir.OpFuncEnd:
		// prologue/epilogue handled by EmitFunction itself
	case ir.OpConstInt:
		e.emitConstInt(inst)
	case ir.OpConstFloat:
		e.emitConstFloat(inst)
	case ir.OpConstString:
		// materializes to a lea of its rodata label; handled like OpAddr
		e.emitLeaLabel(inst)
	case ir.OpLoad:
		e.emitLoad(inst)
	case ir.OpStore:
		e.emitStore(inst)
	case ir.OpLoadParam:
		// a declaration marker only: EmitFunction's emitParamSpill has
		// already moved every incoming argument into its home slot
		// before the first instruction runs.
	case ir.OpStoreParam:
		e.emitStore(inst)
	case ir.OpAddr:
		e.emitLeaLabel(inst)
	case ir.OpLoadPtr:
		e.emitLoadPtr(inst)
	case ir.OpStorePtr:
		e.emitStorePtr(inst)
	case ir.OpLoadIdx:
		e.emitLoadIdx(inst)
	case ir.OpStoreIdx:
		e.emitStoreIdx(inst)
	case ir.OpAlloca:
		// storage is reserved by the frame's slot accounting; nothing to emit
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpAnd, ir.OpOr, ir.OpXor:
		e.emitIntBinary(inst)
	case ir.OpDiv, ir.OpMod:
		e.emitDivMod(inst)
	case ir.OpShl, ir.OpShr:
		e.emitShift(inst)
	case ir.OpNot, ir.OpNeg:
		e.emitIntUnary(inst)
	case ir.OpPtrAdd:
		e.emitPtrAdd(inst)
	case ir.OpPtrDiff:
		e.emitPtrDiff(inst)
	case ir.OpCast:
		e.emitCast(inst)
	case ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv:
		e.emitFloatBinary(inst)
	case ir.OpLDAdd, ir.OpLDSub, ir.OpLDMul, ir.OpLDDiv:
		e.emitLongDoubleBinary(inst)
	case ir.OpCAdd, ir.OpCSub, ir.OpCMul, ir.OpCDiv:
		e.emitComplexBinary(inst)
	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		e.emitCompare(inst)
	case ir.OpLogAnd, ir.OpLogOr:
		e.emitShortCircuit(inst)
	case ir.OpBr:
		e.emit2("jmp", inst.Name)
	case ir.OpBcond:
		e.emitBcond(inst)
	case ir.OpLabel:
		e.emitf("%s:", inst.Name)
	case ir.OpReturn:
		e.emitReturn(inst)
	case ir.OpCall, ir.OpCallPtr:
		e.emitCall(inst)
	case ir.OpArg:
		e.emitArg(inst)
	}
}

func (e *Emitter) emitConstInt(inst *ir.Inst) {
	e.emitMov(e.immOperand(inst.Imm), e.locStr(inst.Dest))
}

func (e *Emitter) emitConstFloat(inst *ir.Inst) {
	// float constants are pool-loaded from a generated rodata label; the
	// label itself is threaded through inst.Name by the lowering pass.
	if inst.Name == "" {
		return
	}
	e.emitLeaLabel(inst)
}

func (e *Emitter) emitLeaLabel(inst *ir.Inst) {
	op := "lea"
	dst := e.locStr(inst.Dest)
	operand := e.varOperand(inst.Name)
	a, b := e.operands(operand, dst)
	e.emitf("\t%s %s, %s", op, a, b)
}

// ripRel appends rip-relative addressing syntax on x86-64 (position
// independent; PLT-free references on x86-32 use the bare label).
func ripRel(w WordSize) string {
	if w == W64 {
		return "(%rip)"
	}
	return ""
}

func (e *Emitter) emitLoad(inst *ir.Inst) {
	e.emitMov(e.varOperand(inst.Name), e.locStr(inst.Dest))
}

func (e *Emitter) emitStore(inst *ir.Inst) {
	e.emitMov(e.locStr(inst.Src1), e.varOperand(inst.Name))
}

// ptrOperand dereferences the register holding a pointer value id,
// producing `(%reg)` / `[reg]`. A spilled pointer is first reloaded into
// the integer scratch register, matching the scratch-register convention
// the allocator documents for a spilled location (§4.6).
func (e *Emitter) ptrOperand(id ir.ValueID) string {
	loc := e.locStr(id)
	if isMemOperand(loc) {
		e.emitMov(loc, e.scratchInt())
		loc = e.scratchInt()
	}
	if e.syntax == ATT {
		return "(" + loc + ")"
	}
	return "[" + loc + "]"
}

func isMemOperand(s string) bool {
	if len(s) == 0 {
		return false
	}
	return s[0] != '%' && s[len(s)-1] == ')' || s[0] == '['
}

func (e *Emitter) emitLoadPtr(inst *ir.Inst) {
	e.emitMov(e.ptrOperand(inst.Src1), e.locStr(inst.Dest))
}

func (e *Emitter) emitStorePtr(inst *ir.Inst) {
	e.emitMov(e.locStr(inst.Src1), e.ptrOperand(inst.Src2))
}

// emitLoadIdx/emitStoreIdx address `base + index*Imm` (Imm carries the
// element size scale, mirroring the pointer-arithmetic lowering in
// sema_expr.go's lowerIndexAddr) via a scale-index-base operand.
func (e *Emitter) emitLoadIdx(inst *ir.Inst) {
	e.emitMov(e.sibOperand(inst.Src1, inst.Src2, inst.Imm), e.locStr(inst.Dest))
}

func (e *Emitter) emitStoreIdx(inst *ir.Inst) {
	e.emitMov(e.locStr(inst.Src1), e.sibOperand(inst.Src2, 0, inst.Imm))
}

func (e *Emitter) sibOperand(base, index ir.ValueID, scale int64) string {
	baseLoc := e.locStr(base)
	if isMemOperand(baseLoc) {
		e.emitMov(baseLoc, e.scratchInt())
		baseLoc = e.scratchInt()
	}
	if index == 0 {
		if e.syntax == ATT {
			return "(" + baseLoc + ")"
		}
		return "[" + baseLoc + "]"
	}
	idxLoc := e.locStr(index)
	if e.syntax == ATT {
		return fmt.Sprintf("(%s,%s,%d)", baseLoc, idxLoc, scale)
	}
	return fmt.Sprintf("[%s+%s*%d]", baseLoc, idxLoc, scale)
}
