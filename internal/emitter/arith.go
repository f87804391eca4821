package emitter

import "github.com/splanck/vc-sub004/internal/ir"

// intBinaryMnemonic maps an integer arithmetic opcode to its AT&T base
// mnemonic (the size suffix is appended by e.mnemonic).
func intBinaryMnemonic(op ir.Opcode) string {
	switch op {
	case ir.OpAdd:
		return "add"
	case ir.OpSub:
		return "sub"
	case ir.OpMul:
		return "imul"
	case ir.OpAnd:
		return "and"
	case ir.OpOr:
		return "or"
	case ir.OpXor:
		return "xor"
	}
	return "mov"
}

// emitIntBinary loads src1 into dest's location (a no-op when dest and
// src1 already share the same location), then applies `op src2, dest`
// (§4.7's "loads src1 into dest's register ... then applies op"). A
// spilled destination is written back implicitly since locStr already
// names the memory operand directly.
func (e *Emitter) emitIntBinary(inst *ir.Inst) {
	dst := e.locStr(inst.Dest)
	src1 := e.locStr(inst.Src1)
	src2 := e.locStr(inst.Src2)
	if dst != src1 {
		e.emitMov(src1, dst)
	}
	op := e.mnemonic(intBinaryMnemonic(inst.Op))
	a, b := e.operands(src2, dst)
	e.emitf("\t%s %s, %s", op, a, b)
}

// emitDivMod follows the x86 idiv protocol (§4.7): src1 into %(e|r)ax,
// sign-extend with cltd/cqto, divide by src2, then take the quotient
// from %ax for IR_DIV or the remainder from %dx for IR_MOD.
func (e *Emitter) emitDivMod(inst *ir.Inst) {
	ax, dx := e.fmtReg(e.axName()), e.fmtReg(e.dxName())
	e.emitMov(e.locStr(inst.Src1), ax)
	if e.word == W64 {
		e.line("\tcqto")
	} else {
		e.line("\tcltd")
	}
	divisor := e.locStr(inst.Src2)
	e.emitf("\t%s %s", e.mnemonic("idiv"), divisor)
	if inst.Op == ir.OpDiv {
		e.emitMov(ax, e.locStr(inst.Dest))
	} else {
		e.emitMov(dx, e.locStr(inst.Dest))
	}
}

func (e *Emitter) axName() string {
	if e.word == W64 {
		return "rax"
	}
	return "eax"
}

func (e *Emitter) dxName() string {
	if e.word == W64 {
		return "rdx"
	}
	return "edx"
}

// emitShift loads the shift count into %cl, the one fixed register x86
// shift instructions accept for a variable count (§4.7).
func (e *Emitter) emitShift(inst *ir.Inst) {
	cl := e.fmtReg("cl")
	e.emitMov(e.locStr(inst.Src2), cl)
	dst := e.locStr(inst.Dest)
	if dst != e.locStr(inst.Src1) {
		e.emitMov(e.locStr(inst.Src1), dst)
	}
	mnem := "shl"
	if inst.Op == ir.OpShr {
		mnem = "sar"
	}
	a, b := e.operands(cl, dst)
	e.emitf("\t%s %s, %s", e.mnemonic(mnem), a, b)
}

func (e *Emitter) emitIntUnary(inst *ir.Inst) {
	dst := e.locStr(inst.Dest)
	src := e.locStr(inst.Src1)
	if dst != src {
		e.emitMov(src, dst)
	}
	mnem := "neg"
	if inst.Op == ir.OpNot {
		mnem = "not"
	}
	e.emitf("\t%s %s", e.mnemonic(mnem), dst)
}

// emitPtrAdd/emitPtrDiff implement `ptr + int` (scale by Imm, already
// computed during lowering) and `ptr - ptr` (subtract then the caller's
// lowering has already emitted the log2(elem_size) shift or signed
// divide per §4.4, so this opcode only ever sees the raw subtraction).
func (e *Emitter) emitPtrAdd(inst *ir.Inst) {
	e.emitIntBinary(&ir.Inst{Op: ir.OpAdd, Dest: inst.Dest, Src1: inst.Src1, Src2: inst.Src2})
}

func (e *Emitter) emitPtrDiff(inst *ir.Inst) {
	e.emitIntBinary(&ir.Inst{Op: ir.OpSub, Dest: inst.Dest, Src1: inst.Src1, Src2: inst.Src2})
}

// emitCompare emits cmp + setcc into %al then zero-extends into dest
// (§4.7).
func (e *Emitter) emitCompare(inst *ir.Inst) {
	a, b := e.operands(e.locStr(inst.Src2), e.locStr(inst.Src1))
	e.emitf("\t%s %s, %s", e.mnemonic("cmp"), a, b)
	al := e.fmtReg("al")
	e.emitf("\t%s %s", setccMnemonic(inst.Op), al)
	e.emitf("\t%s %s, %s", movzxMnemonic(e.word), al, e.locStr(inst.Dest))
}

func setccMnemonic(op ir.Opcode) string {
	switch op {
	case ir.OpEq:
		return "sete"
	case ir.OpNe:
		return "setne"
	case ir.OpLt:
		return "setl"
	case ir.OpLe:
		return "setle"
	case ir.OpGt:
		return "setg"
	case ir.OpGe:
		return "setge"
	}
	return "sete"
}

func movzxMnemonic(w WordSize) string {
	if w == W64 {
		return "movzbq"
	}
	return "movzbl"
}

// emitShortCircuit emits the branching "short circuit then materialize
// 0/1" sequence §4.7 describes for logand/logor, with two freshly
// generated labels per operation.
func (e *Emitter) emitShortCircuit(inst *ir.Inst) {
	shortLabel := e.newLabel("short")
	endLabel := e.newLabel("end")
	dst := e.locStr(inst.Dest)

	e.emitf("\t%s %s, %s", e.mnemonic("cmp"), e.immOperand(0), e.locStr(inst.Src1))
	if inst.Op == ir.OpLogAnd {
		e.emit2("je", shortLabel)
	} else {
		e.emit2("jne", shortLabel)
	}
	e.emitf("\t%s %s, %s", e.mnemonic("cmp"), e.immOperand(0), e.locStr(inst.Src2))
	setcc := "setne"
	e.emitf("\t%s %s", setcc, e.fmtReg("al"))
	e.emitf("\t%s %s, %s", movzxMnemonic(e.word), e.fmtReg("al"), dst)
	e.emit2("jmp", endLabel)
	e.emitf("%s:", shortLabel)
	val := 0
	if inst.Op == ir.OpLogOr {
		val = 1
	}
	e.emitMov(e.immOperand(int64(val)), dst)
	e.emitf("%s:", endLabel)
}

var labelSeq int

// newLabel mints a globally unique emitter-local label, same naming
// convention ("L<i>_tag") as ir.Builder.NewLabel uses for IR-level
// labels, but scoped to text the emitter itself generates (short-circuit
// materialization only — every other label already arrives pre-named in
// an instruction's Name field from the IR builder).
func (e *Emitter) newLabel(tag string) string {
	labelSeq++
	return "L" + itoaLabel(labelSeq) + "_" + tag
}

func itoaLabel(n int) string {
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

// emitBcond branches to inst.Name when Src1 is zero (Imm 0) or when it is
// nonzero (any other Imm).
func (e *Emitter) emitBcond(inst *ir.Inst) {
	e.emitf("\t%s %s, %s", e.mnemonic("cmp"), e.immOperand(0), e.locStr(inst.Src1))
	jcc := "jne"
	if inst.Imm == 0 {
		jcc = "je"
	}
	e.emit2(jcc, inst.Name)
}

func (e *Emitter) emitReturn(inst *ir.Inst) {
	if inst.Src1 != 0 {
		e.emitMov(e.locStr(inst.Src1), e.fmtReg(e.axName()))
	}
	e.line("\tjmp " + e.curFunc + "$epilogue")
}

// argIntRegs64 names the System V integer argument-passing registers, in
// order, for the first six integer/pointer arguments.
var argIntRegs64 = [...]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// collectCallArgs walks backward over the run of OpArg instructions a
// call's lowering emits immediately before it (sema_expr.go's lowerCall),
// recovering their original left-to-right order.
func collectCallArgs(call *ir.Inst) []ir.ValueID {
	var args []ir.ValueID
	for p := call.Prev; p != nil && p.Op == ir.OpArg; p = p.Prev {
		args = append(args, p.Src1)
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return args
}

// emitCall places every argument value id into its calling-convention
// slot (the first six integer/pointer arguments in rdi/rsi/rdx/rcx/r8/r9
// on x86-64, the rest pushed in reverse order, or pushed outright on
// x86-32) immediately before `call`, then moves the return value out of
// %(e|r)ax.
func (e *Emitter) emitCall(inst *ir.Inst) {
	args := collectCallArgs(inst)
	if e.word == W64 {
		for i := len(args) - 1; i >= len(argIntRegs64); i-- {
			e.emit2("push", e.locStr(args[i]))
		}
		for i, a := range args {
			if i < len(argIntRegs64) {
				e.emitMov(e.locStr(a), e.fmtReg(argIntRegs64[i]))
			}
		}
	} else {
		for i := len(args) - 1; i >= 0; i-- {
			e.emit2("push", e.locStr(args[i]))
		}
	}

	target := inst.Name
	if inst.Op == ir.OpCallPtr {
		target = "*" + e.locStr(inst.Src1)
		if e.syntax == Intel {
			target = e.locStr(inst.Src1)
		}
	}
	e.emit2("call", target)
	if inst.Dest != 0 {
		e.emitMov(e.fmtReg(e.axName()), e.locStr(inst.Dest))
	}
}

func (e *Emitter) emitArg(inst *ir.Inst) {
	// no text of its own: emitCall gathers every preceding OpArg by
	// walking backward from the call site (collectCallArgs).
}
