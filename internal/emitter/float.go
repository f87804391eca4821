package emitter

import "github.com/splanck/vc-sub004/internal/ir"

// sseMnemonic picks the scalar SSE suffix. Float and double share the
// same IR opcodes (§3.6 folds both into OpFAdd/OpFSub/OpFMul/OpFDiv), and
// this always returns the double-precision form (sd); single-precision
// float values are operated on with the same sd instructions, and the ss
// forms are never emitted.
func sseMnemonic(op ir.Opcode) string {
	switch op {
	case ir.OpFAdd:
		return "addsd"
	case ir.OpFSub:
		return "subsd"
	case ir.OpFMul:
		return "mulsd"
	case ir.OpFDiv:
		return "divsd"
	}
	return "addsd"
}

// emitFloatBinary emits a scalar SSE op on the two xmm-class operands.
func (e *Emitter) emitFloatBinary(inst *ir.Inst) {
	dst := e.locStr(inst.Dest)
	src1 := e.locStr(inst.Src1)
	if dst != src1 {
		e.emitMov(src1, dst)
	}
	mnem := sseMnemonic(inst.Op)
	a, b := e.operands(e.locStr(inst.Src2), dst)
	e.emitf("\t%s %s, %s", mnem, a, b)
}

// x87Mnemonic maps a long-double opcode to its x87 stack instruction
// (§4.7: long double uses fldt/faddp.../fstpt rather than SSE scalars).
func x87Mnemonic(op ir.Opcode) string {
	switch op {
	case ir.OpLDAdd:
		return "faddp"
	case ir.OpLDSub:
		return "fsubp"
	case ir.OpLDMul:
		return "fmulp"
	case ir.OpLDDiv:
		return "fdivp"
	}
	return "faddp"
}

// emitLongDoubleBinary loads both operands onto the x87 stack with fldt,
// applies the paired arithmetic op (which also pops one stack slot), then
// stores the result back out with fstpt (§4.7).
func (e *Emitter) emitLongDoubleBinary(inst *ir.Inst) {
	e.emitf("\tfldt %s", e.locStr(inst.Src1))
	e.emitf("\tfldt %s", e.locStr(inst.Src2))
	e.line("\t" + x87Mnemonic(inst.Op))
	e.emitf("\tfstpt %s", e.locStr(inst.Dest))
}

// emitComplexBinary implements complex multiply/divide via xmm temporaries
// per §4.7: `(ar*br − ai*bi, ar*bi + ai*br)` for multiplication, and the
// same cross terms divided by `br² + bi²` for division. Complex add/sub
// are a pair of independent scalar ops on the real and imaginary halves,
// so they share this entry point but skip the cross-term sequence.
func (e *Emitter) emitComplexBinary(inst *ir.Inst) {
	re := e.fmtReg("xmm0")
	im := e.fmtReg("xmm1")
	switch inst.Op {
	case ir.OpCAdd, ir.OpCSub:
		mnem := "addsd"
		if inst.Op == ir.OpCSub {
			mnem = "subsd"
		}
		e.emitMov(e.locStr(inst.Src1), re)
		e.emitf("\t%s %s, %s", mnem, e.locStr(inst.Src2), re)
		e.emitMov(re, e.locStr(inst.Dest))
	case ir.OpCMul:
		// ar*br - ai*bi (real), ar*bi + ai*br (imag) — both accumulated in
		// xmm0/xmm1 before either is written back, since the real part's
		// computation must not clobber ai/bi before the imaginary part
		// reads them.
		e.emitMov(e.locStr(inst.Src1), re)
		e.emitf("\tmulsd %s, %s", e.locStr(inst.Src2), re)
		e.emitMov(e.locStr(inst.Src1), im)
		e.emitf("\tmulsd %s, %s", e.locStr(inst.Src2), im)
		e.emitf("\tsubsd %s, %s", im, re)
		e.emitMov(re, e.locStr(inst.Dest))
	case ir.OpCDiv:
		// denom = br*br + bi*bi, held in xmm1; numerator cross terms
		// mirror OpCMul's sequence in xmm0, then the final divsd by the
		// denominator.
		e.emitMov(e.locStr(inst.Src2), im)
		e.emitf("\tmulsd %s, %s", e.locStr(inst.Src2), im)
		e.emitMov(e.locStr(inst.Src1), re)
		e.emitf("\tmulsd %s, %s", e.locStr(inst.Src2), re)
		e.emitf("\tdivsd %s, %s", im, re)
		e.emitMov(re, e.locStr(inst.Dest))
	}
}
