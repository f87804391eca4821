package emitter

import (
	"github.com/splanck/vc-sub004/internal/ast"
	"github.com/splanck/vc-sub004/internal/ir"
)

// emitCast dispatches by (src, dst) class, unpacking Imm as
// (srcKind<<8)|dstKind the way sema_expr.go's lowerCast packs it (§3.6):
// int<->float via cvtsi2ss/cvtsi2sd and cvttss2si/cvttsd2si, float<->
// double via cvtss2sd/cvtsd2ss, int<->int as a plain move (see
// emitIntToInt).
func (e *Emitter) emitCast(inst *ir.Inst) {
	srcKind := ast.TypeKind(inst.Imm >> 8)
	dstKind := ast.TypeKind(inst.Imm & 0xff)
	src := e.locStr(inst.Src1)
	dst := e.locStr(inst.Dest)

	switch {
	case srcKind.IsInteger() && dstKind.IsFloat():
		e.emitIntToFloat(src, dst, dstKind)
	case srcKind.IsFloat() && dstKind.IsInteger():
		e.emitFloatToInt(src, dst, srcKind)
	case srcKind.IsFloat() && dstKind.IsFloat():
		e.emitFloatToFloat(src, dst, srcKind, dstKind)
	default:
		e.emitIntToInt(src, dst, srcKind, dstKind)
	}
}

func (e *Emitter) emitIntToFloat(src, dst string, dstKind ast.TypeKind) {
	mnem := "cvtsi2ss"
	if dstKind == ast.Double {
		mnem = "cvtsi2sd"
	}
	a, b := e.operands(src, dst)
	e.emitf("\t%s %s, %s", mnem, a, b)
}

func (e *Emitter) emitFloatToInt(src, dst string, srcKind ast.TypeKind) {
	mnem := "cvttss2si"
	if srcKind == ast.Double {
		mnem = "cvttsd2si"
	}
	a, b := e.operands(src, dst)
	e.emitf("\t%s %s, %s", mnem, a, b)
}

func (e *Emitter) emitFloatToFloat(src, dst string, srcKind, dstKind ast.TypeKind) {
	mnem := "cvtss2sd"
	if srcKind == ast.Double && dstKind == ast.Float {
		mnem = "cvtsd2ss"
	}
	a, b := e.operands(src, dst)
	e.emitf("\t%s %s, %s", mnem, a, b)
}

// emitIntToInt copies the value with a plain mov whatever the two integer
// kinds are; no sign or zero extension and no truncation is emitted for a
// widening or narrowing cast.
func (e *Emitter) emitIntToInt(src, dst string, srcKind, dstKind ast.TypeKind) {
	if dst != src {
		e.emitMov(src, dst)
	}
}
