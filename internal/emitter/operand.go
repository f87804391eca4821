package emitter

import (
	"fmt"

	"github.com/splanck/vc-sub004/internal/ir"
	"github.com/splanck/vc-sub004/internal/regalloc"
)

// physReg is an abstract physical register: a class plus an index into
// that class's name table for the current word size.
type physReg struct {
	class regalloc.Class
	index int
}

const (
	regSP = -1 // the stack pointer, addressed directly rather than via regalloc.Loc
	regBP = -2 // the frame pointer
)

// intRegNames64/32 list the general-purpose integer registers available
// to the allocator (regalloc.X64SysV.IntRegs / regalloc.X86.IntRegs
// entries respectively), AT&T spelling; Intel spelling drops the '%'.
var intRegNames64 = [...]string{"rbx", "r12", "r13", "r14", "r15"}
var intRegNames32 = [...]string{"ebx", "esi", "edi"}

var xmmRegNames = [...]string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7"}

func (e *Emitter) reg(r int) string {
	switch r {
	case regSP:
		if e.word == W64 {
			return e.fmtReg("rsp")
		}
		return e.fmtReg("esp")
	case regBP:
		if e.word == W64 {
			return e.fmtReg("rbp")
		}
		return e.fmtReg("ebp")
	}
	return e.fmtReg(e.intRegName(r))
}

func (e *Emitter) intRegName(idx int) string {
	if e.word == W64 {
		if idx >= 0 && idx < len(intRegNames64) {
			return intRegNames64[idx]
		}
		return "rax"
	}
	if idx >= 0 && idx < len(intRegNames32) {
		return intRegNames32[idx]
	}
	return "eax"
}

func (e *Emitter) xmmRegName(idx int) string {
	if idx >= 0 && idx < len(xmmRegNames) {
		return xmmRegNames[idx]
	}
	return xmmRegNames[0]
}

func (e *Emitter) fmtReg(name string) string {
	if e.syntax == ATT {
		return "%" + name
	}
	return name
}

// scratchInt/scratchFloat name the always-reserved scratch registers used
// to materialize a spilled operand for the duration of one instruction
// (%rax/%eax for integers, %xmm0 otherwise).
func (e *Emitter) scratchInt() string {
	if e.word == W64 {
		return e.fmtReg("rax")
	}
	return e.fmtReg("eax")
}

func (e *Emitter) scratchFloat() string { return e.fmtReg("xmm0") }

// locStr formats value id's storage location: a register name, or a
// spill-slot memory operand `-N(%rbp)` (AT&T) / `[rbp-N]` (Intel), per
// §4.7's `loc_str(id, x64, syntax)` helper.
func (e *Emitter) locStr(id ir.ValueID) string {
	loc, ok := e.alloc.Loc[id]
	if !ok {
		return e.scratchInt()
	}
	if loc >= 0 {
		if e.classOfID(id) == regalloc.ClassFloat {
			return e.fmtReg(e.xmmRegName(int(loc)))
		}
		return e.reg(int(loc))
	}
	off := -int(loc) * int(e.word)
	return e.memOperand(regBP, -off)
}

// classOfID reports which register class id's live range was computed
// in, by scanning the allocation's range list (built once per function,
// so a linear scan per lookup stays cheap relative to allocation itself).
func (e *Emitter) classOfID(id ir.ValueID) regalloc.Class {
	for _, r := range e.alloc.Ranges {
		if r.ID == id {
			return r.Class
		}
	}
	return regalloc.ClassInt
}

// varOperand resolves a named local/parameter to its home stack slot
// (beyond the register allocator's own spill-slot range, §4.6), or a
// file-scope variable/string-constant label otherwise — the distinction
// OpLoad/OpStore/OpAddr's Name field collapses, since both cases name a
// variable by identifier rather than by ir.ValueID.
func (e *Emitter) varOperand(name string) string {
	if i, ok := e.locals[name]; ok {
		off := (e.alloc.StackSlots + i + 1) * int(e.word)
		return e.memOperand(regBP, -off)
	}
	return name + ripRel(e.word)
}

// memOperand formats a base+disp memory operand in the active syntax.
func (e *Emitter) memOperand(base, disp int) string {
	baseName := e.reg(base)
	if e.syntax == ATT {
		if disp == 0 {
			return fmt.Sprintf("(%s)", baseName)
		}
		return fmt.Sprintf("%d(%s)", disp, baseName)
	}
	if disp == 0 {
		return fmt.Sprintf("[%s]", baseName)
	}
	if disp > 0 {
		return fmt.Sprintf("[%s+%d]", baseName, disp)
	}
	return fmt.Sprintf("[%s%d]", baseName, disp)
}

// immOperand formats an immediate integer per syntax ($N vs N).
func (e *Emitter) immOperand(v int64) string {
	if e.syntax == ATT {
		return fmt.Sprintf("$%d", v)
	}
	return fmt.Sprintf("%d", v)
}

// sizeSuffix returns the AT&T mnemonic size suffix for the current word
// size (b/w/l/q families use l for 32-bit, q for 64-bit general ops).
func (e *Emitter) sizeSuffix() string {
	if e.word == W64 {
		return "q"
	}
	return "l"
}

// operands formats a two-operand instruction honoring each dialect's
// argument order: AT&T is src, dst; Intel is dst, src.
func (e *Emitter) operands(src, dst string) (a, b string) {
	if e.syntax == ATT {
		return src, dst
	}
	return dst, src
}

func (e *Emitter) mnemonic(base string) string {
	if e.syntax == ATT {
		return base + e.sizeSuffix()
	}
	return base
}

func (e *Emitter) emit2(op, operand string) {
	e.emitf("\t%s %s", op, operand)
}

func (e *Emitter) emit2Imm(baseOp string, v int, dst string) {
	op := e.mnemonic(baseOp)
	a, b := e.operands(e.immOperand(int64(v)), dst)
	e.emitf("\t%s %s, %s", op, a, b)
}

func (e *Emitter) emitMov(src, dst string) {
	op := e.mnemonic("mov")
	a, b := e.operands(src, dst)
	e.emitf("\t%s %s, %s", op, a, b)
}

func byteList(data []byte) string {
	s := ""
	for i, b := range data {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%d", b)
	}
	return s
}

func quoteAsm(s string) string {
	out := []byte{'"'}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, c)
		}
	}
	out = append(out, '"')
	return string(out)
}
