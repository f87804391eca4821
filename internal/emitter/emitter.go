// Package emitter implements the code emitter (spec §4.7, component J):
// walks a function's optimized, register-allocated IR and appends x86
// assembly text to an append-only buffer, for either word size and
// either syntax dialect.
package emitter

import (
	"fmt"
	"strings"

	"github.com/splanck/vc-sub004/internal/ast"
	"github.com/splanck/vc-sub004/internal/ir"
	"github.com/splanck/vc-sub004/internal/regalloc"
)

// Syntax selects the operand-order/register-prefix dialect.
type Syntax int

const (
	ATT Syntax = iota
	Intel
)

// WordSize selects the target's pointer/general-register width.
type WordSize int

const (
	W32 WordSize = 4
	W64 WordSize = 8
)

// Emitter owns a translation unit's append-only output buffer plus the
// target configuration needed to format operands and choose instruction
// mnemonics. The driver creates one Emitter per source file, and
// EmitModule appends every global and function of that file to it.
type Emitter struct {
	buf      strings.Builder
	syntax   Syntax
	word     WordSize
	exports  bool // stored from New; not read when emitting
	alloc    *regalloc.Allocation
	target   regalloc.Target
	frameSz  int
	curFunc  string
	locals   map[string]int // named local/param slot index, beyond alloc.StackSlots
}

// New creates an emitter for one target configuration. exports is stored
// but does not change the output: whether a function gets a `.globl`
// directive is decided per function by EmitModule/EmitFunction.
func New(word WordSize, syntax Syntax, exports bool) *Emitter {
	target := regalloc.X64SysV
	if word == W32 {
		target = regalloc.X86
	}
	return &Emitter{syntax: syntax, word: word, exports: exports, target: target}
}

// String returns everything appended so far.
func (e *Emitter) String() string { return e.buf.String() }

func (e *Emitter) line(s string) {
	e.buf.WriteString(s)
	e.buf.WriteByte('\n')
}

func (e *Emitter) emitf(format string, args ...interface{}) {
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

// EmitModule emits every global then every function of m, in order.
func (e *Emitter) EmitModule(m *ir.Module, exported map[string]bool) {
	e.emitGlobals(m.Globals)
	for _, f := range m.Functions {
		e.EmitFunction(f, exported[f.Name] || !f.IsStatic)
	}
}

// emitGlobals appends .data/.bss/.rodata sections for file-scope
// variables and deduplicated string literals (§6 OUTPUT).
func (e *Emitter) emitGlobals(globals []ir.Global) {
	var data, bss, rodata []ir.Global
	for _, g := range globals {
		switch {
		case g.Kind == ir.OpGlobString:
			rodata = append(rodata, g)
		case g.IsZero:
			bss = append(bss, g)
		default:
			data = append(data, g)
		}
	}
	if len(data) > 0 {
		e.line(".data")
		for _, g := range data {
			e.emitDataGlobal(g)
		}
	}
	if len(bss) > 0 {
		e.line(".bss")
		for _, g := range bss {
			e.emitf("%s:", g.Name)
			e.emitf("\t.zero %d", g.Size)
		}
	}
	if len(rodata) > 0 {
		e.line(".rodata")
		for _, g := range rodata {
			e.emitf("%s:", g.Name)
			e.emitf("\t.asciz %s", quoteAsm(string(g.Data)))
		}
	}
}

func (e *Emitter) emitDataGlobal(g ir.Global) {
	e.emitf("%s:", g.Name)
	if len(g.Data) == 0 {
		e.emitf("\t.zero %d", g.Size)
		return
	}
	e.emitf("\t.byte %s", byteList(g.Data))
}

// EmitFunction emits one function's prologue, body, and epilogue. exported
// controls the `.globl` directive (non-static functions, or anything the
// driver's --emit-prototypes pass has already decided must be visible).
func (e *Emitter) EmitFunction(f *ir.Function, exported bool) {
	e.curFunc = f.Name
	e.alloc = regalloc.Allocate(f.Builder, e.target)
	e.locals = make(map[string]int, len(f.Locals))
	for i, name := range f.Locals {
		e.locals[name] = i
	}
	e.frameSz = regalloc.FrameSize(e.alloc.StackSlots+len(f.Locals), int(e.word))

	if exported {
		e.emitf(".globl %s", f.Name)
	}
	e.emitf("%s:", f.Name)
	e.emitPrologue()
	e.emitParamSpill(f)

	insts := f.Builder.Slice()
	for _, inst := range insts {
		e.emitInst(inst)
	}

	e.emitf("%s$epilogue:", f.Name)
	e.emitEpilogue()
}

func (e *Emitter) emitPrologue() {
	bp, sp := e.reg(regBP), e.reg(regSP)
	e.emit2("push", bp)
	e.emitMov(sp, bp)
	if e.frameSz > 0 {
		e.emit2Imm("sub", e.frameSz, sp)
	}
}

// emitParamSpill moves every incoming argument into its home stack slot
// immediately after the prologue, per the calling convention for the
// active word size (§4.7). f.Locals' first f.NumParams entries name the
// parameters in declaration order, matching OpLoadParam's Imm index.
// Every parameter is treated as an integer/pointer argument: a
// floating-point parameter's slot also receives the integer register or
// stack word at its position, and the xmm argument registers are not read.
func (e *Emitter) emitParamSpill(f *ir.Function) {
	n := f.NumParams
	if n > len(f.Locals) {
		n = len(f.Locals)
	}
	if e.word == W64 {
		for i := 0; i < n; i++ {
			dst := e.varOperand(f.Locals[i])
			if i < len(argIntRegs64) {
				e.emitMov(e.fmtReg(argIntRegs64[i]), dst)
			} else {
				off := 16 + (i-len(argIntRegs64))*int(e.word)
				e.emitMov(e.memOperand(regBP, off), dst)
			}
		}
		return
	}
	// cdecl: every argument was pushed by the caller, in order, above the
	// saved return address and frame pointer.
	for i := 0; i < n; i++ {
		off := 2*int(e.word) + i*int(e.word)
		e.emitMov(e.memOperand(regBP, off), e.varOperand(f.Locals[i]))
	}
}

func (e *Emitter) emitEpilogue() {
	bp, sp := e.reg(regBP), e.reg(regSP)
	e.emitMov(bp, sp)
	e.emit2("pop", bp)
	e.line("\tret")
}

// classOfType maps an AST type kind to the register class used when no IR
// class hint is otherwise available (casts, globals).
func classOfType(k ast.TypeKind) regalloc.Class {
	if k.IsFloat() || k.IsComplex() {
		return regalloc.ClassFloat
	}
	return regalloc.ClassInt
}
