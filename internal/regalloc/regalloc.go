// Package regalloc implements the linear-scan register allocator (spec
// §4.6, component I): one forward pass over a function's IR computing
// each value id's [first_def, last_use] live range, then assigning
// registers (or spill slots when registers run out) separately for the
// integer and floating-point register classes, followed by frame-size
// computation with 16-byte alignment on x86-64 (§4.7).
package regalloc

import "github.com/splanck/vc-sub004/internal/ir"

// Class distinguishes the integer and SSE (xmm) register files — a float
// value never competes with an integer one for the same physical slot.
type Class int

const (
	ClassInt Class = iota
	ClassFloat
)

// Loc is a value id's final storage location: a non-negative register
// index (into the target's own register name table) or a negative
// spill-slot index (-1 meaning the first spill slot, counting down from
// the frame's local area).
type Loc int

const noLoc Loc = 1<<31 - 1

// Target fixes the register file sizes the allocator schedules against:
// distinct integer and xmm counts, since x86 has far more xmm registers
// than the small set of integer registers left once the stack/frame
// pointers and (on x64) argument-passing registers are reserved.
type Target struct {
	IntRegs   int
	FloatRegs int
}

// X64SysV is the System V AMD64 target: 5 general-purpose registers left
// free for allocation after rbp/rsp/argument registers are reserved for
// the prologue/call convention, and 8 xmm registers (§4.7).
var X64SysV = Target{IntRegs: 5, FloatRegs: 8}

// X86 is the 32-bit target: 3 general-purpose registers free (the emitter
// names them ebx/esi/edi; eax is its scratch register), and no SSE
// register file assumed free of call-clobber concerns — FloatRegs is 0,
// so every float value gets a spill slot.
var X86 = Target{IntRegs: 3, FloatRegs: 0}

// Range is one value id's live range: first_def is the instruction index
// it is produced at, last_use the last index it is read at (equal to
// first_def for a value that is never read — dead code the optimizer
// should have already removed, but the allocator tolerates it).
type Range struct {
	ID               ir.ValueID
	FirstDef, LastUse int
	Class            Class
}

// Allocation is the result of running the allocator over one function:
// per-value-id location, the count of spill slots used (for frame-size
// computation), and the ordered live ranges computed along the way
// (useful for tests and for a future peephole pass that wants liveness).
type Allocation struct {
	Loc        map[ir.ValueID]Loc
	StackSlots int
	Ranges     []Range
}

// classOf reports an instruction's value class by its opcode family. Long
// double and complex arithmetic are folded into ClassFloat here since
// both are spilled through the same non-general-purpose storage on this
// allocator's target (the x87 stack / xmm pairs respectively) rather than
// contending for integer registers.
func classOf(op ir.Opcode) Class {
	switch op {
	case ir.OpConstFloat, ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv,
		ir.OpLDAdd, ir.OpLDSub, ir.OpLDMul, ir.OpLDDiv,
		ir.OpCAdd, ir.OpCSub, ir.OpCMul, ir.OpCDiv:
		return ClassFloat
	}
	return ClassInt
}

// Allocate computes live ranges in one forward pass then assigns
// registers/spill slots per class using the classic linear-scan
// algorithm: ranges sorted by start, an active set evicted of anything
// whose range has ended, and, when a class's register file is exhausted,
// the active value whose range ends furthest away spilled (or the
// incoming value, if its own range ends later still).
func Allocate(b *ir.Builder, target Target) *Allocation {
	insts := b.Slice()
	firstDef := make(map[ir.ValueID]int)
	lastUse := make(map[ir.ValueID]int)
	classOfID := make(map[ir.ValueID]Class)

	for i, inst := range insts {
		if inst.Dest != 0 {
			if _, ok := firstDef[inst.Dest]; !ok {
				firstDef[inst.Dest] = i
				lastUse[inst.Dest] = i
				classOfID[inst.Dest] = classOf(inst.Op)
			}
		}
		for _, src := range [2]ir.ValueID{inst.Src1, inst.Src2} {
			if src == 0 {
				continue
			}
			if _, ok := firstDef[src]; !ok {
				// Used before any recorded def (a parameter or an
				// otherwise builder-external value) — treat the first
				// sighting as its def point so it still gets a range.
				firstDef[src] = i
				classOfID[src] = ClassInt
			}
			lastUse[src] = i
		}
	}

	ranges := make([]Range, 0, len(firstDef))
	for id, def := range firstDef {
		ranges = append(ranges, Range{ID: id, FirstDef: def, LastUse: lastUse[id], Class: classOfID[id]})
	}
	sortRangesByStart(ranges)

	alloc := &Allocation{Loc: make(map[ir.ValueID]Loc, len(ranges))}
	linearScan(ranges, target.IntRegs, ClassInt, alloc)
	linearScan(ranges, target.FloatRegs, ClassFloat, alloc)
	alloc.Ranges = ranges
	return alloc
}

// linearScan assigns registers [0, numRegs) to ranges of the given class,
// spilling the range among the active set whose live range ends furthest
// in the future (Chaitin/Poletto's standard heuristic) whenever a fresh
// range needs a register and none is free.
func linearScan(ranges []Range, numRegs int, class Class, alloc *Allocation) {
	if numRegs <= 0 {
		for _, r := range ranges {
			if r.Class == class {
				alloc.Loc[r.ID] = nextSpillSlot(alloc)
			}
		}
		return
	}

	var active []Range
	freeRegs := make([]bool, numRegs)
	for i := range freeRegs {
		freeRegs[i] = true
	}
	regOf := make(map[ir.ValueID]int)

	expireOld := func(start int) {
		kept := active[:0]
		for _, r := range active {
			if r.LastUse < start {
				freeRegs[regOf[r.ID]] = true
				delete(regOf, r.ID)
				continue
			}
			kept = append(kept, r)
		}
		active = kept
	}

	for _, r := range ranges {
		if r.Class != class {
			continue
		}
		expireOld(r.FirstDef)

		reg, ok := firstFree(freeRegs)
		if ok {
			freeRegs[reg] = false
			regOf[r.ID] = reg
			alloc.Loc[r.ID] = Loc(reg)
			active = append(active, r)
			continue
		}

		// Spill the active range with the furthest-away last use; if
		// that is farther out than the current range's own, the
		// incoming range spills instead (classic linear-scan tie-break).
		spillIdx, spillLast := -1, -1
		for i, a := range active {
			if a.LastUse > spillLast {
				spillLast = a.LastUse
				spillIdx = i
			}
		}
		if spillIdx >= 0 && spillLast > r.LastUse {
			victim := active[spillIdx]
			reg := regOf[victim.ID]
			alloc.Loc[victim.ID] = nextSpillSlot(alloc)
			delete(regOf, victim.ID)
			active[spillIdx] = r
			regOf[r.ID] = reg
			alloc.Loc[r.ID] = Loc(reg)
		} else {
			alloc.Loc[r.ID] = nextSpillSlot(alloc)
		}
	}
}

func nextSpillSlot(alloc *Allocation) Loc {
	alloc.StackSlots++
	return Loc(-alloc.StackSlots)
}

func firstFree(free []bool) (int, bool) {
	for i, f := range free {
		if f {
			return i, true
		}
	}
	return 0, false
}

func sortRangesByStart(r []Range) {
	// insertion sort: function-local range counts are small (tens to low
	// hundreds of values), and a stable, dependency-free sort keeps this
	// package import-free beyond package ir.
	for i := 1; i < len(r); i++ {
		j := i
		for j > 0 && r[j-1].FirstDef > r[j].FirstDef {
			r[j-1], r[j] = r[j], r[j-1]
			j--
		}
	}
}

// FrameSize returns the local-variable-area size in bytes needed for
// stackSlots spill slots of slotSize bytes each, rounded up to a 16-byte
// boundary as the x86-64 System V ABI requires at a call site (§4.7).
func FrameSize(stackSlots, slotSize int) int {
	sz := stackSlots * slotSize
	if rem := sz % 16; rem != 0 {
		sz += 16 - rem
	}
	return sz
}
