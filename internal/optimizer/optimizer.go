// Package optimizer implements the IR-to-IR passes (spec §4.5, component
// H): constant propagation, a small-function inliner, a dead-code/peephole
// cleanup, and a module-level dead-function elimination pass. Every pass
// takes and returns the same package ir shape the semantic analyzer built,
// so passes compose freely and a driver flag can disable any one of them.
package optimizer

import "github.com/splanck/vc-sub004/internal/ir"

// Options toggles individual passes, mirroring the driver's
// --no-cfold/--no-inline/--no-dce flags (§6).
type Options struct {
	NoConstFold bool
	NoInline    bool
	NoDCE       bool
}

// Run applies every enabled pass, in the fixed order const-prop, inline,
// peephole/local-DCE, then (once, after every function has settled)
// module-level dead-function elimination.
func Run(m *ir.Module, opt Options) {
	for _, fn := range m.Functions {
		if !opt.NoConstFold {
			ConstPropagate(fn.Builder)
		}
	}
	if !opt.NoInline {
		InlineSmallFunctions(m)
	}
	for _, fn := range m.Functions {
		if !opt.NoConstFold {
			ConstPropagate(fn.Builder) // a second pass catches constants the inliner exposed
		}
		Peephole(fn.Builder)
	}
	if !opt.NoDCE {
		EliminateDeadFunctions(m)
	}
}
