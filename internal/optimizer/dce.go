package optimizer

import "github.com/splanck/vc-sub004/internal/ir"

// EliminateDeadFunctions removes module-level unreachable functions via a
// mark-and-sweep reachability scan rooted at main and every non-static
// function (see isExternallyVisible), gated by --no-dce
// (§4.5 supplement). A direct call marks its callee name reachable; an
// OpAddr instruction naming a function marks it reachable too, since the
// function's address may have been taken to build a function pointer that
// is called indirectly later.
func EliminateDeadFunctions(m *ir.Module) {
	byName := make(map[string]*ir.Function, len(m.Functions))
	for _, f := range m.Functions {
		byName[f.Name] = f
	}

	reachable := make(map[string]bool)
	var worklist []string
	addRoot := func(name string) {
		if _, exists := byName[name]; exists && !reachable[name] {
			reachable[name] = true
			worklist = append(worklist, name)
		}
	}

	addRoot("main")
	for _, f := range m.Functions {
		if isExternallyVisible(f) {
			addRoot(f.Name)
		}
	}

	for len(worklist) > 0 {
		name := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		f := byName[name]
		for inst := f.Builder.Head; inst != nil; inst = inst.Next {
			switch inst.Op {
			case ir.OpCall:
				addRoot(inst.Name)
			case ir.OpAddr:
				if _, ok := byName[inst.Name]; ok {
					addRoot(inst.Name)
				}
			}
		}
	}

	filtered := make([]*ir.Function, 0, len(reachable))
	for _, f := range m.Functions {
		if reachable[f.Name] {
			filtered = append(filtered, f)
		}
	}
	m.Functions = filtered
}

// isExternallyVisible reports whether a function must be kept even with
// no in-module caller: only `static` grants a function internal linkage in
// C, so a non-static function is conservatively treated as a possible
// cross-translation-unit entry point, the same way a linker would.
func isExternallyVisible(f *ir.Function) bool {
	return !f.IsStatic
}
