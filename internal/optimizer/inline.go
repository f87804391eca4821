package optimizer

import "github.com/splanck/vc-sub004/internal/ir"

// maxInlineSize bounds candidate body size (instruction count, excluding
// FuncBegin/FuncEnd) — small enough that splicing the body in is a clear
// win, per §4.5's "small function" inliner.
const maxInlineSize = 24

// InlineSmallFunctions finds every non-variadic, non-recursive,
// single-return, branch-free function under the size bound and splices
// its body into each of its call sites module-wide, substituting
// load_param with the actual argument value and renaming the callee's own
// locals so they cannot collide with the caller's (§4.5).
func InlineSmallFunctions(m *ir.Module) {
	candidates := make(map[string]*ir.Function)
	for _, f := range m.Functions {
		if isInlineCandidate(f) {
			candidates[f.Name] = f
		}
	}
	if len(candidates) == 0 {
		return
	}
	seq := 0
	for _, f := range m.Functions {
		inlineCallsIn(f.Builder, candidates, &seq)
	}
}

func isInlineCandidate(f *ir.Function) bool {
	if f.IsVariadic {
		return false
	}
	n := 0
	returns := 0
	for inst := f.Builder.Head; inst != nil; inst = inst.Next {
		switch inst.Op {
		case ir.OpFuncBegin, ir.OpFuncEnd:
			continue
		case ir.OpLabel, ir.OpBr, ir.OpBcond:
			return false // branch-free bodies only: no label remapping needed
		case ir.OpReturn:
			returns++
		case ir.OpCall, ir.OpCallPtr:
			if inst.Name == f.Name {
				return false // never inline a (direct) recursive call
			}
		}
		n++
	}
	return returns == 1 && n > 0 && n <= maxInlineSize
}

func inlineCallsIn(b *ir.Builder, candidates map[string]*ir.Function, seq *int) {
	for inst := b.Head; inst != nil; {
		next := inst.Next
		if inst.Op == ir.OpCall {
			if callee, ok := candidates[inst.Name]; ok {
				args := collectArgValues(inst)
				if len(args) == callee.NumParams {
					inlineOneCall(b, inst, callee, args, seq)
				}
			}
		}
		inst = next
	}
}

// collectArgValues walks backward over the OpArg instructions a call's
// lowering emits immediately before it (§4.4's lowerCall), in original
// (left-to-right) order.
func collectArgValues(call *ir.Inst) []ir.ValueID {
	var args []ir.ValueID
	for p := call.Prev; p != nil && p.Op == ir.OpArg; p = p.Prev {
		args = append(args, p.Src1)
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return args
}

func collectArgInsts(call *ir.Inst) []*ir.Inst {
	var insts []*ir.Inst
	for p := call.Prev; p != nil && p.Op == ir.OpArg; p = p.Prev {
		insts = append(insts, p)
	}
	return insts
}

// aliasNamed is the set of opcodes whose Name field addresses a memory
// location (and thus needs both renaming and a freshly allocated alias
// set in the caller's builder, distinct from the callee's own).
func aliasNamed(op ir.Opcode) bool {
	switch op {
	case ir.OpAlloca, ir.OpLoad, ir.OpStore, ir.OpAddr, ir.OpStoreIdx, ir.OpLoadIdx:
		return true
	}
	return false
}

func inlineOneCall(b *ir.Builder, call *ir.Inst, callee *ir.Function, args []ir.ValueID, seq *int) {
	*seq++
	prefix := callee.Name + "$inl" + itoa(*seq)
	// Gathered before the body is spliced in front of call, which would
	// otherwise separate call from its OpArg run.
	argInsts := collectArgInsts(call)
	isLocal := make(map[string]bool, len(callee.Locals))
	for _, name := range callee.Locals {
		isLocal[name] = true
	}
	rename := func(name string) string {
		if name != "" && isLocal[name] {
			return prefix + "$" + name
		}
		return name
	}

	valMap := make(map[ir.ValueID]ir.ValueID)
	remap := func(id ir.ValueID) ir.ValueID {
		if id == 0 {
			return 0
		}
		if v, ok := valMap[id]; ok {
			return v
		}
		return id
	}

	paramIdx := 0
	var returnSrc ir.ValueID
	haveReturn := false

	for inst := callee.Builder.Head; inst != nil; inst = inst.Next {
		switch inst.Op {
		case ir.OpFuncBegin, ir.OpFuncEnd:
			continue
		case ir.OpLoadParam:
			if paramIdx < len(args) {
				name := rename(inst.Name)
				b.InsertBefore(call, &ir.Inst{Op: ir.OpStore, Src1: args[paramIdx], Name: name, AliasSet: b.AliasSet(name, false)})
			}
			paramIdx++
		case ir.OpReturn:
			if inst.Src1 != 0 {
				returnSrc = remap(inst.Src1)
				haveReturn = true
			}
		default:
			newInst := &ir.Inst{
				Op:         inst.Op,
				Imm:        inst.Imm,
				Name:       rename(inst.Name),
				Src1:       remap(inst.Src1),
				Src2:       remap(inst.Src2),
				IsVolatile: inst.IsVolatile,
				IsRestrict: inst.IsRestrict,
			}
			if inst.Dest != 0 {
				newInst.Dest = b.NewValue()
				valMap[inst.Dest] = newInst.Dest
			}
			if newInst.Name != "" && aliasNamed(inst.Op) {
				newInst.AliasSet = b.AliasSet(newInst.Name, inst.IsRestrict)
			} else {
				newInst.AliasSet = inst.AliasSet
			}
			b.InsertBefore(call, newInst)
		}
	}

	if haveReturn && call.Dest != 0 {
		substituteValue(b, call.Dest, returnSrc)
	}
	for _, a := range argInsts {
		b.Remove(a)
	}
	b.Remove(call)
}

// substituteValue rewrites every Src1/Src2 reference to old throughout b
// to new — used once the callee's return value's new identity is known,
// since the caller's own later instructions already reference the call's
// original destination by value id.
func substituteValue(b *ir.Builder, old, new_ ir.ValueID) {
	for inst := b.Head; inst != nil; inst = inst.Next {
		if inst.Src1 == old {
			inst.Src1 = new_
		}
		if inst.Src2 == old {
			inst.Src2 = new_
		}
	}
}

func itoa(n int) string {
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
