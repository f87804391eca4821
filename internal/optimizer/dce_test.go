package optimizer

import (
	"testing"

	"github.com/splanck/vc-sub004/internal/ir"
)

func newFunc(m *ir.Module, name string, static bool) *ir.Function {
	b := m.NewFunctionBuilder()
	return &ir.Function{Name: name, IsStatic: static, Builder: b}
}

func TestEliminateDeadFunctionsKeepsReachable(t *testing.T) {
	m := ir.NewModule()
	main := newFunc(m, "main", false)
	helper := newFunc(m, "helper", true)
	unused := newFunc(m, "unused", true)
	main.Builder.Append(&ir.Inst{Op: ir.OpCall, Name: "helper"})
	m.AddFunction(main)
	m.AddFunction(helper)
	m.AddFunction(unused)

	EliminateDeadFunctions(m)

	names := map[string]bool{}
	for _, f := range m.Functions {
		names[f.Name] = true
	}
	if !names["main"] || !names["helper"] {
		t.Fatalf("reachable functions removed: %v", names)
	}
	if names["unused"] {
		t.Fatalf("unreachable static function %q survived dead-function elimination", "unused")
	}
}

func TestEliminateDeadFunctionsKeepsNonStaticWithNoCaller(t *testing.T) {
	m := ir.NewModule()
	main := newFunc(m, "main", false)
	exported := newFunc(m, "exported", false) // no static keyword: external linkage
	m.AddFunction(main)
	m.AddFunction(exported)

	EliminateDeadFunctions(m)

	names := map[string]bool{}
	for _, f := range m.Functions {
		names[f.Name] = true
	}
	if !names["exported"] {
		t.Fatalf("non-static function with no in-module caller was removed; it may be called from another translation unit")
	}
}

func TestEliminateDeadFunctionsFollowsAddrTaken(t *testing.T) {
	m := ir.NewModule()
	main := newFunc(m, "main", false)
	callback := newFunc(m, "callback", true)
	dest := main.Builder.NewValue()
	main.Builder.Append(&ir.Inst{Op: ir.OpAddr, Dest: dest, Name: "callback"})
	m.AddFunction(main)
	m.AddFunction(callback)

	EliminateDeadFunctions(m)

	for _, f := range m.Functions {
		if f.Name == "callback" {
			return
		}
	}
	t.Fatalf("function whose address was taken (via OpAddr) was removed as dead")
}
