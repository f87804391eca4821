// Package llvmemit implements the `--emit-llvm` secondary backend (spec
// SPEC_FULL.md DOMAIN STACK): walks the same optimized IR the x86 emitter
// (package emitter) consumes and appends instructions to an
// github.com/llir/llvm module instead of assembly text, so the same
// front end can target LLVM IR without a second parser/semantic pass.
package llvmemit

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	vcir "github.com/splanck/vc-sub004/internal/ir"
)

// Emitter owns one llir/llvm module plus the per-function state needed
// to translate vc's three-address IR into llir instructions: the active
// basic block, a map from vc value ids to the llir values that compute
// them, and a map from vc names (locals, globals) to the alloca/global
// that stores them.
type Emitter struct {
	Module *ir.Module

	block   *ir.Block
	values  map[vcir.ValueID]value.Value
	allocas map[string]value.Value
	labels  map[string]*ir.Block
	fn      *ir.Func
}

// New creates an emitter around a fresh llir module named for the
// translation unit's source file.
func New(sourceFile string) *Emitter {
	m := ir.NewModule()
	m.SourceFilename = sourceFile
	return &Emitter{Module: m}
}

// wordType picks the integer type used for vc's plain `int`/pointer
// arithmetic; llir has no notion of a target word size of its own, so
// this emitter always lowers to 64-bit IR, whether -m32 or -m64 was given.
var wordType = types.I64

// EmitModule translates every global and function of m into e.Module.
func (e *Emitter) EmitModule(m *vcir.Module) {
	e.allocas = make(map[string]value.Value)
	for _, g := range m.Globals {
		e.emitGlobal(g)
	}
	funcs := make(map[string]*ir.Func, len(m.Functions))
	for _, f := range m.Functions {
		funcs[f.Name] = e.declareFunc(f)
	}
	for _, f := range m.Functions {
		e.emitFunc(f, funcs)
	}
}

func (e *Emitter) emitGlobal(g vcir.Global) {
	switch g.Kind {
	case vcir.OpGlobString:
		bytes := append([]byte(nil), g.Data...)
		bytes = append(bytes, 0)
		arr := constant.NewCharArrayFromString(string(bytes))
		gv := e.Module.NewGlobalDef(g.Name, arr)
		gv.Immutable = true
		e.allocas[g.Name] = gv
	default:
		var init constant.Constant
		if g.IsZero || len(g.Data) == 0 {
			init = constant.NewZeroInitializer(types.NewArray(uint64(g.Size), types.I8))
		} else {
			init = constant.NewCharArrayFromString(string(g.Data))
		}
		gv := e.Module.NewGlobalDef(g.Name, init)
		e.allocas[g.Name] = gv
	}
}

func (e *Emitter) declareFunc(f *vcir.Function) *ir.Func {
	var params []*ir.Param
	for i := 0; i < f.NumParams; i++ {
		params = append(params, ir.NewParam("", wordType))
	}
	fn := e.Module.NewFunc(f.Name, wordType, params...)
	if f.IsStatic {
		fn.Linkage = enum.LinkageInternal
	}
	return fn
}

func (e *Emitter) emitFunc(f *vcir.Function, funcs map[string]*ir.Func) {
	fn := funcs[f.Name]
	e.fn = fn
	entry := fn.NewBlock("entry")
	e.block = entry
	e.values = make(map[vcir.ValueID]value.Value)
	e.labels = make(map[string]*ir.Block)

	for _, name := range f.Locals {
		alloca := entry.NewAlloca(wordType)
		alloca.SetName(name + ".addr")
		e.allocas[f.Name+"."+name] = alloca
	}

	paramIdx := 0
	for inst := f.Builder.Head; inst != nil; inst = inst.Next {
		if inst.Op == vcir.OpLoadParam {
			if paramIdx < len(fn.Params) {
				slot := e.localSlot(f.Name, inst.Name)
				entry.NewStore(fn.Params[paramIdx], slot)
			}
			paramIdx++
		}
	}

	for inst := f.Builder.Head; inst != nil; inst = inst.Next {
		e.emitInst(f, inst)
	}

	if e.block.Term == nil {
		e.block.NewRet(constant.NewInt(wordType, 0))
	}
}

// localSlot resolves a name to its alloca, scoped per function so two
// functions' same-named locals never collide in the shared map.
func (e *Emitter) localSlot(funcName, name string) value.Value {
	return e.allocas[funcName+"."+name]
}

func (e *Emitter) blockFor(label string) *ir.Block {
	if b, ok := e.labels[label]; ok {
		return b
	}
	b := e.fn.NewBlock(label)
	e.labels[label] = b
	return b
}
