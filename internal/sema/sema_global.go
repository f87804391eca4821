package sema

import (
	"math"

	"github.com/splanck/vc-sub004/internal/ast"
	"github.com/splanck/vc-sub004/internal/diag"
	"github.com/splanck/vc-sub004/internal/ir"
	"github.com/splanck/vc-sub004/internal/symtab"
)

// CheckGlobal registers a file-scope variable declaration and, for a
// non-extern `const` one with a constant scalar initializer, folds it into the global-constant
// map (so later `const` array bounds, bit-field widths, and enum values
// may reference it) plus appends the corresponding ir.Global (§4.4).
func (c *Checker) CheckGlobal(decl *ast.VarDecl) {
	sym := &symtab.VarSymbol{
		Name: decl.Name, Type: decl.Type, Storage: decl.Storage, IsGlobal: true,
		AliasSet: c.nextAliasHint(decl.Name),
	}
	if decl.Init != nil {
		if v, err := c.evaluator().Eval(decl.Init); err == nil {
			sym.IsConst = true
			sym.ConstValue = v
			sym.HasConst = true
			if decl.Storage != ast.StorageExtern && decl.Type.IsConst {
				c.globalConsts[decl.Name] = v
			}
		}
	}
	c.Vars.Declare(decl.Name, sym)

	if decl.Storage == ast.StorageExtern {
		return // no storage emitted for an external declaration
	}

	g := ir.Global{Name: decl.Name, Size: decl.Type.Size(c.PtrSize)}
	switch decl.Type.Kind {
	case ast.Struct:
		g.Kind = ir.OpGlobStruct
	case ast.Union:
		g.Kind = ir.OpGlobUnion
	case ast.Array:
		g.Kind = ir.OpGlobArray
	default:
		g.Kind = ir.OpGlobVar
	}
	if decl.Init == nil && decl.InitItems == nil {
		g.IsZero = true
	} else if decl.Init != nil {
		g.Data = encodeScalarInit(decl.Init, decl.Type, c)
	}
	c.Module.AddGlobal(g)
}

// nextAliasHint allocates a stable alias-set id for a global name,
// independent of any one function's IR builder (globals are visible, and
// thus aliasable, from every function).
func (c *Checker) nextAliasHint(name string) int {
	if c.globalAlias == nil {
		c.globalAlias = make(map[string]int)
	}
	if id, ok := c.globalAlias[name]; ok {
		return id
	}
	c.globalAliasSeq++
	c.globalAlias[name] = c.globalAliasSeq
	return c.globalAliasSeq
}

// encodeScalarInit folds a constant scalar initializer to its little-endian
// byte representation for emission into the global's data section.
// Non-constant initializers (string literals aside) fall back to a
// zero-filled global; the emitter then relies on a runtime store sequence
// — out of scope for a file-scope initializer, so such cases are flagged.
func encodeScalarInit(e ast.Expr, t *ast.Type, c *Checker) []byte {
	sz := t.Size(c.PtrSize)
	if sz <= 0 || sz > 8 {
		return nil
	}
	if t.Kind.IsFloat() {
		if lit, ok := e.(*ast.Literal); ok && lit.LitKind == ast.LitFloat {
			return floatBytes(lit.FloatVal, sz)
		}
		return nil
	}
	v, err := c.evaluator().Eval(e)
	if err != nil {
		pos := e.Position()
		c.Diag.Report(diag.Semantic, pos.Line, pos.Col, "file-scope initializer is not a constant expression")
		return nil
	}
	out := make([]byte, sz)
	u := uint64(v)
	for i := 0; i < sz; i++ {
		out[i] = byte(u >> (8 * i))
	}
	return out
}

func floatBytes(v float64, sz int) []byte {
	if sz == 4 {
		bits := math.Float32bits(float32(v))
		return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
	}
	bits := math.Float64bits(v)
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(bits >> (8 * i))
	}
	return out
}
