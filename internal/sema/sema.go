// Package sema implements the semantic analyzer and IR builder (spec
// §4.4, component F): it walks the parsed translation unit, registers
// declarations into the symbol tables of package symtab, evaluates
// constant expressions via package consteval, and lowers every function
// body and file-scope initializer into the three-address IR of package
// ir.
package sema

import (
	"github.com/splanck/vc-sub004/internal/ast"
	"github.com/splanck/vc-sub004/internal/consteval"
	"github.com/splanck/vc-sub004/internal/diag"
	"github.com/splanck/vc-sub004/internal/ir"
	"github.com/splanck/vc-sub004/internal/parser"
	"github.com/splanck/vc-sub004/internal/symtab"
)

// Checker holds every table shared across the whole translation unit: the
// emitted IR module, the diagnostic context, and the global (unscoped)
// function and tag tables plus the scoped variable and typedef tables.
// PtrSize fixes the target word size (4 or 32-bit, 8 for 64-bit, §4.6/§8
// property 9).
type Checker struct {
	Module   *ir.Module
	Diag     *diag.Context
	PtrSize  int
	Funcs    *symtab.FuncTable
	Tags     *symtab.TagTable
	Vars     *symtab.VarTable
	Typedefs *symtab.TypedefTable
	Inline   *symtab.InlineEmissionSet

	globalConsts   map[string]int64 // enum constants and `const` scalars with constant initializers
	globalAlias    map[string]int
	globalAliasSeq int
}

// NewChecker creates a checker with fresh, empty symbol tables.
func NewChecker(diagCtx *diag.Context, ptrSize int) *Checker {
	return &Checker{
		Module:       ir.NewModule(),
		Diag:         diagCtx,
		PtrSize:      ptrSize,
		Funcs:        symtab.NewFuncTable(),
		Tags:         symtab.NewTagTable(),
		Vars:         symtab.NewVarTable(),
		Typedefs:     symtab.NewTypedefTable(),
		Inline:       symtab.NewInlineEmissionSet(),
		globalConsts: make(map[string]int64),
	}
}

// evaluator returns a consteval.Evaluator wired to this checker's tables,
// resolving identifiers against the accumulated global-constant map (enum
// members and constant-initialized `const` globals).
func (c *Checker) evaluator() *consteval.Evaluator {
	return &consteval.Evaluator{
		PtrSize: c.PtrSize,
		Tags:    c.Tags,
		LookupConst: func(name string) (int64, bool) {
			v, ok := c.globalConsts[name]
			return v, ok
		},
	}
}

// CheckTranslationUnit registers every top-level declaration, then lowers
// every function definition into the IR module. Registration covers the
// whole file before any body is lowered, so a function may call one that
// is declared or defined anywhere in the same file, above or below it.
func (c *Checker) CheckTranslationUnit(tu *parser.TranslationUnit) *ir.Module {
	for _, item := range tu.Items {
		switch it := item.(type) {
		case parser.TopStructDecl:
			c.registerAggregate(symtab.TagStruct, it.Decl.Tag, it.Decl.Members)
		case parser.TopUnionDecl:
			c.registerAggregate(symtab.TagUnion, it.Decl.Tag, it.Decl.Members)
		case parser.TopEnumDecl:
			c.registerEnum(it.Decl.Tag, it.Decl.Members)
		case parser.TopTypedef:
			c.Typedefs.Declare(it.Decl.Name, &symtab.TypedefSymbol{
				Name: it.Decl.Name, Aliased: it.Decl.Type, ElemSize: it.Decl.Type.Size(c.PtrSize),
			})
		case parser.TopStaticAssert:
			c.checkStaticAssert(it.Decl)
		case parser.TopVarDecl:
			c.CheckGlobal(it.Decl)
		case parser.TopFunction:
			c.registerFuncPrototype(it.Func)
		}
	}

	for _, item := range tu.Items {
		fn, ok := item.(parser.TopFunction)
		if !ok || fn.Func.Body == nil {
			continue
		}
		if irFn := c.CheckFunc(fn.Func); irFn != nil {
			c.Module.AddFunction(irFn)
		}
	}
	return c.Module
}

func (c *Checker) registerFuncPrototype(fn *ast.Function) {
	c.Funcs.Declare(&symtab.FuncSymbol{
		Name: fn.Name, Return: fn.Return, ReturnSize: fn.Return.Size(c.PtrSize),
		Params: fn.Params, IsVariadic: fn.IsVariadic,
		IsPrototypeOnly: fn.Body == nil, IsInline: fn.IsInline,
	})
}

func (c *Checker) checkStaticAssert(s *ast.StaticAssertStmt) {
	v, err := c.evaluator().Eval(s.Cond)
	if err != nil {
		pos := s.Position()
		c.Diag.Report(diag.ConstExpr, pos.Line, pos.Col, "_Static_assert condition is not a constant expression: %s", err.Error())
		return
	}
	if v == 0 {
		pos := s.Position()
		msg := s.Message
		if msg == "" {
			msg = "static assertion failed"
		}
		c.Diag.Report(diag.Semantic, pos.Line, pos.Col, "%s", msg)
	}
}

// registerAggregate computes the layout of a struct/union tag (sequential
// byte offsets for struct, all-zero offsets for union; the declared
// natural alignment of each member; flexible trailing array at size 0) and
// registers it in the global tag table.
func (c *Checker) registerAggregate(kind symtab.TagKind, tagName string, members []ast.AggregateMember) {
	if tagName == "" {
		return // anonymous aggregates without a following declarator register nothing useful
	}
	sym := &symtab.TagSymbol{Name: tagName, Kind: kind, ByName: make(map[string]int)}
	offset := 0
	maxAlign := 1
	bitCursor := 0
	for i, m := range members {
		elemSize := 0
		if m.IsFlexible {
			elemSize = 0
		} else if m.Type != nil {
			elemSize = m.Type.Size(c.PtrSize)
		}
		align := 1
		if m.Type != nil {
			align = m.Type.Align(c.PtrSize)
		}
		if align > maxAlign {
			maxAlign = align
		}

		byteOffset := offset
		bitOffset := 0
		if m.BitWidth > 0 {
			bitOffset = bitCursor
			bitCursor += m.BitWidth
			if bitCursor > elemSize*8 {
				bitCursor = m.BitWidth
				offset += elemSize
			}
		} else {
			bitCursor = 0
			if offset%align != 0 {
				offset += align - offset%align
			}
			byteOffset = offset
		}

		sym.Members = append(sym.Members, symtab.TagMember{
			Name: m.Name, Type: m.Type, ElemSize: elemSize, ByteOffset: byteOffset,
			BitWidth: m.BitWidth, BitOffset: bitOffset, IsFlexible: m.IsFlexible,
		})
		sym.ByName[m.Name] = i

		if kind == symtab.TagUnion {
			if elemSize > sym.Size {
				sym.Size = elemSize
			}
			continue
		}
		if m.BitWidth == 0 {
			offset = byteOffset + elemSize
		}
	}
	if kind != symtab.TagUnion {
		if maxAlign > 0 && offset%maxAlign != 0 {
			offset += maxAlign - offset%maxAlign
		}
		sym.Size = offset
	}
	sym.Align = maxAlign
	c.Tags.Declare(sym)
}

// registerEnum assigns sequential values (restarting after an explicit
// value) and records every member as a global integer constant.
func (c *Checker) registerEnum(tagName string, members []ast.AggregateMember) {
	sym := &symtab.TagSymbol{Name: tagName, Kind: symtab.TagEnum, ByName: make(map[string]int), Size: 4, Align: 4}
	next := int64(0)
	for i, m := range members {
		v := next
		if m.EnumValue != nil {
			if ev, err := c.evaluator().Eval(m.EnumValue); err == nil {
				v = ev
			}
		}
		next = v + 1
		c.globalConsts[m.Name] = v
		sym.Members = append(sym.Members, symtab.TagMember{Name: m.Name, Type: ast.Basic(ast.Int), EnumValue: v})
		sym.ByName[m.Name] = i
	}
	if tagName != "" {
		c.Tags.Declare(sym)
	}
}
