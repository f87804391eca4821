// Package ir implements the three-address IR (spec §3.6, component G): an
// ordered doubly-linked sequence of instructions belonging to one builder,
// value ids, alias sets, and the value/instruction builder helpers used by
// the semantic/IR builder (package sema) and consumed by the optimizer,
// register allocator, and code emitter.
package ir

// Opcode is the closed set of three-address opcodes, grouped into the
// categories §3.6 names: constants, memory, arithmetic, comparison,
// short-circuit, control, globals.
type Opcode int

const (
	// Constants
	OpConstInt Opcode = iota
	OpConstFloat
	OpConstString // Name holds the string-literal label

	// Memory
	OpLoad
	OpStore
	OpLoadBitfield
	OpStoreBitfield
	OpLoadParam
	OpStoreParam
	OpAddr
	OpLoadPtr
	OpStorePtr
	OpLoadIdx
	OpStoreIdx
	OpAlloca

	// Arithmetic: integer
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
	OpNot
	OpNeg
	OpPtrAdd
	OpPtrDiff
	OpCast // Imm packs (srcKind<<8)|dstKind, per spec §3.6

	// Arithmetic: float / long double (x87) / complex
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpLDAdd
	OpLDSub
	OpLDMul
	OpLDDiv
	OpCAdd
	OpCSub
	OpCMul
	OpCDiv

	// Comparison
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Short-circuit (materialize 0/1)
	OpLogAnd
	OpLogOr

	// Control
	OpBr
	OpBcond
	OpLabel
	OpReturn
	OpCall
	OpCallPtr
	OpArg
	OpFuncBegin
	OpFuncEnd

	// Globals
	OpGlobVar
	OpGlobArray
	OpGlobStruct
	OpGlobUnion
	OpGlobString
)

// ValueID identifies an IR value. 0 means "no value".
type ValueID int

// Inst is a single three-address instruction (§3.6): opcode, destination
// value id (0 if none), up to two source value ids, an immediate, an owned
// name string, an alias-set id, and volatile/restrict flags. Prev/Next
// thread the owning Builder's doubly-linked instruction list.
type Inst struct {
	Op         Opcode
	Dest       ValueID
	Src1, Src2 ValueID
	Imm        int64
	Name       string
	AliasSet   int
	IsVolatile bool
	IsRestrict bool

	Prev, Next *Inst
}

// Builder owns one doubly-linked instruction list plus the monotonic value
// id and label counters for the function (or translation unit, for
// globals) it is building. Appending never invalidates earlier pointers;
// Remove detaches an instruction from the list in place.
type Builder struct {
	Head, Tail *Inst
	Len        int

	nextValue ValueID
	labelSeq  *int // shared across the whole translation unit for determinism
	aliasSeq  int
	aliasOf   map[string]int
}

// NewBuilder creates a builder. labelSeq is a translation-unit-wide counter
// shared by every function's builder, so labels are unique across the
// whole module — necessary for testable property 5 (deterministic,
// byte-identical output across runs on identical input).
func NewBuilder(labelSeq *int) *Builder {
	return &Builder{labelSeq: labelSeq, aliasOf: make(map[string]int)}
}

// NewValue allocates a fresh value id.
func (b *Builder) NewValue() ValueID {
	b.nextValue++
	return b.nextValue
}

// NewLabel mints a globally unique label name from tag (e.g. "L3_true").
func (b *Builder) NewLabel(tag string) string {
	*b.labelSeq++
	return labelName(*b.labelSeq, tag)
}

func labelName(n int, tag string) string {
	return "L" + itoa(n) + "_" + tag
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// AliasSet returns the alias-set id for a named memory access: the same
// name always maps to the same id; a fresh id is allocated for a name seen
// for the first time, or forced fresh when restrict is set (§3.6 — unique
// restrict accesses get fresh ids; optimizations use this to prove
// non-aliasing).
func (b *Builder) AliasSet(name string, restrict bool) int {
	if restrict {
		b.aliasSeq++
		return b.aliasSeq
	}
	if id, ok := b.aliasOf[name]; ok {
		return id
	}
	b.aliasSeq++
	b.aliasOf[name] = b.aliasSeq
	return b.aliasSeq
}

// Append adds inst at the tail of the list and returns it.
func (b *Builder) Append(inst *Inst) *Inst {
	inst.Prev = b.Tail
	inst.Next = nil
	if b.Tail != nil {
		b.Tail.Next = inst
	} else {
		b.Head = inst
	}
	b.Tail = inst
	b.Len++
	return inst
}

// InsertBefore inserts inst immediately before mark.
func (b *Builder) InsertBefore(mark, inst *Inst) {
	inst.Prev = mark.Prev
	inst.Next = mark
	if mark.Prev != nil {
		mark.Prev.Next = inst
	} else {
		b.Head = inst
	}
	mark.Prev = inst
	b.Len++
}

// Remove detaches inst from the list. Its owned strings are simply dropped
// — Go's GC replaces the source's manual "detach and free owned strings"
// step (§5 "removing an instruction detaches it and frees its owned
// strings").
func (b *Builder) Remove(inst *Inst) {
	if inst.Prev != nil {
		inst.Prev.Next = inst.Next
	} else {
		b.Head = inst.Next
	}
	if inst.Next != nil {
		inst.Next.Prev = inst.Prev
	} else {
		b.Tail = inst.Prev
	}
	inst.Prev, inst.Next = nil, nil
	b.Len--
}

// Emit appends a simple op with up to two sources and a destination,
// allocating the destination value id.
func (b *Builder) Emit(op Opcode, src1, src2 ValueID) ValueID {
	dest := b.NewValue()
	b.Append(&Inst{Op: op, Dest: dest, Src1: src1, Src2: src2})
	return dest
}

// EmitNoDest appends an op that produces no value (branches, stores, ...).
func (b *Builder) EmitNoDest(inst *Inst) { b.Append(inst) }

// ConstInt appends an integer constant and returns its destination value.
func (b *Builder) ConstInt(v int64) ValueID {
	dest := b.NewValue()
	b.Append(&Inst{Op: OpConstInt, Dest: dest, Imm: v})
	return dest
}

// ConstFloat appends a float constant (bit-pattern in Imm) and returns its
// destination value.
func (b *Builder) ConstFloat(bits int64) ValueID {
	dest := b.NewValue()
	b.Append(&Inst{Op: OpConstFloat, Dest: dest, Imm: bits})
	return dest
}

// Load appends a named load and returns its destination value.
func (b *Builder) Load(name string, aliasSet int, volatile bool) ValueID {
	dest := b.NewValue()
	b.Append(&Inst{Op: OpLoad, Dest: dest, Name: name, AliasSet: aliasSet, IsVolatile: volatile})
	return dest
}

// Store appends a named store of src.
func (b *Builder) Store(name string, src ValueID, aliasSet int, volatile bool) {
	b.Append(&Inst{Op: OpStore, Src1: src, Name: name, AliasSet: aliasSet, IsVolatile: volatile})
}

// Slice materializes the instruction list as a slice, in list order. Used
// by passes that need random access or a stable snapshot to iterate while
// mutating the underlying list.
func (b *Builder) Slice() []*Inst {
	out := make([]*Inst, 0, b.Len)
	for i := b.Head; i != nil; i = i.Next {
		out = append(out, i)
	}
	return out
}

// Function is one compiled function's IR: name, parameter count, and its
// instruction builder.
type Function struct {
	Name       string
	NumParams  int
	IsVariadic bool
	IsStatic   bool // internal linkage: eligible for dead-function elimination with no in-module caller
	Builder    *Builder
	// Locals lists every parameter and local-variable name declared in
	// this function, in declaration order. The optimizer's inliner uses
	// it to tell a callee's own local names apart from a global or
	// another function's name when it copies the callee's body into a
	// caller (§4.5) — a Name field alone doesn't say which kind it is.
	Locals []string
}

// Global describes a file-scope variable (glob_var/glob_array/glob_struct/
// glob_union) or a deduplicated string literal (glob_string).
type Global struct {
	Name   string
	Kind   Opcode // OpGlobVar, OpGlobArray, OpGlobStruct, OpGlobUnion, OpGlobString
	Size   int
	Data   []byte // initializer bytes, or nil for BSS
	IsZero bool
}

// Module is the whole translation unit's IR: every function plus every
// global, sharing one label counter so labels are unique module-wide.
type Module struct {
	Functions []*Function
	Globals   []Global
	labelSeq  int
}

// NewModule creates an empty module.
func NewModule() *Module { return &Module{} }

// NewFunctionBuilder creates a function-scoped IR builder sharing this
// module's label counter.
func (m *Module) NewFunctionBuilder() *Builder { return NewBuilder(&m.labelSeq) }

// AddFunction appends a compiled function to the module.
func (m *Module) AddFunction(f *Function) { m.Functions = append(m.Functions, f) }

// AddGlobal appends a global to the module.
func (m *Module) AddGlobal(g Global) { m.Globals = append(m.Globals, g) }
