package ast

// Pos is a (line, column) source position carried by every node (§3.2).
type Pos struct {
	Line int
	Col  int
}

// Expr is the sum type of C expression variants (§3.2). Every concrete
// type below owns its children exclusively.
type Expr interface {
	exprNode()
	Position() Pos
	Clone() Expr
}

// ExprBase carries the source position every expression node has (§3.2).
// It is exported so constructors outside this package can build literal
// node values: ast.Literal{ExprBase: ast.ExprBase{Pos: p}, ...}.
type ExprBase struct{ Pos Pos }

func (e ExprBase) Position() Pos { return e.Pos }
func (ExprBase) exprNode()       {}

// LitKind distinguishes Literal's payload shape.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitWString
	LitChar
	LitWChar
	LitComplex
)

// Literal covers integer (with unsigned/long-count suffix), float,
// string/wchar string, char/wide char, and complex literals.
type Literal struct {
	ExprBase
	LitKind  LitKind
	IntVal   int64
	IsUnsigned bool
	LongCount  int // 0, 1 ("L"), or 2 ("LL")
	FloatVal float64
	StrVal   string
}

func (l *Literal) Clone() Expr { c := *l; return &c }

// Ident is an identifier reference (variable, function, or enum constant).
type Ident struct {
	ExprBase
	Name string
}

func (i *Ident) Clone() Expr { c := *i; return &c }

// Unary covers prefix operators: ++, --, *, &, -, !, ~, and postfix ++/--
// (distinguished by Postfix).
type Unary struct {
	ExprBase
	Op      string
	X       Expr
	Postfix bool
}

func (u *Unary) Clone() Expr {
	c := *u
	c.X = cloneExpr(u.X)
	return &c
}

// Binary is a left-associative binary operator application.
type Binary struct {
	ExprBase
	Op   string
	X, Y Expr
}

func (b *Binary) Clone() Expr {
	c := *b
	c.X = cloneExpr(b.X)
	c.Y = cloneExpr(b.Y)
	return &c
}

// Ternary is the `cond ? then : els` conditional operator.
type Ternary struct {
	ExprBase
	Cond, Then, Else Expr
}

func (t *Ternary) Clone() Expr {
	c := *t
	c.Cond = cloneExpr(t.Cond)
	c.Then = cloneExpr(t.Then)
	c.Else = cloneExpr(t.Else)
	return &c
}

// AssignTargetKind distinguishes what kind of lvalue an Assign writes to.
type AssignTargetKind int

const (
	AssignName AssignTargetKind = iota
	AssignIndex
	AssignMember
)

// Assign is `target = value`. Compound assignment has already been
// desugared by the parser into `target = target ⊕ rhs` by cloning Target
// (§4.2), so Value holds the combined expression; the original operator
// is kept in SourceOp for diagnostics.
type Assign struct {
	ExprBase
	TargetKind AssignTargetKind
	Target     Expr // Ident, Index, Member, or a prefix `*` Unary
	Value      Expr
	SourceOp   string
}

func (a *Assign) Clone() Expr {
	c := *a
	c.Target = cloneExpr(a.Target)
	c.Value = cloneExpr(a.Value)
	return &c
}

// Index is `base[idx]`.
type Index struct {
	ExprBase
	Base, Idx Expr
}

func (i *Index) Clone() Expr {
	c := *i
	c.Base = cloneExpr(i.Base)
	c.Idx = cloneExpr(i.Idx)
	return &c
}

// Member is `base.Field` or, when Arrow, `base->Field`.
type Member struct {
	ExprBase
	Base  Expr
	Field string
	Arrow bool
}

func (m *Member) Clone() Expr {
	c := *m
	c.Base = cloneExpr(m.Base)
	return &c
}

// Call is a call by name (function pointers are called through an Ident
// holding the pointer variable's name, resolved at lowering time).
type Call struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

func (c *Call) Clone() Expr {
	n := *c
	n.Callee = cloneExpr(c.Callee)
	n.Args = make([]Expr, len(c.Args))
	for i, a := range c.Args {
		n.Args[i] = cloneExpr(a)
	}
	return &n
}

// Cast is `(Type)X`.
type Cast struct {
	ExprBase
	Type *Type
	X    Expr
}

func (c *Cast) Clone() Expr {
	n := *c
	n.Type = c.Type.Clone()
	n.X = cloneExpr(c.X)
	return &n
}

// SizeofExpr is `sizeof expr` (operand type is evaluated, not the value).
type SizeofExpr struct {
	ExprBase
	X Expr
}

func (s *SizeofExpr) Clone() Expr { c := *s; c.X = cloneExpr(s.X); return &c }

// SizeofType is `sizeof(Type)`.
type SizeofType struct {
	ExprBase
	Type *Type
}

func (s *SizeofType) Clone() Expr { c := *s; c.Type = s.Type.Clone(); return &c }

// AlignofExpr is `_Alignof expr` (or `_Alignof(Type)` when Type != nil).
type AlignofExpr struct {
	ExprBase
	Type *Type
	X    Expr
}

func (a *AlignofExpr) Clone() Expr {
	c := *a
	c.Type = a.Type.Clone()
	c.X = cloneExpr(a.X)
	return &c
}

// Offsetof is `offsetof(Tag, member.path)`.
type Offsetof struct {
	ExprBase
	TagName string
	Path    []string
}

func (o *Offsetof) Clone() Expr {
	c := *o
	c.Path = append([]string(nil), o.Path...)
	return &c
}

// CompoundLiteral is `(Type){ init-list }`.
type CompoundLiteral struct {
	ExprBase
	Type  *Type
	Items []InitItem
}

func (c *CompoundLiteral) Clone() Expr {
	n := *c
	n.Type = c.Type.Clone()
	n.Items = cloneInitItems(c.Items)
	return &n
}

// InitDesignator distinguishes a plain initializer entry from a
// field- or index-designated one (§3.3, designated initializers; these may
// nest by appearing in sub-lists).
type InitDesignator int

const (
	InitSimple InitDesignator = iota
	InitField
	InitIndex
)

// InitItem is one entry of an initializer list.
type InitItem struct {
	Kind  InitDesignator
	Field string // for InitField
	Index Expr   // for InitIndex
	Value Expr   // simple value, or nil when Nested is set
	Nested []InitItem // for brace-nested sub-lists
}

func cloneInitItems(items []InitItem) []InitItem {
	if items == nil {
		return nil
	}
	out := make([]InitItem, len(items))
	for i, it := range items {
		out[i] = InitItem{Kind: it.Kind, Field: it.Field, Index: cloneExpr(it.Index), Value: cloneExpr(it.Value), Nested: cloneInitItems(it.Nested)}
	}
	return out
}

func cloneExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	return e.Clone()
}
