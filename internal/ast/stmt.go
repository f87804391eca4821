package ast

// Stmt is the sum type of C statement variants (§3.3).
type Stmt interface {
	stmtNode()
	Position() Pos
	Clone() Stmt
}

// StmtBase carries the source position every statement node has (§3.3).
// It is exported so constructors outside this package can build literal
// node values: ast.ExprStmt{StmtBase: ast.StmtBase{Pos: p}, ...}.
type StmtBase struct{ Pos Pos }

func (s StmtBase) Position() Pos { return s.Pos }
func (StmtBase) stmtNode()       {}

// ExprStmt is a bare expression used as a statement.
type ExprStmt struct {
	StmtBase
	X Expr
}

func (s *ExprStmt) Clone() Stmt { c := *s; c.X = cloneExpr(s.X); return &c }

// ReturnStmt is `return [expr];`.
type ReturnStmt struct {
	StmtBase
	X Expr // nil for bare `return;`
}

func (s *ReturnStmt) Clone() Stmt { c := *s; c.X = cloneExpr(s.X); return &c }

// StorageClass flags a declaration's storage class (§3.3).
type StorageClass int

const (
	StorageAuto StorageClass = iota
	StorageStatic
	StorageExtern
	StorageRegister
)

// VarDecl is a variable declaration: storage class, qualifiers, optional
// scalar initializer OR designated-initializer list, optional explicit
// _Alignas expression, array-size expression (possibly runtime, for
// VLA-style arrays), and — when the declarator is a function pointer —
// return type, parameter types, variadic flag.
type VarDecl struct {
	StmtBase
	Name       string
	Type       *Type
	Storage    StorageClass
	IsInline   bool
	ArraySize  Expr // non-constant for a VLA-style declarator; nil if not an array
	AlignAs    Expr // explicit _Alignas(expr), or nil

	Init      Expr       // scalar initializer, or nil
	InitItems []InitItem // initializer list, or nil

	// Function-pointer declarator support.
	IsFuncPtr    bool
	FuncReturn   *Type
	FuncParams   []*Type
	FuncVariadic bool
}

func (s *VarDecl) Clone() Stmt {
	c := *s
	c.Type = s.Type.Clone()
	c.ArraySize = cloneExpr(s.ArraySize)
	c.AlignAs = cloneExpr(s.AlignAs)
	c.Init = cloneExpr(s.Init)
	c.InitItems = cloneInitItems(s.InitItems)
	c.FuncReturn = s.FuncReturn.Clone()
	if s.FuncParams != nil {
		c.FuncParams = make([]*Type, len(s.FuncParams))
		for i, p := range s.FuncParams {
			c.FuncParams[i] = p.Clone()
		}
	}
	return &c
}

// IfStmt is `if (Cond) Then [else Else]`.
type IfStmt struct {
	StmtBase
	Cond       Expr
	Then, Else Stmt
}

func (s *IfStmt) Clone() Stmt {
	c := *s
	c.Cond = cloneExpr(s.Cond)
	c.Then = cloneStmt(s.Then)
	c.Else = cloneStmt(s.Else)
	return &c
}

// WhileStmt is `while (Cond) Body`.
type WhileStmt struct {
	StmtBase
	Cond Expr
	Body Stmt
}

func (s *WhileStmt) Clone() Stmt {
	c := *s
	c.Cond = cloneExpr(s.Cond)
	c.Body = cloneStmt(s.Body)
	return &c
}

// DoWhileStmt is `do Body while (Cond);`.
type DoWhileStmt struct {
	StmtBase
	Body Stmt
	Cond Expr
}

func (s *DoWhileStmt) Clone() Stmt {
	c := *s
	c.Body = cloneStmt(s.Body)
	c.Cond = cloneExpr(s.Cond)
	return &c
}

// ForStmt is `for (Init; Cond; Post) Body`. Init may be a VarDecl
// (opening its own scope, §4.4) or an ExprStmt; any may be nil.
type ForStmt struct {
	StmtBase
	Init       Stmt
	Cond, Post Expr
	Body       Stmt
}

func (s *ForStmt) Clone() Stmt {
	c := *s
	c.Init = cloneStmt(s.Init)
	c.Cond = cloneExpr(s.Cond)
	c.Post = cloneExpr(s.Post)
	c.Body = cloneStmt(s.Body)
	return &c
}

// SwitchCase is one `case Value:` arm, or the default arm when Value == nil.
type SwitchCase struct {
	Value Expr // nil for default
	Body  []Stmt
}

// SwitchStmt is `switch (Tag) { cases... }`.
type SwitchStmt struct {
	StmtBase
	Tag   Expr
	Cases []SwitchCase
}

func (s *SwitchStmt) Clone() Stmt {
	c := *s
	c.Tag = cloneExpr(s.Tag)
	c.Cases = make([]SwitchCase, len(s.Cases))
	for i, cs := range s.Cases {
		body := make([]Stmt, len(cs.Body))
		for j, st := range cs.Body {
			body[j] = cloneStmt(st)
		}
		c.Cases[i] = SwitchCase{Value: cloneExpr(cs.Value), Body: body}
	}
	return &c
}

// BreakStmt is `break;`.
type BreakStmt struct{ StmtBase }

func (s *BreakStmt) Clone() Stmt { c := *s; return &c }

// ContinueStmt is `continue;`.
type ContinueStmt struct{ StmtBase }

func (s *ContinueStmt) Clone() Stmt { c := *s; return &c }

// LabelStmt is `name: Stmt`.
type LabelStmt struct {
	StmtBase
	Name string
	Stmt Stmt
}

func (s *LabelStmt) Clone() Stmt { c := *s; c.Stmt = cloneStmt(s.Stmt); return &c }

// GotoStmt is `goto name;`.
type GotoStmt struct {
	StmtBase
	Name string
}

func (s *GotoStmt) Clone() Stmt { c := *s; return &c }

// StaticAssertStmt is `_Static_assert(Cond, Message);`.
type StaticAssertStmt struct {
	StmtBase
	Cond    Expr
	Message string
}

func (s *StaticAssertStmt) Clone() Stmt { c := *s; c.Cond = cloneExpr(s.Cond); return &c }

// TypedefStmt registers Name as an alias for Type; emits no IR.
type TypedefStmt struct {
	StmtBase
	Name string
	Type *Type
}

func (s *TypedefStmt) Clone() Stmt { c := *s; c.Type = s.Type.Clone(); return &c }

// AggregateMember is one member of a struct/union tag, or one enumerator of
// an enum tag.
type AggregateMember struct {
	Name      string
	Type      *Type
	BitWidth  int // 0 if not a bit-field
	IsFlexible bool // flexible array member (must be last, size 0)
	EnumValue  Expr // for enum members: explicit value expression, or nil
}

// StructDecl registers a struct tag; emits no IR.
type StructDecl struct {
	StmtBase
	Tag     string
	Members []AggregateMember
}

func (s *StructDecl) Clone() Stmt { c := *s; c.Members = cloneMembers(s.Members); return &c }

// UnionDecl registers a union tag; emits no IR.
type UnionDecl struct {
	StmtBase
	Tag     string
	Members []AggregateMember
}

func (s *UnionDecl) Clone() Stmt { c := *s; c.Members = cloneMembers(s.Members); return &c }

// EnumDecl registers an enum tag and its constant members; emits no IR.
type EnumDecl struct {
	StmtBase
	Tag     string
	Members []AggregateMember
}

func (s *EnumDecl) Clone() Stmt { c := *s; c.Members = cloneMembers(s.Members); return &c }

func cloneMembers(ms []AggregateMember) []AggregateMember {
	if ms == nil {
		return nil
	}
	out := make([]AggregateMember, len(ms))
	for i, m := range ms {
		out[i] = AggregateMember{Name: m.Name, Type: m.Type.Clone(), BitWidth: m.BitWidth, IsFlexible: m.IsFlexible, EnumValue: cloneExpr(m.EnumValue)}
	}
	return out
}

// BlockStmt is an owned sequence of statements (`{ ... }`).
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

func (s *BlockStmt) Clone() Stmt {
	c := *s
	c.Stmts = make([]Stmt, len(s.Stmts))
	for i, st := range s.Stmts {
		c.Stmts[i] = cloneStmt(st)
	}
	return &c
}

func cloneStmt(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	return s.Clone()
}

// Param is one function parameter.
type Param struct {
	Name     string
	Type     *Type
	Tag      string // aggregate tag, if Type is Struct/Union
	ElemSize int
	Restrict bool
}

// Function is a top-level function: name, return type (and tag for
// aggregate returns), parameter vector, variadic flag, owned body, and the
// inline/noreturn flags (§3.4).
type Function struct {
	Name       string
	Return     *Type
	ReturnTag  string
	Params     []Param
	IsVariadic bool
	Body       *BlockStmt // nil for a prototype-only declaration
	IsInline   bool
	IsNoreturn bool
	IsStatic   bool
	Pos        Pos
}

// Clone returns a disjoint deep copy of the function.
func (f *Function) Clone() *Function {
	if f == nil {
		return nil
	}
	c := *f
	c.Return = f.Return.Clone()
	c.Params = make([]Param, len(f.Params))
	for i, p := range f.Params {
		c.Params[i] = Param{Name: p.Name, Type: p.Type.Clone(), Tag: p.Tag, ElemSize: p.ElemSize, Restrict: p.Restrict}
	}
	if f.Body != nil {
		c.Body = f.Body.Clone().(*BlockStmt)
	}
	return &c
}
