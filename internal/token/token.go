// Package token defines the token stream that the core compiler consumes.
//
// The preprocessor and lexer are external collaborators (see spec §1, §6):
// this package only fixes the wire shape of a token record, the closed set
// of kinds the parser switches on, and a small standalone tokenizer good
// enough to drive the pipeline end to end in tests. It does not expand
// macros, follow #include, or care about conditional compilation — those
// stay on the other side of the boundary.
package token

import "fmt"

// Kind is the closed set of token kinds the parser recognizes.
type Kind int

const (
	EOF Kind = iota
	IDENT
	INT_LIT
	FLOAT_LIT
	STRING_LIT
	WSTRING_LIT
	CHAR_LIT
	WCHAR_LIT

	// Keywords
	KW_VOID
	KW_BOOL
	KW_CHAR
	KW_SHORT
	KW_INT
	KW_LONG
	KW_FLOAT
	KW_DOUBLE
	KW_SIGNED
	KW_UNSIGNED
	KW_STRUCT
	KW_UNION
	KW_ENUM
	KW_TYPEDEF
	KW_STATIC
	KW_EXTERN
	KW_REGISTER
	KW_INLINE
	KW_CONST
	KW_VOLATILE
	KW_RESTRICT
	KW_NORETURN
	KW_ALIGNAS
	KW_ALIGNOF
	KW_SIZEOF
	KW_OFFSETOF // extension: parser treats as builtin macro-like call
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_DO
	KW_FOR
	KW_SWITCH
	KW_CASE
	KW_DEFAULT
	KW_BREAK
	KW_CONTINUE
	KW_RETURN
	KW_GOTO
	KW_STATIC_ASSERT
	KW_COMPLEX

	// Operators / punctuators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	AMP
	PIPE
	CARET
	TILDE
	BANG
	LT
	GT
	LE
	GE
	EQ
	NE
	ANDAND
	OROR
	SHL
	SHR
	ASSIGN
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN
	AMP_ASSIGN
	PIPE_ASSIGN
	CARET_ASSIGN
	SHL_ASSIGN
	SHR_ASSIGN
	INC
	DEC
	QUESTION
	COLON
	SEMI
	COMMA
	DOT
	ARROW
	ELLIPSIS
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACK
	RBRACK
)

var keywords = map[string]Kind{
	"void": KW_VOID, "_Bool": KW_BOOL, "char": KW_CHAR, "short": KW_SHORT,
	"int": KW_INT, "long": KW_LONG, "float": KW_FLOAT, "double": KW_DOUBLE,
	"signed": KW_SIGNED, "unsigned": KW_UNSIGNED, "struct": KW_STRUCT,
	"union": KW_UNION, "enum": KW_ENUM, "typedef": KW_TYPEDEF,
	"static": KW_STATIC, "extern": KW_EXTERN, "register": KW_REGISTER,
	"inline": KW_INLINE, "const": KW_CONST, "volatile": KW_VOLATILE,
	"restrict": KW_RESTRICT, "_Noreturn": KW_NORETURN, "_Alignas": KW_ALIGNAS,
	"_Alignof": KW_ALIGNOF, "sizeof": KW_SIZEOF, "__builtin_offsetof": KW_OFFSETOF,
	"offsetof": KW_OFFSETOF, "if": KW_IF, "else": KW_ELSE, "while": KW_WHILE,
	"do": KW_DO, "for": KW_FOR, "switch": KW_SWITCH, "case": KW_CASE,
	"default": KW_DEFAULT, "break": KW_BREAK, "continue": KW_CONTINUE,
	"return": KW_RETURN, "goto": KW_GOTO, "_Static_assert": KW_STATIC_ASSERT,
	"_Complex": KW_COMPLEX,
}

var names = map[Kind]string{
	EOF: "EOF", IDENT: "identifier", INT_LIT: "integer literal",
	FLOAT_LIT: "float literal", STRING_LIT: "string literal",
	CHAR_LIT: "char literal", LPAREN: "(", RPAREN: ")", LBRACE: "{",
	RBRACE: "}", LBRACK: "[", RBRACK: "]", SEMI: ";", COMMA: ",",
}

// String renders a Kind for diagnostics.
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is one record of the stream the parser consumes: (kind, lexeme,
// line, column). Comments and whitespace have already been stripped.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Col    int
}

func (t Token) String() string {
	if t.Lexeme != "" {
		return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Lexeme, t.Line, t.Col)
	}
	return fmt.Sprintf("%s@%d:%d", t.Kind, t.Line, t.Col)
}

// Lookup classifies an identifier lexeme as a keyword kind, or IDENT.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return IDENT
}
