// Package diag implements the diagnostic context (spec §3, component A):
// line/column-anchored error capture and printing, shared by every stage of
// the pipeline. It is modeled on the SentraError/SourceLocation shape used
// elsewhere in this codebase's scripting-language sibling, narrowed to the
// error kinds §7 enumerates for a C compiler.
package diag

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// Kind is the closed set of error kinds from spec §7.
type Kind string

const (
	OutOfMemory      Kind = "out-of-memory"
	Syntax           Kind = "syntax"
	Type             Kind = "type"
	NameResolution   Kind = "name-resolution"
	ConstExpr        Kind = "const-expr"
	Semantic         Kind = "semantic"
	Internal         Kind = "internal"
)

// Location is a source position: (file, function, line, column).
type Location struct {
	File     string
	Function string
	Line     int
	Column   int
}

// Error is a single diagnostic. Kinds other than Internal carry no stack
// trace — the (file, function, line, column) tuple already pinpoints the
// failure, per §7 ("every failure reaches the user exactly once").
type Error struct {
	Kind     Kind
	Message  string
	Loc      Location
	Source   string // the offending source line, if known
	cause    error  // non-nil for Internal: wrapped with a stack trace
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s error: %s", e.Loc.File, e.Loc.Line, e.Loc.Column, e.Kind, e.Message)
}

// Unwrap exposes the pkg/errors-wrapped cause for errors.As/errors.Is.
func (e *Error) Unwrap() error { return e.cause }

// Context is the process-wide diagnostic context (§5): it holds the
// current file and function name for the next diagnostic, and a session id
// used only for -debug tracing, never for emitted output (testable
// property 5 — two runs on identical input must be byte-identical).
type Context struct {
	File      string
	Function  string
	Session   uuid.UUID
	Errors    []*Error
	Colorized bool
}

// NewContext creates a diagnostic context for one compiler invocation.
// Colorization is auto-detected from stderr via isatty and can be
// overridden (e.g. disabled under -M/-MD, which must emit only
// make-parseable text).
func NewContext() *Context {
	return &Context{
		Session:   uuid.New(),
		Colorized: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

// Enter sets the file/function the next diagnostic is attributed to.
func (c *Context) Enter(file, function string) {
	c.File = file
	c.Function = function
}

// Report records a non-internal diagnostic at (line, col) and returns it.
// The caller is expected to abandon the current top-level entity (§7): no
// recovery is attempted within an expression or statement.
func (c *Context) Report(kind Kind, line, col int, format string, args ...interface{}) *Error {
	e := &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Loc:     Location{File: c.File, Function: c.Function, Line: line, Column: col},
	}
	c.Errors = append(c.Errors, e)
	return e
}

// ReportAt is Report with no enclosing function context, used by the
// constant evaluator and other routines that run detached from a
// particular function body.
func (c *Context) ReportAt(kind Kind, loc Location, format string, args ...interface{}) *Error {
	e := &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Loc: loc}
	c.Errors = append(c.Errors, e)
	return e
}

// Internal records an internal-invariant violation (unreachable IR opcode,
// allocator invariant failure, ...). The cause is wrapped with
// github.com/pkg/errors so the recorded error carries a stack trace
// pointing at the violated invariant.
func (c *Context) Internal(line, col int, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	e := &Error{
		Kind:    Internal,
		Message: msg,
		Loc:     Location{File: c.File, Function: c.Function, Line: line, Column: col},
		cause:   errors.WithStack(fmt.Errorf("%s", msg)),
	}
	c.Errors = append(c.Errors, e)
	return e
}

// OOM records the fatal out-of-memory diagnostic. Per §7, out-of-memory
// anywhere is fatal: the caller is expected to release partial allocations
// and exit; in Go this reduces to propagating the error up to main, since
// the runtime — not vc — owns allocation failure.
func (c *Context) OOM() *Error {
	e := &Error{Kind: OutOfMemory, Message: "out of memory", cause: errors.WithStack(fmt.Errorf("allocation failed"))}
	c.Errors = append(c.Errors, e)
	return e
}

// HasErrors reports whether any diagnostic has been recorded.
func (c *Context) HasErrors() bool { return len(c.Errors) > 0 }

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorReset  = "\x1b[0m"
)

// Print writes every recorded diagnostic to w, colorized when the context
// was created against a terminal.
func (c *Context) Print(w *os.File) {
	for _, e := range c.Errors {
		c.printOne(w, e)
	}
}

func (c *Context) printOne(w *os.File, e *Error) {
	label := string(e.Kind)
	if c.Colorized {
		color := colorRed
		if e.Kind == Semantic || e.Kind == Type {
			color = colorYellow
		}
		label = color + label + colorReset
	}
	fmt.Fprintf(w, "%s:%d:%d: %s error: %s\n", e.Loc.File, e.Loc.Line, e.Loc.Column, label, e.Message)
	if e.Source != "" {
		fmt.Fprintf(w, "  %s\n", e.Source)
		if e.Loc.Column > 0 {
			fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", e.Loc.Column-1))
		}
	}
	if e.cause != nil {
		if st, ok := e.cause.(interface{ StackTrace() errors.StackTrace }); ok {
			fmt.Fprintf(w, "%+v\n", st.StackTrace())
		}
	}
}
