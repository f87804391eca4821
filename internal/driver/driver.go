// Package driver implements the CLI front end (spec §6 EXTERNAL
// INTERFACES): argument parsing, `_VCFLAGS` splicing, and orchestration
// of the pipeline tokens → parser → sema → optimizer → (emitter |
// llvmemit) → output file, one invocation per source path. Argument
// parsing follows std/compiler/main.go's style: a hand-rolled loop over
// os.Args rather than the `flag` package, since the accepted flags
// (`-S att|intel`, `-m32`/`-m64` target selection, `--no-*` toggles) don't
// map cleanly onto flag's single-dash/double-dash conventions anyway.
package driver

import (
	"fmt"
	"os"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/splanck/vc-sub004/internal/diag"
	"github.com/splanck/vc-sub004/internal/emitter"
	"github.com/splanck/vc-sub004/internal/llvmemit"
	"github.com/splanck/vc-sub004/internal/optimizer"
	"github.com/splanck/vc-sub004/internal/parser"
	"github.com/splanck/vc-sub004/internal/sema"
	"github.com/splanck/vc-sub004/internal/token"
)

// Options holds every flag the driver recognizes (§6).
type Options struct {
	Output           string
	Word             emitter.WordSize
	Syntax           emitter.Syntax
	IncludePaths     []string
	NoConstFold      bool
	NoInline         bool
	NoDCE            bool
	EmitPrototypes   bool
	EmitLLVM         bool
	MakeDeps         bool
	MakeDepsOutput   string
	Debug            bool
	SizeAnalysisPath string
	Inputs           []string
}

// ParseArgs splices `_VCFLAGS` in front of argv (§6) then parses flags
// and input paths in a single left-to-right pass, the same shape
// std/compiler/main.go uses for its own `-o`/`-T`/`-tags` loop.
func ParseArgs(argv []string) (*Options, error) {
	var full []string
	if env := os.Getenv("_VCFLAGS"); env != "" {
		full = append(full, strings.Fields(env)...)
	}
	full = append(full, argv...)

	opt := &Options{Output: "", Word: emitter.W64, Syntax: emitter.ATT}
	i := 0
	for i < len(full) {
		arg := full[i]
		switch {
		case arg == "-o" && i+1 < len(full):
			opt.Output = full[i+1]
			i += 2
		case arg == "-m32":
			opt.Word = emitter.W32
			i++
		case arg == "-m64":
			opt.Word = emitter.W64
			i++
		case arg == "-S" && i+1 < len(full):
			switch full[i+1] {
			case "att":
				opt.Syntax = emitter.ATT
			case "intel":
				opt.Syntax = emitter.Intel
			default:
				return nil, fmt.Errorf("invalid assembly syntax %q: expected att or intel", full[i+1])
			}
			i += 2
		case arg == "-I" && i+1 < len(full):
			opt.IncludePaths = append(opt.IncludePaths, full[i+1])
			i += 2
		case arg == "--no-cfold":
			opt.NoConstFold = true
			i++
		case arg == "--no-inline":
			opt.NoInline = true
			i++
		case arg == "--no-dce":
			opt.NoDCE = true
			i++
		case arg == "--emit-prototypes":
			opt.EmitPrototypes = true
			i++
		case arg == "--emit-llvm":
			opt.EmitLLVM = true
			i++
		case arg == "-M":
			opt.MakeDeps = true
			i++
		case arg == "-MD" && i+1 < len(full):
			opt.MakeDeps = true
			opt.MakeDepsOutput = full[i+1]
			i += 2
		case arg == "-debug":
			opt.Debug = true
			i++
		case arg == "-size-analysis" && i+1 < len(full):
			opt.SizeAnalysisPath = full[i+1]
			i += 2
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unrecognized flag %q", arg)
		default:
			opt.Inputs = append(opt.Inputs, arg)
			i++
		}
	}
	if len(opt.Inputs) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	return opt, nil
}

// Run compiles every input file to its own assembly output and returns
// the process exit code (§6: 0 on success, non-zero on any diagnostic).
func Run(opt *Options) int {
	exit := 0
	for _, path := range opt.Inputs {
		if !compileFile(path, opt) {
			exit = 1
		}
	}
	return exit
}

func compileFile(path string, opt *Options) bool {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vc: %s: %v\n", path, err)
		return false
	}

	dctx := diag.NewContext()
	if opt.MakeDeps {
		dctx.Colorized = false // -M/-MD output must stay make-parseable
	}
	dctx.Enter(path, "")
	if opt.Debug {
		fmt.Fprintf(os.Stderr, "vc: debug session %s for %s\n", dctx.Session, path)
	}

	toks := token.NewLexer(src).Tokenize()
	tu := parser.New(toks, dctx).ParseTranslationUnit()
	if dctx.HasErrors() {
		dctx.Print(os.Stderr)
		return false
	}

	ptrSize := int(opt.Word)
	checker := sema.NewChecker(dctx, ptrSize)
	module := checker.CheckTranslationUnit(tu)
	if dctx.HasErrors() {
		dctx.Print(os.Stderr)
		return false
	}

	optimizer.Run(module, optimizer.Options{
		NoConstFold: opt.NoConstFold,
		NoInline:    opt.NoInline,
		NoDCE:       opt.NoDCE,
	})

	outPath := opt.Output
	if outPath == "" {
		outPath = trimExt(path) + outputExt(opt)
	}

	var text string
	if opt.EmitLLVM {
		em := llvmemit.New(path)
		em.EmitModule(module)
		text = em.Module.String()
	} else {
		e := emitter.New(opt.Word, opt.Syntax, opt.EmitPrototypes)
		exported := make(map[string]bool)
		e.EmitModule(module, exported)
		text = e.String()
	}

	if opt.Debug {
		sizeSummary(text, opt)
	}
	if opt.MakeDepsOutput != "" {
		writeMakeDeps(opt.MakeDepsOutput, path, opt.IncludePaths)
	}

	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "vc: %s: %v\n", outPath, err)
		return false
	}
	return true
}

func outputExt(opt *Options) string {
	if opt.EmitLLVM {
		return ".ll"
	}
	return ".s"
}

func trimExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}

// sizeSummary prints a human-readable byte-size summary of the emitted
// output to stderr under -debug, and writes the machine-readable form to
// -size-analysis's path if also set.
func sizeSummary(text string, opt *Options) {
	fmt.Fprintf(os.Stderr, "vc: emitted %s\n", humanize.Bytes(uint64(len(text))))
	if opt.SizeAnalysisPath != "" {
		writeSizeAnalysis(opt.SizeAnalysisPath, len(text))
	}
}

func writeSizeAnalysis(path string, total int) {
	content := fmt.Sprintf("{\"total_bytes\":%d,\"human\":%q}\n", total, humanize.Bytes(uint64(total)))
	_ = os.WriteFile(path, []byte(content), 0o644)
}

// writeMakeDeps writes a make-style dependency rule to -MD's path (§6):
// `output: input include...`. Plain -M writes no rule.
func writeMakeDeps(path, input string, includes []string) {
	var b strings.Builder
	b.WriteString(trimExt(input) + ".o: " + input)
	for _, inc := range includes {
		b.WriteString(" " + inc)
	}
	b.WriteByte('\n')
	_ = os.WriteFile(path, []byte(b.String()), 0o644)
}
