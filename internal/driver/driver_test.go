package driver

import (
	"os"
	"testing"

	"github.com/splanck/vc-sub004/internal/emitter"
)

func TestParseArgsDefaults(t *testing.T) {
	opt, err := ParseArgs([]string{"a.c"})
	if err != nil {
		t.Fatalf("ParseArgs returned error: %v", err)
	}
	if opt.Word != emitter.W64 || opt.Syntax != emitter.ATT {
		t.Fatalf("defaults = (%v, %v), want (W64, ATT)", opt.Word, opt.Syntax)
	}
	if len(opt.Inputs) != 1 || opt.Inputs[0] != "a.c" {
		t.Fatalf("Inputs = %v, want [a.c]", opt.Inputs)
	}
}

func TestParseArgsFlags(t *testing.T) {
	opt, err := ParseArgs([]string{"-o", "out.s", "-m32", "-S", "intel", "--no-inline", "--emit-llvm", "a.c", "b.c"})
	if err != nil {
		t.Fatalf("ParseArgs returned error: %v", err)
	}
	if opt.Output != "out.s" {
		t.Errorf("Output = %q, want %q", opt.Output, "out.s")
	}
	if opt.Word != emitter.W32 {
		t.Errorf("Word = %v, want W32", opt.Word)
	}
	if opt.Syntax != emitter.Intel {
		t.Errorf("Syntax = %v, want Intel", opt.Syntax)
	}
	if !opt.NoInline {
		t.Errorf("NoInline = false, want true")
	}
	if !opt.EmitLLVM {
		t.Errorf("EmitLLVM = false, want true")
	}
	if len(opt.Inputs) != 2 {
		t.Errorf("Inputs = %v, want 2 entries", opt.Inputs)
	}
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	if _, err := ParseArgs([]string{"--bogus", "a.c"}); err == nil {
		t.Fatalf("ParseArgs accepted an unrecognized flag")
	}
}

func TestParseArgsRejectsNoInputs(t *testing.T) {
	if _, err := ParseArgs(nil); err == nil {
		t.Fatalf("ParseArgs accepted an empty argument list with no input files")
	}
}

func TestParseArgsRejectsInvalidSyntax(t *testing.T) {
	if _, err := ParseArgs([]string{"-S", "arm", "a.c"}); err == nil {
		t.Fatalf("ParseArgs accepted an invalid -S value")
	}
}

func TestParseArgsSplicesEnvFlags(t *testing.T) {
	os.Setenv("_VCFLAGS", "-m32")
	defer os.Unsetenv("_VCFLAGS")

	opt, err := ParseArgs([]string{"a.c"})
	if err != nil {
		t.Fatalf("ParseArgs returned error: %v", err)
	}
	if opt.Word != emitter.W32 {
		t.Fatalf("_VCFLAGS was not spliced in front of argv: Word = %v, want W32", opt.Word)
	}
}

func TestOutputExtSelectsByBackend(t *testing.T) {
	if got := outputExt(&Options{EmitLLVM: true}); got != ".ll" {
		t.Errorf("outputExt(EmitLLVM) = %q, want .ll", got)
	}
	if got := outputExt(&Options{}); got != ".s" {
		t.Errorf("outputExt(default) = %q, want .s", got)
	}
}

func TestTrimExt(t *testing.T) {
	cases := map[string]string{
		"a.c":            "a",
		"dir/sub.file.c": "dir/sub.file",
		"noext":          "noext",
		"dir.with.dot/a": "dir.with.dot/a",
	}
	for in, want := range cases {
		if got := trimExt(in); got != want {
			t.Errorf("trimExt(%q) = %q, want %q", in, got, want)
		}
	}
}
