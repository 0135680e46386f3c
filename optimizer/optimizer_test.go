package optimizer

import (
	"testing"

	"github.com/quill-lang/quill/ast"
	"github.com/quill-lang/quill/dialect"
	"github.com/quill-lang/quill/evaluator"
	"github.com/quill-lang/quill/object"
	"github.com/quill-lang/quill/parser"
	"github.com/quill-lang/quill/registry"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := parser.New("test", input)
	program := p.ParseProgram()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors for %q: %s", input, p.Errors[0].Message)
	}
	return program
}

func TestFolding(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`2 + 3 * 4;`, `14;`},
		{`2 ** 3 ** 2;`, `512;`},
		{`-(2 + 3);`, `-5;`},
		{`!(1 < 2);`, `false;`},
		{`"foo" + "bar";`, `"foobar";`},
		{`1.5 + 1.5;`, `3.0;`},
		{`const k = 10; k * k;`, `const k = 10; 100;`},
		{`const k = 10; let n = k + 1; n;`, `const k = 10; let n = 11; n;`},
		{`let k = 10; k * k;`, `let k = 10; (k * k);`},
		{`if true { 1 } else { f() }`, `{ 1; };`},
		{`if false { f() } else { 2 }`, `{ 2; };`},
		{`if false { f() }`, `();`},
		{`if 1 < 2 { a } else { b }`, `{ a; };`},
		{`false && f();`, `false;`},
		{`true || f();`, `true;`},
		{`true && false;`, `false;`},
		{`true && f();`, `(true && f());`},
		{`while x { 1 + 2; }`, `while x { 3; }`},
		{`while false { f(); } 1;`, `1;`},
		{`while 1 > 2 { f(); }`, `();`},
		{`const k = 1; while k > 2 { f(); } k;`, `const k = 1; 1;`},
		{`{ } 5;`, `5;`},
		{`{ (); (); } 5;`, `5;`},
		{`(); 1;`, `1;`},
		{`if false { f() } 2;`, `2;`},
		{`[1 + 1, 2 * 2];`, `[2, 4];`},
		{`#{"a": 1 + 1};`, `#{"a": 2};`},
		{`f(1 + 2, 3 * 4);`, `f(3, 12);`},
		{`let f = |n| n + (1 + 1); f;`, `let f = |n| (n + 2); f;`},
	}

	for i, tt := range tests {
		optimized := Optimize(parse(t, tt.input), dialect.Default())
		if got := optimized.String(); got != tt.expected {
			t.Fatalf("tests[%d] - wrong optimization.\ninput:    %s\nexpected: %s\ngot:      %s",
				i, tt.input, tt.expected, got)
		}
	}
}

// What must not be folded: anything whose evaluation can fail, and any
// name that isn't a literal-valued constant where it is read.
func TestNoFolding(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`1 / 0;`, `(1 / 0);`},
		{`9223372036854775807 + 1;`, `(9223372036854775807 + 1);`},
		{`const k = 1; let k = 2; k;`, `const k = 1; let k = 2; k;`},
		{`const k = 1; { let k = 2; k; };`, `const k = 1; { let k = 2; k; };`},
		{`const k = 1; fn f() { k } f;`, `const k = 1; fn f() { k; } f;`},
		{`const k = 1; let f = |k| k; f;`, `const k = 1; let f = |k| k; f;`},
		{`const k = 1; for k in 0..3 { k; }`, `const k = 1; for k in (0 .. 3) { k; }`},
		{`const k = 1; k = 2;`, `const k = 1; (k = 2);`},
		{`while x { f(); }`, `while x { f(); }`},
		{`do { f(); } while false;`, `do { f(); } while false;`},
		{`1; ();`, `1; ();`},
		{`1; { }`, `1; {  };`},
	}

	for i, tt := range tests {
		optimized := Optimize(parse(t, tt.input), dialect.Default())
		if got := optimized.String(); got != tt.expected {
			t.Fatalf("tests[%d] - wrong optimization.\ninput:    %s\nexpected: %s\ngot:      %s",
				i, tt.input, tt.expected, got)
		}
	}
}

// The optimized tree must evaluate to the same value, or fail with the same
// error, as the original.
func TestEquivalence(t *testing.T) {
	sources := []string{
		`let x = 2 + 3 * 4; x`,
		`const k = 6; let total = 0; for i in 0..k { total += i; } total`,
		`fn fib(n) { if n < 2 { n } else { fib(n - 1) + fib(n - 2) } } fib(12)`,
		`let s = ""; for c in "quill" { s = c + s; } s`,
		`if 2 > 1 { "taken" } else { "dead" }`,
		`const greeting = "hello "; greeting + "world"`,
		`let f = |a| a * (2 + 3); f(4)`,
		`1 / 0`,
		`const k = 1; k = 2`,
		`while false { never(); } "done"`,
		`let n = 5; while false { n = 1; } n`,
		`{ (); } 7`,
	}

	for i, src := range sources {
		plain := evaluator.New(registry.New(), dialect.Default()).
			Eval(parse(t, src), object.NewScope())
		optimized := evaluator.New(registry.New(), dialect.Default()).
			Eval(Optimize(parse(t, src), dialect.Default()), object.NewScope())

		plainErr, plainIsErr := plain.(*object.Error)
		optErr, optIsErr := optimized.(*object.Error)
		if plainIsErr != optIsErr {
			t.Fatalf("tests[%d] - %q: one of the two evaluations errored", i, src)
		}
		if plainIsErr {
			if plainErr.ErrorId != optErr.ErrorId {
				t.Fatalf("tests[%d] - %q: errors differ, %s vs %s", i, src, plainErr.ErrorId, optErr.ErrorId)
			}
			continue
		}
		if !object.Equals(plain, optimized) {
			t.Fatalf("tests[%d] - %q: values differ, %s vs %s", i, src,
				plain.Inspect(object.ViewQuillLiteral), optimized.Inspect(object.ViewQuillLiteral))
		}
	}
}

func TestStringLimitNotFolded(t *testing.T) {
	dcfg := dialect.Default()
	dcfg.MaxStringSize = 4
	optimized := Optimize(parse(t, `"abc" + "def";`), dcfg)
	if got := optimized.String(); got != `("abc" + "def");` {
		t.Fatalf("an over-limit concatenation must stay for the evaluator to reject, got %s", got)
	}
}
