package parser

import (
	"testing"

	"github.com/quill-lang/quill/dialect"
)

func TestParsePrettyPrint(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`let x = 2 + 3 * 4; x`, `let x = (2 + (3 * 4)); x;`},
		{`const pi = 3.14;`, `const pi = 3.14;`},
		{`-a * b;`, `((-a) * b);`},
		{`!done;`, `(!done);`},
		{`a + b - c;`, `((a + b) - c);`},
		{`a * b / c % d;`, `(((a * b) / c) % d);`},
		{`2 ** 3 ** 2;`, `(2 ** (3 ** 2));`},
		{`a < b == c > d;`, `((a < b) == (c > d));`},
		{`a <= b != c >= d;`, `((a <= b) != (c >= d));`},
		{`a || b && c;`, `(a || (b && c));`},
		{`1 + 2 .. 10 - 1;`, `((1 + 2) .. (10 - 1));`},
		{`(a + b) * c;`, `((a + b) * c);`},
		{`();`, `();`},
		{`x = y = 3;`, `(x = (y = 3));`},
		{`xs[0] += 1;`, `((xs[0]) += 1);`},
		{`total -= n; total *= n; total /= n; total %= n;`,
			`(total -= n); (total *= n); (total /= n); (total %= n);`},
		{`[1, 2 + 3, "four"];`, `[1, (2 + 3), "four"];`},
		{`[];`, `[];`},
		{`#{ "a": 1, "b": 2 };`, `#{"a": 1, "b": 2};`},
		{`#{};`, `#{};`},
		{`m["key"]["nested"];`, `((m["key"])["nested"]);`},
		{`add(1, 2 * 3, other(4));`, `add(1, (2 * 3), other(4));`},
		{`fn add(x, y) { x + y }`, `fn add(x, y) { (x + y); }`},
		{`fn nop() {}`, `fn nop() {  }`},
		{`if x < y { x } else { y }`, `if (x < y) { x; } else { y; };`},
		{`if a { 1 } else if b { 2 } else { 3 }`,
			`if a { 1; } else if b { 2; } else { 3; };`},
		{`while x < 10 { x += 1; }`, `while (x < 10) { (x += 1); }`},
		{`do { x += 1; } while x < 10;`, `do { (x += 1); } while (x < 10);`},
		{`for i in 1..5 { sum += i; }`, `for i in (1 .. 5) { (sum += i); }`},
		{`while true { break; continue; }`, `while true { break; continue; }`},
		{`return;`, `return;`},
		{`return x + 1;`, `return (x + 1);`},
		{`let f = |a, b| a + b;`, `let f = |a, b| (a + b);`},
		{`let g = || 42;`, `let g = || 42;`},
		{`let h = |n| { n * 2 };`, `let h = |n| { (n * 2); };`},
		{`'x';`, `'x';`},
		{`"tab\there";`, `"tab\there";`},
		{`{ let a = 1; a }`, `{ let a = 1; a; };`},
	}

	for i, tt := range tests {
		p := New("test", tt.input)
		program := p.ParseProgram()
		if len(p.Errors) > 0 {
			t.Fatalf("tests[%d] - parse errors for %q: %s", i, tt.input, p.Errors[0].Message)
		}
		if got := program.String(); got != tt.expected {
			t.Fatalf("tests[%d] - wrong pretty-print.\ninput:    %s\nexpected: %s\ngot:      %s",
				i, tt.input, tt.expected, got)
		}
	}
}

// Pretty-printing is canonical: parsing the printed form prints the same.
func TestPrettyPrintIdempotence(t *testing.T) {
	sources := []string{
		`let x = 2 + 3 * 4; x`,
		`fn fib(n) { if n < 2 { n } else { fib(n - 1) + fib(n - 2) } }`,
		`let m = #{ "a": [1, 2], "b": #{ "c": 3 } }; m["a"][0]`,
		`for i in 0..10 { if i % 2 == 0 { continue; } total += i; }`,
		`let f = |a| |b| a + b; f(1)(2)`,
	}
	for i, src := range sources {
		p := New("test", src)
		first := p.ParseProgram()
		if len(p.Errors) > 0 {
			t.Fatalf("tests[%d] - parse errors: %s", i, p.Errors[0].Message)
		}
		printed := first.String()
		p2 := New("test", printed)
		second := p2.ParseProgram()
		if len(p2.Errors) > 0 {
			t.Fatalf("tests[%d] - reparse errors for %q: %s", i, printed, p2.Errors[0].Message)
		}
		if second.String() != printed {
			t.Fatalf("tests[%d] - not idempotent.\nfirst:  %s\nsecond: %s",
				i, printed, second.String())
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		errId string
	}{
		{`let = 5;`, "parse/expect"},
		{`let x 5;`, "parse/expect"},
		{`fn (x) { x }`, "parse/fn/name"},
		{`fn dup(a, a) { a }`, "parse/params/dup"},
		{`1 + 2 = 3;`, "parse/assign/target"},
		{`(a + b) = 3;`, "parse/assign/target"},
		{`let x = 1 let y = 2;`, "parse/semicolon"},
		{`let x = ;`, "parse/prefix"},
		{`(1 + 2`, "parse/eol"},
		{`[1, 2}`, "parse/nesting"},
		{`1 + 2)`, "parse/match"},
		{`let x = 99999999999999999999;`, "lex/num"},
	}
	for i, tt := range tests {
		p := New("test", tt.input)
		p.ParseProgram()
		if len(p.Errors) == 0 {
			t.Fatalf("tests[%d] - expected a parse error for %q, got none", i, tt.input)
		}
		if p.Errors[0].ErrorId != tt.errId {
			t.Fatalf("tests[%d] - expected error %q, got %q: %s",
				i, tt.errId, p.Errors[0].ErrorId, p.Errors[0].Message)
		}
	}
}

func TestDialectGates(t *testing.T) {
	dcfg := dialect.Default()
	dcfg.AllowClosures = false
	p := NewWithDialect("test", `let f = |a| a;`, dcfg)
	p.ParseProgram()
	if len(p.Errors) == 0 || p.Errors[0].ErrorId != "parse/closure/off" {
		t.Fatalf("expected parse/closure/off, got %v", p.Errors)
	}

	dcfg = dialect.Default()
	dcfg.StrictLoopControl = true
	p = NewWithDialect("test", `break;`, dcfg)
	p.ParseProgram()
	if len(p.Errors) == 0 || p.Errors[0].ErrorId != "parse/loop/break" {
		t.Fatalf("expected parse/loop/break, got %v", p.Errors)
	}

	p = NewWithDialect("test", `while true { if done { break; } }`, dcfg)
	p.ParseProgram()
	if len(p.Errors) != 0 {
		t.Fatalf("break inside a loop should parse under strict_loop_control, got %v", p.Errors)
	}

	// The default dialect defers the check to evaluation.
	p = New("test", `break;`)
	p.ParseProgram()
	if len(p.Errors) != 0 {
		t.Fatalf("top-level break should parse in the default dialect, got %v", p.Errors)
	}
}
