package evaluator

import (
	"testing"

	"github.com/quill-lang/quill/dialect"
	"github.com/quill-lang/quill/object"
	"github.com/quill-lang/quill/parser"
	"github.com/quill-lang/quill/registry"
	"github.com/quill-lang/quill/signature"
)

func testEval(t *testing.T, input string) object.Object {
	t.Helper()
	return testEvalWith(t, input, registry.New(), dialect.Default())
}

func testEvalWith(t *testing.T, input string, reg *registry.Registry, dcfg dialect.Config) object.Object {
	t.Helper()
	p := parser.NewWithDialect("test", input, dcfg)
	program := p.ParseProgram()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors for %q: %s", input, p.Errors[0].Message)
	}
	ev := New(reg, dcfg)
	return ev.Eval(program, object.NewScope())
}

func checkLiteral(t *testing.T, input string, got object.Object, want string) {
	t.Helper()
	if err, ok := got.(*object.Error); ok {
		t.Fatalf("input %q - unexpected error %s: %s", input, err.ErrorId, err.Message)
	}
	if inspected := got.Inspect(object.ViewQuillLiteral); inspected != want {
		t.Fatalf("input %q - expected %s, got %s", input, want, inspected)
	}
}

func checkError(t *testing.T, input string, got object.Object, errId string) {
	t.Helper()
	err, ok := got.(*object.Error)
	if !ok {
		t.Fatalf("input %q - expected error %s, got %s", input, errId, got.Inspect(object.ViewQuillLiteral))
	}
	if err.ErrorId != errId {
		t.Fatalf("input %q - expected error %s, got %s: %s", input, errId, err.ErrorId, err.Message)
	}
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`let x = 2 + 3 * 4; x`, `14`},
		{`(2 + 3) * 4`, `20`},
		{`7 / 2`, `3`},
		{`7 % 3`, `1`},
		{`2 ** 10`, `1024`},
		{`2 ** 3 ** 2`, `512`},
		{`-5 + 10`, `5`},
		{`1.5 * 2`, `3.0`},
		{`1 + 0.5`, `1.5`},
		{`10 / 4.0`, `2.5`},
		{`"foo" + "bar"`, `"foobar"`},
		{`"ab" + 'c'`, `"abc"`},
		{`'a' + 'b'`, `"ab"`},
		{`"abc"[1]`, `'b'`},
		{`1 < 2`, `true`},
		{`2 <= 2`, `true`},
		{`"apple" < "banana"`, `true`},
		{`1 == 1.0`, `false`},
		{`1 == 1`, `true`},
		{`"a" != "b"`, `true`},
		{`[1, 2] == [1, 2]`, `true`},
		{`#{"a": 1} == #{"a": 1}`, `true`},
		{`() == ()`, `true`},
		{`!true`, `false`},
		{`!(1 > 2)`, `true`},
		{`true && false`, `false`},
		{`true || false`, `true`},
		{`false && (1 / 0 == 0)`, `false`},
		{`true || (1 / 0 == 0)`, `true`},
		{`[1, 2] + [3]`, `[1, 2, 3]`},
		{`[10, 20, 30][1]`, `20`},
		{`#{"a": 1, "b": 2}["b"]`, `2`},
		{`if 1 < 2 { "yes" } else { "no" }`, `"yes"`},
		{`if 1 > 2 { "yes" }`, `()`},
		{`if false { 1 } else if true { 2 } else { 3 }`, `2`},
		{`{ let a = 10; a * 2 }`, `20`},
	}

	for _, tt := range tests {
		checkLiteral(t, tt.input, testEval(t, tt.input), tt.expected)
	}
}

func TestStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`let x = 1; x = 2; x`, `2`},
		{`let x = 1; x += 2; x`, `3`},
		{`let x = 10; x -= 1; x *= 4; x /= 2; x %= 5; x`, `3`},
		{`let x = 1; let y = (x = 5); y`, `5`},
		{`let xs = [1, 2, 3]; xs[1] = 20; xs`, `[1, 20, 3]`},
		{`let xs = [1, 2, 3]; xs[0] += 9; xs[0]`, `10`},
		{`let m = #{"a": 1}; m["b"] = 2; m["b"]`, `2`},
		{`let m = #{"a": #{"b": 1}}; m["a"]["b"] = 5; m["a"]["b"]`, `5`},
		{`let m = #{"xs": [1, 2]}; m["xs"][0] = 9; m["xs"]`, `[9, 2]`},
		{`let x = 1; { let x = 2; } x`, `1`},
		{`let x = 1; { x = 2; } x`, `2`},
		{`let x = 1; let x = x + 1; x`, `2`},
		{`let sum = 0; while sum < 10 { sum += 3; } sum`, `12`},
		{`let n = 0; do { n += 1; } while false; n`, `1`},
		{`let sum = 0; for i in 1..5 { sum += i; } sum`, `10`},
		{`let sum = 0; for x in [1, 2, 3] { sum += x; } sum`, `6`},
		{`let s = ""; for c in "abc" { s = c + s; } s`, `"cba"`},
		{`let s = ""; for k in #{"b": 1, "a": 2} { s += k; } s`, `"ab"`},
		{`let n = 0; while true { n += 1; if n == 5 { break; } } n`, `5`},
		{`let sum = 0; for i in 0..10 { if i % 2 == 0 { continue; } sum += i; } sum`, `25`},
		{`return 42; 99`, `42`},
		{`return;`, `()`},
	}

	for _, tt := range tests {
		checkLiteral(t, tt.input, testEval(t, tt.input), tt.expected)
	}
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`fn add(a, b) { a + b } add(2, 3)`, `5`},
		{`fn fib(n) { if n < 2 { n } else { fib(n - 1) + fib(n - 2) } } fib(10)`, `55`},
		{`fn early(n) { if n > 0 { return "pos"; } "other" } early(1)`, `"pos"`},
		{`fn f(x) { x + 2 } fn f(x, y) { x * y } f(3) + f(2, 5)`, `15`},
		{`let double = |n| n * 2; double(21)`, `42`},
		{`let make = |a| |b| a + b; make(1)(2)`, `3`},
		{`let f = || 42; f()`, `42`},
		{`let a = 1; let f = || a; let a = 2; f()`, `1`},
		{`let xs = [1, 2]; let f = || xs; xs[0] = 9; f()`, `[1, 2]`},
		{`fn apply(f, x) { f(x) } apply(|n| n + 1, 41)`, `42`},
	}

	for _, tt := range tests {
		checkLiteral(t, tt.input, testEval(t, tt.input), tt.expected)
	}
}

// Script functions run isolated: they see their parameters and nothing of
// their caller.
func TestFunctionIsolation(t *testing.T) {
	input := `let secret = 1; fn peek() { secret } peek()`
	checkError(t, input, testEval(t, input), "eval/ident")
}

func TestNativeFunctions(t *testing.T) {
	reg := registry.New()
	reg.Add(registry.Function{
		Name: "double",
		Sig:  signature.Untyped("n"),
		Native: func(args ...object.Object) object.Object {
			return &object.Integer{Value: args[0].(*object.Integer).Value * 2}
		},
	})
	reg.Add(registry.Function{
		Name: "describe",
		Sig:  signature.Signature{{VarName: "n", VarType: "int"}},
		Native: func(args ...object.Object) object.Object {
			return &object.String{Value: "int"}
		},
	})
	reg.Add(registry.Function{
		Name: "describe",
		Sig:  signature.Untyped("n"),
		Native: func(args ...object.Object) object.Object {
			return &object.String{Value: "something"}
		},
	})

	dcfg := dialect.Default()
	checkLiteral(t, `double`, testEvalWith(t, `double(4)`, reg, dcfg), `8`)
	checkLiteral(t, `describe int`, testEvalWith(t, `describe(1)`, reg, dcfg), `"int"`)
	checkLiteral(t, `describe other`, testEvalWith(t, `describe("s")`, reg, dcfg), `"something"`)

	// A let-bound value shadows a registered function of the same name.
	result := testEvalWith(t, `let double = |n| n * 3; double(4)`, reg, dcfg)
	checkLiteral(t, `shadowing`, result, `12`)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		input string
		errId string
	}{
		{`break;`, "eval/loop/break"},
		{`continue;`, "eval/loop/continue"},
		{`{ break; }`, "eval/loop/break"},
		{`fn f() { break; } f()`, "eval/loop/break"},
		{`undefined_fn(1)`, "eval/call/found"},
		{`fn f(a) { a } f(1, 2)`, "eval/call/found"},
		{`let x = 1; x(2)`, "eval/call/apply"},
		{`(|a| a)(1, 2)`, "eval/call/args"},
		{`nobody`, "eval/ident"},
		{`x = 1`, "eval/ident"},
		{`const c = 1; c = 2`, "eval/const"},
		{`const c = 1; c += 1`, "eval/const"},
		{`1 / 0`, "eval/div/zero"},
		{`1 % 0`, "eval/div/zero"},
		{`9223372036854775807 + 1`, "eval/overflow"},
		{`-9223372036854775807 - 2`, "eval/overflow"},
		{`2 ** 64`, "eval/overflow"},
		{`1 + "s"`, "eval/type/infix"},
		{`-"s"`, "eval/type/prefix"},
		{`!1`, "eval/type/prefix"},
		{`if 1 { 2 }`, "eval/type/truthy"},
		{`while 1 { }`, "eval/type/truthy"},
		{`1 && true`, "eval/type/truthy"},
		{`true && 1`, "eval/type/truthy"},
		{`[1, 2][5]`, "eval/index/range"},
		{`[1, 2][-1]`, "eval/index/range"},
		{`"ab"[2]`, "eval/index/range"},
		{`#{"a": 1}["b"]`, "eval/index/key"},
		{`[1, 2]["a"]`, "eval/type/index"},
		{`5[0]`, "eval/type/index"},
		{`#{1: 2}`, "eval/map/key"},
		{`let s = "abc"; s[0] = 'x'`, "eval/assign/index"},
		{`"a" .. "b"`, "eval/range"},
		{`for i in 5 { }`, "eval/iter"},
		{`let xs = [1]; xs[3] = 0`, "eval/index/range"},
	}

	for _, tt := range tests {
		checkError(t, tt.input, testEval(t, tt.input), tt.errId)
	}
}

func TestDecimals(t *testing.T) {
	dcfg := dialect.Default()
	dcfg.AllowDecimalLiterals = true
	reg := registry.New()

	tests := []struct {
		input    string
		expected string
	}{
		{`0.1d + 0.2d`, `0.3d`},
		{`0.1d + 0.2d == 0.3d`, `true`},
		{`1d + 1`, `2d`},
		{`2.5d * 2`, `5d`},
		{`1d / 4 * 4 == 1d`, `true`},
		{`10d % 3d`, `1d`},
		{`1.5d < 2`, `true`},
	}
	for _, tt := range tests {
		checkLiteral(t, tt.input, testEvalWith(t, tt.input, reg, dcfg), tt.expected)
	}

	checkError(t, `1d / 0`, testEvalWith(t, `1d / 0`, reg, dcfg), "eval/div/zero")
}

// Exponentiation is by squaring, so a huge exponent on a base whose powers
// never overflow must still finish immediately, within a tight operation
// budget.
func TestLargeExponents(t *testing.T) {
	dcfg := dialect.Default()
	dcfg.MaxOperations = 10
	reg := registry.New()

	tests := []struct {
		input    string
		expected string
	}{
		{`1 ** 9223372036854775807`, `1`},
		{`(0 - 1) ** 9223372036854775807`, `-1`},
		{`(0 - 1) ** 9223372036854775806`, `1`},
		{`0 ** 9223372036854775807`, `0`},
		{`2 ** 62`, `4611686018427387904`},
	}
	for _, tt := range tests {
		checkLiteral(t, tt.input, testEvalWith(t, tt.input, reg, dcfg), tt.expected)
	}

	checkError(t, `2 ** 63`, testEvalWith(t, `2 ** 63`, reg, dcfg), "eval/overflow")
	checkError(t, `3 ** 1000000000`, testEvalWith(t, `3 ** 1000000000`, reg, dcfg), "eval/overflow")
}

func TestLimits(t *testing.T) {
	reg := registry.New()

	dcfg := dialect.Default()
	dcfg.MaxOperations = 100
	result := testEvalWith(t, `let n = 0; while true { n += 1; }`, reg, dcfg)
	checkError(t, "op limit", result, "eval/limit/ops")

	dcfg = dialect.Default()
	dcfg.MaxCallDepth = 10
	result = testEvalWith(t, `fn loop(n) { loop(n + 1) } loop(0)`, reg, dcfg)
	checkError(t, "depth limit", result, "eval/limit/depth")

	dcfg = dialect.Default()
	dcfg.MaxStringSize = 16
	result = testEvalWith(t, `let s = "aaaaaaaa"; s + s + s`, reg, dcfg)
	checkError(t, "string limit", result, "eval/limit/string")

	dcfg = dialect.Default()
	dcfg.MaxArraySize = 2
	result = testEvalWith(t, `[1, 2, 3]`, reg, dcfg)
	checkError(t, "array limit", result, "eval/limit/array")

	dcfg = dialect.Default()
	dcfg.MaxArraySize = 2
	result = testEvalWith(t, `[1, 2] + [3]`, reg, dcfg)
	checkError(t, "array concat limit", result, "eval/limit/array")
}

func TestInterrupt(t *testing.T) {
	p := parser.New("test", `let n = 0; while true { n += 1; }`)
	program := p.ParseProgram()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors: %s", p.Errors[0].Message)
	}
	calls := 0
	ev := New(registry.New(), dialect.Default())
	ev.SetInterrupt(func() bool {
		calls++
		return calls > 50
	})
	result := ev.Eval(program, object.NewScope())
	checkError(t, "interrupt", result, "eval/interrupt")
}

// The scope must come back to depth zero however evaluation ends.
func TestScopeBalance(t *testing.T) {
	inputs := []string{
		`let a = 1; { let b = 2; { let c = 3; } } a`,
		`{ { { 1 / 0 } } }`,
		`for i in 0..3 { { let x = i; } }`,
		`fn f() { { return 1; } } f()`,
		`while true { { break; } }`,
		`let f = |x| { { x } }; f(1)`,
	}
	for _, input := range inputs {
		p := parser.New("test", input)
		program := p.ParseProgram()
		if len(p.Errors) > 0 {
			t.Fatalf("parse errors for %q: %s", input, p.Errors[0].Message)
		}
		scope := object.NewScope()
		New(registry.New(), dialect.Default()).Eval(program, scope)
		if scope.Depth() != 0 {
			t.Fatalf("input %q - scope depth %d after evaluation", input, scope.Depth())
		}
	}
}

func TestErrorTrace(t *testing.T) {
	result := testEval(t, `fn inner() { 1 / 0 } fn outer() { inner() } outer()`)
	err, ok := result.(*object.Error)
	if !ok {
		t.Fatalf("expected an error, got %s", result.Inspect(object.ViewQuillLiteral))
	}
	if err.ErrorId != "eval/div/zero" {
		t.Fatalf("expected eval/div/zero, got %s", err.ErrorId)
	}
	if len(err.Trace) != 2 {
		t.Fatalf("expected a two-deep trace, got %d", len(err.Trace))
	}
}

func TestHostScope(t *testing.T) {
	p := parser.New("test", `x * y`)
	program := p.ParseProgram()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors: %s", p.Errors[0].Message)
	}
	scope := object.NewScope()
	scope.Set("x", &object.Integer{Value: 6})
	scope.Set("y", &object.Integer{Value: 7})
	result := New(registry.New(), dialect.Default()).Eval(program, scope)
	checkLiteral(t, "host scope", result, `42`)
}
