package ql

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill/dialect"
	"github.com/quill-lang/quill/object"
	"github.com/quill-lang/quill/signature"
)

func TestRun(t *testing.T) {
	s := NewService(dialect.Default())

	result, err := s.Run("test", `let x = 2 + 3 * 4; x`)
	require.NoError(t, err)
	require.Equal(t, int64(14), FromObject(result))

	result, err = s.Run("test", `fn add(a, b) { a + b } add(2, 3)`)
	require.NoError(t, err)
	require.Equal(t, int64(5), FromObject(result))
}

func TestCompileErrors(t *testing.T) {
	s := NewService(dialect.Default())

	_, err := s.Run("test", `let s = "oops`)
	require.Error(t, err)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	require.Equal(t, LexError, compileErr.Kind())
	// The error points at the opening quote.
	require.Equal(t, 8, compileErr.Errors[0].Token.ChStart)

	_, err = s.Run("test", `let = 3;`)
	require.ErrorAs(t, err, &compileErr)
	require.Equal(t, ParseError, compileErr.Kind())
}

func TestRuntimeErrors(t *testing.T) {
	s := NewService(dialect.Default())

	tests := []struct {
		code string
		kind ErrorKind
	}{
		{`break;`, DanglingLoopControl},
		{`undefined_fn(1)`, FunctionNotFound},
		{`nobody + 1`, UndefinedVariable},
		{`1 / 0`, DivisionByZero},
		{`9223372036854775807 + 1`, IntegerOverflow},
		{`if 1 { 2 }`, TypeMismatch},
		{`[1][5]`, IndexError},
		{`const c = 1; c = 2`, ConstAssignment},
	}
	for _, tt := range tests {
		_, err := s.Run("test", tt.code)
		require.Error(t, err, tt.code)
		var runtimeErr *RuntimeError
		require.ErrorAs(t, err, &runtimeErr, tt.code)
		require.Equal(t, tt.kind, runtimeErr.Kind(), tt.code)
	}
}

func TestRegisterFunction(t *testing.T) {
	s := NewService(dialect.Default())
	s.RegisterFunction("concat", signature.Untyped("a", "b"),
		func(args ...object.Object) object.Object {
			return ToObject(args[0].(*object.String).Value + args[1].(*object.String).Value)
		})

	result, err := s.Run("test", `concat("qui", "ll")`)
	require.NoError(t, err)
	require.Equal(t, "quill", FromObject(result))
}

// Functions a script defines don't survive the evaluation that made them.
func TestScriptFunctionIsolation(t *testing.T) {
	s := NewService(dialect.Default())

	_, err := s.Run("a", `fn helper() { 1 } helper()`)
	require.NoError(t, err)

	_, err = s.Run("b", `helper()`)
	require.Error(t, err)
	var runtimeErr *RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	require.Equal(t, FunctionNotFound, runtimeErr.Kind())
}

func TestHostScope(t *testing.T) {
	s := NewService(dialect.Default())
	program, err := s.Compile("test", `price * quantity`)
	require.NoError(t, err)

	scope := s.NewScope()
	scope.Set("price", ToObject(int64(3)))
	scope.Set("quantity", ToObject(int64(14)))
	result, err := s.Evaluate(program, scope)
	require.NoError(t, err)
	require.Equal(t, int64(42), FromObject(result))

	// A second evaluation of the same program on a fresh scope.
	scope = s.NewScope()
	scope.Set("price", ToObject(int64(2)))
	scope.Set("quantity", ToObject(int64(2)))
	result, err = s.Evaluate(program, scope)
	require.NoError(t, err)
	require.Equal(t, int64(4), FromObject(result))
}

func TestCompileCache(t *testing.T) {
	s := NewService(dialect.Default())
	first, err := s.Compile("test", `1 + 1`)
	require.NoError(t, err)
	second, err := s.Compile("test", `1 + 1`)
	require.NoError(t, err)
	require.Same(t, first, second)

	other, err := s.Compile("other", `1 + 1`)
	require.NoError(t, err)
	require.NotSame(t, first, other)
}

func TestInterrupt(t *testing.T) {
	s := NewService(dialect.Default())
	calls := 0
	s.SetInterrupt(func() bool {
		calls++
		return calls > 100
	})
	_, err := s.Run("test", `while true { }`)
	require.Error(t, err)
	var runtimeErr *RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	require.Equal(t, ExecutionInterrupted, runtimeErr.Kind())
}

func TestYAMLConfig(t *testing.T) {
	s, err := NewServiceFromYAML([]byte("allow_decimal_literals: true\nmax_operations: 50\n"))
	require.NoError(t, err)

	result, err := s.Run("test", `0.1d + 0.2d`)
	require.NoError(t, err)
	require.Equal(t, "0.3d", result.Inspect(object.ViewQuillLiteral))

	_, err = s.Run("test", `while true { }`)
	var runtimeErr *RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	require.Equal(t, ResourceLimitExceeded, runtimeErr.Kind())
}

func TestValueConversions(t *testing.T) {
	values := []any{
		nil,
		true,
		int64(42),
		3.14,
		"hello",
		[]any{int64(1), int64(2)},
		map[string]any{"a": int64(1)},
	}
	for _, v := range values {
		require.Equal(t, v, FromObject(ToObject(v)))
	}

	type handle struct{ id int }
	h := &handle{id: 7}
	require.Same(t, h, FromObject(ToObject(h)))
}

func TestRangeConversion(t *testing.T) {
	s := NewService(dialect.Default())

	result, err := s.Run("test", `1..4`)
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2), int64(3)}, FromObject(result))

	// A descending range is empty, and converting one must not panic.
	result, err = s.Run("test", `5..1`)
	require.NoError(t, err)
	require.Equal(t, []any{}, FromObject(result))
}

func TestNativeOverloads(t *testing.T) {
	s := NewService(dialect.Default())
	s.RegisterFunction("size", signature.Signature{{VarName: "s", VarType: "string"}},
		func(args ...object.Object) object.Object {
			return ToObject(int64(len(args[0].(*object.String).Value)))
		})
	s.RegisterFunction("size", signature.Signature{{VarName: "xs", VarType: "list"}},
		func(args ...object.Object) object.Object {
			return ToObject(int64(args[0].(*object.List).Len()))
		})

	result, err := s.Run("a", `size("four")`)
	require.NoError(t, err)
	require.Equal(t, int64(4), FromObject(result))

	result, err = s.Run("b", `size([1, 2, 3])`)
	require.NoError(t, err)
	require.Equal(t, int64(3), FromObject(result))
}
