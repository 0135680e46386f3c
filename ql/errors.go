package ql

import (
	"strings"

	"github.com/quill-lang/quill/object"
	"github.com/quill-lang/quill/text"
)

// An ErrorKind is the host-facing classification of what went wrong. It is
// derived from the identifier of the underlying error, so hosts can branch
// on kinds without parsing message strings.
type ErrorKind string

const (
	LexError              ErrorKind = "LexError"
	ParseError            ErrorKind = "ParseError"
	TypeMismatch          ErrorKind = "TypeMismatch"
	UndefinedVariable     ErrorKind = "UndefinedVariable"
	FunctionNotFound      ErrorKind = "FunctionNotFound"
	AmbiguousFunction     ErrorKind = "AmbiguousFunction"
	DivisionByZero        ErrorKind = "DivisionByZero"
	IntegerOverflow       ErrorKind = "IntegerOverflow"
	IndexError            ErrorKind = "IndexError"
	DanglingLoopControl   ErrorKind = "DanglingLoopControl"
	ResourceLimitExceeded ErrorKind = "ResourceLimitExceeded"
	ExecutionInterrupted  ErrorKind = "ExecutionInterrupted"
	ConstAssignment       ErrorKind = "ConstAssignment"
	RuntimeFault          ErrorKind = "RuntimeFault"
)

func KindOf(errorId string) ErrorKind {
	switch {
	case strings.HasPrefix(errorId, "lex/"):
		return LexError
	case strings.HasPrefix(errorId, "parse/"):
		return ParseError
	case errorId == "eval/ident":
		return UndefinedVariable
	case errorId == "eval/call/found":
		return FunctionNotFound
	case errorId == "eval/call/ambiguous":
		return AmbiguousFunction
	case errorId == "eval/div/zero":
		return DivisionByZero
	case errorId == "eval/overflow":
		return IntegerOverflow
	case strings.HasPrefix(errorId, "eval/index/"):
		return IndexError
	case strings.HasPrefix(errorId, "eval/loop/"):
		return DanglingLoopControl
	case strings.HasPrefix(errorId, "eval/limit/"):
		return ResourceLimitExceeded
	case errorId == "eval/interrupt":
		return ExecutionInterrupted
	case errorId == "eval/const":
		return ConstAssignment
	case strings.HasPrefix(errorId, "eval/type/") || strings.HasPrefix(errorId, "eval/call/") ||
		strings.HasPrefix(errorId, "eval/"):
		return TypeMismatch
	}
	return RuntimeFault
}

// A CompileError wraps everything the lexer and parser complained about.
type CompileError struct {
	Errors object.Errors
}

func (e *CompileError) Error() string {
	if len(e.Errors) == 1 {
		return describe(e.Errors[0])
	}
	descriptions := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		descriptions = append(descriptions, describe(err))
	}
	return strings.Join(descriptions, "; ")
}

// Kind classifies by the first error, which is the one worth reading: later
// ones are often knock-on effects of it.
func (e *CompileError) Kind() ErrorKind {
	return KindOf(e.Errors[0].ErrorId)
}

// A RuntimeError wraps the error value an evaluation ended with.
type RuntimeError struct {
	Err *object.Error
}

func (e *RuntimeError) Error() string {
	return describe(e.Err)
}

func (e *RuntimeError) Kind() ErrorKind {
	return KindOf(e.Err.ErrorId)
}

func describe(err *object.Error) string {
	return err.Message + text.PosDescription(err.Token)
}
