package object

import (
	"strings"

	"github.com/quill-lang/quill/text"
	"github.com/quill-lang/quill/token"
)

// The 'error' type. Errors are objects: they thread up through evaluation
// like any other value and are only turned into Go errors at the embedding
// boundary.
type Error struct {
	ErrorId string
	Message string
	Info    []any
	Trace   []token.Token
	Token   token.Token
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect(view View) string {
	if view == ViewStdOut {
		if len(e.Trace) == 0 {
			return text.ERROR + e.Message + text.PosDescription(e.Token) + "."
		}
		return text.RT_ERROR + e.Message + text.PosDescription(e.Token) + "."
	}
	return "error " + text.ToEscapedText(e.Message)
}

func (e *Error) AddToTrace(tok token.Token) {
	e.Trace = append(e.Trace, tok)
}

type ErrorCreator struct {
	Message     func(tok token.Token, args ...any) string
	Explanation func(errors Errors, pos int, tok token.Token, args ...any) string
}

type Errors []*Error

func CreateErr(ident string, tok token.Token, args ...any) *Error {
	creator, ok := ErrorCreatorMap[ident]
	if !ok {
		// Implementation fault, not user error.
		panic("unknown error identifier " + ident)
	}
	return &Error{
		ErrorId: ident,
		Message: creator.Message(tok, args...),
		Info:    args,
		Token:   tok,
	}
}

func Throw(ident string, errs Errors, tok token.Token, args ...any) Errors {
	return append(errs, CreateErr(ident, tok, args...))
}

func GetList(errs Errors) string {
	var sb strings.Builder
	for _, e := range errs {
		sb.WriteString(text.BULLET)
		sb.WriteString(e.Inspect(ViewStdOut))
		sb.WriteString("\n")
	}
	return sb.String()
}
