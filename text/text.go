package text

import (
	"strconv"

	"github.com/fatih/color"

	"github.com/quill-lang/quill/token"
)

const BULLET = " ▪ "

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func ToEscapedText(s string) string {
	result := "\""
	for _, ch := range s {
		switch ch {
		case '\n':
			result = result + "\\n"
		case '\r':
			result = result + "\\r"
		case '\t':
			result = result + "\\t"
		case '"':
			result = result + "\\\""
		case '\\':
			result = result + "\\\\"
		default:
			result = result + string(ch)
		}
	}
	return result + "\""
}

func Emph(s string) string {
	return cyan("'" + s + "'")
}

func Red(s string) string {
	return red(s)
}

func Green(s string) string {
	return green(s)
}

func Yellow(s string) string {
	return yellow(s)
}

func Cyan(s string) string {
	return cyan(s)
}

func PosDescription(tok token.Token) string {
	result := strconv.Itoa(tok.Line) + ":" + strconv.Itoa(tok.ChStart)
	if tok.ChStart != tok.ChEnd {
		result = result + "-" + strconv.Itoa(tok.ChEnd)
	}
	result = " at line " + Yellow(result)
	if tok.Source == "" {
		return result
	}
	return result + " of " + Emph(tok.Source)
}

var (
	ERROR    = red("error") + ": "
	RT_ERROR = red("runtime error") + ": "
	OK       = green("ok")
)
