package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT   = "IDENT" // add, foobar, x, y, ...
	INT     = "int"   // 1343456
	FLOAT   = "float" // 1.23
	DECIMAL = "decimal"
	STRING  = "string" // "foo"
	CHAR    = "char"   // 'a'
	TRUE    = "true"
	FALSE   = "false"
	COMMENT = "COMMENT"

	// Operators
	ASSIGN = "="

	PLUS_ASSIGN    = "+="
	MINUS_ASSIGN   = "-="
	STAR_ASSIGN    = "*="
	SLASH_ASSIGN   = "/="
	PERCENT_ASSIGN = "%="

	PLUS    = "+"
	MINUS   = "-"
	STAR    = "*"
	SLASH   = "/"
	PERCENT = "%"
	POWER   = "**"

	BANG = "!"

	AND = "&&"
	OR  = "||"

	EQ     = "=="
	NOT_EQ = "!="
	LT     = "<"
	GT     = ">"
	LT_EQ  = "<="
	GT_EQ  = ">="

	DOTDOT = ".."

	PIPE = "|"

	COLON     = ":"
	SEMICOLON = ";"
	COMMA     = ","

	LPAREN = "("
	RPAREN = ")"
	LBRACE = "{"
	RBRACE = "}"
	LBRACK = "["
	RBRACK = "]"

	MAP_START = "#{"

	// Keywords
	LET      = "let"
	CONST    = "const"
	FN       = "fn"
	RETURN   = "return"
	IF       = "if"
	ELSE     = "else"
	WHILE    = "while"
	DO       = "do"
	FOR      = "for"
	IN       = "in"
	BREAK    = "break"
	CONTINUE = "continue"
)

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	ChStart int
	ChEnd   int
	Source  string
}

var keywords = map[string]TokenType{
	"true":  TRUE,
	"false": FALSE,

	"let":   LET,
	"const": CONST,
	"fn":    FN,

	"return":   RETURN,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"do":       DO,
	"for":      FOR,
	"in":       IN,
	"break":    BREAK,
	"continue": CONTINUE,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
