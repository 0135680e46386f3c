package lexer

import (
	"io"
	"strconv"
	"strings"

	"github.com/quill-lang/quill/dialect"
	"github.com/quill-lang/quill/object"
	"github.com/quill-lang/quill/token"
)

type Lexer struct {
	reader strings.Reader
	ch     rune // current rune under examination
	line   int  // the line number
	char   int  // the character number within the line
	tstart int  // the value of char at the start of a token
	tline  int  // the value of line at the start of a token
	dcfg   dialect.Config
	Ers    object.Errors
	source string
}

func New(source, input string) *Lexer {
	return NewWithDialect(source, input, dialect.Default())
}

func NewWithDialect(source, input string, dcfg dialect.Config) *Lexer {
	r := *strings.NewReader(input)
	l := &Lexer{
		reader: r,
		line:   1,
		char:   -1,
		dcfg:   dcfg,
		Ers:    []*object.Error{},
		source: source,
	}
	l.readChar()
	return l
}

func (l *Lexer) NextNonCommentToken() token.Token {
	for tok := l.NextToken(); ; tok = l.NextToken() {
		if tok.Type != token.COMMENT {
			return tok
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	l.tstart = l.char
	l.tline = l.line

	var tok token.Token

	switch l.ch {
	case '=':
		tok = l.switch2(token.ASSIGN, "=", token.EQ, "==")
	case '!':
		tok = l.switch2(token.BANG, "!", token.NOT_EQ, "!=")
	case '<':
		tok = l.switch2(token.LT, "<", token.LT_EQ, "<=")
	case '>':
		tok = l.switch2(token.GT, ">", token.GT_EQ, ">=")
	case '+':
		tok = l.switch2(token.PLUS, "+", token.PLUS_ASSIGN, "+=")
	case '-':
		tok = l.switch2(token.MINUS, "-", token.MINUS_ASSIGN, "-=")
	case '%':
		tok = l.switch2(token.PERCENT, "%", token.PERCENT_ASSIGN, "%=")
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			tok = l.NewToken(token.POWER, "**")
		} else {
			tok = l.switch2(token.STAR, "*", token.STAR_ASSIGN, "*=")
		}
	case '/':
		switch l.peekChar() {
		case '/':
			l.readChar()
			return l.endToken(l.NewToken(token.COMMENT, l.readLineComment()))
		case '*':
			l.readChar()
			comment, ok := l.readBlockComment()
			tok = l.NewToken(token.COMMENT, comment)
			if !ok {
				l.Throw("lex/comment", tok)
				tok = l.NewToken(token.ILLEGAL, "lex/comment")
			}
			return l.endToken(tok)
		case '=':
			l.readChar()
			tok = l.NewToken(token.SLASH_ASSIGN, "/=")
		default:
			tok = l.NewToken(token.SLASH, "/")
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = l.NewToken(token.AND, "&&")
		} else {
			l.Throw("lex/ill", l.NewToken(token.ILLEGAL, "lex/ill"), l.ch)
			tok = l.NewToken(token.ILLEGAL, "lex/ill")
		}
	case '|':
		tok = l.switch2(token.PIPE, "|", token.OR, "||")
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			tok = l.NewToken(token.DOTDOT, "..")
		} else {
			l.Throw("lex/ill", l.NewToken(token.ILLEGAL, "lex/ill"), l.ch)
			tok = l.NewToken(token.ILLEGAL, "lex/ill")
		}
	case '#':
		if l.peekChar() == '{' {
			l.readChar()
			tok = l.NewToken(token.MAP_START, "#{")
		} else {
			l.Throw("lex/ill", l.NewToken(token.ILLEGAL, "lex/ill"), l.ch)
			tok = l.NewToken(token.ILLEGAL, "lex/ill")
		}
	case ':':
		tok = l.NewToken(token.COLON, ":")
	case ';':
		tok = l.NewToken(token.SEMICOLON, ";")
	case ',':
		tok = l.NewToken(token.COMMA, ",")
	case '(':
		tok = l.NewToken(token.LPAREN, "(")
	case ')':
		tok = l.NewToken(token.RPAREN, ")")
	case '{':
		tok = l.NewToken(token.LBRACE, "{")
	case '}':
		tok = l.NewToken(token.RBRACE, "}")
	case '[':
		tok = l.NewToken(token.LBRACK, "[")
	case ']':
		tok = l.NewToken(token.RBRACK, "]")
	case '"':
		// The token is made before the string is read, so that an
		// unterminated literal reports the opening quote's position.
		tok = l.NewToken(token.STRING, "")
		s, ok := l.readString()
		tok.Literal = s
		if !ok {
			l.Throw("lex/quote", tok)
			tok.Type = token.ILLEGAL
			tok.Literal = "lex/quote"
		}
		return l.endToken(tok)
	case '\'':
		tok = l.NewToken(token.CHAR, "")
		r, ok := l.readCharLiteral()
		tok.Literal = string(r)
		if !ok {
			l.Throw("lex/char", tok)
			tok.Type = token.ILLEGAL
			tok.Literal = "lex/char"
		}
		return l.endToken(tok)
	case 0:
		tok = l.NewToken(token.EOF, "EOF")
	default:
		if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'o' || l.peekChar() == 'x') {
			return l.endToken(l.readPrefixedNumber())
		}
		if isDigit(l.ch) {
			return l.endToken(l.readNumber())
		}
		if isLegalStart(l.ch) {
			literal := l.readIdentifier()
			return l.endToken(l.NewToken(token.LookupIdent(literal), literal))
		}
		l.Throw("lex/ill", l.NewToken(token.ILLEGAL, "lex/ill"), l.ch)
		tok = l.NewToken(token.ILLEGAL, "lex/ill")
	}
	return l.endToken(tok)
}

// endToken stamps the position of the token just made and advances past its
// final rune.
func (l *Lexer) endToken(tok token.Token) token.Token {
	tok.Line = l.tline
	tok.ChStart = l.tstart
	tok.ChEnd = l.char
	l.readChar()
	return tok
}

// switch2 resolves the longest-match ambiguity between a one-rune operator
// and its two-rune extension ending in '=' or a doubling, e.g. '=' vs '=='.
func (l *Lexer) switch2(t1 token.TokenType, lit1 string, t2 token.TokenType, lit2 string) token.Token {
	if l.peekChar() == rune(lit2[1]) {
		l.readChar()
		return l.NewToken(t2, lit2)
	}
	return l.NewToken(t1, lit1)
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func (l *Lexer) readChar() {
	l.char++
	if l.ch == '\n' {
		l.line++
		l.char = 0
	}
	if l.reader.Len() == 0 {
		l.ch = 0
	} else {
		l.ch, _, _ = l.reader.ReadRune()
	}
}

func (l *Lexer) peekChar() rune {
	if l.reader.Len() == 0 {
		return 0
	}
	ru, _, _ := l.reader.ReadRune()
	l.reader.UnreadRune()
	return ru
}

func (l *Lexer) readLineComment() string {
	result := ""
	for !(l.peekChar() == '\n' || l.peekChar() == 0) {
		result = result + string(l.peekChar())
		l.readChar()
	}
	return result
}

func (l *Lexer) readBlockComment() (string, bool) {
	result := ""
	for {
		l.readChar()
		if l.ch == 0 {
			return result, false
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			return result, true
		}
		result = result + string(l.ch)
	}
}

func (l *Lexer) readNumber() token.Token {
	numString := l.readDigits()
	isFloat := false
	// A '.' is part of the number only when a digit follows: '1..5' is a
	// range, not a malformed float.
	if l.peekChar() == '.' && isDigit(l.peekTwo()) {
		l.readChar()
		isFloat = true
		numString = numString + "." + l.readTrailingDigits()
	}
	if l.peekChar() == 'd' || l.peekChar() == 'D' {
		l.readChar()
		if !l.dcfg.AllowDecimalLiterals {
			l.Throw("lex/decimal/off", l.NewToken(token.ILLEGAL, "lex/decimal/off"))
			return l.NewToken(token.ILLEGAL, "lex/decimal/off")
		}
		return l.NewToken(token.DECIMAL, numString)
	}
	if isFloat {
		if _, err := strconv.ParseFloat(numString, 64); err != nil {
			l.Throw("lex/num", l.NewToken(token.ILLEGAL, "lex/num"), numString)
			return l.NewToken(token.ILLEGAL, "lex/num")
		}
		return l.NewToken(token.FLOAT, numString)
	}
	if _, err := strconv.ParseInt(numString, 10, 64); err != nil {
		l.Throw("lex/num", l.NewToken(token.ILLEGAL, "lex/num"), numString)
		return l.NewToken(token.ILLEGAL, "lex/num")
	}
	return l.NewToken(token.INT, numString)
}

func (l *Lexer) readPrefixedNumber() token.Token {
	base := l.peekChar()
	l.readChar() // the 0
	numString := l.readTrailingDigitsOf(base)
	var radix int
	var errId string
	switch base {
	case 'b':
		radix, errId = 2, "lex/num/bin"
	case 'o':
		radix, errId = 8, "lex/num/oct"
	default:
		radix, errId = 16, "lex/num/hex"
	}
	num, err := strconv.ParseInt(numString, radix, 64)
	if err != nil || isLegalNonStart(l.peekChar()) {
		l.Throw(errId, l.NewToken(token.ILLEGAL, errId), numString)
		return l.NewToken(token.ILLEGAL, errId)
	}
	return l.NewToken(token.INT, strconv.FormatInt(num, 10))
}

func (l *Lexer) readDigits() string {
	result := string(l.ch)
	for isDigit(l.peekChar()) {
		l.readChar()
		result = result + string(l.ch)
	}
	return result
}

func (l *Lexer) readTrailingDigits() string {
	result := ""
	for isDigit(l.peekChar()) {
		l.readChar()
		result = result + string(l.ch)
	}
	return result
}

func (l *Lexer) readTrailingDigitsOf(base rune) string {
	result := ""
	for isBaseDigit(l.peekChar(), base) {
		l.readChar()
		result = result + string(l.ch)
	}
	return result
}

func (l *Lexer) readString() (string, bool) {
	result := ""
	for {
		l.readChar()
		if l.ch == '"' {
			return result, true
		}
		if l.ch == 0 || l.ch == '\n' || l.ch == '\r' {
			return result, false
		}
		if l.ch == '\\' {
			r, ok := l.readEscape()
			if !ok {
				return result, false
			}
			result = result + string(r)
			continue
		}
		result = result + string(l.ch)
	}
}

func (l *Lexer) readCharLiteral() (rune, bool) {
	l.readChar()
	if l.ch == 0 || l.ch == '\n' || l.ch == '\'' {
		return 0, false
	}
	r := l.ch
	if l.ch == '\\' {
		var ok bool
		r, ok = l.readEscape()
		if !ok {
			return 0, false
		}
	}
	if l.peekChar() != '\'' {
		return 0, false
	}
	l.readChar()
	return r, true
}

func (l *Lexer) readEscape() (rune, bool) {
	l.readChar()
	switch l.ch {
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case '0':
		return 0, true
	case '"':
		return '"', true
	case '\'':
		return '\'', true
	case '\\':
		return '\\', true
	default:
		l.Throw("lex/escape", l.NewToken(token.ILLEGAL, "lex/escape"), l.ch)
		return 0, false
	}
}

func (l *Lexer) readIdentifier() string {
	result := string(l.ch)
	for isLegalNonStart(l.peekChar()) {
		l.readChar()
		result = result + string(l.ch)
	}
	return result
}

// peekTwo looks two runes ahead without moving the cursor. It is only ever
// needed to tell a float's decimal point from the start of a range operator.
func (l *Lexer) peekTwo() rune {
	_, s1, err := l.reader.ReadRune()
	if err != nil {
		return 0
	}
	r2, s2, err2 := l.reader.ReadRune()
	if err2 != nil {
		r2, s2 = 0, 0
	}
	l.reader.Seek(-int64(s1+s2), io.SeekCurrent)
	return r2
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isBaseDigit(ch rune, base rune) bool {
	switch base {
	case 'b':
		return ch == '0' || ch == '1'
	case 'o':
		return '0' <= ch && ch <= '7'
	default:
		return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
	}
}

func isLegalStart(ch rune) bool {
	return isLetter(ch)
}

func isLegalNonStart(ch rune) bool {
	return isLetter(ch) || isDigit(ch)
}

func (l *Lexer) NewToken(tokenType token.TokenType, st string) token.Token {
	return token.Token{Type: tokenType, Literal: st, Source: l.source, Line: l.tline, ChStart: l.tstart, ChEnd: l.char}
}

func (l *Lexer) Throw(errorID string, tok token.Token, args ...any) {
	l.Ers = object.Throw(errorID, l.Ers, tok, args...)
}
