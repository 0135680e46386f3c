package ast

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/quill-lang/quill/signature"
	"github.com/quill-lang/quill/token"
)

// The base Node interface. String produces source text that parses back to a
// structurally identical tree, which is what makes the pretty-printer
// testable.
type Node interface {
	GetToken() token.Token
	String() string
}

// A Program is the root of the tree: the top-level statements in order.
type Program struct {
	Statements []Node
}

func (p *Program) GetToken() token.Token {
	if len(p.Statements) == 0 {
		return token.Token{}
	}
	return p.Statements[0].GetToken()
}

func (p *Program) String() string {
	parts := []string{}
	for _, s := range p.Statements {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, " ")
}

type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) String() string        { return i.Value }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) GetToken() token.Token { return il.Token }
func (il *IntegerLiteral) String() string        { return il.Token.Literal }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }
func (fl *FloatLiteral) String() string        { return fl.Token.Literal }

type DecimalLiteral struct {
	Token token.Token
	Value decimal.Decimal
}

func (dl *DecimalLiteral) GetToken() token.Token { return dl.Token }
func (dl *DecimalLiteral) String() string        { return dl.Token.Literal + "d" }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) GetToken() token.Token { return sl.Token }
func (sl *StringLiteral) String() string        { return escape(sl.Value, '"') }

type CharLiteral struct {
	Token token.Token
	Value rune
}

func (cl *CharLiteral) GetToken() token.Token { return cl.Token }
func (cl *CharLiteral) String() string        { return escape(string(cl.Value), '\'') }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) GetToken() token.Token { return b.Token }
func (b *BooleanLiteral) String() string        { return b.Token.Literal }

type UnitLiteral struct {
	Token token.Token
}

func (u *UnitLiteral) GetToken() token.Token { return u.Token }
func (u *UnitLiteral) String() string        { return "()" }

type ListLiteral struct {
	Token    token.Token // The [ token
	Elements []Node
}

func (le *ListLiteral) GetToken() token.Token { return le.Token }
func (le *ListLiteral) String() string {
	elements := []string{}
	for _, el := range le.Elements {
		elements = append(elements, el.String())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

type MapPair struct {
	Key   Node
	Value Node
}

type MapLiteral struct {
	Token token.Token // The #{ token
	Pairs []MapPair
}

func (ml *MapLiteral) GetToken() token.Token { return ml.Token }
func (ml *MapLiteral) String() string {
	pairs := []string{}
	for _, pair := range ml.Pairs {
		pairs = append(pairs, pair.Key.String()+": "+pair.Value.String())
	}
	return "#{" + strings.Join(pairs, ", ") + "}"
}

type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Node
}

func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(pe.Operator)
	out.WriteString(pe.Right.String())
	out.WriteString(")")

	return out.String()
}

type InfixExpression struct {
	Token    token.Token
	Left     Node
	Operator string
	Right    Node
}

func (ie *InfixExpression) GetToken() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

// The only difference from InfixExpression is that the evaluator may not
// evaluate the right branch at all.
type LazyInfixExpression struct {
	Token    token.Token
	Left     Node
	Operator string
	Right    Node
}

func (ie *LazyInfixExpression) GetToken() token.Token { return ie.Token }
func (ie *LazyInfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

// An AssignmentExpression's Operator is "=" or one of the compound forms
// "+=", "-=", "*=", "/=", "%=". Left is an Identifier or an IndexExpression;
// the parser rejects anything else.
type AssignmentExpression struct {
	Token    token.Token
	Left     Node
	Operator string
	Right    Node
}

func (ae *AssignmentExpression) GetToken() token.Token { return ae.Token }
func (ae *AssignmentExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ae.Left.String())
	out.WriteString(" " + ae.Operator + " ")
	out.WriteString(ae.Right.String())
	out.WriteString(")")

	return out.String()
}

type IndexExpression struct {
	Token token.Token // The [ token
	Left  Node
	Index Node
}

func (ie *IndexExpression) GetToken() token.Token { return ie.Token }
func (ie *IndexExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString("[")
	out.WriteString(ie.Index.String())
	out.WriteString("])")

	return out.String()
}

type CallExpression struct {
	Token    token.Token // The ( token
	Function Node
	Args     []Node
}

func (ce *CallExpression) GetToken() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	args := []string{}
	for _, a := range ce.Args {
		args = append(args, a.String())
	}
	return ce.Function.String() + "(" + strings.Join(args, ", ") + ")"
}

// A FuncLiteral is a closure: '|a, b| body'. Capture happens at evaluation
// time, not here.
type FuncLiteral struct {
	Token token.Token // The | token
	Sig   signature.Signature
	Body  Node
}

func (fl *FuncLiteral) GetToken() token.Token { return fl.Token }
func (fl *FuncLiteral) String() string {
	return "|" + fl.Sig.String() + "| " + fl.Body.String()
}

// If is an expression: it evaluates to the value of the branch taken, or to
// unit when the predicate is false and there is no alternative. Alternative
// is nil, a *BlockStatement, or another *IfExpression ('else if').
type IfExpression struct {
	Token       token.Token
	Condition   Node
	Consequence *BlockStatement
	Alternative Node
}

func (ie *IfExpression) GetToken() token.Token { return ie.Token }
func (ie *IfExpression) String() string {
	result := "if " + ie.Condition.String() + " " + ie.Consequence.String()
	if ie.Alternative != nil {
		result = result + " else " + ie.Alternative.String()
	}
	return result
}

type BlockStatement struct {
	Token      token.Token // The { token
	Statements []Node
}

func (bs *BlockStatement) GetToken() token.Token { return bs.Token }
func (bs *BlockStatement) String() string {
	parts := []string{}
	for _, s := range bs.Statements {
		parts = append(parts, s.String())
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

type LetStatement struct {
	Token token.Token // The let or const token
	Name  *Identifier
	Value Node
	Const bool
}

func (ls *LetStatement) GetToken() token.Token { return ls.Token }
func (ls *LetStatement) String() string {
	keyword := "let"
	if ls.Const {
		keyword = "const"
	}
	return keyword + " " + ls.Name.Value + " = " + ls.Value.String() + ";"
}

// An FnStatement is a named, top-level-or-nested function definition. Its
// evaluation registers the function; calling it goes through the registry.
type FnStatement struct {
	Token token.Token // The fn token
	Name  string
	Sig   signature.Signature
	Body  *BlockStatement
}

func (fs *FnStatement) GetToken() token.Token { return fs.Token }
func (fs *FnStatement) String() string {
	return "fn " + fs.Name + "(" + fs.Sig.String() + ") " + fs.Body.String()
}

type ReturnStatement struct {
	Token token.Token
	Value Node // nil means 'return;', i.e. return unit
}

func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return;"
	}
	return "return " + rs.Value.String() + ";"
}

type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) GetToken() token.Token { return bs.Token }
func (bs *BreakStatement) String() string        { return "break;" }

type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) GetToken() token.Token { return cs.Token }
func (cs *ContinueStatement) String() string        { return "continue;" }

type WhileStatement struct {
	Token     token.Token
	Condition Node
	Body      *BlockStatement
}

func (ws *WhileStatement) GetToken() token.Token { return ws.Token }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + " " + ws.Body.String()
}

type DoWhileStatement struct {
	Token     token.Token
	Body      *BlockStatement
	Condition Node
}

func (dw *DoWhileStatement) GetToken() token.Token { return dw.Token }
func (dw *DoWhileStatement) String() string {
	return "do " + dw.Body.String() + " while " + dw.Condition.String() + ";"
}

type ForInStatement struct {
	Token    token.Token
	Name     *Identifier
	Iterable Node
	Body     *BlockStatement
}

func (fi *ForInStatement) GetToken() token.Token { return fi.Token }
func (fi *ForInStatement) String() string {
	return "for " + fi.Name.Value + " in " + fi.Iterable.String() + " " + fi.Body.String()
}

type ExpressionStatement struct {
	Token token.Token
	Expr  Node
}

func (es *ExpressionStatement) GetToken() token.Token { return es.Token }
func (es *ExpressionStatement) String() string        { return es.Expr.String() + ";" }

func escape(s string, quote rune) string {
	result := string(quote)
	for _, ch := range s {
		switch ch {
		case '\n':
			result = result + "\\n"
		case '\r':
			result = result + "\\r"
		case '\t':
			result = result + "\\t"
		case '\\':
			result = result + "\\\\"
		case quote:
			result = result + "\\" + string(quote)
		default:
			result = result + string(ch)
		}
	}
	return result + string(quote)
}
