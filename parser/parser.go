package parser

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/quill-lang/quill/ast"
	"github.com/quill-lang/quill/dialect"
	"github.com/quill-lang/quill/lexer"
	"github.com/quill-lang/quill/object"
	"github.com/quill-lang/quill/signature"
	"github.com/quill-lang/quill/token"
)

const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -= *= /= %=
	DISJUNCTION // ||
	CONJUNCTION // &&
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	RANGE       // ..
	SUM         // + -
	PRODUCT     // * / %
	POWER       // **
	PREFIX      // -x !x
	CALL        // f(x)
	INDEX       // xs[i]
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:         ASSIGN,
	token.PLUS_ASSIGN:    ASSIGN,
	token.MINUS_ASSIGN:   ASSIGN,
	token.STAR_ASSIGN:    ASSIGN,
	token.SLASH_ASSIGN:   ASSIGN,
	token.PERCENT_ASSIGN: ASSIGN,
	token.OR:             DISJUNCTION,
	token.AND:            CONJUNCTION,
	token.EQ:             EQUALS,
	token.NOT_EQ:         EQUALS,
	token.LT:             LESSGREATER,
	token.GT:             LESSGREATER,
	token.LT_EQ:          LESSGREATER,
	token.GT_EQ:          LESSGREATER,
	token.DOTDOT:         RANGE,
	token.PLUS:           SUM,
	token.MINUS:          SUM,
	token.STAR:           PRODUCT,
	token.SLASH:          PRODUCT,
	token.PERCENT:        PRODUCT,
	token.POWER:          POWER,
	token.LPAREN:         CALL,
	token.LBRACK:         INDEX,
}

type (
	prefixParseFn func() ast.Node
	infixParseFn  func(ast.Node) ast.Node
)

type Parser struct {
	lex       *lexer.Lexer
	curToken  token.Token
	peekToken token.Token

	Errors object.Errors
	dcfg   dialect.Config

	nesting   []token.Token
	loopDepth int

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(source, input string) *Parser {
	return NewWithDialect(source, input, dialect.Default())
}

func NewWithDialect(source, input string, dcfg dialect.Config) *Parser {
	p := &Parser{
		lex:    lexer.NewWithDialect(source, input, dcfg),
		Errors: []*object.Error{},
		dcfg:   dcfg,
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.DECIMAL, p.parseDecimalLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.CHAR, p.parseCharLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACK, p.parseListLiteral)
	p.registerPrefix(token.MAP_START, p.parseMapLiteral)
	p.registerPrefix(token.LBRACE, p.parseBlockExpression)
	p.registerPrefix(token.IF, p.parseIfExpression)
	p.registerPrefix(token.PIPE, p.parseFuncLiteral)
	p.registerPrefix(token.OR, p.parseNiladicFuncLiteral)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, ty := range []token.TokenType{token.PLUS, token.MINUS, token.STAR,
		token.SLASH, token.PERCENT, token.POWER, token.EQ, token.NOT_EQ,
		token.LT, token.GT, token.LT_EQ, token.GT_EQ, token.DOTDOT} {
		p.registerInfix(ty, p.parseInfixExpression)
	}
	p.registerInfix(token.AND, p.parseLazyInfixExpression)
	p.registerInfix(token.OR, p.parseLazyInfixExpression)
	for _, ty := range []token.TokenType{token.ASSIGN, token.PLUS_ASSIGN,
		token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.PERCENT_ASSIGN} {
		p.registerInfix(ty, p.parseAssignmentExpression)
	}
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACK, p.parseIndexExpression)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Node{}}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.ILLEGAL) {
			break
		}
		before := len(p.Errors) + len(p.lex.Ers)
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		if len(p.Errors)+len(p.lex.Ers) > before {
			p.sync()
		}
		p.nextToken()
	}

	if len(p.nesting) > 0 {
		p.Throw("parse/eol", p.curToken, p.nesting[len(p.nesting)-1])
	}
	p.Errors = append(p.lex.Ers, p.Errors...)
	return program
}

// sync skips ahead to the next statement boundary after an error, so that
// one mistake doesn't bury the rest of the source in spurious complaints.
func (p *Parser) sync() {
	for !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.RBRACE) &&
		!p.curTokenIs(token.EOF) && !p.curTokenIs(token.ILLEGAL) {
		p.nextToken()
	}
}

func (p *Parser) parseStatement() ast.Node {
	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement(false)
	case token.CONST:
		return p.parseLetStatement(true)
	case token.FN:
		return p.parseFnStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.FOR:
		return p.parseForInStatement()
	case token.SEMICOLON:
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement(isConst bool) ast.Node {
	stmt := &ast.LetStatement{Token: p.curToken, Const: isConst}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseFnStatement() ast.Node {
	stmt := &ast.FnStatement{Token: p.curToken}
	if !p.peekTokenIs(token.IDENT) {
		p.Throw("parse/fn/name", p.peekToken)
		return nil
	}
	p.nextToken()
	stmt.Name = p.curToken.Literal
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	sig, ok := p.parseParameters(token.RPAREN)
	if !ok {
		return nil
	}
	stmt.Sig = sig
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Node {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		return stmt
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseBreakStatement() ast.Node {
	if p.dcfg.StrictLoopControl && p.loopDepth == 0 {
		p.Throw("parse/loop/break", p.curToken)
	}
	stmt := &ast.BreakStatement{Token: p.curToken}
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseContinueStatement() ast.Node {
	if p.dcfg.StrictLoopControl && p.loopDepth == 0 {
		p.Throw("parse/loop/continue", p.curToken)
	}
	stmt := &ast.ContinueStatement{Token: p.curToken}
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Node {
	stmt := &ast.WhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.loopDepth++
	stmt.Body = p.parseBlockStatement()
	p.loopDepth--
	return stmt
}

func (p *Parser) parseDoWhileStatement() ast.Node {
	stmt := &ast.DoWhileStatement{Token: p.curToken}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.loopDepth++
	stmt.Body = p.parseBlockStatement()
	p.loopDepth--
	if !p.expectPeek(token.WHILE) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseForInStatement() ast.Node {
	stmt := &ast.ForInStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	if stmt.Iterable == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.loopDepth++
	stmt.Body = p.parseBlockStatement()
	p.loopDepth--
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Node {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expr = p.parseExpression(LOWEST)
	if stmt.Expr == nil {
		return nil
	}
	switch stmt.Expr.(type) {
	case *ast.IfExpression, *ast.BlockStatement:
		// These end in '}' and may stand without a semicolon.
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
	default:
		p.expectSemicolon()
	}
	return stmt
}

// parseBlockStatement is entered with curToken on '{' and leaves it on the
// matching '}'.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken, Statements: []ast.Node{}}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) && !p.curTokenIs(token.ILLEGAL) {
		before := len(p.Errors) + len(p.lex.Ers)
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if len(p.Errors)+len(p.lex.Ers) > before {
			p.sync()
			if p.curTokenIs(token.RBRACE) || p.curTokenIs(token.EOF) || p.curTokenIs(token.ILLEGAL) {
				break
			}
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseExpression(precedence int) ast.Node {
	if p.curTokenIs(token.ILLEGAL) {
		return nil
	}
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.Throw("parse/prefix", p.curToken)
		return nil
	}
	left := prefix()

	for left != nil && !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Node {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Node {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.Throw("parse/int", p.curToken)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseFloatLiteral() ast.Node {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.Throw("parse/float", p.curToken)
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseDecimalLiteral() ast.Node {
	value, err := decimal.NewFromString(p.curToken.Literal)
	if err != nil {
		p.Throw("lex/decimal", p.curToken)
		return nil
	}
	return &ast.DecimalLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Node {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseCharLiteral() ast.Node {
	runes := []rune(p.curToken.Literal)
	if len(runes) != 1 {
		p.Throw("lex/char", p.curToken)
		return nil
	}
	return &ast.CharLiteral{Token: p.curToken, Value: runes[0]}
}

func (p *Parser) parseBooleanLiteral() ast.Node {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parsePrefixExpression() ast.Node {
	expression := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// '()' is the unit literal; anything else between parentheses is just a
// grouped expression and contributes no node of its own.
func (p *Parser) parseGroupedExpression() ast.Node {
	tok := p.curToken
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.UnitLiteral{Token: tok}
	}
	p.nextToken()
	expression := p.parseExpression(LOWEST)
	if expression == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expression
}

func (p *Parser) parseListLiteral() ast.Node {
	lit := &ast.ListLiteral{Token: p.curToken}
	elements, ok := p.parseExpressionList(token.RBRACK)
	if !ok {
		return nil
	}
	lit.Elements = elements
	return lit
}

func (p *Parser) parseMapLiteral() ast.Node {
	lit := &ast.MapLiteral{Token: p.curToken, Pairs: []ast.MapPair{}}
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return lit
	}
	for {
		p.nextToken()
		key := p.parseExpression(LOWEST)
		if key == nil {
			return nil
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		lit.Pairs = append(lit.Pairs, ast.MapPair{Key: key, Value: value})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return lit
}

func (p *Parser) parseBlockExpression() ast.Node {
	return p.parseBlockStatement()
}

func (p *Parser) parseIfExpression() ast.Node {
	expression := &ast.IfExpression{Token: p.curToken}
	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Consequence = p.parseBlockStatement()
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			expression.Alternative = p.parseIfExpression()
			return expression
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		expression.Alternative = p.parseBlockStatement()
	}
	return expression
}

func (p *Parser) parseFuncLiteral() ast.Node {
	if !p.dcfg.AllowClosures {
		p.Throw("parse/closure/off", p.curToken)
		return nil
	}
	lit := &ast.FuncLiteral{Token: p.curToken}
	sig, ok := p.parseParameters(token.PIPE)
	if !ok {
		return nil
	}
	lit.Sig = sig
	p.nextToken()
	lit.Body = p.parseExpression(LOWEST)
	if lit.Body == nil {
		return nil
	}
	return lit
}

// The lexer can't tell the '||' starting a parameterless closure from the
// or-operator, so the niladic case arrives here as a single OR token.
func (p *Parser) parseNiladicFuncLiteral() ast.Node {
	if !p.dcfg.AllowClosures {
		p.Throw("parse/closure/off", p.curToken)
		return nil
	}
	lit := &ast.FuncLiteral{Token: p.curToken, Sig: signature.Signature{}}
	p.nextToken()
	lit.Body = p.parseExpression(LOWEST)
	if lit.Body == nil {
		return nil
	}
	return lit
}

func (p *Parser) parseInfixExpression(left ast.Node) ast.Node {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	precedence := p.curPrecedence()
	if p.curTokenIs(token.POWER) { // right-associative
		precedence--
	}
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseLazyInfixExpression(left ast.Node) ast.Node {
	expression := &ast.LazyInfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseAssignmentExpression(left ast.Node) ast.Node {
	switch left.(type) {
	case *ast.Identifier, *ast.IndexExpression:
	default:
		p.Throw("parse/assign/target", p.curToken)
		return nil
	}
	expression := &ast.AssignmentExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	p.nextToken()
	expression.Right = p.parseExpression(ASSIGN - 1) // right-associative
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseCallExpression(function ast.Node) ast.Node {
	expression := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	expression.Args = args
	return expression
}

func (p *Parser) parseIndexExpression(left ast.Node) ast.Node {
	expression := &ast.IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	expression.Index = p.parseExpression(LOWEST)
	if expression.Index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACK) {
		return nil
	}
	return expression
}

func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Node, bool) {
	list := []ast.Node{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}
	for {
		p.nextToken()
		item := p.parseExpression(LOWEST)
		if item == nil {
			return nil, false
		}
		list = append(list, item)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

// parseParameters is entered with curToken on the opening '(' or '|' and
// leaves it on the closer.
func (p *Parser) parseParameters(end token.TokenType) (signature.Signature, bool) {
	sig := signature.Signature{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return sig, true
	}
	seen := make(map[string]bool)
	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		name := p.curToken.Literal
		if seen[name] {
			p.Throw("parse/params/dup", p.curToken, name)
			return nil, false
		}
		seen[name] = true
		sig = append(sig, signature.NameTypePair{VarName: name, VarType: signature.Any})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(end) {
		return nil, false
	}
	return sig, true
}

func (p *Parser) expectSemicolon() {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return
	}
	if p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		return
	}
	p.Throw("parse/semicolon", p.peekToken)
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	if p.peekTokenIs(token.EOF) || p.peekTokenIs(token.ILLEGAL) {
		// The lexer or the nesting check owns the complaint.
		if !p.peekTokenIs(token.ILLEGAL) && len(p.nesting) == 0 {
			p.Throw("parse/expect", p.peekToken, t, p.peekToken)
		}
		return false
	}
	p.Throw("parse/expect", p.peekToken, t, p.peekToken)
	return false
}

func (p *Parser) peekPrecedence() int {
	if precedence, ok := precedences[p.peekToken.Type]; ok {
		return precedence
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if precedence, ok := precedences[p.curToken.Type]; ok {
		return precedence
	}
	return LOWEST
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lex.NextNonCommentToken()
	p.trackNesting()
}

// trackNesting keeps the open-bracket stack in step with the token stream,
// so that a mismatched closer is reported exactly once, at the closer.
func (p *Parser) trackNesting() {
	switch p.peekToken.Type {
	case token.LPAREN, token.LBRACK, token.LBRACE, token.MAP_START:
		p.nesting = append(p.nesting, p.peekToken)
	case token.RPAREN, token.RBRACK, token.RBRACE:
		if len(p.nesting) == 0 {
			p.Throw("parse/match", p.peekToken)
			return
		}
		opener := p.nesting[len(p.nesting)-1]
		p.nesting = p.nesting[:len(p.nesting)-1]
		if !closes(opener.Type, p.peekToken.Type) {
			p.Throw("parse/nesting", p.peekToken, opener)
		}
	}
}

func closes(opener, closer token.TokenType) bool {
	switch opener {
	case token.LPAREN:
		return closer == token.RPAREN
	case token.LBRACK:
		return closer == token.RBRACK
	default:
		return closer == token.RBRACE
	}
}

func (p *Parser) Throw(errorID string, tok token.Token, args ...any) {
	p.Errors = object.Throw(errorID, p.Errors, tok, args...)
}
