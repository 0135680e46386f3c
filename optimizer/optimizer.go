// Package optimizer rewrites a parsed tree into a cheaper equivalent. It
// folds constant arithmetic, substitutes constants, and removes branches
// that can never be taken. It is careful to a fault: anything that could
// change what a script does, including which errors it throws, is left
// alone, and a call is never removed even when its result is unused.
package optimizer

import (
	"github.com/quill-lang/quill/ast"
	"github.com/quill-lang/quill/dialect"
	"github.com/quill-lang/quill/evaluator"
	"github.com/quill-lang/quill/object"
	"github.com/quill-lang/quill/token"
)

func Optimize(program *ast.Program, dcfg dialect.Config) *ast.Program {
	o := &optimizer{dcfg: dcfg}
	scope := newConstScope(nil)
	return &ast.Program{Statements: o.optimizeStatements(program.Statements, scope)}
}

type optimizer struct {
	dcfg dialect.Config
}

// A constScope tracks which names are known to hold which literal values.
// A name bound by anything other than a literal-valued const maps to nil,
// which shadows any binding further out.
type constScope struct {
	parent *constScope
	known  map[string]ast.Node
}

func newConstScope(parent *constScope) *constScope {
	return &constScope{parent: parent, known: make(map[string]ast.Node)}
}

func (cs *constScope) lookup(name string) ast.Node {
	for s := cs; s != nil; s = s.parent {
		if node, ok := s.known[name]; ok {
			return node
		}
	}
	return nil
}

func (o *optimizer) optimize(node ast.Node, scope *constScope) ast.Node {
	switch node := node.(type) {

	case *ast.LetStatement:
		value := o.optimize(node.Value, scope)
		if node.Const && isLiteral(value) {
			scope.known[node.Name.Value] = value
		} else {
			scope.known[node.Name.Value] = nil
		}
		return &ast.LetStatement{Token: node.Token, Name: node.Name, Value: value, Const: node.Const}

	case *ast.FnStatement:
		// A function body sees nothing of the scope it is written in.
		return &ast.FnStatement{Token: node.Token, Name: node.Name, Sig: node.Sig,
			Body: o.optimizeBlock(node.Body, newConstScope(nil))}

	case *ast.BlockStatement:
		return o.optimizeBlock(node, newConstScope(scope))

	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{Token: node.Token, Expr: o.optimize(node.Expr, scope)}

	case *ast.ReturnStatement:
		if node.Value == nil {
			return node
		}
		return &ast.ReturnStatement{Token: node.Token, Value: o.optimize(node.Value, scope)}

	case *ast.WhileStatement:
		condition := o.optimize(node.Condition, scope)
		// A loop that can never be entered evaluates to unit without
		// touching its body.
		if cond, ok := condition.(*ast.BooleanLiteral); ok && !cond.Value {
			return &ast.ExpressionStatement{Token: node.Token,
				Expr: &ast.UnitLiteral{Token: node.Token}}
		}
		inner := newConstScope(scope)
		return &ast.WhileStatement{Token: node.Token,
			Condition: condition,
			Body:      o.optimizeBlock(node.Body, inner)}

	case *ast.DoWhileStatement:
		inner := newConstScope(scope)
		return &ast.DoWhileStatement{Token: node.Token,
			Body:      o.optimizeBlock(node.Body, inner),
			Condition: o.optimize(node.Condition, scope)}

	case *ast.ForInStatement:
		inner := newConstScope(scope)
		inner.known[node.Name.Value] = nil
		return &ast.ForInStatement{Token: node.Token, Name: node.Name,
			Iterable: o.optimize(node.Iterable, scope),
			Body:     o.optimizeBlock(node.Body, inner)}

	case *ast.Identifier:
		if literal := scope.lookup(node.Value); literal != nil {
			return literal
		}
		return node

	case *ast.PrefixExpression:
		right := o.optimize(node.Right, scope)
		if isLiteral(right) {
			if folded := o.foldPrefix(node.Operator, right, node.Token); folded != nil {
				return folded
			}
		}
		return &ast.PrefixExpression{Token: node.Token, Operator: node.Operator, Right: right}

	case *ast.InfixExpression:
		left := o.optimize(node.Left, scope)
		right := o.optimize(node.Right, scope)
		if node.Operator != ".." && isLiteral(left) && isLiteral(right) {
			if folded := o.foldInfix(node.Operator, left, right, node.Token); folded != nil {
				return folded
			}
		}
		return &ast.InfixExpression{Token: node.Token, Left: left, Operator: node.Operator, Right: right}

	case *ast.LazyInfixExpression:
		return o.optimizeLazyInfix(node, scope)

	case *ast.AssignmentExpression:
		// The target is a place, not a value: only its indices and the
		// right-hand side are fair game.
		left := node.Left
		if index, ok := node.Left.(*ast.IndexExpression); ok {
			left = o.optimizeIndexTarget(index, scope)
		}
		return &ast.AssignmentExpression{Token: node.Token, Left: left,
			Operator: node.Operator, Right: o.optimize(node.Right, scope)}

	case *ast.IndexExpression:
		return &ast.IndexExpression{Token: node.Token,
			Left:  o.optimize(node.Left, scope),
			Index: o.optimize(node.Index, scope)}

	case *ast.IfExpression:
		return o.optimizeIf(node, scope)

	case *ast.ListLiteral:
		elements := make([]ast.Node, 0, len(node.Elements))
		for _, el := range node.Elements {
			elements = append(elements, o.optimize(el, scope))
		}
		return &ast.ListLiteral{Token: node.Token, Elements: elements}

	case *ast.MapLiteral:
		pairs := make([]ast.MapPair, 0, len(node.Pairs))
		for _, pair := range node.Pairs {
			pairs = append(pairs, ast.MapPair{
				Key:   o.optimize(pair.Key, scope),
				Value: o.optimize(pair.Value, scope),
			})
		}
		return &ast.MapLiteral{Token: node.Token, Pairs: pairs}

	case *ast.CallExpression:
		args := make([]ast.Node, 0, len(node.Args))
		for _, a := range node.Args {
			args = append(args, o.optimize(a, scope))
		}
		function := node.Function
		if _, ok := function.(*ast.Identifier); !ok {
			function = o.optimize(function, scope)
		}
		return &ast.CallExpression{Token: node.Token, Function: function, Args: args}

	case *ast.FuncLiteral:
		inner := newConstScope(scope)
		for _, pair := range node.Sig {
			inner.known[pair.VarName] = nil
		}
		return &ast.FuncLiteral{Token: node.Token, Sig: node.Sig,
			Body: o.optimize(node.Body, inner)}
	}

	// Literals and the control keywords have nothing to optimize.
	return node
}

func (o *optimizer) optimizeBlock(block *ast.BlockStatement, scope *constScope) *ast.BlockStatement {
	return &ast.BlockStatement{Token: block.Token,
		Statements: o.optimizeStatements(block.Statements, scope)}
}

// optimizeStatements rewrites a statement list and prunes statements that
// can neither do nor yield anything: a bare '()' or an empty block. The
// final statement is the value of its list, so an inert one survives there
// unless everything else was pruned too, in which case the list's value is
// unit either way.
func (o *optimizer) optimizeStatements(stmts []ast.Node, scope *constScope) []ast.Node {
	optimized := make([]ast.Node, 0, len(stmts))
	for _, stmt := range stmts {
		optimized = append(optimized, o.optimize(stmt, scope))
	}
	kept := make([]ast.Node, 0, len(optimized))
	for _, stmt := range optimized {
		if !isInert(stmt) {
			kept = append(kept, stmt)
		}
	}
	if len(kept) == 0 {
		return kept
	}
	if last := optimized[len(optimized)-1]; isInert(last) {
		kept = append(kept, last)
	}
	return kept
}

func isInert(node ast.Node) bool {
	stmt, ok := node.(*ast.ExpressionStatement)
	if !ok {
		return false
	}
	switch expr := stmt.Expr.(type) {
	case *ast.UnitLiteral:
		return true
	case *ast.BlockStatement:
		return len(expr.Statements) == 0
	}
	return false
}

// The target of an indexed assignment keeps its shape, but constants in its
// index expressions can still be substituted and folded.
func (o *optimizer) optimizeIndexTarget(index *ast.IndexExpression, scope *constScope) ast.Node {
	left := index.Left
	if nested, ok := left.(*ast.IndexExpression); ok {
		left = o.optimizeIndexTarget(nested, scope)
	}
	return &ast.IndexExpression{Token: index.Token, Left: left,
		Index: o.optimize(index.Index, scope)}
}

// A lazy operator with a decided left side either never evaluates its right
// side, in which case it can go, or always does. In the latter case the
// expression can only be replaced when the right side is a literal bool,
// because 'true && x' still type-checks x at runtime and 'x' alone doesn't.
func (o *optimizer) optimizeLazyInfix(node *ast.LazyInfixExpression, scope *constScope) ast.Node {
	left := o.optimize(node.Left, scope)
	right := o.optimize(node.Right, scope)
	if lhs, ok := left.(*ast.BooleanLiteral); ok {
		if node.Operator == "&&" && !lhs.Value {
			return lhs
		}
		if node.Operator == "||" && lhs.Value {
			return lhs
		}
		if rhs, ok := right.(*ast.BooleanLiteral); ok {
			return rhs
		}
	}
	return &ast.LazyInfixExpression{Token: node.Token, Left: left, Operator: node.Operator, Right: right}
}

func (o *optimizer) optimizeIf(node *ast.IfExpression, scope *constScope) ast.Node {
	condition := o.optimize(node.Condition, scope)
	consequence := o.optimizeBlock(node.Consequence, newConstScope(scope))
	var alternative ast.Node
	if node.Alternative != nil {
		alternative = o.optimize(node.Alternative, scope)
	}
	if cond, ok := condition.(*ast.BooleanLiteral); ok {
		if cond.Value {
			return consequence
		}
		if alternative != nil {
			return alternative
		}
		return &ast.UnitLiteral{Token: node.Token}
	}
	return &ast.IfExpression{Token: node.Token, Condition: condition,
		Consequence: consequence, Alternative: alternative}
}

func (o *optimizer) foldPrefix(operator string, right ast.Node, tok token.Token) ast.Node {
	if operator == "!" {
		if b, ok := right.(*ast.BooleanLiteral); ok {
			return makeBoolNode(!b.Value, tok)
		}
		return nil
	}
	result := evaluator.Negate(literalToObject(right), tok)
	return o.objectToLiteral(result, tok)
}

func (o *optimizer) foldInfix(operator string, left, right ast.Node, tok token.Token) ast.Node {
	result := evaluator.Operate(operator, literalToObject(left), literalToObject(right), tok)
	return o.objectToLiteral(result, tok)
}

func isLiteral(node ast.Node) bool {
	switch node.(type) {
	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.DecimalLiteral,
		*ast.StringLiteral, *ast.CharLiteral, *ast.BooleanLiteral, *ast.UnitLiteral:
		return true
	}
	return false
}

func literalToObject(node ast.Node) object.Object {
	switch node := node.(type) {
	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}
	case *ast.FloatLiteral:
		return &object.Float{Value: node.Value}
	case *ast.DecimalLiteral:
		return &object.Decimal{Value: node.Value}
	case *ast.StringLiteral:
		return &object.String{Value: node.Value}
	case *ast.CharLiteral:
		return &object.Char{Value: node.Value}
	case *ast.BooleanLiteral:
		return &object.Boolean{Value: node.Value}
	case *ast.UnitLiteral:
		return object.UNIT
	}
	panic("optimizer: not a literal")
}

// objectToLiteral turns a folded value back into source form. It returns nil
// when the value shouldn't be folded: an error, which must keep happening at
// runtime, or a string grown past the dialect's limit, which must still trip
// it there.
func (o *optimizer) objectToLiteral(value object.Object, tok token.Token) ast.Node {
	switch value := value.(type) {
	case *object.Integer:
		return &ast.IntegerLiteral{Token: retoken(tok, token.INT, value), Value: value.Value}
	case *object.Float:
		return &ast.FloatLiteral{Token: retoken(tok, token.FLOAT, value), Value: value.Value}
	case *object.Decimal:
		return &ast.DecimalLiteral{Token: token.Token{Type: token.DECIMAL,
			Literal: value.Value.String(), Line: tok.Line, ChStart: tok.ChStart,
			ChEnd: tok.ChEnd, Source: tok.Source}, Value: value.Value}
	case *object.String:
		if max := o.dcfg.MaxStringSize; max > 0 && len(value.Value) > max {
			return nil
		}
		return &ast.StringLiteral{Token: retoken(tok, token.STRING, value), Value: value.Value}
	case *object.Char:
		return &ast.CharLiteral{Token: retoken(tok, token.CHAR, value), Value: value.Value}
	case *object.Boolean:
		return makeBoolNode(value.Value, tok)
	}
	return nil
}

func makeBoolNode(value bool, tok token.Token) *ast.BooleanLiteral {
	var t token.TokenType = token.FALSE
	if value {
		t = token.TRUE
	}
	return &ast.BooleanLiteral{Token: token.Token{Type: t, Literal: string(t),
		Line: tok.Line, ChStart: tok.ChStart, ChEnd: tok.ChEnd, Source: tok.Source}, Value: value}
}

func retoken(tok token.Token, t token.TokenType, value object.Object) token.Token {
	return token.Token{Type: t, Literal: value.Inspect(object.ViewStdOut),
		Line: tok.Line, ChStart: tok.ChStart, ChEnd: tok.ChEnd, Source: tok.Source}
}
