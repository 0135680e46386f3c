// Package evaluator walks a parsed tree and produces a value. An Evaluator
// is made for one run: its operation and depth counters start at zero and
// die with it.
package evaluator

import (
	"fmt"
	"strings"

	"github.com/quill-lang/quill/ast"
	"github.com/quill-lang/quill/dialect"
	"github.com/quill-lang/quill/object"
	"github.com/quill-lang/quill/registry"
	"github.com/quill-lang/quill/signature"
	"github.com/quill-lang/quill/token"
)

type Evaluator struct {
	reg  *registry.Registry
	dcfg dialect.Config

	ops       int
	depth     int
	interrupt func() bool
}

func New(reg *registry.Registry, dcfg dialect.Config) *Evaluator {
	return &Evaluator{reg: reg, dcfg: dcfg}
}

// SetInterrupt installs a hook polled during evaluation. When it returns
// true the evaluation stops with an error.
func (ev *Evaluator) SetInterrupt(fn func() bool) {
	ev.interrupt = fn
}

// Eval is the heart of the engine. Errors and the return, break, and
// continue signals are ordinary objects: they come back up through the
// recursion and are consumed at the boundary they belong to, or reach the
// top and are the result.
func (ev *Evaluator) Eval(node ast.Node, scope *object.Scope) object.Object {
	if err := ev.tick(node); err != nil {
		return err
	}

	switch node := node.(type) {

	case *ast.Program:
		return ev.evalProgram(node, scope)

	case *ast.ExpressionStatement:
		return ev.Eval(node.Expr, scope)

	case *ast.LetStatement:
		value := ev.Eval(node.Value, scope)
		if isError(value) {
			return value
		}
		scope.Declare(node.Name.Value, value, node.Const)
		return object.UNIT

	case *ast.FnStatement:
		ev.reg.Add(registry.Function{Name: node.Name, Sig: node.Sig, Body: node.Body})
		return object.UNIT

	case *ast.BlockStatement:
		scope.Push()
		result := ev.evalStatements(node.Statements, scope)
		scope.Pop()
		return result

	case *ast.ReturnStatement:
		if node.Value == nil {
			return &object.ReturnSignal{Value: object.UNIT}
		}
		value := ev.Eval(node.Value, scope)
		if isError(value) {
			return value
		}
		return &object.ReturnSignal{Value: value}

	case *ast.BreakStatement:
		return object.BREAK

	case *ast.ContinueStatement:
		return object.CONT

	case *ast.WhileStatement:
		for {
			stop, result := ev.loopStep(node.Condition, node.Body, scope)
			if stop {
				return result
			}
		}

	case *ast.DoWhileStatement:
		for {
			result := ev.Eval(node.Body, scope)
			switch result.(type) {
			case *object.Error, *object.ReturnSignal:
				return result
			case *object.BreakSignal:
				return object.UNIT
			}
			cond := ev.Eval(node.Condition, scope)
			if isError(cond) {
				return cond
			}
			b, ok := cond.(*object.Boolean)
			if !ok {
				return ev.throw("eval/type/truthy", node.Condition.GetToken(), object.TrueType(cond))
			}
			if !b.Value {
				return object.UNIT
			}
		}

	case *ast.ForInStatement:
		iterable := ev.Eval(node.Iterable, scope)
		if isError(iterable) {
			return iterable
		}
		return ev.evalForIn(node, iterable, scope)

	case *ast.Identifier:
		if value, found := scope.Get(node.Value); found {
			return value
		}
		return ev.throw("eval/ident", node.Token, node.Value)

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
		return object.MakeBool(node.Value)

	case *ast.UnitLiteral:
		return object.UNIT

	case *ast.ListLiteral:
		elements := make([]object.Object, 0, len(node.Elements))
		for _, el := range node.Elements {
			value := ev.Eval(el, scope)
			if isError(value) {
				return value
			}
			elements = append(elements, value)
		}
		if max := ev.dcfg.MaxArraySize; max > 0 && len(elements) > max {
			return ev.throw("eval/limit/array", node.Token, len(elements), max)
		}
		return object.ListFromSlice(elements)

	case *ast.MapLiteral:
		m := object.NewMap()
		for _, pair := range node.Pairs {
			key := ev.Eval(pair.Key, scope)
			if isError(key) {
				return key
			}
			keyString, ok := key.(*object.String)
			if !ok {
				return ev.throw("eval/map/key", pair.Key.GetToken(), object.TrueType(key))
			}
			value := ev.Eval(pair.Value, scope)
			if isError(value) {
				return value
			}
			m.Pairs[keyString.Value] = value
		}
		return m

	case *ast.PrefixExpression:
		right := ev.Eval(node.Right, scope)
		if isError(right) {
			return right
		}
		if node.Operator == "!" {
			b, ok := right.(*object.Boolean)
			if !ok {
				return ev.throw("eval/type/prefix", node.Token, "!", object.TrueType(right))
			}
			return object.MakeInverseBool(b.Value)
		}
		return Negate(right, node.Token)

	case *ast.InfixExpression:
		left := ev.Eval(node.Left, scope)
		if isError(left) {
			return left
		}
		right := ev.Eval(node.Right, scope)
		if isError(right) {
			return right
		}
		if node.Operator == ".." {
			return ev.makeRange(left, right, node.Token)
		}
		result := Operate(node.Operator, left, right, node.Token)
		if err := ev.checkSize(result, node.Token); err != nil {
			return err
		}
		return result

	case *ast.LazyInfixExpression:
		return ev.evalLazyInfix(node, scope)

	case *ast.AssignmentExpression:
		return ev.evalAssignment(node, scope)

	case *ast.IndexExpression:
		left := ev.Eval(node.Left, scope)
		if isError(left) {
			return left
		}
		index := ev.Eval(node.Index, scope)
		if isError(index) {
			return index
		}
		return evalIndex(left, index, node.Token)

	case *ast.IfExpression:
		cond := ev.Eval(node.Condition, scope)
		if isError(cond) {
			return cond
		}
		b, ok := cond.(*object.Boolean)
		if !ok {
			return ev.throw("eval/type/truthy", node.Condition.GetToken(), object.TrueType(cond))
		}
		if b.Value {
			return ev.Eval(node.Consequence, scope)
		}
		if node.Alternative == nil {
			return object.UNIT
		}
		return ev.Eval(node.Alternative, scope)

	case *ast.FuncLiteral:
		return &object.Func{Sig: node.Sig, Body: node.Body, Captured: scope.Snapshot()}

	case *ast.CallExpression:
		args := make([]object.Object, 0, len(node.Args))
		for _, a := range node.Args {
			arg := ev.Eval(a, scope)
			if isError(arg) {
				return arg
			}
			args = append(args, arg)
		}
		return ev.applyCall(node, args, scope)
	}

	panic(fmt.Sprintf("evaluator: unhandled node type %T", node))
}

// tick charges one operation against the budget and polls the interrupt.
func (ev *Evaluator) tick(node ast.Node) *object.Error {
	ev.ops++
	if max := ev.dcfg.MaxOperations; max > 0 && ev.ops > max {
		return object.CreateErr("eval/limit/ops", node.GetToken(), max)
	}
	if ev.interrupt != nil && ev.interrupt() {
		return object.CreateErr("eval/interrupt", node.GetToken())
	}
	return nil
}

func (ev *Evaluator) evalProgram(program *ast.Program, scope *object.Scope) object.Object {
	var result object.Object = object.UNIT
	for _, stmt := range program.Statements {
		result = ev.Eval(stmt, scope)
		switch r := result.(type) {
		case *object.Error:
			return r
		case *object.ReturnSignal:
			return r.Value
		case *object.BreakSignal:
			return ev.throw("eval/loop/break", stmt.GetToken())
		case *object.ContinueSignal:
			return ev.throw("eval/loop/continue", stmt.GetToken())
		}
	}
	return result
}

// evalStatements runs the statements of a block. Unlike at program level,
// signals pass through: the boundary they belong to is further out.
func (ev *Evaluator) evalStatements(stmts []ast.Node, scope *object.Scope) object.Object {
	var result object.Object = object.UNIT
	for _, stmt := range stmts {
		result = ev.Eval(stmt, scope)
		switch result.(type) {
		case *object.Error, *object.ReturnSignal, *object.BreakSignal, *object.ContinueSignal:
			return result
		}
	}
	return result
}

// loopStep runs one condition-check-then-body iteration of a while loop.
// The boolean reports whether the loop is finished, and if so with what.
func (ev *Evaluator) loopStep(condition ast.Node, body *ast.BlockStatement, scope *object.Scope) (bool, object.Object) {
	cond := ev.Eval(condition, scope)
	if isError(cond) {
		return true, cond
	}
	b, ok := cond.(*object.Boolean)
	if !ok {
		return true, ev.throw("eval/type/truthy", condition.GetToken(), object.TrueType(cond))
	}
	if !b.Value {
		return true, object.UNIT
	}
	result := ev.Eval(body, scope)
	switch result.(type) {
	case *object.Error, *object.ReturnSignal:
		return true, result
	case *object.BreakSignal:
		return true, object.UNIT
	}
	return false, object.UNIT
}

func (ev *Evaluator) evalForIn(node *ast.ForInStatement, iterable object.Object, scope *object.Scope) object.Object {
	// runBody returns false to stop the loop, with the loop's result.
	runBody := func(element object.Object) (object.Object, bool) {
		scope.Push()
		scope.Declare(node.Name.Value, element, false)
		result := ev.Eval(node.Body, scope)
		scope.Pop()
		switch result.(type) {
		case *object.Error, *object.ReturnSignal:
			return result, false
		case *object.BreakSignal:
			return object.UNIT, false
		}
		return object.UNIT, true
	}

	switch iterable := iterable.(type) {
	case *object.Range:
		for i := iterable.Start; i < iterable.End; i++ {
			if result, more := runBody(&object.Integer{Value: i}); !more {
				return result
			}
		}
	case *object.List:
		for i := 0; i < iterable.Len(); i++ {
			el, _ := iterable.Elements.Index(i)
			if result, more := runBody(el.(object.Object)); !more {
				return result
			}
		}
	case *object.String:
		for _, r := range iterable.Value {
			if result, more := runBody(&object.Char{Value: r}); !more {
				return result
			}
		}
	case *object.Map:
		for _, key := range iterable.SortedKeys() {
			if result, more := runBody(&object.String{Value: key}); !more {
				return result
			}
		}
	default:
		return ev.throw("eval/iter", node.Iterable.GetToken(), object.TrueType(iterable))
	}
	return object.UNIT
}

func (ev *Evaluator) evalLazyInfix(node *ast.LazyInfixExpression, scope *object.Scope) object.Object {
	left := ev.Eval(node.Left, scope)
	if isError(left) {
		return left
	}
	lhs, ok := left.(*object.Boolean)
	if !ok {
		return ev.throw("eval/type/truthy", node.Left.GetToken(), object.TrueType(left))
	}
	if node.Operator == "&&" && !lhs.Value {
		return object.FALSE
	}
	if node.Operator == "||" && lhs.Value {
		return object.TRUE
	}
	right := ev.Eval(node.Right, scope)
	if isError(right) {
		return right
	}
	rhs, ok := right.(*object.Boolean)
	if !ok {
		return ev.throw("eval/type/truthy", node.Right.GetToken(), object.TrueType(right))
	}
	return rhs
}

// An assignment evaluates to the assigned value, so that 'x = y = 3' does
// what it looks like it does.
func (ev *Evaluator) evalAssignment(node *ast.AssignmentExpression, scope *object.Scope) object.Object {
	value := ev.Eval(node.Right, scope)
	if isError(value) {
		return value
	}
	if node.Operator != "=" {
		current := ev.Eval(node.Left, scope)
		if isError(current) {
			return current
		}
		value = Operate(strings.TrimSuffix(node.Operator, "="), current, value, node.Token)
		if isError(value) {
			return value
		}
		if err := ev.checkSize(value, node.Token); err != nil {
			return err
		}
	}
	if err := ev.assignTo(node.Left, value, scope); err != nil {
		return err
	}
	return value
}

// assignTo writes a value into an assignment target. List elements live in
// persistent vectors, so writing into one builds a new list and recurses to
// rebind whatever held it; maps are reference values and are written in
// place.
func (ev *Evaluator) assignTo(target ast.Node, value object.Object, scope *object.Scope) *object.Error {
	switch target := target.(type) {
	case *ast.Identifier:
		found, constant := scope.Assign(target.Value, value)
		if found && constant {
			return object.CreateErr("eval/const", target.Token, target.Value)
		}
		if !found {
			return object.CreateErr("eval/ident", target.Token, target.Value)
		}
		return nil
	case *ast.IndexExpression:
		container := ev.Eval(target.Left, scope)
		if e, ok := container.(*object.Error); ok {
			return e
		}
		index := ev.Eval(target.Index, scope)
		if e, ok := index.(*object.Error); ok {
			return e
		}
		switch container := container.(type) {
		case *object.Map:
			key, ok := index.(*object.String)
			if !ok {
				return object.CreateErr("eval/map/key", target.Index.GetToken(), object.TrueType(index))
			}
			container.Pairs[key.Value] = object.Copy(value)
			return nil
		case *object.List:
			i, ok := index.(*object.Integer)
			if !ok {
				return object.CreateErr("eval/type/index", target.Token, object.TrueType(container), object.TrueType(index))
			}
			if i.Value < 0 || i.Value >= int64(container.Len()) {
				return object.CreateErr("eval/index/range", target.Index.GetToken(), i.Value, container.Len())
			}
			updated := &object.List{Elements: container.Elements.Assoc(int(i.Value), object.Copy(value))}
			return ev.assignTo(target.Left, updated, scope)
		}
		return object.CreateErr("eval/assign/index", target.Token, object.TrueType(container))
	}
	return object.CreateErr("eval/assign/index", target.GetToken(), object.TrueType(value))
}

func evalIndex(left, index object.Object, tok token.Token) object.Object {
	switch container := left.(type) {
	case *object.List:
		i, ok := index.(*object.Integer)
		if !ok {
			return object.CreateErr("eval/type/index", tok, object.TrueType(left), object.TrueType(index))
		}
		if i.Value < 0 || i.Value >= int64(container.Len()) {
			return object.CreateErr("eval/index/range", tok, i.Value, container.Len())
		}
		el, _ := container.Elements.Index(int(i.Value))
		return el.(object.Object)
	case *object.String:
		i, ok := index.(*object.Integer)
		if !ok {
			return object.CreateErr("eval/type/index", tok, object.TrueType(left), object.TrueType(index))
		}
		runes := []rune(container.Value)
		if i.Value < 0 || i.Value >= int64(len(runes)) {
			return object.CreateErr("eval/index/range", tok, i.Value, len(runes))
		}
		return &object.Char{Value: runes[i.Value]}
	case *object.Map:
		key, ok := index.(*object.String)
		if !ok {
			return object.CreateErr("eval/type/index", tok, object.TrueType(left), object.TrueType(index))
		}
		value, exists := container.Pairs[key.Value]
		if !exists {
			return object.CreateErr("eval/index/key", tok, key.Value)
		}
		return value
	}
	return object.CreateErr("eval/type/index", tok, object.TrueType(left), object.TrueType(index))
}

func (ev *Evaluator) makeRange(left, right object.Object, tok token.Token) object.Object {
	start, ok := left.(*object.Integer)
	if !ok {
		return ev.throw("eval/range", tok, object.TrueType(left), object.TrueType(right))
	}
	end, ok := right.(*object.Integer)
	if !ok {
		return ev.throw("eval/range", tok, object.TrueType(left), object.TrueType(right))
	}
	return &object.Range{Start: start.Value, End: end.Value}
}

// applyCall resolves what a call expression names. A binding in scope wins
// over the registry, so a closure bound with 'let' can shadow a registered
// function.
func (ev *Evaluator) applyCall(node *ast.CallExpression, args []object.Object, scope *object.Scope) object.Object {
	if ident, ok := node.Function.(*ast.Identifier); ok {
		if value, found := scope.Get(ident.Value); found {
			fn, ok := value.(*object.Func)
			if !ok {
				return ev.throw("eval/call/apply", node.Token, object.TrueType(value))
			}
			return ev.callFunc(fn, args, node.Token)
		}
		fn, status := ev.reg.Resolve(ident.Value, args)
		switch status {
		case registry.NotFound:
			return ev.throw("eval/call/found", ident.Token, ident.Value, len(args))
		case registry.Ambiguous:
			return ev.throw("eval/call/ambiguous", ident.Token, ident.Value, len(args))
		}
		if fn.IsNative() {
			return ev.callNative(fn, args, node.Token)
		}
		return ev.invoke(fn.Sig, fn.Body, object.NewScope(), args, node.Token)
	}

	callee := ev.Eval(node.Function, scope)
	if isError(callee) {
		return callee
	}
	fn, ok := callee.(*object.Func)
	if !ok {
		return ev.throw("eval/call/apply", node.Token, object.TrueType(callee))
	}
	return ev.callFunc(fn, args, node.Token)
}

func (ev *Evaluator) callFunc(fn *object.Func, args []object.Object, tok token.Token) object.Object {
	if len(args) != fn.Sig.Arity() {
		return ev.throw("eval/call/args", tok, fn.Sig.Arity(), len(args))
	}
	callScope := object.NewScope()
	if fn.Captured != nil {
		callScope = fn.Captured.Snapshot()
	}
	return ev.invoke(fn.Sig, fn.Body, callScope, args, tok)
}

func (ev *Evaluator) callNative(fn registry.Function, args []object.Object, tok token.Token) object.Object {
	result := fn.Native(args...)
	if result == nil {
		result = object.UNIT
	}
	if e, ok := result.(*object.Error); ok {
		e.AddToTrace(tok)
	}
	return result
}

// invoke runs a function body in its own scope: a function sees its
// arguments and, if it is a closure, its captures, and nothing of its
// caller. Return is consumed here; break and continue have no loop to
// belong to and become errors.
func (ev *Evaluator) invoke(sig signature.Signature, body ast.Node, callScope *object.Scope, args []object.Object, tok token.Token) object.Object {
	ev.depth++
	defer func() { ev.depth-- }()
	if max := ev.dcfg.MaxCallDepth; max > 0 && ev.depth > max {
		return ev.throw("eval/limit/depth", tok, max)
	}
	callScope.Push()
	for i, pair := range sig {
		callScope.Declare(pair.VarName, args[i], false)
	}
	result := ev.Eval(body, callScope)
	callScope.Pop()
	switch r := result.(type) {
	case *object.Error:
		r.AddToTrace(tok)
		return r
	case *object.ReturnSignal:
		return r.Value
	case *object.BreakSignal:
		return ev.throw("eval/loop/break", tok)
	case *object.ContinueSignal:
		return ev.throw("eval/loop/continue", tok)
	}
	return result
}

func (ev *Evaluator) checkSize(result object.Object, tok token.Token) *object.Error {
	switch result := result.(type) {
	case *object.String:
		if max := ev.dcfg.MaxStringSize; max > 0 && len(result.Value) > max {
			return object.CreateErr("eval/limit/string", tok, len(result.Value), max)
		}
	case *object.List:
		if max := ev.dcfg.MaxArraySize; max > 0 && result.Len() > max {
			return object.CreateErr("eval/limit/array", tok, result.Len(), max)
		}
	}
	return nil
}

func (ev *Evaluator) throw(errorID string, tok token.Token, args ...any) *object.Error {
	return object.CreateErr(errorID, tok, args...)
}

func isError(o object.Object) bool {
	_, ok := o.(*object.Error)
	return ok
}
