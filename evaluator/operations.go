package evaluator

import (
	"math"

	"github.com/JohnCGriffin/overflow"
	"github.com/shopspring/decimal"

	"github.com/quill-lang/quill/object"
	"github.com/quill-lang/quill/token"
)

// Operate applies a binary operator to two evaluated operands. It is shared
// with the optimizer, which uses it to fold constant expressions: anything
// Operate can do at runtime it can equally do at compile time, and if it
// returns an error the optimizer leaves the expression alone so that the
// error surfaces at runtime instead.
//
// Numeric operands are promoted pairwise: int and float make float, and
// anything paired with a decimal makes decimal. There are no other implicit
// conversions.
func Operate(op string, left, right object.Object, tok token.Token) object.Object {
	switch op {
	case "==":
		return object.MakeBool(object.Equals(left, right))
	case "!=":
		return object.MakeInverseBool(object.Equals(left, right))
	}

	switch lhs := left.(type) {
	case *object.Integer:
		switch rhs := right.(type) {
		case *object.Integer:
			return intOperation(op, lhs.Value, rhs.Value, tok)
		case *object.Float:
			return floatOperation(op, float64(lhs.Value), rhs.Value, tok)
		case *object.Decimal:
			return decimalOperation(op, decimal.NewFromInt(lhs.Value), rhs.Value, tok)
		}
	case *object.Float:
		switch rhs := right.(type) {
		case *object.Integer:
			return floatOperation(op, lhs.Value, float64(rhs.Value), tok)
		case *object.Float:
			return floatOperation(op, lhs.Value, rhs.Value, tok)
		case *object.Decimal:
			return decimalOperation(op, decimal.NewFromFloat(lhs.Value), rhs.Value, tok)
		}
	case *object.Decimal:
		switch rhs := right.(type) {
		case *object.Integer:
			return decimalOperation(op, lhs.Value, decimal.NewFromInt(rhs.Value), tok)
		case *object.Float:
			return decimalOperation(op, lhs.Value, decimal.NewFromFloat(rhs.Value), tok)
		case *object.Decimal:
			return decimalOperation(op, lhs.Value, rhs.Value, tok)
		}
	case *object.String:
		switch rhs := right.(type) {
		case *object.String:
			return stringOperation(op, lhs.Value, rhs.Value, tok, left, right)
		case *object.Char:
			return stringOperation(op, lhs.Value, string(rhs.Value), tok, left, right)
		}
	case *object.Char:
		switch rhs := right.(type) {
		case *object.Char:
			return charOperation(op, lhs.Value, rhs.Value, tok, left, right)
		case *object.String:
			return stringOperation(op, string(lhs.Value), rhs.Value, tok, left, right)
		}
	case *object.List:
		if rhs, ok := right.(*object.List); ok && op == "+" {
			result := lhs.Elements
			for i := 0; i < rhs.Len(); i++ {
				el, _ := rhs.Elements.Index(i)
				result = result.Conj(el)
			}
			return &object.List{Elements: result}
		}
	}
	return object.CreateErr("eval/type/infix", tok, op, object.TrueType(left), object.TrueType(right))
}

// Negate applies unary minus. Shared with the optimizer for the same reason
// as Operate.
func Negate(right object.Object, tok token.Token) object.Object {
	switch rhs := right.(type) {
	case *object.Integer:
		result, ok := overflow.Sub64(0, rhs.Value)
		if !ok {
			return object.CreateErr("eval/overflow", tok, "-")
		}
		return &object.Integer{Value: result}
	case *object.Float:
		return &object.Float{Value: -rhs.Value}
	case *object.Decimal:
		return &object.Decimal{Value: rhs.Value.Neg()}
	}
	return object.CreateErr("eval/type/prefix", tok, "-", object.TrueType(right))
}

func intOperation(op string, lhs, rhs int64, tok token.Token) object.Object {
	var result int64
	ok := true
	switch op {
	case "+":
		result, ok = overflow.Add64(lhs, rhs)
	case "-":
		result, ok = overflow.Sub64(lhs, rhs)
	case "*":
		result, ok = overflow.Mul64(lhs, rhs)
	case "/":
		if rhs == 0 {
			return object.CreateErr("eval/div/zero", tok)
		}
		result, ok = overflow.Div64(lhs, rhs)
	case "%":
		if rhs == 0 {
			return object.CreateErr("eval/div/zero", tok)
		}
		result = lhs % rhs
	case "**":
		return intPower(lhs, rhs, tok)
	case "<":
		return object.MakeBool(lhs < rhs)
	case "<=":
		return object.MakeBool(lhs <= rhs)
	case ">":
		return object.MakeBool(lhs > rhs)
	case ">=":
		return object.MakeBool(lhs >= rhs)
	default:
		return object.CreateErr("eval/type/infix", tok, op, "int", "int")
	}
	if !ok {
		return object.CreateErr("eval/overflow", tok, op)
	}
	return &object.Integer{Value: result}
}

// A negative exponent takes the whole operation into floats; a non-negative
// one stays exact, with overflow checked at every step. Exponentiation is by
// squaring, so even the largest exponent costs at most 63 multiplications
// and a huge power of 1, -1, or 0 can't stall the evaluator.
func intPower(base, exp int64, tok token.Token) object.Object {
	if exp < 0 {
		return &object.Float{Value: math.Pow(float64(base), float64(exp))}
	}
	var result int64 = 1
	ok := true
	for exp > 0 {
		if exp&1 == 1 {
			result, ok = overflow.Mul64(result, base)
			if !ok {
				return object.CreateErr("eval/overflow", tok, "**")
			}
		}
		exp >>= 1
		if exp == 0 {
			break
		}
		base, ok = overflow.Mul64(base, base)
		if !ok {
			return object.CreateErr("eval/overflow", tok, "**")
		}
	}
	return &object.Integer{Value: result}
}

func floatOperation(op string, lhs, rhs float64, tok token.Token) object.Object {
	switch op {
	case "+":
		return &object.Float{Value: lhs + rhs}
	case "-":
		return &object.Float{Value: lhs - rhs}
	case "*":
		return &object.Float{Value: lhs * rhs}
	case "/":
		if rhs == 0 {
			return object.CreateErr("eval/div/zero", tok)
		}
		return &object.Float{Value: lhs / rhs}
	case "%":
		if rhs == 0 {
			return object.CreateErr("eval/div/zero", tok)
		}
		return &object.Float{Value: math.Mod(lhs, rhs)}
	case "**":
		return &object.Float{Value: math.Pow(lhs, rhs)}
	case "<":
		return object.MakeBool(lhs < rhs)
	case "<=":
		return object.MakeBool(lhs <= rhs)
	case ">":
		return object.MakeBool(lhs > rhs)
	case ">=":
		return object.MakeBool(lhs >= rhs)
	}
	return object.CreateErr("eval/type/infix", tok, op, "float", "float")
}

func decimalOperation(op string, lhs, rhs decimal.Decimal, tok token.Token) object.Object {
	switch op {
	case "+":
		return &object.Decimal{Value: lhs.Add(rhs)}
	case "-":
		return &object.Decimal{Value: lhs.Sub(rhs)}
	case "*":
		return &object.Decimal{Value: lhs.Mul(rhs)}
	case "/":
		if rhs.IsZero() {
			return object.CreateErr("eval/div/zero", tok)
		}
		return &object.Decimal{Value: lhs.Div(rhs)}
	case "%":
		if rhs.IsZero() {
			return object.CreateErr("eval/div/zero", tok)
		}
		return &object.Decimal{Value: lhs.Mod(rhs)}
	case "**":
		return &object.Decimal{Value: lhs.Pow(rhs)}
	case "<":
		return object.MakeBool(lhs.LessThan(rhs))
	case "<=":
		return object.MakeBool(lhs.LessThanOrEqual(rhs))
	case ">":
		return object.MakeBool(lhs.GreaterThan(rhs))
	case ">=":
		return object.MakeBool(lhs.GreaterThanOrEqual(rhs))
	}
	return object.CreateErr("eval/type/infix", tok, op, "decimal", "decimal")
}

func stringOperation(op, lhs, rhs string, tok token.Token, left, right object.Object) object.Object {
	switch op {
	case "+":
		return &object.String{Value: lhs + rhs}
	case "<":
		return object.MakeBool(lhs < rhs)
	case "<=":
		return object.MakeBool(lhs <= rhs)
	case ">":
		return object.MakeBool(lhs > rhs)
	case ">=":
		return object.MakeBool(lhs >= rhs)
	}
	return object.CreateErr("eval/type/infix", tok, op, object.TrueType(left), object.TrueType(right))
}

func charOperation(op string, lhs, rhs rune, tok token.Token, left, right object.Object) object.Object {
	switch op {
	case "+":
		return &object.String{Value: string(lhs) + string(rhs)}
	case "<":
		return object.MakeBool(lhs < rhs)
	case "<=":
		return object.MakeBool(lhs <= rhs)
	case ">":
		return object.MakeBool(lhs > rhs)
	case ">=":
		return object.MakeBool(lhs >= rhs)
	}
	return object.CreateErr("eval/type/infix", tok, op, object.TrueType(left), object.TrueType(right))
}
