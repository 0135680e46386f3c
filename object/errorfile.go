package object

import (
	"fmt"

	"github.com/quill-lang/quill/text"
	"github.com/quill-lang/quill/token"
)

// A map from error identifiers to functions that supply the corresponding
// error messages and explanations.
//
// Errors in the map are in alphabetical order of their identifiers.
//
// Major categories are eval, lex, and parse: the identifier prefix is what
// the embedding API uses to sort an error into the host-facing taxonomy.
//
// Two otherwise identical errors thrown in different places in the Go code
// must be assigned different identifiers, if only by suffixing /a, /b, etc
// to the identifier.

var ErrorCreatorMap = map[string]ErrorCreator{

	"eval/assign/index": {
		Message: func(tok token.Token, args ...any) string {
			return "can't assign into a value of type " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Indexed assignment works on lists and maps. Strings are immutable: build a new one " +
				"instead."
		},
	},

	"eval/call/ambiguous": {
		Message: func(tok token.Token, args ...any) string {
			return "ambiguous call to function " + text.Emph(args[0].(string)) + " with " + fmt.Sprint(args[1].(int)) + " argument(s)"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Two or more registered overloads of this function match the arguments you supplied equally " +
				"well, so Quill has no way to choose between them. Either remove one of the overloads or give " +
				"their parameters more specific types."
		},
	},

	"eval/call/apply": {
		Message: func(tok token.Token, args ...any) string {
			return "trying to call a value of type " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Only functions can be called. The expression before the parentheses evaluated to something " +
				"that isn't one."
		},
	},

	"eval/call/args": {
		Message: func(tok token.Token, args ...any) string {
			return fmt.Sprintf("function takes %v argument(s) but was given %v", args[0].(int), args[1].(int))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "A function value must be called with exactly as many arguments as it has parameters."
		},
	},

	"eval/call/found": {
		Message: func(tok token.Token, args ...any) string {
			return "can't find function " + text.Emph(args[0].(string)) + " taking " + fmt.Sprint(args[1].(int)) + " argument(s)"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "No function of that name and arity has been registered by the host or defined in the " +
				"script, and none of the registered overloads accepts the types of the arguments you supplied."
		},
	},

	"eval/const": {
		Message: func(tok token.Token, args ...any) string {
			return "reassigning to constant " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Something declared with 'const' keeps its value for the lifetime of its scope. If you want " +
				"to change it, declare it with 'let' instead."
		},
	},

	"eval/div/zero": {
		Message: func(tok token.Token, args ...any) string {
			return "division by zero"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The result of dividing by zero is undefined: there is no right answer, only a wrong " +
				"question. So Quill throws this error when you ask it."
		},
	},

	"eval/ident": {
		Message: func(tok token.Token, args ...any) string {
			return "undefined variable " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "You're using this identifier as though it held a value, but nothing of that name is in " +
				"scope at this point. Perhaps you misspelled it, or declared it inside a block that has since " +
				"been closed."
		},
	},

	"eval/index/key": {
		Message: func(tok token.Token, args ...any) string {
			return "map has no key " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Reading a key that a map doesn't contain is an error rather than some default value, so " +
				"that typos in key names don't pass silently."
		},
	},

	"eval/index/range": {
		Message: func(tok token.Token, args ...any) string {
			return fmt.Sprintf("index %v out of range for length %v", args[0].(int64), args[1].(int))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Lists and strings are indexed from 0 up to one less than their length."
		},
	},

	"eval/interrupt": {
		Message: func(tok token.Token, args ...any) string {
			return "execution interrupted by host"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The program embedding Quill asked for this evaluation to stop, and it has."
		},
	},

	"eval/iter": {
		Message: func(tok token.Token, args ...any) string {
			return "can't iterate over value of type " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "A 'for ... in' loop can run over a list, a map (in key order), a string, or a range such " +
				"as '0..10'. Nothing else is iterable."
		},
	},

	"eval/limit/array": {
		Message: func(tok token.Token, args ...any) string {
			return fmt.Sprintf("list of length %v exceeds the configured maximum of %v", args[0].(int), args[1].(int))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The host has limited how large a list the script may construct, and this operation would " +
				"exceed that limit. Nothing is truncated: the operation fails instead."
		},
	},

	"eval/limit/depth": {
		Message: func(tok token.Token, args ...any) string {
			return fmt.Sprintf("maximum call depth of %v exceeded", args[0].(int))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Function calls have nested deeper than the dialect's 'max_call_depth'. Usually this means " +
				"unbounded recursion; if your recursion is genuinely that deep, raise the limit."
		},
	},

	"eval/limit/ops": {
		Message: func(tok token.Token, args ...any) string {
			return fmt.Sprintf("operation budget of %v exhausted", args[0].(int))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The dialect's 'max_operations' bounds how much work one evaluation may do, so that a " +
				"runaway script can't hang its host. This evaluation reached the bound and was stopped."
		},
	},

	"eval/limit/string": {
		Message: func(tok token.Token, args ...any) string {
			return fmt.Sprintf("string of length %v exceeds the configured maximum of %v", args[0].(int), args[1].(int))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The host has limited how large a string the script may construct, and this operation " +
				"would exceed that limit. Nothing is truncated: the operation fails instead."
		},
	},

	"eval/loop/break": {
		Message: func(tok token.Token, args ...any) string {
			return "'break' outside of a loop"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "A 'break' must be written inside the body of a 'while', 'do ... while', or 'for' loop, " +
				"because that is what it breaks out of."
		},
	},

	"eval/loop/continue": {
		Message: func(tok token.Token, args ...any) string {
			return "'continue' outside of a loop"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "A 'continue' must be written inside the body of a 'while', 'do ... while', or 'for' loop, " +
				"because that is what it continues."
		},
	},

	"eval/map/key": {
		Message: func(tok token.Token, args ...any) string {
			return "map keys must be strings, not " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Quill maps are keyed by strings and nothing else."
		},
	},

	"eval/overflow": {
		Message: func(tok token.Token, args ...any) string {
			return "integer overflow in " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Quill integers are 64-bit and overflow is checked rather than wrapping silently. If you " +
				"need numbers this big, use floats or decimals."
		},
	},

	"eval/range": {
		Message: func(tok token.Token, args ...any) string {
			return "range bounds must be integers, not " + text.Emph(args[0].(string)) + " and " + text.Emph(args[1].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The '..' operator builds an integer range for iteration, as in 'for i in 0..10'."
		},
	},

	"eval/type/index": {
		Message: func(tok token.Token, args ...any) string {
			return "can't index a value of type " + text.Emph(args[0].(string)) + " with a value of type " + text.Emph(args[1].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Lists and strings are indexed by integers, and maps by strings. Anything else is a type error."
		},
	},

	"eval/type/infix": {
		Message: func(tok token.Token, args ...any) string {
			return "operator " + text.Emph(args[0].(string)) + " is not defined on " + text.Emph(args[1].(string)) + " and " + text.Emph(args[2].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The operands of this operator have types it doesn't know what to do with. Mixed 'int' and " +
				"'float' arithmetic is promoted to 'float', and 'decimal' absorbs both, but beyond that Quill " +
				"does no implicit conversion."
		},
	},

	"eval/type/prefix": {
		Message: func(tok token.Token, args ...any) string {
			return "operator " + text.Emph(args[0].(string)) + " is not defined on " + text.Emph(args[1].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Unary '-' needs a number, and '!' needs a boolean."
		},
	},

	"eval/type/truthy": {
		Message: func(tok token.Token, args ...any) string {
			return "condition must be a boolean, not " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The conditions of 'if' and of loops, and the operands of '&&' and '||', must be actual " +
				"booleans. Quill has no notion of a 'truthy' value."
		},
	},

	"lex/char": {
		Message: func(tok token.Token, args ...any) string {
			return "unterminated or malformed character literal"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "A character literal holds exactly one character (or one escape sequence) between single " +
				"quotes, as in 'a' or '\\n'."
		},
	},

	"lex/comment": {
		Message: func(tok token.Token, args ...any) string {
			return "unterminated block comment"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "A comment opened with '/*' must be closed with '*/' before the end of the source."
		},
	},

	"lex/decimal": {
		Message: func(tok token.Token, args ...any) string {
			return "malformed decimal literal " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "A decimal literal is a number with a 'd' suffix, as in '1.50d'."
		},
	},

	"lex/decimal/off": {
		Message: func(tok token.Token, args ...any) string {
			return "decimal literals are not enabled in this dialect"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The host must set 'allow_decimal_literals' in the dialect configuration before scripts " +
				"may use the 'd' suffix on numbers."
		},
	},

	"lex/escape": {
		Message: func(tok token.Token, args ...any) string {
			return "invalid escape sequence " + text.Emph("\\"+string(args[0].(rune)))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The recognized escapes are \\n, \\r, \\t, \\0, \\\\, \\\", and \\'."
		},
	},

	"lex/ill": {
		Message: func(tok token.Token, args ...any) string {
			return "unrecognized character " + text.Emph(string(args[0].(rune)))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "This character can't begin any token of the language."
		},
	},

	"lex/num": {
		Message: func(tok token.Token, args ...any) string {
			return "invalid numeric literal " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "This looks like it was meant to be a number, but it can't be read as one."
		},
	},

	"lex/num/bin": {
		Message: func(tok token.Token, args ...any) string {
			return "invalid binary literal " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "After '0b' only the digits 0 and 1 may appear."
		},
	},

	"lex/num/hex": {
		Message: func(tok token.Token, args ...any) string {
			return "invalid hexadecimal literal " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "After '0x' only the digits 0-9 and a-f may appear."
		},
	},

	"lex/num/oct": {
		Message: func(tok token.Token, args ...any) string {
			return "invalid octal literal " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "After '0o' only the digits 0-7 may appear."
		},
	},

	"lex/quote": {
		Message: func(tok token.Token, args ...any) string {
			return "unterminated string literal"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "A string opened with '\"' must be closed with '\"' before the end of the line. The " +
				"position reported is that of the opening quote."
		},
	},

	"parse/assign/target": {
		Message: func(tok token.Token, args ...any) string {
			return "can't assign to this expression"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The left-hand side of an assignment must be a variable or an index expression like " +
				"'xs[0]' or 'm[\"key\"]'. Anything else doesn't name a place a value could be stored."
		},
	},

	"parse/closure/off": {
		Message: func(tok token.Token, args ...any) string {
			return "closures are not enabled in this dialect"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The host must set 'allow_closures' in the dialect configuration before scripts may use " +
				"the '|args| body' form."
		},
	},

	"parse/eol": {
		Message: func(tok token.Token, args ...any) string {
			return "unclosed " + text.Emph(args[0].(token.Token).Literal) + " at end of input"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Every opening bracket must be closed before the source ends. The unclosed bracket was " +
				"opened" + text.PosDescription(args[0].(token.Token)) + "."
		},
	},

	"parse/expect": {
		Message: func(tok token.Token, args ...any) string {
			return "expected " + text.Emph(string(args[0].(token.TokenType))) + ", found " + describeToken(args[1].(token.Token))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The parser knows what has to come next at this point in the grammar, and this isn't it."
		},
	},

	"parse/float": {
		Message: func(tok token.Token, args ...any) string {
			return "couldn't parse " + text.Emph(tok.Literal) + " as a float"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The literal is shaped like a floating-point number but doesn't fit in one."
		},
	},

	"parse/fn/name": {
		Message: func(tok token.Token, args ...any) string {
			return "expected a function name after 'fn', found " + describeToken(tok)
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "A function definition is written 'fn name(params) { body }'. For an anonymous function, " +
				"use the closure form '|params| body' instead."
		},
	},

	"parse/int": {
		Message: func(tok token.Token, args ...any) string {
			return "couldn't parse " + text.Emph(tok.Literal) + " as an integer"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The literal is shaped like an integer but doesn't fit in 64 bits."
		},
	},

	"parse/loop/break": {
		Message: func(tok token.Token, args ...any) string {
			return "'break' outside of a loop"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "This dialect has 'strict_loop_control' set, so a 'break' anywhere but inside a loop body " +
				"is rejected at compile time."
		},
	},

	"parse/loop/continue": {
		Message: func(tok token.Token, args ...any) string {
			return "'continue' outside of a loop"
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "This dialect has 'strict_loop_control' set, so a 'continue' anywhere but inside a loop " +
				"body is rejected at compile time."
		},
	},

	"parse/match": {
		Message: func(tok token.Token, args ...any) string {
			return "unmatched " + text.Emph(tok.Literal)
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "This closing bracket has no opening bracket to pair with."
		},
	},

	"parse/nesting": {
		Message: func(tok token.Token, args ...any) string {
			return text.Emph(args[0].(token.Token).Literal) + " closed by " + text.Emph(tok.Literal)
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Brackets must nest: the most recently opened bracket has to be closed first, and this " +
				"one closes a bracket of the wrong kind."
		},
	},

	"parse/params/dup": {
		Message: func(tok token.Token, args ...any) string {
			return "duplicate parameter name " + text.Emph(args[0].(string))
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Each parameter of a function must have a distinct name, or there would be no way to " +
				"refer to them in the body."
		},
	},

	"parse/prefix": {
		Message: func(tok token.Token, args ...any) string {
			return "unexpected " + describeToken(tok)
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "The parser expected the start of an expression here, such as a literal, a variable, a " +
				"prefix operator, or an opening bracket, and found this instead."
		},
	},

	"parse/semicolon": {
		Message: func(tok token.Token, args ...any) string {
			return "expected ';', found " + describeToken(tok)
		},
		Explanation: func(errors Errors, pos int, tok token.Token, args ...any) string {
			return "Statements are separated by semicolons. Only before a closing '}' or at the very end of " +
				"the source may the semicolon be left off."
		},
	},
}

func describeToken(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.STRING:
		return "string " + text.Emph(tok.Literal)
	default:
		return text.Emph(tok.Literal)
	}
}
