package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"src.elv.sh/pkg/persistent/vector"

	"github.com/quill-lang/quill/ast"
	"github.com/quill-lang/quill/signature"
)

type View int

const (
	ViewStdOut = iota
	ViewQuillLiteral
)

type ObjectType string

const (
	ERROR_OBJ    = "error"
	RETURN_OBJ   = "return"
	BREAK_OBJ    = "break"
	CONTINUE_OBJ = "continue"

	UNIT_OBJ    = "unit"
	INTEGER_OBJ = "int"
	FLOAT_OBJ   = "float"
	DECIMAL_OBJ = "decimal"
	BOOLEAN_OBJ = "bool"
	STRING_OBJ  = "string"
	CHAR_OBJ    = "char"

	LIST_OBJ  = "list"
	MAP_OBJ   = "map"
	RANGE_OBJ = "range"

	FUNC_OBJ   = "func"
	OPAQUE_OBJ = "opaque"
)

type Object interface {
	Type() ObjectType
	Inspect(view View) string
}

// TrueType is what we show the user: for opaque host values it is the name
// the host registered, for everything else the ObjectType.
func TrueType(o Object) string {
	if o.Type() != OPAQUE_OBJ {
		return string(o.Type())
	}
	return o.(*Opaque).Name
}

func EmphType(o Object) string {
	return "<" + TrueType(o) + ">"
}

type Unit struct{}

func (u *Unit) Type() ObjectType         { return UNIT_OBJ }
func (u *Unit) Inspect(view View) string { return "()" }

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType         { return INTEGER_OBJ }
func (i *Integer) Inspect(view View) string { return fmt.Sprintf("%d", i.Value) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect(view View) string {
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", f.Value), "0"), ".")
	if !strings.Contains(s, ".") && !strings.Contains(s, "e") {
		s = s + ".0"
	}
	return s
}

type Decimal struct {
	Value decimal.Decimal
}

func (d *Decimal) Type() ObjectType         { return DECIMAL_OBJ }
func (d *Decimal) Inspect(view View) string { return d.Value.String() + "d" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType         { return BOOLEAN_OBJ }
func (b *Boolean) Inspect(view View) string { return fmt.Sprintf("%t", b.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect(view View) string {
	if view == ViewStdOut {
		return s.Value
	}
	return escapeString(s.Value)
}

type Char struct {
	Value rune
}

func (c *Char) Type() ObjectType { return CHAR_OBJ }
func (c *Char) Inspect(view View) string {
	if view == ViewStdOut {
		return string(c.Value)
	}
	return "'" + string(c.Value) + "'"
}

// A List wraps a persistent vector, so assigning a list to a new binding can
// never leak mutation back through the old one.
type List struct {
	Elements vector.Vector
}

func (lo *List) Type() ObjectType { return LIST_OBJ }
func (lo *List) Inspect(view View) string {
	var out bytes.Buffer

	elements := []string{}
	for i := 0; i < lo.Elements.Len(); i++ {
		el, _ := lo.Elements.Index(i)
		elements = append(elements, el.(Object).Inspect(ViewQuillLiteral))
	}

	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")

	return out.String()
}

func (lo *List) Len() int {
	return lo.Elements.Len()
}

func ListFromSlice(slice []Object) *List {
	vec := vector.Empty
	for _, v := range slice {
		vec = vec.Conj(v)
	}
	return &List{Elements: vec}
}

type Map struct {
	Pairs map[string]Object
}

func NewMap() *Map {
	return &Map{Pairs: make(map[string]Object)}
}

func (m *Map) Type() ObjectType { return MAP_OBJ }
func (m *Map) Inspect(view View) string {
	var out bytes.Buffer

	pairs := []string{}
	for _, k := range m.SortedKeys() {
		pairs = append(pairs, escapeString(k)+": "+m.Pairs[k].Inspect(ViewQuillLiteral))
	}

	out.WriteString("#{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")

	return out.String()
}

func (m *Map) SortedKeys() []string {
	keys := make([]string, 0, len(m.Pairs))
	for k := range m.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Range struct {
	Start int64
	End   int64
}

func (r *Range) Type() ObjectType         { return RANGE_OBJ }
func (r *Range) Inspect(view View) string { return fmt.Sprintf("%d..%d", r.Start, r.End) }

// A Func is a script-defined function or closure: its signature, its body,
// and, for closures, the bindings it captured by value when it was made.
type Func struct {
	Name     string
	Sig      signature.Signature
	Body     ast.Node
	Captured *Scope
}

func (fn *Func) Type() ObjectType { return FUNC_OBJ }
func (fn *Func) Inspect(view View) string {
	if fn.Name == "" {
		return "|" + fn.Sig.String() + "| " + fn.Body.String()
	}
	return "fn " + fn.Name + "(" + fn.Sig.String() + ") " + fn.Body.String()
}

// An Opaque smuggles an arbitrary host value through the engine. The engine
// can store it, pass it around, and compare it for identity, but only native
// functions registered by the host can look inside.
type Opaque struct {
	Name  string
	Value any
}

func (op *Opaque) Type() ObjectType         { return OPAQUE_OBJ }
func (op *Opaque) Inspect(view View) string { return "<" + op.Name + ">" }

// Control-flow signals are objects threaded up through evaluation, consumed
// at the function-call or loop boundary they belong to.

type ReturnSignal struct {
	Value Object
}

func (r *ReturnSignal) Type() ObjectType         { return RETURN_OBJ }
func (r *ReturnSignal) Inspect(view View) string { return "return " + r.Value.Inspect(view) }

type BreakSignal struct{}

func (b *BreakSignal) Type() ObjectType         { return BREAK_OBJ }
func (b *BreakSignal) Inspect(view View) string { return "break" }

type ContinueSignal struct{}

func (c *ContinueSignal) Type() ObjectType         { return CONTINUE_OBJ }
func (c *ContinueSignal) Inspect(view View) string { return "continue" }

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	UNIT  = &Unit{}
	BREAK = &BreakSignal{}
	CONT  = &ContinueSignal{}
)

func MakeBool(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func MakeInverseBool(input bool) *Boolean {
	if input {
		return FALSE
	}
	return TRUE
}

func Equals(lhs, rhs Object) bool {
	if TrueType(lhs) != TrueType(rhs) {
		return false
	}
	if lhs == rhs {
		return true
	}
	switch lhs.Type() {
	case UNIT_OBJ:
		return true
	case INTEGER_OBJ:
		return lhs.(*Integer).Value == rhs.(*Integer).Value
	case FLOAT_OBJ:
		return lhs.(*Float).Value == rhs.(*Float).Value
	case DECIMAL_OBJ:
		return lhs.(*Decimal).Value.Equal(rhs.(*Decimal).Value)
	case BOOLEAN_OBJ:
		return lhs.(*Boolean).Value == rhs.(*Boolean).Value
	case STRING_OBJ:
		return lhs.(*String).Value == rhs.(*String).Value
	case CHAR_OBJ:
		return lhs.(*Char).Value == rhs.(*Char).Value
	case RANGE_OBJ:
		return lhs.(*Range).Start == rhs.(*Range).Start && lhs.(*Range).End == rhs.(*Range).End
	case LIST_OBJ:
		if lhs.(*List).Len() != rhs.(*List).Len() {
			return false
		}
		for i := 0; i < lhs.(*List).Len(); i++ {
			l, _ := lhs.(*List).Elements.Index(i)
			r, _ := rhs.(*List).Elements.Index(i)
			if !Equals(l.(Object), r.(Object)) {
				return false
			}
		}
		return true
	case MAP_OBJ:
		if len(lhs.(*Map).Pairs) != len(rhs.(*Map).Pairs) {
			return false
		}
		for k, v := range lhs.(*Map).Pairs {
			w, ok := rhs.(*Map).Pairs[k]
			if !ok || !Equals(v, w) {
				return false
			}
		}
		return true
	case FUNC_OBJ, OPAQUE_OBJ:
		return lhs == rhs
	default:
		return false
	}
}

// Copy is what gives assignment its no-aliasing contract: maps are cloned,
// and lists are rebuilt where cloning their elements changed anything.
// Everything else is immutable once made and can be shared freely.
func Copy(o Object) Object {
	switch o := o.(type) {
	case *Map:
		clone := NewMap()
		for k, v := range o.Pairs {
			clone.Pairs[k] = Copy(v)
		}
		return clone
	case *List:
		changed := false
		elements := make([]Object, 0, o.Len())
		for i := 0; i < o.Len(); i++ {
			el, _ := o.Elements.Index(i)
			copied := Copy(el.(Object))
			if copied != el.(Object) {
				changed = true
			}
			elements = append(elements, copied)
		}
		if !changed {
			return o
		}
		return ListFromSlice(elements)
	default:
		return o
	}
}

func DescribeParams(params []Object) string {
	s := ""
	for k, v := range params {
		s = s + EmphType(v)
		if k < len(params)-1 {
			s = s + ", "
		}
	}
	return "'" + s + "'"
}

func escapeString(s string) string {
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
