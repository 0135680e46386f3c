package signature

// A NameTypePair is one parameter of a function signature: its name and the
// type it is constrained to, where "any" accepts every value.
type NameTypePair = struct {
	VarName string
	VarType string
}

type Signature []NameTypePair

const Any = "any"

func (ns Signature) String() (result string) {
	for _, v := range ns {
		if result != "" {
			result = result + ", "
		}
		result = result + v.VarName
		if v.VarType != Any {
			result = result + " " + v.VarType
		}
	}
	return
}

// Arity is the number of parameters.
func (ns Signature) Arity() int {
	return len(ns)
}

// Specificity counts the typed parameters: the overload with more of them
// wins resolution when several accept the same arguments.
func (ns Signature) Specificity() int {
	count := 0
	for _, v := range ns {
		if v.VarType != Any && v.VarType != "" {
			count++
		}
	}
	return count
}

// Equals ignores parameter names: two signatures are the same entry in a
// function table when their types line up.
func (ns Signature) Equals(other Signature) bool {
	if len(ns) != len(other) {
		return false
	}
	for i, v := range ns {
		if normalize(v.VarType) != normalize(other[i].VarType) {
			return false
		}
	}
	return true
}

func normalize(t string) string {
	if t == "" {
		return Any
	}
	return t
}

// Untyped builds a signature of the given parameter names, all accepting any
// type. This is the shape of every script-defined function.
func Untyped(names ...string) Signature {
	sig := Signature{}
	for _, name := range names {
		sig = append(sig, NameTypePair{VarName: name, VarType: Any})
	}
	return sig
}
