// Package registry holds the functions a script may call: those supplied by
// the host and those defined by the script itself. A name may have several
// overloads distinguished by arity and parameter types.
package registry

import (
	"github.com/quill-lang/quill/ast"
	"github.com/quill-lang/quill/object"
	"github.com/quill-lang/quill/signature"
)

// A Native is a function supplied by the host. It may return any Object,
// including an *object.Error to signal failure.
type Native func(args ...object.Object) object.Object

// A Function is one overload of a callable name. Either Body is set, for a
// function defined in the script, or Native is, for one the host registered.
type Function struct {
	Name   string
	Sig    signature.Signature
	Body   *ast.BlockStatement
	Native Native
}

func (f Function) IsNative() bool {
	return f.Native != nil
}

// Status is the outcome of overload resolution.
type Status int

const (
	Found Status = iota
	NotFound
	Ambiguous
)

type Registry struct {
	table map[string][]Function
}

func New() *Registry {
	return &Registry{table: make(map[string][]Function)}
}

// Add registers an overload. A new overload with the same name and an equal
// signature replaces the old one; otherwise it is appended, and resolution
// considers overloads in the order they were added.
func (r *Registry) Add(fn Function) {
	overloads := r.table[fn.Name]
	for i, existing := range overloads {
		if existing.Sig.Equals(fn.Sig) {
			overloads[i] = fn
			return
		}
	}
	r.table[fn.Name] = append(overloads, fn)
}

// Resolve picks the overload of name that best matches the given arguments.
// An overload matches when its arity equals the argument count and each
// parameter's type is either 'any' or exactly the argument's type. Among the
// matches, the one with the most typed (non-'any') parameters wins; two
// distinct best matches make the call ambiguous.
func (r *Registry) Resolve(name string, args []object.Object) (Function, Status) {
	var best Function
	bestSpecificity := -1
	tied := false

	for _, fn := range r.table[name] {
		if fn.Sig.Arity() != len(args) {
			continue
		}
		if !matches(fn.Sig, args) {
			continue
		}
		specificity := fn.Sig.Specificity()
		switch {
		case specificity > bestSpecificity:
			best, bestSpecificity, tied = fn, specificity, false
		case specificity == bestSpecificity:
			tied = true
		}
	}

	if bestSpecificity == -1 {
		return Function{}, NotFound
	}
	if tied {
		return Function{}, Ambiguous
	}
	return best, Found
}

func matches(sig signature.Signature, args []object.Object) bool {
	for i, pair := range sig {
		if pair.VarType == signature.Any || pair.VarType == "" {
			continue
		}
		if pair.VarType != string(args[i].Type()) {
			return false
		}
	}
	return true
}

// Clone gives a shallow copy whose overload lists can grow independently.
// Each evaluation works on a clone, so functions a script defines don't leak
// into the shared registry or into other runs.
func (r *Registry) Clone() *Registry {
	clone := &Registry{table: make(map[string][]Function, len(r.table))}
	for name, overloads := range r.table {
		copied := make([]Function, len(overloads))
		copy(copied, overloads)
		clone.table[name] = copied
	}
	return clone
}

// Names lists the registered names. Used for diagnostics only.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.table))
	for name := range r.table {
		names = append(names, name)
	}
	return names
}

// Overloads returns the overloads of a name in registration order.
func (r *Registry) Overloads(name string) []Function {
	return r.table[name]
}
