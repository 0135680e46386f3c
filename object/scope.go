package object

// A Scope is an ordered sequence of bindings divided into nested blocks.
// Push opens a block; Pop discards every binding made since the matching
// Push. Lookup walks from the newest binding backwards, so an inner binding
// shadows an outer one of the same name.

type binding struct {
	name     string
	value    Object
	constant bool
}

type Scope struct {
	bindings []binding
	blocks   []int
}

func NewScope() *Scope {
	return &Scope{}
}

func (s *Scope) Push() {
	s.blocks = append(s.blocks, len(s.bindings))
}

func (s *Scope) Pop() {
	if len(s.blocks) == 0 {
		panic("scope: Pop without matching Push")
	}
	mark := s.blocks[len(s.blocks)-1]
	s.bindings = s.bindings[:mark]
	s.blocks = s.blocks[:len(s.blocks)-1]
}

// Depth is the number of open blocks; tests use it to check that evaluation
// leaves the scope as it found it.
func (s *Scope) Depth() int {
	return len(s.blocks)
}

func (s *Scope) Len() int {
	return len(s.bindings)
}

func (s *Scope) Get(name string) (Object, bool) {
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if s.bindings[i].name == name {
			return s.bindings[i].value, true
		}
	}
	return nil, false
}

func (s *Scope) Exists(name string) bool {
	_, ok := s.Get(name)
	return ok
}

func (s *Scope) IsConstant(name string) bool {
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if s.bindings[i].name == name {
			return s.bindings[i].constant
		}
	}
	return false
}

// Declare adds a new binding in the current block, shadowing any existing
// binding of the same name. The value is copied per the assignment contract.
func (s *Scope) Declare(name string, val Object, constant bool) {
	s.bindings = append(s.bindings, binding{name: name, value: Copy(val), constant: constant})
}

// Assign updates the innermost binding of the given name. It reports whether
// the binding exists and, if it does, whether it was declared constant.
func (s *Scope) Assign(name string, val Object) (found, constant bool) {
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if s.bindings[i].name == name {
			if s.bindings[i].constant {
				return true, true
			}
			s.bindings[i].value = Copy(val)
			return true, false
		}
	}
	return false, false
}

// Set is the embedding-facing convenience: assign if the name resolves,
// declare at the current block otherwise.
func (s *Scope) Set(name string, val Object) {
	if found, _ := s.Assign(name, val); !found {
		s.Declare(name, val, false)
	}
}

// Snapshot flattens the currently visible bindings into a fresh one-block
// scope. Closures capture with this: by value, at creation time.
func (s *Scope) Snapshot() *Scope {
	snap := NewScope()
	seen := make(map[string]bool)
	shadowed := []binding{}
	for i := len(s.bindings) - 1; i >= 0; i-- {
		b := s.bindings[i]
		if seen[b.name] {
			continue
		}
		seen[b.name] = true
		shadowed = append(shadowed, b)
	}
	for i := len(shadowed) - 1; i >= 0; i-- {
		snap.Declare(shadowed[i].name, shadowed[i].value, shadowed[i].constant)
	}
	return snap
}

// Names lists the visible binding names, outermost first, shadowed names
// suppressed.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	names := []string{}
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if !seen[s.bindings[i].name] {
			seen[s.bindings[i].name] = true
			names = append(names, s.bindings[i].name)
		}
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}
