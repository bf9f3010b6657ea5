package runtime

import "fmt"

// Environment is one lexical scope of variable bindings.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Set assigns to the nearest scope defining name, or defines name in this
// scope when no enclosing scope does.
func (e *Environment) Set(name string, value Value) {
	if scope := e.owner(name); scope != nil {
		scope.values[name] = value
		return
	}
	e.values[name] = value
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.Lookup(name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("undefined variable '%s'", name)
}

// Lookup is Get without an error.
func (e *Environment) Lookup(name string) (Value, bool) {
	if scope := e.owner(name); scope != nil {
		return scope.values[name], true
	}
	return nil, false
}

func (e *Environment) owner(name string) *Environment {
	for scope := e; scope != nil; scope = scope.parent {
		if _, ok := scope.values[name]; ok {
			return scope
		}
	}
	return nil
}

// Extend creates a child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
