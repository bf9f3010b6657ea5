package runtime

import "sort"

// Functions is the flat name -> Function table shared by native modules and
// hoisted declarations. Later registrations replace earlier ones. It is not
// safe for concurrent use.
type Functions struct {
	table map[string]Function
}

func NewFunctions() *Functions {
	return &Functions{table: make(map[string]Function)}
}

func (f *Functions) Set(name string, fn Function) {
	f.table[name] = fn
}

func (f *Functions) Get(name string) (Function, bool) {
	fn, ok := f.table[name]
	return fn, ok
}

func (f *Functions) Has(name string) bool {
	_, ok := f.table[name]
	return ok
}

// Names returns the registered names in sorted order.
func (f *Functions) Names() []string {
	names := make([]string, 0, len(f.table))
	for name := range f.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *Functions) Len() int { return len(f.table) }

// Module registers native functions. Init is called at most once per
// interpreter, before declarations are hoisted.
type Module interface {
	Init(functions *Functions)
}

// ModuleFunc adapts a plain function to Module.
type ModuleFunc func(functions *Functions)

func (m ModuleFunc) Init(functions *Functions) { m(functions) }

// NativeFunc is the Go signature behind a native function.
type NativeFunc func(args []Value) (Value, error)

// NativeFunction is a Function implemented in Go. Arity -1 accepts any
// number of arguments; otherwise the count is checked before Impl runs.
type NativeFunction struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (n NativeFunction) Execute(args ...Value) (Value, error) {
	if n.Arity >= 0 {
		if err := CheckArity(n.Name, args, n.Arity); err != nil {
			return nil, err
		}
	}
	result, err := n.Impl(args)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return Null, nil
	}
	return result, nil
}

// Register adds fn to functions under its own name.
func (f *Functions) Register(fn NativeFunction) {
	f.Set(fn.Name, fn)
}
