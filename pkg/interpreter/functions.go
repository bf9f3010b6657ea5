package interpreter

import (
	"fmt"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

// userFunction is a function declared in OwnLang source, closing over the
// scope it was created in.
type userFunction struct {
	interp  *Interpreter
	name    string
	params  []*ast.Identifier
	body    ast.Statement
	closure *runtime.Environment
}

func (i *Interpreter) newFunction(name string, params []*ast.Identifier, body ast.Statement, closure *runtime.Environment) *userFunction {
	return &userFunction{interp: i, name: name, params: params, body: body, closure: closure}
}

func (f *userFunction) String() string {
	if f.name == "" {
		return "<anonymous>"
	}
	return f.name
}

// Execute binds arguments in a fresh scope below the closure and runs the
// body. A `stop` inside the body surfaces as ErrStopped.
func (f *userFunction) Execute(args ...runtime.Value) (runtime.Value, error) {
	if err := runtime.CheckArity(f.String(), args, len(f.params)); err != nil {
		return nil, err
	}
	i := f.interp
	if i.depth >= MaxCallDepth {
		return nil, fmt.Errorf("%s: call depth exceeded %d", f, MaxCallDepth)
	}
	i.depth++
	defer func() { i.depth-- }()

	scope := f.closure.Extend()
	for idx, param := range f.params {
		scope.Define(param.Name, args[idx])
	}
	c, err := i.execute(f.body, scope)
	if err != nil {
		return nil, err
	}
	switch c.kind {
	case completeReturn:
		return c.value, nil
	case completeHalt:
		return nil, ErrStopped
	case completeBreak:
		return nil, failf(c.node, "break outside loop")
	case completeContinue:
		return nil, failf(c.node, "continue outside loop")
	}
	return runtime.Null, nil
}
