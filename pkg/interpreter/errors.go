package interpreter

import (
	"errors"
	"fmt"

	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
)

var (
	// ErrStopped reports that the program executed `stop`.
	ErrStopped = errors.New("program stopped")
	// ErrUnknownModule is wrapped when `use` names a module nobody registered.
	ErrUnknownModule = errors.New("unknown module")
)

// RuntimeError is a failure raised while executing a program, positioned at
// the node that failed. Err keeps the underlying cause (an ArityError,
// TypeError, ...) for errors.As.
type RuntimeError struct {
	Message string
	Line    int
	Column  int
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// fail positions err at node. Errors that already carry a position, and the
// stop sentinel, pass through unchanged.
func fail(node ast.Node, err error) error {
	if err == nil {
		return nil
	}
	var rt *RuntimeError
	if errors.Is(err, ErrStopped) || errors.As(err, &rt) {
		return err
	}
	out := &RuntimeError{Message: err.Error(), Err: err}
	if node != nil {
		pos := node.Position()
		out.Line, out.Column = pos.Line, pos.Column
	}
	return out
}

func failf(node ast.Node, format string, args ...any) error {
	return fail(node, fmt.Errorf(format, args...))
}
