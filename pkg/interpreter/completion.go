package interpreter

import (
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/ast"
	"github.com/ablack13/Own-Programming-Language-Tutorial/pkg/runtime"
)

type completionKind int

const (
	completeNormal completionKind = iota
	completeReturn
	completeBreak
	completeContinue
	completeHalt
)

// completion is the outcome of executing a statement. node is the statement
// that produced an abrupt completion, for error positions.
type completion struct {
	kind  completionKind
	value runtime.Value
	node  ast.Node
}

var normal = completion{}

func (c completion) abrupt() bool {
	return c.kind != completeNormal
}

// loopExit folds the completion of one loop body run into the loop. It
// reports whether the loop ends and what the loop statement completes with.
func loopExit(c completion) (bool, completion) {
	switch c.kind {
	case completeBreak:
		return true, normal
	case completeReturn, completeHalt:
		return true, c
	}
	return false, normal
}
