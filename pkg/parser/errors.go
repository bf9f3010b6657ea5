package parser

import (
	"fmt"
	"strings"
)

// MaxDiagnostics bounds the diagnostics kept per parse. One extra entry
// marks the overflow.
const MaxDiagnostics = 100

// Diagnostic is one recoverable syntax error.
type Diagnostic struct {
	Message string
	Line    int
	Column  int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("Error on line %d:%d: %s", d.Line, d.Column, d.Message)
}

// ParseErrors is the ordered diagnostic list of one parse.
type ParseErrors struct {
	list []Diagnostic
}

func (e *ParseErrors) add(message string, line, column int) {
	switch {
	case len(e.list) < MaxDiagnostics:
		e.list = append(e.list, Diagnostic{Message: message, Line: line, Column: column})
	case len(e.list) == MaxDiagnostics:
		e.list = append(e.list, Diagnostic{
			Message: fmt.Sprintf("too many errors (limit %d), parsing stopped", MaxDiagnostics),
			Line:    line,
			Column:  column,
		})
	}
}

func (e *ParseErrors) full() bool {
	return len(e.list) > MaxDiagnostics
}

// HasErrors reports whether any diagnostic was recorded.
func (e *ParseErrors) HasErrors() bool {
	return e != nil && len(e.list) > 0
}

func (e *ParseErrors) Len() int {
	if e == nil {
		return 0
	}
	return len(e.list)
}

// List returns a copy of the diagnostics in source order.
func (e *ParseErrors) List() []Diagnostic {
	if e == nil {
		return nil
	}
	out := make([]Diagnostic, len(e.list))
	copy(out, e.list)
	return out
}

// String lists one diagnostic per line.
func (e *ParseErrors) String() string {
	if e == nil {
		return ""
	}
	lines := make([]string, 0, len(e.list))
	for _, d := range e.list {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

// Error lets a non-empty ParseErrors travel as an error value.
func (e *ParseErrors) Error() string {
	return e.String()
}
