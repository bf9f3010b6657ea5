package ast

// Definitions

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

type UseStatement struct {
	nodeImpl
	statementMarker

	Modules []string `json:"modules"`
}

func NewUseStatement(modules []string) *UseStatement {
	return &UseStatement{nodeImpl: newNodeImpl(NodeUseStatement), Modules: modules}
}

type IncludeStatement struct {
	nodeImpl
	statementMarker

	Path Expression `json:"path"`
}

func NewIncludeStatement(path Expression) *IncludeStatement {
	return &IncludeStatement{nodeImpl: newNodeImpl(NodeIncludeStatement), Path: path}
}

// FunctionDefinition is a named `def`. A `= expr` body is stored as a
// ReturnStatement.
type FunctionDefinition struct {
	nodeImpl
	statementMarker

	ID     *Identifier   `json:"id"`
	Params []*Identifier `json:"params"`
	Body   Statement     `json:"body"`
}

func NewFunctionDefinition(id *Identifier, params []*Identifier, body Statement) *FunctionDefinition {
	return &FunctionDefinition{nodeImpl: newNodeImpl(NodeFunctionDefinition), ID: id, Params: params, Body: body}
}
