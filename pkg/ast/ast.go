package ast

type NodeType string

const (
	NodeProgram              NodeType = "Program"
	NodeBlockStatement       NodeType = "BlockStatement"
	NodeExpressionStatement  NodeType = "ExpressionStatement"
	NodePrintStatement       NodeType = "PrintStatement"
	NodeIfStatement          NodeType = "IfStatement"
	NodeWhileStatement       NodeType = "WhileStatement"
	NodeDoWhileStatement     NodeType = "DoWhileStatement"
	NodeForStatement         NodeType = "ForStatement"
	NodeForeachStatement     NodeType = "ForeachStatement"
	NodeBreakStatement       NodeType = "BreakStatement"
	NodeContinueStatement    NodeType = "ContinueStatement"
	NodeStopStatement        NodeType = "StopStatement"
	NodeReturnStatement      NodeType = "ReturnStatement"
	NodeUseStatement         NodeType = "UseStatement"
	NodeIncludeStatement     NodeType = "IncludeStatement"
	NodeFunctionDefinition   NodeType = "FunctionDefinition"
	NodeNumberLiteral        NodeType = "NumberLiteral"
	NodeStringLiteral        NodeType = "StringLiteral"
	NodeBooleanLiteral       NodeType = "BooleanLiteral"
	NodeNullLiteral          NodeType = "NullLiteral"
	NodeIdentifier           NodeType = "Identifier"
	NodeArrayLiteral         NodeType = "ArrayLiteral"
	NodeMapEntry             NodeType = "MapEntry"
	NodeMapLiteral           NodeType = "MapLiteral"
	NodeUnaryExpression      NodeType = "UnaryExpression"
	NodeBinaryExpression     NodeType = "BinaryExpression"
	NodeTernaryExpression    NodeType = "TernaryExpression"
	NodeAssignmentExpression NodeType = "AssignmentExpression"
	NodeUpdateExpression     NodeType = "UpdateExpression"
	NodeCallExpression       NodeType = "CallExpression"
	NodeIndexExpression      NodeType = "IndexExpression"
	NodeMemberExpression     NodeType = "MemberExpression"
	NodeFunctionLiteral      NodeType = "FunctionLiteral"
	NodeFunctionReference    NodeType = "FunctionReference"
)

// Position is the 1-based source location a node starts at.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Node interface {
	NodeType() NodeType
	Position() Position
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	Pos  Position `json:"pos"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }

func (n nodeImpl) Position() Position { return n.Pos }

func (n *nodeImpl) setPosition(p Position) { n.Pos = p }

func (nodeImpl) isNode() {}

// SetPosition annotates node with its source location.
func SetPosition(node Node, pos Position) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setPosition(Position) }); ok {
		setter.setPosition(pos)
	}
}

// Marker interfaces.

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

// Literal expressions evaluate to a constant without side effects.
type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// AssignmentTarget is anything that may appear on the left of '='.
type AssignmentTarget interface {
	Expression
	assignmentTargetNode()
}

type assignmentTargetMarker struct{}

func (assignmentTargetMarker) assignmentTargetNode() {}

// Statements

type Program struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

type BlockStatement struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewBlockStatement(body []Statement) *BlockStatement {
	return &BlockStatement{nodeImpl: newNodeImpl(NodeBlockStatement), Body: body}
}

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

type PrintStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
	Newline    bool       `json:"newline"`
}

func NewPrintStatement(expr Expression, newline bool) *PrintStatement {
	return &PrintStatement{nodeImpl: newNodeImpl(NodePrintStatement), Expression: expr, Newline: newline}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Then      Statement  `json:"then"`
	Else      Statement  `json:"else,omitempty"`
}

func NewIfStatement(condition Expression, then, otherwise Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Then: then, Else: otherwise}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      Statement  `json:"body"`
}

func NewWhileStatement(condition Expression, body Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: condition, Body: body}
}

type DoWhileStatement struct {
	nodeImpl
	statementMarker

	Body      Statement  `json:"body"`
	Condition Expression `json:"condition"`
}

func NewDoWhileStatement(body Statement, condition Expression) *DoWhileStatement {
	return &DoWhileStatement{nodeImpl: newNodeImpl(NodeDoWhileStatement), Body: body, Condition: condition}
}

// ForStatement is the classic three-clause loop; every clause is optional.
type ForStatement struct {
	nodeImpl
	statementMarker

	Init      Statement  `json:"init,omitempty"`
	Condition Expression `json:"condition,omitempty"`
	Step      Statement  `json:"step,omitempty"`
	Body      Statement  `json:"body"`
}

func NewForStatement(init Statement, condition Expression, step Statement, body Statement) *ForStatement {
	return &ForStatement{nodeImpl: newNodeImpl(NodeForStatement), Init: init, Condition: condition, Step: step, Body: body}
}

// ForeachStatement iterates an array or map. Key is nil for the single
// variable form.
type ForeachStatement struct {
	nodeImpl
	statementMarker

	Key      *Identifier `json:"key,omitempty"`
	Value    *Identifier `json:"value"`
	Iterable Expression  `json:"iterable"`
	Body     Statement   `json:"body"`
}

func NewForeachStatement(key, value *Identifier, iterable Expression, body Statement) *ForeachStatement {
	return &ForeachStatement{nodeImpl: newNodeImpl(NodeForeachStatement), Key: key, Value: value, Iterable: iterable, Body: body}
}

type BreakStatement struct {
	nodeImpl
	statementMarker
}

func NewBreakStatement() *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement)}
}

type ContinueStatement struct {
	nodeImpl
	statementMarker
}

func NewContinueStatement() *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement)}
}

type StopStatement struct {
	nodeImpl
	statementMarker
}

func NewStopStatement() *StopStatement {
	return &StopStatement{nodeImpl: newNodeImpl(NodeStopStatement)}
}

// Expressions

type NumberLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NullLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker
}

func NewNullLiteral() *NullLiteral {
	return &NullLiteral{nodeImpl: newNodeImpl(NodeNullLiteral)}
}

type Identifier struct {
	nodeImpl
	expressionMarker
	assignmentTargetMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

type MapEntry struct {
	nodeImpl

	Key   Expression `json:"key"`
	Value Expression `json:"value"`
}

func NewMapEntry(key, value Expression) *MapEntry {
	return &MapEntry{nodeImpl: newNodeImpl(NodeMapEntry), Key: key, Value: value}
}

type MapLiteral struct {
	nodeImpl
	expressionMarker

	Entries []*MapEntry `json:"entries"`
}

func NewMapLiteral(entries []*MapEntry) *MapLiteral {
	return &MapLiteral{nodeImpl: newNodeImpl(NodeMapLiteral), Entries: entries}
}

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type TernaryExpression struct {
	nodeImpl
	expressionMarker

	Condition  Expression `json:"condition"`
	Consequent Expression `json:"consequent"`
	Alternate  Expression `json:"alternate"`
}

func NewTernaryExpression(condition, consequent, alternate Expression) *TernaryExpression {
	return &TernaryExpression{nodeImpl: newNodeImpl(NodeTernaryExpression), Condition: condition, Consequent: consequent, Alternate: alternate}
}

// AssignmentExpression covers '=' and the compound operators ("+=", ...).
type AssignmentExpression struct {
	nodeImpl
	expressionMarker

	Operator string           `json:"operator"`
	Target   AssignmentTarget `json:"target"`
	Value    Expression       `json:"value"`
}

func NewAssignmentExpression(operator string, target AssignmentTarget, value Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Operator: operator, Target: target, Value: value}
}

// UpdateExpression is ++/-- in prefix or postfix position.
type UpdateExpression struct {
	nodeImpl
	expressionMarker

	Operator string           `json:"operator"`
	Prefix   bool             `json:"prefix"`
	Target   AssignmentTarget `json:"target"`
}

func NewUpdateExpression(operator string, prefix bool, target AssignmentTarget) *UpdateExpression {
	return &UpdateExpression{nodeImpl: newNodeImpl(NodeUpdateExpression), Operator: operator, Prefix: prefix, Target: target}
}

type CallExpression struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewCallExpression(callee Expression, args []Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: args}
}

type IndexExpression struct {
	nodeImpl
	expressionMarker
	assignmentTargetMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

// MemberExpression is `object.name`, sugar for object["name"].
type MemberExpression struct {
	nodeImpl
	expressionMarker
	assignmentTargetMarker

	Object   Expression  `json:"object"`
	Property *Identifier `json:"property"`
}

func NewMemberExpression(object Expression, property *Identifier) *MemberExpression {
	return &MemberExpression{nodeImpl: newNodeImpl(NodeMemberExpression), Object: object, Property: property}
}

type FunctionLiteral struct {
	nodeImpl
	expressionMarker

	Params []*Identifier `json:"params"`
	Body   Statement     `json:"body"`
}

func NewFunctionLiteral(params []*Identifier, body Statement) *FunctionLiteral {
	return &FunctionLiteral{nodeImpl: newNodeImpl(NodeFunctionLiteral), Params: params, Body: body}
}

// FunctionReference is `::name`.
type FunctionReference struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewFunctionReference(name string) *FunctionReference {
	return &FunctionReference{nodeImpl: newNodeImpl(NodeFunctionReference), Name: name}
}
