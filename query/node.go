package query

import "github.com/syssam/querykit/entity"

// Op is a comparison operator of a leaf predicate.
type Op uint8

// Comparison operators.
const (
	OpEQ Op = iota + 1
	OpNE
	OpGT
	OpGE
	OpLT
	OpLE
	OpLike
	OpNotLike
	OpIn
	OpNotIn
	OpBetween
	OpNotBetween
	OpIsNull
	OpIsNotNull
)

var ops = [...]string{
	OpEQ:         "=",
	OpNE:         "<>",
	OpGT:         ">",
	OpGE:         ">=",
	OpLT:         "<",
	OpLE:         "<=",
	OpLike:       "like",
	OpNotLike:    "not like",
	OpIn:         "in",
	OpNotIn:      "not in",
	OpBetween:    "between",
	OpNotBetween: "not between",
	OpIsNull:     "is null",
	OpIsNotNull:  "is not null",
}

// String returns the SQL token of the operator.
func (o Op) String() string {
	if o > 0 && int(o) < len(ops) {
		return ops[o]
	}
	return "invalid"
}

// Connective joins the children of a group.
type Connective uint8

// Connectives.
const (
	And Connective = iota
	Or
)

// String returns the SQL keyword of the connective.
func (c Connective) String() string {
	if c == Or {
		return "or"
	}
	return "and"
}

// NodeKind tells leaves and groups apart.
type NodeKind uint8

// Node kinds.
const (
	KindGroup NodeKind = iota
	KindLeaf
)

// Node is a predicate tree node: either a leaf comparison or a group of
// children joined by a connective.
type Node struct {
	Kind NodeKind `msgpack:"kind"`

	// Leaf fields.
	Column *entity.Column `msgpack:"column,omitempty"`
	Op     Op             `msgpack:"op,omitempty"`
	Values []any          `msgpack:"values,omitempty"`

	// Group fields.
	Connective Connective `msgpack:"connective,omitempty"`
	Children   []*Node    `msgpack:"children,omitempty"`
}

// Leaf returns a leaf node.
func Leaf(c *entity.Column, op Op, values ...any) *Node {
	return &Node{Kind: KindLeaf, Column: c, Op: op, Values: values}
}

// Group returns a group node.
func Group(conn Connective, children ...*Node) *Node {
	return &Node{Kind: KindGroup, Connective: conn, Children: children}
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool { return n != nil && n.Kind == KindLeaf }

// Empty reports whether the node imposes no condition. An empty group is
// always true.
func (n *Node) Empty() bool {
	if n == nil {
		return true
	}
	if n.Kind == KindLeaf {
		return false
	}
	for _, c := range n.Children {
		if !c.Empty() {
			return false
		}
	}
	return true
}

// Leaves returns the number of leaves under the node.
func (n *Node) Leaves() int {
	if n == nil {
		return 0
	}
	if n.Kind == KindLeaf {
		return 1
	}
	var count int
	for _, c := range n.Children {
		count += c.Leaves()
	}
	return count
}
