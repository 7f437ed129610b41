package expr

import (
	"strconv"
	"strings"

	"github.com/bargom/eventc/internal/catalog"
)

// Node is a checked expression node.
type Node interface {
	// Type is the value type the node produces.
	Type() catalog.ValueType
	// Offset is the byte offset of the node in the source text.
	Offset() int
	String() string
}

// Number is a numeric literal kept in its source spelling.
type Number struct {
	At    int
	Value string
}

// Text is a decoded string literal.
type Text struct {
	At    int
	Value string
}

// Negate is unary minus.
type Negate struct {
	At      int
	Operand Node
}

// Binary is an arithmetic operation or, on strings, concatenation.
type Binary struct {
	At          int
	Op          byte
	Left, Right Node
	ResultType  catalog.ValueType
}

// Name is a bare identifier passed to a name-like parameter.
type Name struct {
	At    int
	Value string
}

// RuntimeRef passes the runtime itself as an argument.
type RuntimeRef struct{}

// Call is a resolved function call.
type Call struct {
	At       int
	Object   string
	Behavior string
	Meta     catalog.ExpressionMetadata
	Args     []Node
}

func (n *Number) Type() catalog.ValueType     { return catalog.ValueNumber }
func (n *Text) Type() catalog.ValueType       { return catalog.ValueString }
func (n *Negate) Type() catalog.ValueType     { return catalog.ValueNumber }
func (n *Binary) Type() catalog.ValueType     { return n.ResultType }
func (n *Name) Type() catalog.ValueType       { return catalog.ValueString }
func (n *RuntimeRef) Type() catalog.ValueType { return catalog.ValueNone }
func (n *Call) Type() catalog.ValueType       { return n.Meta.Returns }

func (n *Number) Offset() int     { return n.At }
func (n *Text) Offset() int       { return n.At }
func (n *Negate) Offset() int     { return n.At }
func (n *Binary) Offset() int     { return n.At }
func (n *Name) Offset() int       { return n.At }
func (n *RuntimeRef) Offset() int { return -1 }
func (n *Call) Offset() int       { return n.At }

func (n *Number) String() string     { return n.Value }
func (n *Text) String() string       { return strconv.Quote(n.Value) }
func (n *Negate) String() string     { return "-" + n.Operand.String() }
func (n *Name) String() string       { return n.Value }
func (n *RuntimeRef) String() string { return "<runtime>" }

func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + string(n.Op) + " " + n.Right.String() + ")"
}

func (n *Call) String() string {
	var sb strings.Builder
	if n.Object != "" {
		sb.WriteString(n.Object)
		sb.WriteByte('.')
		if n.Behavior != "" {
			sb.WriteString(n.Behavior)
			sb.WriteString("::")
		}
	}
	sb.WriteString(n.Meta.Name)
	sb.WriteByte('(')
	first := true
	for _, a := range n.Args {
		if _, ok := a.(*RuntimeRef); ok {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Walk calls fn for n and every node below it, depth first.
func Walk(n Node, fn func(Node)) {
	fn(n)
	switch v := n.(type) {
	case *Negate:
		Walk(v.Operand, fn)
	case *Binary:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	case *Call:
		for _, a := range v.Args {
			Walk(a, fn)
		}
	}
}
