package expr

import (
	"strconv"
	"strings"

	"github.com/bargom/eventc/internal/catalog"
)

// Scope supplies the names generated code refers to.
type Scope interface {
	// Runtime returns the variable holding the runtime.
	Runtime() string
	// ObjectLists returns the variables holding the picked objects of object,
	// one per member when object is a group, recording that the enclosing
	// scope must declare them.
	ObjectLists(object string) []string
	// Current returns the element expression of the object being iterated by an
	// enclosing per-object loop, if that object is the one named.
	Current(object string) (string, bool)
}

// Emit renders the expression as Go code.
func (e *Expression) Emit(scope Scope) string {
	var sb strings.Builder
	emitNode(&sb, e.Root, scope)
	return sb.String()
}

// precedence of a node when it appears as an operand.
func precedence(n Node) int {
	switch v := n.(type) {
	case *Binary:
		if v.Op == '+' || v.Op == '-' {
			return 1
		}
		return 2
	case *Negate:
		return 3
	default:
		return 4
	}
}

func emitOperand(sb *strings.Builder, n Node, scope Scope, min int) {
	if precedence(n) < min {
		sb.WriteByte('(')
		emitNode(sb, n, scope)
		sb.WriteByte(')')
		return
	}
	emitNode(sb, n, scope)
}

func emitNode(sb *strings.Builder, n Node, scope Scope) {
	switch v := n.(type) {
	case *Number:
		sb.WriteString(v.Value)
	case *Text:
		sb.WriteString(strconv.Quote(v.Value))
	case *Name:
		sb.WriteString(strconv.Quote(v.Value))
	case *RuntimeRef:
		sb.WriteString(scope.Runtime())
	case *Negate:
		sb.WriteByte('-')
		emitOperand(sb, v.Operand, scope, 4)
	case *Binary:
		emitBinary(sb, v, scope)
	case *Call:
		emitCall(sb, v, scope)
	}
}

func emitBinary(sb *strings.Builder, b *Binary, scope Scope) {
	p := precedence(b)
	if b.Op == '/' {
		// Untyped integer constants would otherwise divide as integers.
		sb.WriteString("float64(")
		emitNode(sb, b.Left, scope)
		sb.WriteString(")")
	} else {
		emitOperand(sb, b.Left, scope, p)
	}
	sb.WriteByte(' ')
	sb.WriteByte(b.Op)
	sb.WriteByte(' ')
	// Right operands of equal precedence keep their grouping.
	emitOperand(sb, b.Right, scope, p+1)
}

func emitArgs(sb *strings.Builder, args []Node, scope Scope) {
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		emitNode(sb, a, scope)
	}
	sb.WriteByte(')')
}

func emitCall(sb *strings.Builder, c *Call, scope Scope) {
	conv := c.Meta.Call
	switch conv.Kind {
	case catalog.CallObject, catalog.CallBehavior:
		member := func(target string) string {
			var m strings.Builder
			m.WriteString(target)
			if conv.Kind == catalog.CallBehavior {
				m.WriteString(".Behavior(")
				m.WriteString(strconv.Quote(c.Behavior))
				m.WriteString(")")
			}
			if conv.Receiver != "" {
				m.WriteString(".(")
				m.WriteString(conv.Receiver)
				m.WriteString(")")
			}
			m.WriteByte('.')
			m.WriteString(conv.Function)
			emitArgs(&m, c.Args, scope)
			return m.String()
		}
		if current, ok := scope.Current(c.Object); ok {
			sb.WriteString(member(current))
			return
		}
		zero := "0"
		typ := "float64"
		if c.Meta.Returns == catalog.ValueString {
			zero = `""`
			typ = "string"
		}
		lists := scope.ObjectLists(c.Object)
		switch len(lists) {
		case 0:
			sb.WriteString(zero)
		case 1:
			sb.WriteString("func() " + typ + " { if len(" + lists[0] + ") == 0 { return " + zero + " }; return ")
			sb.WriteString(member(lists[0] + "[0]"))
			sb.WriteString(" }()")
		default:
			// The first member with a picked instance answers.
			sb.WriteString("func() " + typ + " { ")
			for _, list := range lists {
				sb.WriteString("if len(" + list + ") > 0 { return " + member(list+"[0]") + " }; ")
			}
			sb.WriteString("return " + zero + " }()")
		}
	default:
		sb.WriteString(QualifiedFunction(conv.Function, scope.Runtime()))
		emitArgs(sb, c.Args, scope)
	}
}

// QualifiedFunction returns a package-qualified function unchanged and
// prefixes anything else with the runtime variable.
func QualifiedFunction(function, runtime string) string {
	if strings.Contains(function, ".") {
		return function
	}
	return runtime + "." + function
}
