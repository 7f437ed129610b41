package events

import "strings"

// Node is a statement of the generated code.
type Node interface {
	render(sb *strings.Builder, depth int)
}

// Line is a single statement.
type Line string

// Comment is a line comment.
type Comment string

// Block is a braced statement list. An empty Header renders a bare block.
type Block struct {
	Header string
	Body   []Node
	Else   []Node
}

func indent(sb *strings.Builder, depth int) {
	for range depth {
		sb.WriteByte('\t')
	}
}

func (l Line) render(sb *strings.Builder, depth int) {
	indent(sb, depth)
	sb.WriteString(string(l))
	sb.WriteByte('\n')
}

func (c Comment) render(sb *strings.Builder, depth int) {
	for _, line := range strings.Split(string(c), "\n") {
		indent(sb, depth)
		sb.WriteString("// ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}

func (b *Block) render(sb *strings.Builder, depth int) {
	indent(sb, depth)
	if b.Header != "" {
		sb.WriteString(b.Header)
		sb.WriteByte(' ')
	}
	sb.WriteString("{\n")
	for _, n := range b.Body {
		n.render(sb, depth+1)
	}
	indent(sb, depth)
	if b.Else != nil {
		sb.WriteString("} else {\n")
		for _, n := range b.Else {
			n.render(sb, depth+1)
		}
		indent(sb, depth)
	}
	sb.WriteString("}\n")
}

// Render renders nodes at the given indentation depth.
func Render(nodes []Node, depth int) string {
	var sb strings.Builder
	for _, n := range nodes {
		n.render(&sb, depth)
	}
	return sb.String()
}
