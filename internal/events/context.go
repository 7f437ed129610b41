package events

import (
	"strconv"
	"strings"
	"unicode"
)

// Declaration is the state of an object list in a scope.
type Declaration int

const (
	// NotDeclared lists must be fetched from the runtime.
	NotDeclared Declaration = iota
	// Inherited lists are declared by an enclosing scope and are copied.
	Inherited
	// Local lists are already declared in this scope.
	Local
)

// Context records which object lists a lexical scope has declared.
// A child sees its parent's declarations but never changes them.
type Context struct {
	parent   *Context
	declared map[string]bool
	hidden   map[string]bool
	used     map[string]bool
	needed   []string
	current  map[string]string
	depth    int
}

// NewContext creates a root scope.
func NewContext() *Context {
	return &Context{
		declared: make(map[string]bool),
		hidden:   make(map[string]bool),
		used:     make(map[string]bool),
		current:  make(map[string]string),
	}
}

// Enter creates a child scope.
func (c *Context) Enter() *Context {
	child := NewContext()
	child.parent = c
	child.depth = c.depth + 1
	return child
}

// Parent returns the enclosing scope, or nil for a root.
func (c *Context) Parent() *Context { return c.parent }

// Depth returns the nesting depth; a root is 0.
func (c *Context) Depth() int { return c.depth }

// State reports how name is declared as seen from this scope.
func (c *Context) State(name string) Declaration {
	if c.declared[name] {
		return Local
	}
	if c.hidden[name] || c.parent == nil {
		return NotDeclared
	}
	if c.parent.State(name) != NotDeclared {
		return Inherited
	}
	return NotDeclared
}

// IsDeclared reports whether name is declared here or inherited.
func (c *Context) IsDeclared(name string) bool {
	return c.State(name) != NotDeclared
}

// DeclareIfAbsent marks name as declared in this scope and reports whether it
// already was, locally or through a parent.
func (c *Context) DeclareIfAbsent(name string) (alreadyDeclared bool) {
	alreadyDeclared = c.IsDeclared(name)
	c.declared[name] = true
	return alreadyDeclared
}

// Reset forgets the declarations of names in this scope, including inherited
// ones, so the lists are fetched again.
func (c *Context) Reset(names ...string) {
	for _, name := range names {
		delete(c.declared, name)
		c.hidden[name] = true
	}
}

// ObjectListNeeded records that code of this scope refers to the list of name.
func (c *Context) ObjectListNeeded(name string) {
	if !c.isNeeded(name) {
		c.needed = append(c.needed, name)
	}
	for s := c; s != nil; s = s.parent {
		s.used[name] = true
	}
}

func (c *Context) isNeeded(name string) bool {
	for _, n := range c.needed {
		if n == name {
			return true
		}
	}
	return false
}

// Needed returns the lists referenced by this scope's own code, in first-use order.
func (c *Context) Needed() []string {
	out := make([]string, len(c.needed))
	copy(out, c.needed)
	return out
}

// Used reports whether this scope or any scope below it referred to name.
func (c *Context) Used(name string) bool { return c.used[name] }

// SetCurrentObject makes element the expression of the single instance of
// object that per-object code is working on. An empty element clears it.
func (c *Context) SetCurrentObject(object, element string) {
	if element == "" {
		delete(c.current, object)
		return
	}
	c.current[object] = element
}

// CurrentObject returns the element expression set for object, if any.
func (c *Context) CurrentObject(object string) (string, bool) {
	element, ok := c.current[object]
	return element, ok
}

// ListVar returns the Go variable holding the picked instances of an object.
func ListVar(object string) string {
	var sb strings.Builder
	sb.WriteString("objects")
	for _, r := range object {
		if r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			sb.WriteRune(r)
			continue
		}
		sb.WriteByte('_')
		sb.WriteString(strconv.FormatInt(int64(r), 16))
		sb.WriteByte('_')
	}
	return sb.String()
}
