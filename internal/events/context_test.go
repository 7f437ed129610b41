package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextInheritance(t *testing.T) {
	root := NewContext()
	assert.False(t, root.DeclareIfAbsent("Player"))
	assert.True(t, root.DeclareIfAbsent("Player"), "second declaration is a no-op")
	assert.Equal(t, Local, root.State("Player"))

	child := root.Enter()
	assert.Equal(t, 1, child.Depth())
	assert.Same(t, root, child.Parent())
	assert.Equal(t, Inherited, child.State("Player"))
	assert.True(t, child.DeclareIfAbsent("Player"))
	assert.Equal(t, Local, child.State("Player"))

	assert.False(t, child.DeclareIfAbsent("Enemy"))
	assert.False(t, root.IsDeclared("Enemy"), "child declarations never reach the parent")

	sibling := root.Enter()
	assert.Equal(t, NotDeclared, sibling.State("Enemy"))

	grandchild := child.Enter()
	assert.Equal(t, Inherited, grandchild.State("Enemy"))
	assert.Equal(t, Inherited, grandchild.State("Player"))
}

func TestContextReset(t *testing.T) {
	root := NewContext()
	root.DeclareIfAbsent("Player")
	root.DeclareIfAbsent("Enemy")

	loop := root.Enter()
	loop.Reset("Player")
	assert.Equal(t, NotDeclared, loop.State("Player"))
	assert.Equal(t, Inherited, loop.State("Enemy"), "untouched lists keep their inherited status")
	assert.Equal(t, Local, root.State("Player"))

	assert.False(t, loop.DeclareIfAbsent("Player"))
	assert.Equal(t, Local, loop.State("Player"))
	assert.Equal(t, Inherited, loop.Enter().State("Player"))
}

func TestContextNeeded(t *testing.T) {
	root := NewContext()
	child := root.Enter()
	grandchild := child.Enter()

	child.ObjectListNeeded("B")
	child.ObjectListNeeded("A")
	child.ObjectListNeeded("B")
	grandchild.ObjectListNeeded("C")

	assert.Equal(t, []string{"B", "A"}, child.Needed())
	assert.Equal(t, []string{"C"}, grandchild.Needed())
	assert.Empty(t, root.Needed())

	assert.True(t, root.Used("C"), "use propagates to every enclosing scope")
	assert.True(t, child.Used("A"))
	assert.False(t, grandchild.Used("A"))

	needed := child.Needed()
	needed[0] = "Z"
	assert.Equal(t, []string{"B", "A"}, child.Needed())
}

func TestContextCurrentObject(t *testing.T) {
	ctx := NewContext()
	_, ok := ctx.CurrentObject("Player")
	assert.False(t, ok)

	ctx.SetCurrentObject("Player", "objectsPlayer[i]")
	element, ok := ctx.CurrentObject("Player")
	assert.True(t, ok)
	assert.Equal(t, "objectsPlayer[i]", element)

	_, ok = ctx.Enter().CurrentObject("Player")
	assert.False(t, ok)

	ctx.SetCurrentObject("Player", "")
	_, ok = ctx.CurrentObject("Player")
	assert.False(t, ok)
}

func TestListVar(t *testing.T) {
	tests := []struct {
		object string
		want   string
	}{
		{"Player", "objectsPlayer"},
		{"big_boss2", "objectsbig_boss2"},
		{"My Enemy", "objectsMy_20_Enemy"},
		{"é", "objects_e9_"},
		{"a-b", "objectsa_2d_b"},
	}

	for _, tt := range tests {
		t.Run(tt.object, func(t *testing.T) {
			assert.Equal(t, tt.want, ListVar(tt.object))
		})
	}
}
