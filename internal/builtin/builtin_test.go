package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bargom/eventc/internal/catalog"
)

func TestCatalogBuilds(t *testing.T) {
	cat, err := Catalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "objects", "text", "movement"}, cat.Extensions())

	tests := []struct {
		name      string
		condition bool
		typ       string
		kind      catalog.CallKind
	}{
		{name: "scene variable test", condition: true, typ: "VarScene", kind: catalog.CallFree},
		{name: "object position test", condition: true, typ: "PosX", kind: catalog.CallObject},
		{name: "behavior test", condition: true, typ: "IsMoving", kind: catalog.CallBehavior},
		{name: "or", condition: true, typ: "Or", kind: catalog.CallOr},
		{name: "scene variable change", typ: "ModVarScene", kind: catalog.CallFree},
		{name: "object position change", typ: "MettreX", kind: catalog.CallObject},
		{name: "speed change", typ: "SetSpeed", kind: catalog.CallBehavior},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := cat.Instruction(tt.typ, tt.condition)
			require.True(t, ok)
			assert.Equal(t, tt.kind, m.Call.Kind)
			assert.NotEmpty(t, m.Sentence)
		})
	}
}

func TestReceiversCarryTheirImport(t *testing.T) {
	cat, err := Catalog()
	require.NoError(t, err)

	m, ok := cat.Action("TextContent")
	require.True(t, ok)
	assert.Equal(t, ScenePackage, m.Call.Include)
	assert.Equal(t, "scene.Text", m.Call.Receiver)

	e, ok := cat.Expression(catalog.CallBehavior, catalog.ValueNumber, "Speed")
	require.True(t, ok)
	assert.Equal(t, ScenePackage, e.Call.Include)
}

func TestCatalogRejectsClashingExtension(t *testing.T) {
	_, err := Catalog(catalog.Extension{
		Name: "clash",
		Actions: []catalog.InstructionMetadata{
			{Type: "Delete", Parameters: []catalog.ParameterMetadata{{Kind: catalog.KindObject}}, Call: catalog.CallingConvention{Kind: catalog.CallObject, Function: "Remove"}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate action "Delete"`)
}
