package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	cat, err := NewBuilder().Add(testExtension()).Build()
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     string
		condition bool
		want      string
	}{
		{name: "missing letter", input: "ModVarScen", want: "ModVarScene"},
		{name: "case folded", input: "modvarscene", want: "ModVarScene"},
		{name: "condition prefix", input: "Timr", condition: true, want: "Timer"},
		{name: "transposed letters", input: "Tmier", condition: true, want: "Timer"},
		{name: "nothing close", input: "Explode", want: ""},
		{name: "exact match", input: "Timer", condition: true, want: ""},
		{name: "conditions are not actions", input: "Timer", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cat.SuggestInstruction(tt.input, tt.condition))
		})
	}

	assert.Equal(t, "abs", cat.SuggestExpression(CallFree, "ab"))
	assert.Equal(t, "", cat.SuggestExpression(CallObject, "ab"))
}

func TestHint(t *testing.T) {
	assert.Equal(t, "", Hint(""))
	assert.Equal(t, ` (did you mean "Timer"?)`, Hint("Timer"))
}
