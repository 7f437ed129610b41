package sentence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bargom/eventc/internal/builtin"
	"github.com/bargom/eventc/internal/catalog"
	"github.com/bargom/eventc/internal/events"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   []Param
		want     []Segment
	}{
		{
			name:     "out of order",
			template: "Do _PARAM2__PARAM1_ to the total of _PARAM0_",
			params: []Param{
				{Text: "Score", Kind: catalog.KindVariable},
				{Text: "10", Kind: catalog.KindExpression},
				{Text: "+", Kind: catalog.KindOperator},
			},
			want: []Segment{
				{Text: "Do "},
				{Text: "+", Kind: catalog.KindOperator},
				{Text: "10", Kind: catalog.KindExpression},
				{Text: " to the total of "},
				{Text: "Score", Kind: catalog.KindVariable},
			},
		},
		{
			name:     "no placeholders",
			template: "Always",
			want:     []Segment{{Text: "Always"}},
		},
		{
			name:     "empty parameter still emitted",
			template: "_PARAM0_ is empty",
			params:   []Param{{Text: "", Kind: catalog.KindString}},
			want:     []Segment{{Text: "", Kind: catalog.KindString}, {Text: " is empty"}},
		},
		{
			name:     "repeated placeholder",
			template: "_PARAM0_ and _PARAM0_",
			params:   []Param{{Text: "x", Kind: catalog.KindObject}},
			want: []Segment{
				{Text: "x", Kind: catalog.KindObject},
				{Text: " and "},
				{Text: "x", Kind: catalog.KindObject},
			},
		},
		{
			name:     "newlines become spaces",
			template: "Say\n_PARAM0_",
			params:   []Param{{Text: "a\r\nb", Kind: catalog.KindString}},
			want:     []Segment{{Text: "Say "}, {Text: "a b", Kind: catalog.KindString}},
		},
		{
			name:     "lone carriage returns become spaces",
			template: "Say\r_PARAM0_\r\r",
			params:   []Param{{Text: "a\rb\n\rc", Kind: catalog.KindString}},
			want:     []Segment{{Text: "Say "}, {Text: "a b  c", Kind: catalog.KindString}, {Text: "  "}},
		},
		{
			name:     "placeholder without parameter stays literal",
			template: "_PARAM0_ then _PARAM1_",
			params:   []Param{{Text: "a"}},
			want:     []Segment{{Text: "a"}, {Text: " then _PARAM1_"}},
		},
		{
			name: "empty template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.template, tt.params))
		})
	}
}

func TestRenderMatchesReplacer(t *testing.T) {
	templates := []string{
		"Do _PARAM2__PARAM1_ to the total of _PARAM0_",
		"_PARAM1_ _PARAM0_ _PARAM2_ _PARAM1_",
		"The X position of _PARAM0_ is _PARAM1_ _PARAM2_",
		"nothing to see",
	}
	params := []Param{{Text: "first"}, {Text: "second"}, {Text: "third"}}

	var pairs []string
	for i, p := range params {
		pairs = append(pairs, Placeholder(i), p.Text)
	}
	replacer := strings.NewReplacer(pairs...)

	for _, tmpl := range templates {
		t.Run(tmpl, func(t *testing.T) {
			assert.Equal(t, replacer.Replace(tmpl), Render(tmpl, params))
		})
	}
}

func TestStyles(t *testing.T) {
	styles := DefaultStyles()
	require.NoError(t, styles.Validate())
	assert.Equal(t, styles[catalog.StyleObject], styles.Lookup(catalog.KindObject))
	assert.Equal(t, styles[catalog.StyleResource], styles.Lookup(catalog.KindKey))
	assert.True(t, styles.Lookup(catalog.KindNone).IsZero())

	partial := StyleTable{catalog.StylePlain: {Bold: true}}
	assert.Equal(t, Style{Bold: true}, partial.Lookup(catalog.KindObject))
}

func TestDecodeStyles(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		check   func(t *testing.T, s StyleTable)
		wantErr string
	}{
		{
			name:  "override merges over defaults",
			input: "object:\n  color: \"#ff0000\"\n",
			check: func(t *testing.T, s StyleTable) {
				assert.Equal(t, Style{Color: "#ff0000"}, s[catalog.StyleObject])
				assert.Equal(t, DefaultStyles()[catalog.StyleText], s[catalog.StyleText])
			},
		},
		{
			name:  "empty input keeps defaults",
			input: "",
			check: func(t *testing.T, s StyleTable) {
				assert.Equal(t, DefaultStyles(), s)
			},
		},
		{name: "bad color", input: "object:\n  color: red\n", wantErr: "invalid styles"},
		{name: "unknown class", input: "widget:\n  bold: true\n", wantErr: "unknown style class"},
		{name: "unknown field", input: "object:\n  underline: true\n", wantErr: "failed to parse styles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeStyles(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestLoadStyles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "styles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("operator:\n  italic: true\n"), 0o644))

	s, err := LoadStyles(path)
	require.NoError(t, err)
	assert.Equal(t, Style{Italic: true}, s[catalog.StyleOperator])

	_, err = LoadStyles(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read style file")
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	cat, err := builtin.Catalog()
	require.NoError(t, err)
	return NewRenderer(cat, nil)
}

func TestRendererSentence(t *testing.T) {
	r := newTestRenderer(t)

	tests := []struct {
		name      string
		in        events.Instruction
		condition bool
		want      string
		wantErr   string
	}{
		{
			name: "action",
			in:   events.Instruction{Type: "ModVarScene", Parameters: []string{"Score", "+", "10"}},
			want: "Do +10 to variable Score",
		},
		{
			name:      "inverted condition",
			in:        events.Instruction{Type: "KeyPressed", Parameters: []string{"Space"}, Inverted: true},
			condition: true,
			want:      "Not Space key is pressed",
		},
		{
			name: "inverted ignored on actions",
			in:   events.Instruction{Type: "ResetTimer", Parameters: []string{"t"}, Inverted: true},
			want: "Reset the timer t",
		},
		{
			name:      "unknown condition",
			in:        events.Instruction{Type: "Nope"},
			condition: true,
			wantErr:   `unknown condition "Nope"`,
		},
		{
			name:    "condition type used as action",
			in:      events.Instruction{Type: "KeyPressed"},
			wantErr: `unknown action "KeyPressed"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Sentence(tt.in, tt.condition)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRendererSkipsHiddenKinds(t *testing.T) {
	cat, err := builtin.Catalog(catalog.Extension{
		Name: "hidden",
		Actions: []catalog.InstructionMetadata{{
			Type:     "Emit",
			Sentence: "Emit _PARAM0__PARAM1_",
			Parameters: []catalog.ParameterMetadata{
				{Kind: catalog.KindString},
				{Kind: catalog.KindRuntime, CodeOnly: true},
			},
			Call: catalog.CallingConvention{Function: "Emit"},
		}},
	})
	require.NoError(t, err)

	segs, err := NewRenderer(cat, nil).Render(events.Instruction{Type: "Emit", Parameters: []string{"hello", "rt"}}, false)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "hello", segs[1].Text)
	assert.Equal(t, catalog.KindString, segs[1].Kind)
	assert.Equal(t, DefaultStyles()[catalog.StyleText], segs[1].Style)
}

func TestFormatANSI(t *testing.T) {
	r := newTestRenderer(t)
	segs, err := r.Render(events.Instruction{Type: "ModVarScene", Parameters: []string{"Score", "+", "10"}}, false)
	require.NoError(t, err)

	prev := color.Enable
	t.Cleanup(func() { color.Enable = prev })

	color.Enable = false
	assert.Equal(t, "Do +10 to variable Score", FormatANSI(segs))

	color.Enable = true
	out := FormatANSI(segs)
	assert.Contains(t, out, "Score")
	assert.True(t, strings.HasPrefix(out, "Do "), "plain segments are not wrapped")
}
