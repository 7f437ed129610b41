package sentence

import (
	"fmt"
	"strings"

	"github.com/gookit/color"

	"github.com/bargom/eventc/internal/catalog"
	"github.com/bargom/eventc/internal/events"
)

// StyledSegment is a Segment with its display style resolved.
type StyledSegment struct {
	Segment
	Style Style `json:"style"`
}

// Renderer turns instructions into styled sentences.
type Renderer struct {
	catalog *catalog.Catalog
	styles  StyleTable
}

// NewRenderer returns a renderer. A nil style table uses DefaultStyles.
func NewRenderer(cat *catalog.Catalog, styles StyleTable) *Renderer {
	if styles == nil {
		styles = DefaultStyles()
	}
	return &Renderer{catalog: cat, styles: styles}
}

// Render builds the sentence of an instruction. Parameters of hidden kinds
// are left out and inverted conditions are prefixed with "Not ".
func (r *Renderer) Render(in events.Instruction, condition bool) ([]StyledSegment, error) {
	meta, ok := r.catalog.Instruction(in.Type, condition)
	if !ok {
		what := "action"
		if condition {
			what = "condition"
		}
		return nil, fmt.Errorf("unknown %s %q%s", what, in.Type, catalog.Hint(r.catalog.SuggestInstruction(in.Type, condition)))
	}

	params := make([]Param, len(in.Parameters))
	for i, text := range in.Parameters {
		params[i] = Param{Text: text}
		if i < len(meta.Parameters) {
			params[i].Kind = meta.Parameters[i].Kind
		}
	}

	var out []StyledSegment
	if condition && in.Inverted {
		out = append(out, StyledSegment{Segment: Segment{Text: "Not "}, Style: r.styles.Lookup(catalog.KindNone)})
	}
	for _, seg := range Substitute(meta.Sentence, params) {
		if seg.Kind.Info().Hidden {
			continue
		}
		out = append(out, StyledSegment{Segment: seg, Style: r.styles.Lookup(seg.Kind)})
	}
	return out, nil
}

// Sentence renders an instruction as plain text.
func (r *Renderer) Sentence(in events.Instruction, condition bool) (string, error) {
	segs, err := r.Render(in, condition)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String(), nil
}

// FormatANSI renders styled segments with terminal escapes. Output is plain
// when color.Enable is false.
func FormatANSI(segs []StyledSegment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(paint(s.Style, s.Text))
	}
	return sb.String()
}

func paint(s Style, text string) string {
	if s.IsZero() || !color.Enable {
		return text
	}
	var opts []color.Color
	if s.Bold {
		opts = append(opts, color.OpBold)
	}
	if s.Italic {
		opts = append(opts, color.OpItalic)
	}
	if s.Color == "" {
		return color.New(opts...).Sprint(text)
	}
	return color.NewRGBStyle(color.HEX(s.Color)).AddOpts(opts...).Sprint(text)
}
