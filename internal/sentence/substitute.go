// Package sentence renders instruction templates as human-readable text.
//
// Templates reference parameters through placeholders _PARAM0_, _PARAM1_, ...
// Substitution always consumes the placeholder occurring first in the
// remaining template, whatever its index, so a template may reference
// parameters in any order and any number of times.
package sentence

import (
	"strconv"
	"strings"

	"github.com/bargom/eventc/internal/catalog"
)

// Param is the written text of one parameter and its kind.
type Param struct {
	Text string
	Kind catalog.ParameterKind
}

// Segment is a run of sentence text. Literal template text has KindNone.
type Segment struct {
	Text string                `json:"text"`
	Kind catalog.ParameterKind `json:"kind"`
}

// Placeholder returns the template placeholder of parameter i.
func Placeholder(i int) string {
	return "_PARAM" + strconv.Itoa(i) + "_"
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func normalize(s string) string { return newlines.Replace(s) }

// Substitute splits template into literal and parameter segments.
func Substitute(template string, params []Param) []Segment {
	var out []Segment
	rest := template
	for {
		at, index, width := -1, -1, 0
		for i := range params {
			ph := Placeholder(i)
			if pos := strings.Index(rest, ph); pos >= 0 && (at < 0 || pos < at) {
				at, index, width = pos, i, len(ph)
			}
		}
		if at < 0 {
			break
		}
		if at > 0 {
			out = append(out, Segment{Text: normalize(rest[:at])})
		}
		out = append(out, Segment{Text: normalize(params[index].Text), Kind: params[index].Kind})
		rest = rest[at+width:]
	}
	if rest != "" {
		out = append(out, Segment{Text: normalize(rest)})
	}
	return out
}

// Flatten concatenates segment texts.
func Flatten(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Render substitutes params into template and returns the plain sentence.
func Render(template string, params []Param) string {
	return Flatten(Substitute(template, params))
}
