package catalog

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestDistance bounds the edit distance of a suggestion.
const maxSuggestDistance = 3

// SuggestInstruction returns the registered condition or action type closest
// to typ, or "" when nothing is close.
func (c *Catalog) SuggestInstruction(typ string, condition bool) string {
	m := c.actions
	if condition {
		m = c.conditions
	}
	return suggest(typ, slices.Collect(maps.Keys(m)))
}

// SuggestExpression returns the function name of the given call kind closest
// to name, or "".
func (c *Catalog) SuggestExpression(call CallKind, name string) string {
	var names []string
	for k := range c.expressions {
		if k.call == call {
			names = append(names, k.name)
		}
	}
	return suggest(name, names)
}

// Hint formats a suggestion for an error message.
func Hint(suggestion string) string {
	if suggestion == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", suggestion)
}

func suggest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	// Subsequence matches first: "KeyPresed" finds "KeyPressed".
	ranks := fuzzy.RankFindFold(name, candidates)
	sort.Stable(ranks)
	if len(ranks) > 0 && ranks[0].Distance <= maxSuggestDistance && ranks[0].Target != name {
		return ranks[0].Target
	}

	best, bestDist := "", maxSuggestDistance+1
	lower := strings.ToLower(name)
	for _, c := range candidates {
		if c == name {
			continue
		}
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
