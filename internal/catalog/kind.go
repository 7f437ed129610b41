package catalog

import (
	"fmt"
	"strings"
)

// ParameterKind is the closed category of an instruction parameter.
type ParameterKind int

const (
	// KindNone tags untyped text, such as the literal parts of a sentence.
	KindNone ParameterKind = iota
	KindExpression
	KindString
	KindObject
	KindBehavior
	KindVariable
	KindColor
	KindOperator
	KindRelationalOperator
	KindLayer
	KindFile
	KindKey
	KindYesOrNo
	KindTrueOrFalse
	KindInlineCode
	KindRuntime
	KindConditionInverted
)

// ParseRule selects how a parameter's text becomes a code fragment.
type ParseRule int

const (
	// RuleVerbatim copies the text unchanged.
	RuleVerbatim ParseRule = iota
	// RuleMath parses the text as a numeric expression.
	RuleMath
	// RuleString parses the text as a string expression.
	RuleString
	// RuleQuoted emits the text as a quoted string literal.
	RuleQuoted
	// RuleOperator validates an assignment operator (= + - * /).
	RuleOperator
	// RuleRelational validates a comparison operator.
	RuleRelational
	// RuleYesNo maps "yes" to true, anything else to false.
	RuleYesNo
	// RuleTrueFalse maps "True" to true, anything else to false.
	RuleTrueFalse
	// RuleInline emits the parameter's supplementary information.
	RuleInline
	// RuleRuntime emits the runtime variable.
	RuleRuntime
	// RuleInverted emits whether the condition is inverted.
	RuleInverted
)

// StyleClass groups kinds that share a display style.
type StyleClass string

const (
	StylePlain      StyleClass = "plain"
	StyleExpression StyleClass = "expression"
	StyleText       StyleClass = "text"
	StyleObject     StyleClass = "object"
	StyleBehavior   StyleClass = "behavior"
	StyleVariable   StyleClass = "variable"
	StyleColor      StyleClass = "color"
	StyleOperator   StyleClass = "operator"
	StyleResource   StyleClass = "resource"
	StyleChoice     StyleClass = "choice"
	StyleCode       StyleClass = "code"
)

// KindInfo is the dispatch entry for one ParameterKind.
type KindInfo struct {
	Name  string
	Rule  ParseRule
	Style StyleClass
	// Hidden kinds never appear in rendered sentences.
	Hidden bool
}

var kindTable = map[ParameterKind]KindInfo{
	KindNone:               {Name: "none", Rule: RuleVerbatim, Style: StylePlain},
	KindExpression:         {Name: "expression", Rule: RuleMath, Style: StyleExpression},
	KindString:             {Name: "string", Rule: RuleString, Style: StyleText},
	KindObject:             {Name: "object", Rule: RuleQuoted, Style: StyleObject},
	KindBehavior:           {Name: "behavior", Rule: RuleQuoted, Style: StyleBehavior},
	KindVariable:           {Name: "variable", Rule: RuleQuoted, Style: StyleVariable},
	KindColor:              {Name: "color", Rule: RuleQuoted, Style: StyleColor},
	KindOperator:           {Name: "operator", Rule: RuleOperator, Style: StyleOperator},
	KindRelationalOperator: {Name: "relationalOperator", Rule: RuleRelational, Style: StyleOperator},
	KindLayer:              {Name: "layer", Rule: RuleQuoted, Style: StyleResource},
	KindFile:               {Name: "file", Rule: RuleQuoted, Style: StyleResource},
	KindKey:                {Name: "key", Rule: RuleQuoted, Style: StyleResource},
	KindYesOrNo:            {Name: "yesOrNo", Rule: RuleYesNo, Style: StyleChoice},
	KindTrueOrFalse:        {Name: "trueOrFalse", Rule: RuleTrueFalse, Style: StyleChoice},
	KindInlineCode:         {Name: "inlineCode", Rule: RuleInline, Style: StyleCode, Hidden: true},
	KindRuntime:            {Name: "runtime", Rule: RuleRuntime, Style: StyleCode, Hidden: true},
	KindConditionInverted:  {Name: "conditionInverted", Rule: RuleInverted, Style: StyleCode, Hidden: true},
}

var kindByName = func() map[string]ParameterKind {
	m := make(map[string]ParameterKind, len(kindTable))
	for k, info := range kindTable {
		m[strings.ToLower(info.Name)] = k
	}
	return m
}()

// Info returns the dispatch entry for k. Unknown kinds behave like KindNone.
func (k ParameterKind) Info() KindInfo {
	if info, ok := kindTable[k]; ok {
		return info
	}
	return kindTable[KindNone]
}

// String returns the kind's name.
func (k ParameterKind) String() string {
	if info, ok := kindTable[k]; ok {
		return info.Name
	}
	return fmt.Sprintf("ParameterKind(%d)", int(k))
}

// Rule returns the parse rule used for parameters of this kind.
func (k ParameterKind) Rule() ParseRule { return k.Info().Rule }

// Style returns the style class of this kind.
func (k ParameterKind) Style() StyleClass { return k.Info().Style }

// ParseKind converts a kind name to a ParameterKind. Matching is case insensitive.
func ParseKind(name string) (ParameterKind, error) {
	if k, ok := kindByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return KindNone, fmt.Errorf("unknown parameter kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k ParameterKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ParameterKind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
