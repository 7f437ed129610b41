package catalog

import (
	"fmt"
	"strings"
)

// ValueType is the result type of an expression or the compared type of a condition.
type ValueType int

const (
	ValueNone ValueType = iota
	ValueNumber
	ValueString
)

var valueTypeNames = map[ValueType]string{
	ValueNone:   "none",
	ValueNumber: "number",
	ValueString: "string",
}

// String returns the value type name.
func (v ValueType) String() string { return enumName(valueTypeNames, v) }

// MarshalText implements encoding.TextMarshaler.
func (v ValueType) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *ValueType) UnmarshalText(text []byte) error {
	return parseEnum(valueTypeNames, string(text), "value type", v)
}

// CallKind selects how an instruction or expression is invoked.
type CallKind int

const (
	// CallFree invokes a function of the runtime.
	CallFree CallKind = iota
	// CallObject invokes a method on every picked object.
	CallObject
	// CallBehavior invokes a method on a named behavior of every picked object.
	CallBehavior
	// CallOr is true when any sub-condition is true.
	CallOr
	// CallAnd is true when every sub-condition is true.
	CallAnd
	// CallNot negates the conjunction of its sub-conditions.
	CallNot
)

var callKindNames = map[CallKind]string{
	CallFree:     "free",
	CallObject:   "object",
	CallBehavior: "behavior",
	CallOr:       "or",
	CallAnd:      "and",
	CallNot:      "not",
}

// String returns the call kind name.
func (c CallKind) String() string { return enumName(callKindNames, c) }

// Compound reports whether the call is evaluated from sub-instructions.
func (c CallKind) Compound() bool { return c == CallOr || c == CallAnd || c == CallNot }

// MarshalText implements encoding.TextMarshaler.
func (c CallKind) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CallKind) UnmarshalText(text []byte) error {
	return parseEnum(callKindNames, string(text), "call kind", c)
}

// Access selects how an action's operator parameter is compiled.
type Access int

const (
	// AccessCall emits a single call with every parameter.
	AccessCall Access = iota
	// AccessMutator reads through Getter, applies the operator and writes through Function.
	AccessMutator
	// AccessCompound emits "Function(args) op= value".
	AccessCompound
)

var accessNames = map[Access]string{
	AccessCall:     "call",
	AccessMutator:  "mutator",
	AccessCompound: "compound",
}

// String returns the access name.
func (a Access) String() string { return enumName(accessNames, a) }

// MarshalText implements encoding.TextMarshaler.
func (a Access) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Access) UnmarshalText(text []byte) error {
	return parseEnum(accessNames, string(text), "access", a)
}

// CallingConvention describes the code emitted for an instruction or expression.
type CallingConvention struct {
	// Function is the runtime function or object method name.
	Function string `json:"function,omitempty" yaml:"function,omitempty"`
	// Include is an import path the generated program needs.
	Include string `json:"include,omitempty" yaml:"include,omitempty"`
	Kind    CallKind `json:"kind" yaml:"kind"`
	// ValueType makes a condition compare its result with a relational operator,
	// or an action apply its operator parameter.
	ValueType ValueType `json:"valueType,omitempty" yaml:"valueType,omitempty"`
	Access    Access    `json:"access,omitempty" yaml:"access,omitempty"`
	Getter    string    `json:"getter,omitempty" yaml:"getter,omitempty"`
	// Receiver is an optional Go type asserted on the object or behavior.
	Receiver string `json:"receiver,omitempty" yaml:"receiver,omitempty"`
}

// ParameterMetadata describes one declared parameter.
type ParameterMetadata struct {
	Kind          ParameterKind `json:"kind" yaml:"kind"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	Optional      bool          `json:"optional,omitempty" yaml:"optional,omitempty"`
	Default       string        `json:"default,omitempty" yaml:"default,omitempty"`
	CodeOnly      bool          `json:"codeOnly,omitempty" yaml:"codeOnly,omitempty"`
	Supplementary string        `json:"supplementary,omitempty" yaml:"supplementary,omitempty"`
}

// InstructionMetadata describes a condition or an action type.
type InstructionMetadata struct {
	Type        string              `json:"type" yaml:"type" validate:"required"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Sentence    string              `json:"sentence" yaml:"sentence"`
	Parameters  []ParameterMetadata `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Call        CallingConvention   `json:"call" yaml:"call"`
}

// OperatorIndex returns the index of the first parameter of the given kind, or -1.
func (m *InstructionMetadata) OperatorIndex(kind ParameterKind) int {
	for i, p := range m.Parameters {
		if p.Kind == kind {
			return i
		}
	}
	return -1
}

// HasCodeOnly reports whether a code-only parameter of the given kind is declared.
func (m *InstructionMetadata) HasCodeOnly(kind ParameterKind) bool {
	for _, p := range m.Parameters {
		if p.CodeOnly && p.Kind == kind {
			return true
		}
	}
	return false
}

// ExpressionMetadata describes a function usable inside expressions.
type ExpressionMetadata struct {
	Name        string              `json:"name" yaml:"name" validate:"required"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Returns     ValueType           `json:"returns" yaml:"returns"`
	Parameters  []ParameterMetadata `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Call        CallingConvention   `json:"call" yaml:"call"`
}

// Arity returns the number of parameters written in an expression call.
// Object and behavior parameters are implied by the call syntax.
func (m *ExpressionMetadata) Arity() int {
	return len(m.Args())
}

// Args returns the parameters written between the call's parentheses.
func (m *ExpressionMetadata) Args() []ParameterMetadata {
	args := make([]ParameterMetadata, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		if p.CodeOnly || p.Kind == KindObject || p.Kind == KindBehavior {
			continue
		}
		args = append(args, p)
	}
	return args
}

func enumName[T ~int](names map[T]string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("%d", int(v))
}

func parseEnum[T ~int](names map[T]string, text, what string, dst *T) error {
	text = strings.TrimSpace(text)
	if text == "" {
		*dst = 0
		return nil
	}
	for v, name := range names {
		if strings.EqualFold(name, text) {
			*dst = v
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", what, text)
}
