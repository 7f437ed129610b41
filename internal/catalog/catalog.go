// Package catalog provides the read-only registry of conditions, actions and
// expression functions that event programs are compiled against.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Extension is a named set of instruction and expression declarations.
type Extension struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	// Include is applied to every member that declares no include of its own.
	Include     string                `json:"include,omitempty" yaml:"include,omitempty"`
	Conditions  []InstructionMetadata `json:"conditions,omitempty" yaml:"conditions,omitempty" validate:"dive"`
	Actions     []InstructionMetadata `json:"actions,omitempty" yaml:"actions,omitempty" validate:"dive"`
	Expressions []ExpressionMetadata  `json:"expressions,omitempty" yaml:"expressions,omitempty" validate:"dive"`
}

type expressionKey struct {
	call    CallKind
	returns ValueType
	name    string
}

// Catalog is a frozen registry. It is safe for concurrent readers.
type Catalog struct {
	extensions  []string
	conditions  map[string]InstructionMetadata
	actions     map[string]InstructionMetadata
	expressions map[expressionKey]ExpressionMetadata
	fingerprint string
}

// Condition returns the metadata of a condition type.
func (c *Catalog) Condition(typ string) (InstructionMetadata, bool) {
	m, ok := c.conditions[typ]
	return m.clone(), ok
}

// Action returns the metadata of an action type.
func (c *Catalog) Action(typ string) (InstructionMetadata, bool) {
	m, ok := c.actions[typ]
	return m.clone(), ok
}

// Instruction looks up a condition or an action.
func (c *Catalog) Instruction(typ string, condition bool) (InstructionMetadata, bool) {
	if condition {
		return c.Condition(typ)
	}
	return c.Action(typ)
}

// Expression returns the metadata of an expression function.
func (c *Catalog) Expression(call CallKind, returns ValueType, name string) (ExpressionMetadata, bool) {
	m, ok := c.expressions[expressionKey{call: call, returns: returns, name: name}]
	return m.clone(), ok
}

// ExpressionReturns lists the value types a function name is registered with.
func (c *Catalog) ExpressionReturns(call CallKind, name string) []ValueType {
	var out []ValueType
	for _, vt := range []ValueType{ValueNumber, ValueString} {
		if _, ok := c.expressions[expressionKey{call: call, returns: vt, name: name}]; ok {
			out = append(out, vt)
		}
	}
	return out
}

// Conditions returns every condition sorted by type.
func (c *Catalog) Conditions() []InstructionMetadata { return sortedInstructions(c.conditions) }

// Actions returns every action sorted by type.
func (c *Catalog) Actions() []InstructionMetadata { return sortedInstructions(c.actions) }

// Expressions returns every expression function sorted by name.
func (c *Catalog) Expressions() []ExpressionMetadata {
	out := make([]ExpressionMetadata, 0, len(c.expressions))
	for _, m := range c.expressions {
		out = append(out, m.clone())
	}
	slices.SortFunc(out, func(a, b ExpressionMetadata) int {
		if d := strings.Compare(a.Name, b.Name); d != 0 {
			return d
		}
		if a.Call.Kind != b.Call.Kind {
			return int(a.Call.Kind) - int(b.Call.Kind)
		}
		return int(a.Returns) - int(b.Returns)
	})
	return out
}

// Extensions returns the names of the registered extensions in registration order.
func (c *Catalog) Extensions() []string { return slices.Clone(c.extensions) }

// Fingerprint identifies the catalog content.
func (c *Catalog) Fingerprint() string { return c.fingerprint }

func sortedInstructions(m map[string]InstructionMetadata) []InstructionMetadata {
	out := make([]InstructionMetadata, 0, len(m))
	for _, meta := range m {
		out = append(out, meta.clone())
	}
	slices.SortFunc(out, func(a, b InstructionMetadata) int { return strings.Compare(a.Type, b.Type) })
	return out
}

func (m InstructionMetadata) clone() InstructionMetadata {
	m.Parameters = slices.Clone(m.Parameters)
	return m
}

func (m ExpressionMetadata) clone() ExpressionMetadata {
	m.Parameters = slices.Clone(m.Parameters)
	return m
}

// Builder collects extensions and produces a frozen Catalog.
type Builder struct {
	extensions []Extension
	validate   *validator.Validate
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{validate: validator.New()}
}

// Add registers an extension. Extensions are applied in order.
func (b *Builder) Add(exts ...Extension) *Builder {
	b.extensions = append(b.extensions, exts...)
	return b
}

// Build validates every extension and freezes the result.
func (b *Builder) Build() (*Catalog, error) {
	c := &Catalog{
		conditions:  make(map[string]InstructionMetadata),
		actions:     make(map[string]InstructionMetadata),
		expressions: make(map[expressionKey]ExpressionMetadata),
	}

	var errs []error
	for _, ext := range b.extensions {
		if err := b.validate.Struct(ext); err != nil {
			errs = append(errs, fmt.Errorf("extension %q: %w", ext.Name, err))
			continue
		}
		c.extensions = append(c.extensions, ext.Name)

		for _, m := range ext.Conditions {
			m = m.clone()
			if m.Call.Include == "" {
				m.Call.Include = ext.Include
			}
			if err := checkInstruction(m, true); err != nil {
				errs = append(errs, fmt.Errorf("extension %q: condition %q: %w", ext.Name, m.Type, err))
				continue
			}
			if _, dup := c.conditions[m.Type]; dup {
				errs = append(errs, fmt.Errorf("extension %q: duplicate condition %q", ext.Name, m.Type))
				continue
			}
			c.conditions[m.Type] = m
		}

		for _, m := range ext.Actions {
			m = m.clone()
			if m.Call.Include == "" {
				m.Call.Include = ext.Include
			}
			if err := checkInstruction(m, false); err != nil {
				errs = append(errs, fmt.Errorf("extension %q: action %q: %w", ext.Name, m.Type, err))
				continue
			}
			if _, dup := c.actions[m.Type]; dup {
				errs = append(errs, fmt.Errorf("extension %q: duplicate action %q", ext.Name, m.Type))
				continue
			}
			c.actions[m.Type] = m
		}

		for _, m := range ext.Expressions {
			m = m.clone()
			if m.Call.Include == "" {
				m.Call.Include = ext.Include
			}
			if err := checkExpression(m); err != nil {
				errs = append(errs, fmt.Errorf("extension %q: expression %q: %w", ext.Name, m.Name, err))
				continue
			}
			key := expressionKey{call: m.Call.Kind, returns: m.Returns, name: m.Name}
			if _, dup := c.expressions[key]; dup {
				errs = append(errs, fmt.Errorf("extension %q: duplicate %s expression %q", ext.Name, m.Returns, m.Name))
				continue
			}
			c.expressions[key] = m
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}

	fp, err := fingerprint(b.extensions)
	if err != nil {
		return nil, err
	}
	c.fingerprint = fp
	return c, nil
}

func checkInstruction(m InstructionMetadata, condition bool) error {
	call := m.Call
	if call.Kind.Compound() {
		if !condition {
			return errors.New("compound calls are only valid for conditions")
		}
		return nil
	}
	if call.Function == "" {
		return errors.New("calling convention has no function")
	}
	if call.Kind == CallObject || call.Kind == CallBehavior {
		if len(m.Parameters) == 0 || m.Parameters[0].Kind != KindObject {
			return errors.New("first parameter of an object instruction must be an object")
		}
	}
	if call.Kind == CallBehavior {
		if len(m.Parameters) < 2 || m.Parameters[1].Kind != KindBehavior {
			return errors.New("second parameter of a behavior instruction must be a behavior")
		}
	}
	if condition && call.ValueType != ValueNone && m.OperatorIndex(KindRelationalOperator) < 0 {
		return errors.New("value condition has no relational operator parameter")
	}
	if !condition && call.ValueType != ValueNone {
		if m.OperatorIndex(KindOperator) < 0 {
			return errors.New("value action has no operator parameter")
		}
		if call.Access == AccessMutator && call.Getter == "" {
			return errors.New("mutator action has no getter")
		}
	}
	return nil
}

func checkExpression(m ExpressionMetadata) error {
	if m.Returns != ValueNumber && m.Returns != ValueString {
		return fmt.Errorf("unsupported return type %s", m.Returns)
	}
	switch m.Call.Kind {
	case CallFree, CallObject, CallBehavior:
	default:
		return fmt.Errorf("unsupported call kind %s", m.Call.Kind)
	}
	if m.Call.Function == "" {
		return errors.New("calling convention has no function")
	}
	return nil
}

func fingerprint(exts []Extension) (string, error) {
	data, err := json.Marshal(exts)
	if err != nil {
		return "", fmt.Errorf("fingerprint catalog: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
