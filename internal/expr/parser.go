// Package expr parses the numeric and string expressions embedded in event
// parameters and renders them as Go code.
package expr

import (
	"go/constant"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/bargom/eventc/internal/catalog"
)

// Expression is a successfully checked expression.
type Expression struct {
	Text string
	Root Node
	// Includes lists the import paths required by the resolved calls, sorted.
	Includes []string
}

// Type returns the value type of the expression.
func (e *Expression) Type() catalog.ValueType { return e.Root.Type() }

// String returns a fully parenthesized rendering of the expression.
func (e *Expression) String() string { return e.Root.String() }

// Parser parses expressions against a catalog. It holds no mutable state.
type Parser struct {
	catalog *catalog.Catalog
}

// NewParser creates a parser resolving calls in cat.
func NewParser(cat *catalog.Catalog) *Parser {
	return &Parser{catalog: cat}
}

// ParseMathExpression parses text as a numeric expression.
func (p *Parser) ParseMathExpression(text string) (*Expression, error) {
	return p.parse(text, catalog.ValueNumber)
}

// ParseStringExpression parses text as a string expression.
func (p *Parser) ParseStringExpression(text string) (*Expression, error) {
	return p.parse(text, catalog.ValueString)
}

// Parse parses text with the rule implied by kind. Only expression and
// string kinds are parsed; other kinds are not expressions.
func (p *Parser) Parse(text string, kind catalog.ParameterKind) (*Expression, error) {
	switch kind.Rule() {
	case catalog.RuleMath:
		return p.ParseMathExpression(text)
	case catalog.RuleString:
		return p.ParseStringExpression(text)
	default:
		return nil, &Error{Type: ErrorTypeMismatch, Message: "parameter of kind " + kind.String() + " is not an expression"}
	}
}

func (p *Parser) parse(text string, want catalog.ValueType) (*Expression, error) {
	if strings.TrimSpace(text) == "" {
		return &Expression{Text: text, Root: neutral(want, 0)}, nil
	}

	tree, err := grammar.ParseString("", text)
	if err != nil {
		return nil, fromParticiple(err)
	}

	c := &checker{catalog: p.catalog}
	root, cerr := c.expr(tree, want)
	if cerr != nil {
		return nil, cerr
	}
	return &Expression{Text: text, Root: root, Includes: c.includes}, nil
}

func neutral(want catalog.ValueType, at int) Node {
	if want == catalog.ValueString {
		return &Text{At: at}
	}
	return &Number{At: at, Value: "0"}
}

type checker struct {
	catalog  *catalog.Catalog
	includes []string
	consts   map[Node]constant.Value
}

func (c *checker) include(path string) {
	if path == "" {
		return
	}
	i, found := slices.BinarySearch(c.includes, path)
	if !found {
		c.includes = slices.Insert(c.includes, i, path)
	}
}

func (c *checker) expr(e *pExpr, want catalog.ValueType) (Node, *Error) {
	left, err := c.term(e.Left, want)
	if err != nil {
		return nil, err
	}
	for _, op := range e.Rest {
		if want == catalog.ValueString && op.Op != "+" {
			return nil, newError(ErrorTypeMismatch, op.Pos, "operator %s cannot be applied to strings", op.Op)
		}
		right, err := c.term(op.Term, want)
		if err != nil {
			return nil, err
		}
		b := &Binary{At: op.Pos.Offset, Op: op.Op[0], Left: left, Right: right, ResultType: want}
		if err := c.binary(op.Pos, b); err != nil {
			return nil, err
		}
		left = b
	}
	return left, nil
}

func (c *checker) term(t *pTerm, want catalog.ValueType) (Node, *Error) {
	left, err := c.unary(t.Left, want)
	if err != nil {
		return nil, err
	}
	for _, op := range t.Rest {
		if want == catalog.ValueString {
			return nil, newError(ErrorTypeMismatch, op.Pos, "operator %s cannot be applied to strings", op.Op)
		}
		right, err := c.unary(op.Factor, want)
		if err != nil {
			return nil, err
		}
		b := &Binary{At: op.Pos.Offset, Op: op.Op[0], Left: left, Right: right, ResultType: want}
		if err := c.binary(op.Pos, b); err != nil {
			return nil, err
		}
		left = b
	}
	return left, nil
}

func (c *checker) unary(u *pUnary, want catalog.ValueType) (Node, *Error) {
	if u.Negated != nil {
		if want == catalog.ValueString {
			return nil, newError(ErrorTypeMismatch, u.Pos, "unary minus cannot be applied to strings")
		}
		operand, err := c.unary(u.Negated, want)
		if err != nil {
			return nil, err
		}
		n := &Negate{At: u.Pos.Offset, Operand: operand}
		c.negate(n)
		return n, nil
	}
	return c.primary(u.Primary, want)
}

func (c *checker) primary(p *pPrimary, want catalog.ValueType) (Node, *Error) {
	switch {
	case p.Number != nil:
		if want != catalog.ValueNumber {
			return nil, newError(ErrorTypeMismatch, p.Pos, "number %s used where a string is expected", *p.Number)
		}
		return c.number(p.Pos, *p.Number)
	case p.String != nil:
		if want != catalog.ValueString {
			return nil, newError(ErrorTypeMismatch, p.Pos, "string %s used where a number is expected", *p.String)
		}
		return &Text{At: p.Pos.Offset, Value: unquote(*p.String)}, nil
	case p.Call != nil:
		return c.call(p.Call, want)
	default:
		return c.expr(p.Group, want)
	}
}

func (c *checker) call(pc *pCall, want catalog.ValueType) (Node, *Error) {
	call := &Call{At: pc.Pos.Offset}
	scope := catalog.CallFree
	name := pc.Name
	if pc.Member != nil {
		call.Object = pc.Name
		scope = catalog.CallObject
		name = pc.Member.Name
		if pc.Member.Function != nil {
			scope = catalog.CallBehavior
			call.Behavior = pc.Member.Name
			name = *pc.Member.Function
		}
	}

	meta, ok := c.catalog.Expression(scope, want, name)
	if !ok {
		if other := c.catalog.ExpressionReturns(scope, name); len(other) > 0 {
			return nil, newError(ErrorTypeMismatch, pc.Pos, "%s returns a %s where a %s is expected", name, other[0], want)
		}
		hint := catalog.Hint(c.catalog.SuggestExpression(scope, name))
		if pc.Member == nil && pc.Args == nil {
			return nil, newError(ErrorSyntax, pc.Pos, "unknown identifier %q%s", name, hint)
		}
		return nil, newError(ErrorSyntax, pc.Pos, "unknown %s function %q%s", scope, name, hint)
	}
	call.Meta = meta
	c.include(meta.Call.Include)

	var written []*pExpr
	if pc.Args != nil {
		written = pc.Args.List
	}
	declared := meta.Args()
	required := 0
	for _, a := range declared {
		if !a.Optional {
			required++
		}
	}
	if len(written) < required || len(written) > len(declared) {
		if required == len(declared) {
			return nil, newError(ErrorArity, pc.Pos, "%s expects %d arguments, got %d", name, required, len(written))
		}
		return nil, newError(ErrorArity, pc.Pos, "%s expects %d to %d arguments, got %d", name, required, len(declared), len(written))
	}

	next := 0
	for _, param := range meta.Parameters {
		if param.Kind == catalog.KindObject || param.Kind == catalog.KindBehavior {
			continue
		}
		if param.CodeOnly {
			if param.Kind == catalog.KindRuntime {
				call.Args = append(call.Args, &RuntimeRef{})
			}
			continue
		}
		var arg Node
		if next < len(written) {
			var err *Error
			arg, err = c.argument(written[next], param)
			if err != nil {
				return nil, err
			}
		} else {
			arg = defaultArgument(param, pc.Pos)
		}
		next++
		call.Args = append(call.Args, arg)
	}
	return call, nil
}

func (c *checker) argument(e *pExpr, param catalog.ParameterMetadata) (Node, *Error) {
	switch param.Kind.Rule() {
	case catalog.RuleMath:
		return c.expr(e, catalog.ValueNumber)
	case catalog.RuleString:
		return c.expr(e, catalog.ValueString)
	}

	// Name-like parameters accept a bare identifier or a string literal.
	if len(e.Rest) == 0 && len(e.Left.Rest) == 0 && e.Left.Left.Primary != nil {
		prim := e.Left.Left.Primary
		if prim.Call != nil && prim.Call.Member == nil && prim.Call.Args == nil {
			return &Name{At: prim.Pos.Offset, Value: prim.Call.Name}, nil
		}
		if prim.String != nil {
			return &Name{At: prim.Pos.Offset, Value: unquote(*prim.String)}, nil
		}
	}
	return nil, newError(ErrorTypeMismatch, e.Pos, "a %s name is expected", param.Kind)
}

func defaultArgument(param catalog.ParameterMetadata, pos lexer.Position) Node {
	switch param.Kind.Rule() {
	case catalog.RuleMath:
		if _, err := strconv.ParseFloat(param.Default, 64); err == nil {
			return &Number{At: pos.Offset, Value: param.Default}
		}
		return &Number{At: pos.Offset, Value: "0"}
	case catalog.RuleString:
		return &Text{At: pos.Offset, Value: param.Default}
	default:
		return &Name{At: pos.Offset, Value: param.Default}
	}
}

// unquote decodes a string token. Only \" and \\ are escapes; any other
// backslash is kept as written.
func unquote(tok string) string {
	body := tok[1 : len(tok)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == '"' || body[i+1] == '\\') {
			sb.WriteByte(body[i+1])
			i++
			continue
		}
		sb.WriteByte(body[i])
	}
	return sb.String()
}
