package events

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bargom/eventc/internal/catalog"
	"github.com/bargom/eventc/internal/expr"
)

// recorder is the expression scope of one instruction. The lists and imports
// it collects reach the enclosing context only once the whole instruction
// compiled, so stubbed instructions leave no unused declarations behind.
type recorder struct {
	pass     *pass
	ctx      *Context
	needed   []string
	includes []string
}

func (p *pass) recorder(ctx *Context) *recorder {
	return &recorder{pass: p, ctx: ctx}
}

func (r *recorder) Runtime() string { return r.pass.runtime() }

// ObjectLists resolves a group to the lists of its members, so group
// expressions read the members' picks and, inside a for each, the instance
// being iterated.
func (r *recorder) ObjectLists(object string) []string {
	members := r.pass.members(object)
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = r.list(m)
	}
	return out
}

func (r *recorder) list(object string) string {
	if !slices.Contains(r.needed, object) {
		r.needed = append(r.needed, object)
	}
	return ListVar(object)
}

func (r *recorder) Current(object string) (string, bool) {
	return r.ctx.CurrentObject(object)
}

func (r *recorder) include(paths ...string) {
	for _, path := range paths {
		if path != "" && !slices.Contains(r.includes, path) {
			r.includes = append(r.includes, path)
		}
	}
}

func (r *recorder) commit() {
	for _, name := range r.needed {
		r.ctx.ObjectListNeeded(name)
	}
	for _, path := range r.includes {
		r.pass.imports[path] = true
	}
}

// paramError locates a failure inside an instruction parameter.
type paramError struct {
	index  int
	offset int
	err    error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("parameter %d: %v", e.index, e.err)
}

func (e *paramError) Unwrap() error { return e.err }

func offsetOf(err error) int {
	var exprErr *expr.Error
	if errors.As(err, &exprErr) {
		return exprErr.Offset()
	}
	return -1
}

// conditions compiles a condition list into flag declarations and the code
// setting them. Each condition after the first is only evaluated when every
// earlier one held. The returned guard is empty for an empty list.
func (p *pass) conditions(ctx *Context, path, prefix string, list []Instruction) (flags, code []Node, guard string) {
	names := make([]string, len(list))
	for i := range list {
		names[i] = fmt.Sprintf("%s%d", prefix, i)
		flags = append(flags, Line(names[i]+"IsTrue := false"))
	}
	code = p.chain(ctx, path, names, list)
	return flags, code, joinFlags(names, " && ")
}

// chain compiles conditions named names, each guarded by the previous ones.
func (p *pass) chain(ctx *Context, path string, names []string, list []Instruction) []Node {
	var out []Node
	for i, in := range list {
		nodes := p.condition(ctx, path, names[i], in)
		if i == 0 {
			out = append(out, nodes...)
			continue
		}
		out = append(out, &Block{Header: "if " + joinFlags(names[:i], " && "), Body: nodes})
	}
	return out
}

func joinFlags(names []string, sep string) string {
	flags := make([]string, len(names))
	for i, n := range names {
		flags[i] = n + "IsTrue"
	}
	return strings.Join(flags, sep)
}

// condition compiles one condition setting the flag of name.
func (p *pass) condition(ctx *Context, path, name string, in Instruction) []Node {
	p.stats.Instructions++
	meta, ok := p.gen.catalog.Condition(in.Type)
	if !ok {
		return p.stub(path, in, true, fmt.Errorf("unknown condition type %q%s", in.Type, catalog.Hint(p.gen.catalog.SuggestInstruction(in.Type, true))))
	}
	if meta.Call.Kind.Compound() {
		return p.compound(ctx, path, name, in, meta.Call.Kind)
	}

	params := p.arity(path, in, meta)
	rec := p.recorder(ctx)
	nodes, err := p.simpleCondition(rec, path, name+"IsTrue", in, meta, params)
	if err != nil {
		return p.stub(path, in, true, err)
	}
	rec.include(meta.Call.Include)
	rec.commit()
	return nodes
}

func (p *pass) simpleCondition(rec *recorder, path, flag string, in Instruction, meta catalog.InstructionMetadata, params []string) ([]Node, error) {
	conv := meta.Call
	skip := make(map[int]bool)
	op, rhsIndex := "", -1
	if conv.ValueType != catalog.ValueNone {
		opIndex := meta.OperatorIndex(catalog.KindRelationalOperator)
		rhsIndex = valueIndex(meta, opIndex)
		if rhsIndex < 0 {
			return nil, errors.New("no value to compare with")
		}
		skip[opIndex], skip[rhsIndex] = true, true
		op = p.relational(path, in, opIndex, params[opIndex])
	}
	negate := in.Inverted && !meta.HasCodeOnly(catalog.KindConditionInverted)

	predicate := func(target string) (string, error) {
		args, err := p.arguments(rec, meta, params, in.Inverted, skip)
		if err != nil {
			return "", err
		}
		pred := target + conv.Function + "(" + args + ")"
		if op != "" {
			rhs, err := p.param(rec, meta.Parameters[rhsIndex], rhsIndex, params[rhsIndex], in.Inverted)
			if err != nil {
				return "", err
			}
			pred += " " + op + " " + rhs
		}
		if negate {
			pred = "!(" + pred + ")"
		}
		return pred, nil
	}

	if conv.Kind == catalog.CallFree {
		pred, err := predicate(freeTarget(conv.Function, p.runtime()))
		if err != nil {
			return nil, err
		}
		return []Node{Line(flag + " = " + pred)}, nil
	}

	return p.perObject(rec, meta, params, func(list, target string) ([]Node, error) {
		pred, err := predicate(target)
		if err != nil {
			return nil, err
		}
		return []Node{&Block{Body: []Node{
			Line("picked := " + list + "[:0:0]"),
			&Block{Header: "for i := range " + list, Body: []Node{
				&Block{Header: "if " + pred, Body: []Node{
					Line(flag + " = true"),
					Line("picked = append(picked, " + list + "[i])"),
				}},
			}},
			Line(list + " = picked"),
		}}}, nil
	})
}

// compound compiles or, and and not conditions from their sub-instructions.
// And narrows the lists of the enclosing event directly. Not runs on copies
// and never narrows. Each sub-condition of or runs on copies too, and the
// instances picked by the true ones are merged back into the enclosing lists.
func (p *pass) compound(ctx *Context, path, name string, in Instruction, kind catalog.CallKind) []Node {
	subs := in.SubInstructions
	names := make([]string, len(subs))
	var body []Node
	for j := range subs {
		names[j] = fmt.Sprintf("%s_%d", name, j)
		body = append(body, Line(names[j]+"IsTrue := false"))
	}

	var result string
	var after []Node
	switch kind {
	case catalog.CallAnd:
		body = append(body, p.chain(ctx, path, names, subs)...)
		result = joinFlags(names, " && ")
		if result == "" {
			result = "true"
		}
	case catalog.CallNot:
		sub := ctx.Enter()
		inner := p.chain(sub, path, names, subs)
		body = append(body, p.isolated(ctx, sub, inner, nil))
		result = "true"
		if len(subs) > 0 {
			result = joinFlags(names, " && ")
		}
		result = "!(" + result + ")"
	default:
		var merged []string
		var blocks []Node
		for j, s := range subs {
			sub := ctx.Enter()
			inner := p.condition(sub, path, names[j], s)
			var merge []Node
			for _, n := range sub.Needed() {
				if !slices.Contains(merged, n) {
					merged = append(merged, n)
				}
				merge = append(merge, mergePicked(n))
			}
			if len(merge) > 0 {
				merge = []Node{&Block{Header: "if " + names[j] + "IsTrue", Body: merge}}
			}
			blocks = append(blocks, p.isolated(ctx, sub, inner, merge))
		}
		for _, n := range merged {
			v := ListVar(n)
			body = append(body, Line(orPicked(n)+" := "+v+"[:0:0]"))
			if !in.Inverted {
				after = append(after, Line(v+" = "+orPicked(n)))
			}
		}
		if len(merged) > 0 {
			p.imports["slices"] = true
		}
		body = append(body, blocks...)
		result = joinFlags(names, " || ")
		if result == "" {
			result = "false"
		}
	}
	if in.Inverted {
		result = "!(" + result + ")"
	}
	body = append(body, Line(name+"IsTrue = "+result))
	body = append(body, after...)
	return []Node{&Block{Body: body}}
}

func orPicked(object string) string {
	return "orPicked" + strings.TrimPrefix(ListVar(object), "objects")
}

// mergePicked appends the instances of object's list missing from its or
// union.
func mergePicked(object string) Node {
	v, union := ListVar(object), orPicked(object)
	return &Block{Header: "for _, o := range " + v, Body: []Node{
		&Block{Header: "if !slices.Contains(" + union + ", o)", Body: []Node{
			Line(union + " = append(" + union + ", o)"),
		}},
	}}
}

// isolated wraps inner in a block starting with copies of the lists sub
// needs, followed by tail. The lists are still declared by ctx.
func (p *pass) isolated(ctx, sub *Context, inner, tail []Node) Node {
	var body []Node
	for _, n := range sub.Needed() {
		ctx.ObjectListNeeded(n)
		v := ListVar(n)
		body = append(body, Line(v+" := "+v))
	}
	body = append(body, inner...)
	return &Block{Body: append(body, tail...)}
}

// actions compiles an action list.
func (p *pass) actions(ctx *Context, path string, list []Instruction) []Node {
	var out []Node
	for i, in := range list {
		out = append(out, p.action(ctx, path, i, in)...)
	}
	return out
}

func (p *pass) action(ctx *Context, path string, index int, in Instruction) []Node {
	p.stats.Instructions++
	meta, ok := p.gen.catalog.Action(in.Type)
	if !ok {
		return p.stub(path, in, false, fmt.Errorf("unknown action type %q%s", in.Type, catalog.Hint(p.gen.catalog.SuggestInstruction(in.Type, false))))
	}
	params := p.arity(path, in, meta)
	rec := p.recorder(ctx)
	nodes, err := p.simpleAction(rec, path, index, in, meta, params)
	if err != nil {
		return p.stub(path, in, false, err)
	}
	rec.include(meta.Call.Include)
	rec.commit()
	return nodes
}

func (p *pass) simpleAction(rec *recorder, path string, index int, in Instruction, meta catalog.InstructionMetadata, params []string) ([]Node, error) {
	conv := meta.Call
	skip := make(map[int]bool)
	op, rhsIndex := "", -1
	if conv.ValueType != catalog.ValueNone && conv.Access != catalog.AccessCall {
		opIndex := meta.OperatorIndex(catalog.KindOperator)
		rhsIndex = valueIndex(meta, opIndex)
		if rhsIndex < 0 {
			return nil, errors.New("no value to apply")
		}
		skip[opIndex], skip[rhsIndex] = true, true
		op = p.operator(path, in, opIndex, params[opIndex], conv.ValueType)
	}

	statements := func(target string) ([]Node, error) {
		args, err := p.arguments(rec, meta, params, false, skip)
		if err != nil {
			return nil, err
		}
		if op == "" {
			return []Node{Line(target + conv.Function + "(" + args + ")")}, nil
		}
		rhs, err := p.param(rec, meta.Parameters[rhsIndex], rhsIndex, params[rhsIndex], false)
		if err != nil {
			return nil, err
		}
		sep := ""
		if args != "" {
			sep = ", "
		}
		switch {
		case conv.Access == catalog.AccessCompound && op == "=":
			return []Node{Line("*" + target + conv.Function + "(" + args + ") = " + rhs)}, nil
		case conv.Access == catalog.AccessCompound:
			return []Node{Line("*" + target + conv.Function + "(" + args + ") " + op + "= " + rhs)}, nil
		case op == "=":
			return []Node{Line(target + conv.Function + "(" + args + sep + rhs + ")")}, nil
		}
		value := fmt.Sprintf("action%dValue", index)
		getter := conv.Getter
		if conv.Kind == catalog.CallFree {
			getter = freeTarget(conv.Getter, p.runtime()) + conv.Getter
		} else {
			getter = target + getter
		}
		return []Node{
			Line(value + " := " + getter + "(" + args + ")"),
			Line(target + conv.Function + "(" + args + sep + value + " " + op + " (" + rhs + "))"),
		}, nil
	}

	if conv.Kind == catalog.CallFree {
		return statements(freeTarget(conv.Function, p.runtime()))
	}
	return p.perObject(rec, meta, params, func(list, target string) ([]Node, error) {
		nodes, err := statements(target)
		if err != nil {
			return nil, err
		}
		return []Node{&Block{Header: "for i := range " + list, Body: nodes}}, nil
	})
}

// freeTarget returns what precedes a free function name: nothing for a
// package-qualified function, the runtime otherwise.
func freeTarget(function, runtime string) string {
	if strings.Contains(function, ".") {
		return ""
	}
	return runtime + "."
}

// perObject runs emit once per list the instruction's object stands for,
// with that list's current element as the call target.
func (p *pass) perObject(rec *recorder, meta catalog.InstructionMetadata, params []string, emit func(list, target string) ([]Node, error)) ([]Node, error) {
	conv := meta.Call
	name := strings.TrimSpace(params[0])
	if name == "" {
		return nil, &paramError{index: 0, offset: -1, err: errors.New("no object given")}
	}
	behavior := ""
	if conv.Kind == catalog.CallBehavior {
		b := strings.TrimSpace(params[1])
		if b == "" {
			return nil, &paramError{index: 1, offset: -1, err: errors.New("no behavior given")}
		}
		behavior = ".Behavior(" + strconv.Quote(b) + ")"
	}
	receiver := ""
	if conv.Receiver != "" {
		receiver = ".(" + conv.Receiver + ")"
	}

	var out []Node
	for _, m := range p.members(name) {
		list := rec.list(m)
		element := list + "[i]"
		rec.ctx.SetCurrentObject(name, element)
		rec.ctx.SetCurrentObject(m, element)
		nodes, err := emit(list, element+behavior+receiver+".")
		rec.ctx.SetCurrentObject(name, "")
		rec.ctx.SetCurrentObject(m, "")
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

// valueIndex returns the index of the value an operator parameter applies:
// the parameter after the operator, or the one before it when the operator
// is last.
func valueIndex(meta catalog.InstructionMetadata, opIndex int) int {
	if opIndex < 0 {
		return -1
	}
	if opIndex+1 < len(meta.Parameters) {
		return opIndex + 1
	}
	return opIndex - 1
}

func (p *pass) relational(path string, in Instruction, index int, text string) string {
	op := strings.TrimSpace(text)
	switch op {
	case "=":
		return "=="
	case "==", "!=", "<", ">", "<=", ">=":
		return op
	}
	p.report(SeverityWarning, path, in.Type, index, fmt.Sprintf("unknown relational operator %q, using =", op))
	return "=="
}

func (p *pass) operator(path string, in Instruction, index int, text string, vt catalog.ValueType) string {
	op := strings.TrimSpace(text)
	switch op {
	case "=", "+":
		return op
	case "-", "*", "/":
		if vt == catalog.ValueNumber {
			return op
		}
	}
	p.report(SeverityWarning, path, in.Type, index, fmt.Sprintf("operator %q cannot modify a %s, using =", op, vt))
	return "="
}

// arguments emits the call arguments: every parameter except the object and
// behavior selecting the target and the skipped ones.
func (p *pass) arguments(rec *recorder, meta catalog.InstructionMetadata, params []string, inverted bool, skip map[int]bool) (string, error) {
	first := 0
	switch meta.Call.Kind {
	case catalog.CallObject:
		first = 1
	case catalog.CallBehavior:
		first = 2
	}
	var args []string
	for i := first; i < len(meta.Parameters); i++ {
		if skip[i] {
			continue
		}
		arg, err := p.param(rec, meta.Parameters[i], i, params[i], inverted)
		if err != nil {
			return "", err
		}
		args = append(args, arg)
	}
	return strings.Join(args, ", "), nil
}

// param turns the text of parameter index into a Go fragment following the
// parse rule of its kind.
func (p *pass) param(rec *recorder, pm catalog.ParameterMetadata, index int, text string, inverted bool) (string, error) {
	if strings.TrimSpace(text) == "" && pm.Optional && pm.Default != "" {
		text = pm.Default
	}
	switch pm.Kind.Rule() {
	case catalog.RuleMath, catalog.RuleString:
		e, err := p.gen.parser.Parse(text, pm.Kind)
		if err != nil {
			return "", &paramError{index: index, offset: offsetOf(err), err: err}
		}
		rec.include(e.Includes...)
		return e.Emit(rec), nil
	case catalog.RuleQuoted, catalog.RuleOperator, catalog.RuleRelational:
		return strconv.Quote(text), nil
	case catalog.RuleYesNo:
		return strconv.FormatBool(strings.EqualFold(strings.TrimSpace(text), "yes")), nil
	case catalog.RuleTrueFalse:
		return strconv.FormatBool(strings.EqualFold(strings.TrimSpace(text), "true")), nil
	case catalog.RuleInline:
		return pm.Supplementary, nil
	case catalog.RuleRuntime:
		return rec.Runtime(), nil
	case catalog.RuleInverted:
		return strconv.FormatBool(inverted), nil
	default:
		return text, nil
	}
}

// arity aligns the written parameters with the declared ones. Missing
// optional and code-only parameters are padded silently; any other mismatch
// means the catalog and the event tree disagree.
func (p *pass) arity(path string, in Instruction, meta catalog.InstructionMetadata) []string {
	declared := len(meta.Parameters)
	params := make([]string, declared)
	copy(params, in.Parameters)
	missing := 0
	for i := len(in.Parameters); i < declared; i++ {
		if !meta.Parameters[i].Optional && !meta.Parameters[i].CodeOnly {
			missing++
		}
	}
	switch {
	case missing > 0:
		p.report(SeverityDefect, path, in.Type, -1,
			fmt.Sprintf("%d parameters given, %d declared; missing ones are left empty", len(in.Parameters), declared))
	case len(in.Parameters) > declared:
		p.report(SeverityDefect, path, in.Type, -1,
			fmt.Sprintf("%d parameters given, %d declared; extra ones are ignored", len(in.Parameters), declared))
	}
	return params
}

// stub replaces an instruction that failed to compile. A stubbed condition
// leaves its flag false.
func (p *pass) stub(path string, in Instruction, condition bool, err error) []Node {
	p.stats.Stubbed++
	d := &Diagnostic{
		Severity:    SeverityError,
		Path:        path,
		Instruction: in.Type,
		Parameter:   -1,
		Offset:      -1,
		Message:     err.Error(),
	}
	var pe *paramError
	if errors.As(err, &pe) {
		d.Parameter = pe.index
		d.Offset = pe.offset
		d.Message = pe.err.Error()
	}
	p.diags.Add(d)

	what := "action"
	if condition {
		what = "condition"
	}
	return []Node{Comment(fmt.Sprintf("invalid %s %q: %s", what, in.Type, err))}
}
