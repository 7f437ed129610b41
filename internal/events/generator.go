// Package events compiles event trees into Go source.
//
// Every event becomes a lexical block. Its conditions are evaluated into
// boolean flags, and its actions and sub-events run only when all flags
// hold. Object lists ("pick lists") are declared lazily per block: fetched
// from the runtime when no enclosing block has them, and shadowed when one
// does, so sibling events never observe each other's picks.
package events

import (
	"context"
	"fmt"
	"go/format"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bargom/eventc/internal/catalog"
	"github.com/bargom/eventc/internal/expr"
)

// Stats counts what a generation pass went through.
type Stats struct {
	Events       int `json:"events"`
	Instructions int `json:"instructions"`
	Stubbed      int `json:"stubbed"`
}

// Program is a generated Go source file.
type Program struct {
	Package     string        `json:"package"`
	Function    string        `json:"function"`
	Source      []byte        `json:"-"`
	Imports     []string      `json:"imports"`
	Diagnostics *Diagnostics  `json:"diagnostics"`
	Stats       Stats         `json:"stats"`
	Duration    time.Duration `json:"duration"`
}

// Generator compiles event trees against an instruction catalog.
// It keeps no state between calls.
type Generator struct {
	catalog *catalog.Catalog
	parser  *expr.Parser
	config  *Config
	logger  *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for generation progress.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a generator. A nil config uses DefaultConfig.
func NewGenerator(cat *catalog.Catalog, config *Config, opts ...Option) *Generator {
	if config == nil {
		config = DefaultConfig()
	}
	g := &Generator{
		catalog: cat,
		parser:  expr.NewParser(cat),
		config:  config,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns the generator configuration.
func (g *Generator) Config() *Config { return g.config }

// GenerateProgram compiles a whole scene into a Go source file. Instruction
// failures never abort generation; they are returned as diagnostics.
func (g *Generator) GenerateProgram(scene *Scene) (*Program, error) {
	return g.GenerateProgramContext(context.Background(), scene)
}

// GenerateProgramContext is GenerateProgram with log records bound to ctx.
func (g *Generator) GenerateProgramContext(ctx context.Context, scene *Scene) (*Program, error) {
	if scene == nil {
		return nil, fmt.Errorf("scene is nil")
	}
	start := time.Now()

	p := g.newPass(ctx, scene)
	if g.config.RuntimeImport != "" {
		p.imports[g.config.RuntimeImport] = true
	}
	body := p.events(NewContext(), "", scene.Events)
	imports := slices.Sorted(maps.Keys(p.imports))

	src := g.file(scene, imports, body)
	if g.config.Format {
		formatted, err := format.Source(src)
		if err != nil {
			p.diags.Add(&Diagnostic{
				Severity:  SeverityDefect,
				Parameter: -1,
				Offset:    -1,
				Message:   fmt.Sprintf("generated code does not format: %v", err),
			})
		} else {
			src = formatted
		}
	}

	prog := &Program{
		Package:     g.config.Package,
		Function:    g.config.Function,
		Source:      src,
		Imports:     imports,
		Diagnostics: p.diags,
		Stats:       p.stats,
		Duration:    time.Since(start),
	}
	g.logger.InfoContext(ctx, "generated event program",
		"scene", scene.Name,
		"events", prog.Stats.Events,
		"instructions", prog.Stats.Instructions,
		"stubbed", prog.Stats.Stubbed,
		"diagnostics", p.diags.Len(),
		"duration", prog.Duration,
	)
	return prog, nil
}

// GenerateEventsList compiles list as statements of a scope whose enclosing
// declarations are recorded in ctx. The scene supplies object groups and may
// be nil.
func (g *Generator) GenerateEventsList(scene *Scene, ctx *Context, list []Event) (string, *Diagnostics) {
	p := g.newPass(context.Background(), scene)
	if ctx == nil {
		ctx = NewContext()
	}
	return Render(p.events(ctx, "", list), 0), p.diags
}

func (g *Generator) file(scene *Scene, imports []string, body []Node) []byte {
	var sb strings.Builder
	sb.WriteString("// Code generated by eventc. DO NOT EDIT.\n\n")
	fmt.Fprintf(&sb, "package %s\n\n", g.config.Package)
	if len(imports) > 0 {
		sb.WriteString("import (\n")
		for _, path := range imports {
			fmt.Fprintf(&sb, "\t%s\n", strconv.Quote(path))
		}
		sb.WriteString(")\n\n")
	}
	fmt.Fprintf(&sb, "// %s runs one step of the events of scene %s.\n", g.config.Function, strconv.Quote(scene.Name))
	fmt.Fprintf(&sb, "func %s(%s %s) {\n", g.config.Function, g.config.RuntimeVar, g.config.RuntimeType)
	sb.WriteString(Render(body, 1))
	sb.WriteString("}\n")
	return []byte(sb.String())
}

// pass holds the state of one generation call.
type pass struct {
	logCtx  context.Context
	gen     *Generator
	scene   *Scene
	diags   *Diagnostics
	imports map[string]bool
	stats   Stats
}

func (g *Generator) newPass(ctx context.Context, scene *Scene) *pass {
	return &pass{
		logCtx:  ctx,
		gen:     g,
		scene:   scene,
		diags:   &Diagnostics{},
		imports: make(map[string]bool),
	}
}

func (p *pass) runtime() string { return p.gen.config.RuntimeVar }

// events compiles every useful event of list, each in its own child scope.
func (p *pass) events(ctx *Context, prefix string, list []Event) []Node {
	var out []Node
	for i, e := range list {
		if !useful(e) {
			continue
		}
		path := strconv.Itoa(i + 1)
		if prefix != "" {
			path = prefix + "." + path
		}
		out = append(out, p.event(ctx, path, e))
	}
	return out
}

func (p *pass) event(parent *Context, path string, e Event) Node {
	p.stats.Events++
	p.gen.logger.DebugContext(p.logCtx, "generating event", "path", path, "kind", e.Kind())

	ctx := parent.Enter()
	switch ev := e.(type) {
	case *StandardEvent:
		return p.standard(ctx, path, &ev.Body)
	case *RepeatEvent:
		return p.repeat(ctx, path, ev)
	case *WhileEvent:
		return p.while(ctx, path, ev)
	case *ForEachEvent:
		return p.forEach(ctx, path, ev)
	default:
		p.report(SeverityDefect, path, "", -1, fmt.Sprintf("unsupported event kind %q", e.Kind()))
		return Comment(fmt.Sprintf("unsupported event kind %q", e.Kind()))
	}
}

// declare emits the declarations of every list ctx's own code needs.
func (p *pass) declare(ctx *Context) []Node {
	var out []Node
	for _, name := range ctx.Needed() {
		v := ListVar(name)
		switch ctx.State(name) {
		case NotDeclared:
			out = append(out, Line(fmt.Sprintf("%s := %s.Objects(%s)", v, p.runtime(), strconv.Quote(name))))
		case Inherited:
			out = append(out, Line(v+" := "+v))
		}
		ctx.DeclareIfAbsent(name)
	}
	return out
}

// body compiles the generic shape of b: condition flags, then the guarded
// actions and sub-events. The declarations of ctx are emitted first, so sub-
// events see them.
func (p *pass) body(ctx *Context, path string, b *Body, before []Node) []Node {
	flags, conds, guard := p.conditions(ctx, path, "condition", b.Conditions)
	actions := p.actions(ctx, path, b.Actions)
	out := append(before, p.declare(ctx)...)
	out = append(out, flags...)
	out = append(out, conds...)
	inner := append(actions, p.events(ctx, path, b.Events)...)
	return append(out, guarded(guard, inner)...)
}

func guarded(guard string, inner []Node) []Node {
	if guard == "" {
		return inner
	}
	return []Node{&Block{Header: "if " + guard, Body: inner}}
}

func (p *pass) standard(ctx *Context, path string, b *Body) Node {
	return &Block{Body: p.body(ctx, path, b, nil)}
}

// repeat evaluates the iteration count once, before the loop.
func (p *pass) repeat(ctx *Context, path string, ev *RepeatEvent) Node {
	count := "0"
	rec := p.recorder(ctx)
	e, err := p.gen.parser.ParseMathExpression(ev.RepeatExpression)
	if err != nil {
		p.diags.Add(&Diagnostic{
			Severity:  SeverityError,
			Path:      path,
			Parameter: -1,
			Offset:    offsetOf(err),
			Message:   fmt.Sprintf("invalid repeat expression %q: %v", ev.RepeatExpression, err),
		})
	} else {
		count = e.Emit(rec)
		rec.include(e.Includes...)
		rec.commit()
	}
	outer := p.declare(ctx)
	outer = append(outer, Line(fmt.Sprintf("repeatTimes := float64(%s)", count)))

	loop := ctx.Enter()
	flags, conds, guard := p.conditions(loop, path, "condition", ev.Conditions)
	actions := p.actions(loop, path, ev.Actions)
	loop.Reset(loop.Needed()...)
	iteration := p.declare(loop)
	iteration = append(iteration, flags...)
	iteration = append(iteration, conds...)
	iteration = append(iteration, guarded(guard, append(actions, p.events(loop, path, ev.Events)...))...)

	outer = append(outer, &Block{
		Header: "for repeatIndex := 0; float64(repeatIndex) < repeatTimes; repeatIndex++",
		Body:   iteration,
	})
	return &Block{Body: outer}
}

// while evaluates the loop conditions at the top of every pass and stops at
// the first pass where they fail. Without loop conditions the body runs once.
func (p *pass) while(ctx *Context, path string, ev *WhileEvent) Node {
	loop := ctx.Enter()
	wflags, wconds, wguard := p.conditions(loop, path, "whileCondition", ev.WhileConditions)
	flags, conds, guard := p.conditions(loop, path, "condition", ev.Conditions)
	actions := p.actions(loop, path, ev.Actions)
	loop.Reset(loop.Needed()...)
	iteration := p.declare(loop)

	inner := append(flags, conds...)
	inner = append(inner, guarded(guard, append(actions, p.events(loop, path, ev.Events)...))...)

	outer := []Node{Line("stopDoWhile := false")}
	if len(ev.WhileConditions) == 0 {
		iteration = append(iteration, Line("stopDoWhile = true"))
		iteration = append(iteration, inner...)
	} else {
		var run []Node
		if ev.InfiniteLoopWarning {
			outer = append(outer, Line("loopCount := 0"))
			run = append(run,
				&Block{
					Header: fmt.Sprintf("if loopCount == %d && %s.WarnAboutInfiniteLoop()", p.gen.config.LoopGuardThreshold, p.runtime()),
					Body:   []Node{Line("break")},
				},
				Line("loopCount++"),
			)
		}
		run = append(run, &Block{Body: inner})
		iteration = append(iteration, wflags...)
		iteration = append(iteration, wconds...)
		iteration = append(iteration, &Block{
			Header: "if " + wguard,
			Body:   run,
			Else:   []Node{Line("stopDoWhile = true")},
		})
	}
	outer = append(outer, &Block{Header: "for !stopDoWhile", Body: iteration})
	return &Block{Body: outer}
}

// forEach runs the body once per instance. Inside the loop every iterated
// list is rebound to a slice holding only the current instance.
func (p *pass) forEach(ctx *Context, path string, ev *ForEachEvent) Node {
	name := strings.TrimSpace(ev.Object)
	if name == "" {
		p.report(SeverityError, path, "", -1, "for each event has no object to iterate")
		return Comment("invalid for each event: no object to iterate")
	}
	members := p.members(name)
	if len(members) == 0 {
		p.report(SeverityWarning, path, "", -1, fmt.Sprintf("group %q has no objects", name))
		return Comment(fmt.Sprintf("group %q has no objects", name))
	}
	for _, m := range members {
		ctx.ObjectListNeeded(m)
	}
	outer := p.declare(ctx)

	loop := ctx.Enter()
	for _, m := range members {
		loop.DeclareIfAbsent(m)
	}
	flags, conds, guard := p.conditions(loop, path, "condition", ev.Conditions)
	actions := p.actions(loop, path, ev.Actions)
	var own []string
	for _, n := range loop.Needed() {
		if !slices.Contains(members, n) {
			own = append(own, n)
		}
	}
	loop.Reset(own...)
	rest := p.declare(loop)
	rest = append(rest, flags...)
	rest = append(rest, conds...)
	rest = append(rest, guarded(guard, append(actions, p.events(loop, path, ev.Events)...))...)

	var header string
	var rebind []Node
	if len(members) == 1 {
		v := ListVar(members[0])
		if loop.Used(members[0]) {
			header = "for forEachIndex := range " + v
			rebind = append(rebind, Line(fmt.Sprintf("%s := %s[forEachIndex : forEachIndex+1]", v, v)))
		} else {
			header = "for range " + v
		}
	} else {
		counts := make([]string, len(members))
		for k, m := range members {
			counts[k] = fmt.Sprintf("forEachCount%d", k)
			outer = append(outer, Line(fmt.Sprintf("%s := len(%s)", counts[k], ListVar(m))))
		}
		header = "for forEachIndex := 0; forEachIndex < " + strings.Join(counts, "+") + "; forEachIndex++"
		for k, m := range members {
			if !loop.Used(m) {
				continue
			}
			lo, hi := "forEachIndex", "forEachIndex+1"
			if k > 0 {
				offset := "forEachIndex-" + strings.Join(counts[:k], "-")
				lo = "max(" + offset + ", 0)"
				hi = "max(" + offset + "+1, 0)"
			}
			v := ListVar(m)
			rebind = append(rebind, Line(fmt.Sprintf("%s := %s[min(%s, %s):min(%s, %s)]", v, v, lo, counts[k], hi, counts[k])))
		}
	}

	outer = append(outer, &Block{Header: header, Body: append(rebind, rest...)})
	return &Block{Body: outer}
}

// members returns the object lists name stands for: the members of a group,
// or name itself.
func (p *pass) members(name string) []string {
	if p.scene == nil {
		return []string{name}
	}
	group, ok := p.scene.Groups[name]
	if !ok {
		return []string{name}
	}
	out := make([]string, 0, len(group))
	for _, m := range group {
		m = strings.TrimSpace(m)
		if m != "" && !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

func (p *pass) report(sev Severity, path, instruction string, param int, msg string) {
	p.diags.Add(&Diagnostic{
		Severity:    sev,
		Path:        path,
		Instruction: instruction,
		Parameter:   param,
		Offset:      -1,
		Message:     msg,
	})
}
