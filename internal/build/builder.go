// Package build compiles scene files end to end: it assembles the catalog
// from extension files, decodes scenes, runs the generator and keeps compiled
// programs in a build cache.
package build

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/bargom/eventc/internal/builtin"
	"github.com/bargom/eventc/internal/buildcache"
	"github.com/bargom/eventc/internal/catalog"
	"github.com/bargom/eventc/internal/events"
	"github.com/bargom/eventc/internal/sentence"
	"github.com/bargom/eventc/pkg/logging"
	"github.com/bargom/eventc/pkg/metrics"
)

// Result is the outcome of one compilation.
type Result struct {
	CompileID string          `json:"compileId"`
	Scene     string          `json:"scene"`
	Key       string          `json:"key"`
	Cached    bool            `json:"cached"`
	Program   *events.Program `json:"program"`
}

// cachedProgram is the cache representation of a Program.
type cachedProgram struct {
	Scene   string          `json:"scene"`
	Source  string          `json:"source"`
	Program *events.Program `json:"program"`
}

// Builder compiles scenes against one catalog and configuration.
type Builder struct {
	config    *Config
	catalog   *catalog.Catalog
	styles    sentence.StyleTable
	generator *events.Generator
	cache     buildcache.Cache
	cacheSet  bool
	metrics   *metrics.Registry
	logger    *logging.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithMetrics sets the metrics registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(b *Builder) { b.metrics = reg }
}

// WithCache sets the build cache instead of opening the configured one.
// A nil cache disables caching.
func WithCache(c buildcache.Cache) Option {
	return func(b *Builder) {
		b.cache = c
		b.cacheSet = true
	}
}

// New loads the catalog, styles and cache described by config.
func New(config *Config, opts ...Option) (*Builder, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{config: config}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.New(config.Logging)
	}
	if b.metrics == nil {
		b.metrics = metrics.NewRegistry(config.Metrics)
	}

	cat, err := catalog.LoadFiles(builtin.Extensions(), config.Extensions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	b.catalog = cat

	b.styles = sentence.DefaultStyles()
	if config.Styles != "" {
		if b.styles, err = sentence.LoadStyles(config.Styles); err != nil {
			return nil, err
		}
	}

	if !b.cacheSet {
		if b.cache, err = buildcache.New(config.Cache); err != nil {
			return nil, fmt.Errorf("failed to open build cache: %w", err)
		}
	}

	b.generator = events.NewGenerator(cat, &config.Generator,
		events.WithLogger(b.logger.WithModule("events").Logger))

	b.logger.Debug("builder ready",
		"extensions", cat.Extensions(),
		"catalog", cat.Fingerprint(),
		"cache", config.Cache.Type,
	)
	return b, nil
}

// Catalog returns the loaded catalog.
func (b *Builder) Catalog() *catalog.Catalog { return b.catalog }

// Generator returns the event code generator.
func (b *Builder) Generator() *events.Generator { return b.generator }

// Renderer returns a sentence renderer using the loaded styles.
func (b *Builder) Renderer() *sentence.Renderer {
	return sentence.NewRenderer(b.catalog, b.styles)
}

// Metrics returns the metrics registry.
func (b *Builder) Metrics() *metrics.Registry { return b.metrics }

// CompileFile compiles the scene file at path.
func (b *Builder) CompileFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		b.metrics.Compile().RecordCompile(metrics.CompileStatusFailure, 0, metrics.Counts{})
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	return b.Compile(ctx, data)
}

// Compile compiles an encoded scene. Instruction problems are reported in
// the program's diagnostics; an error means no program was produced.
func (b *Builder) Compile(ctx context.Context, data []byte) (*Result, error) {
	id := uuid.NewString()
	ctx = logging.WithCompileID(ctx, id)
	timer := b.metrics.Compile().NewTimer()

	scene, err := events.DecodeScene(bytes.NewReader(data))
	if err != nil {
		timer.Failure()
		b.logger.ErrorContext(ctx, "scene rejected", "error", err)
		return nil, err
	}
	ctx = logging.WithScene(ctx, scene.Name)

	key, err := b.key(data)
	if err != nil {
		timer.Failure()
		return nil, err
	}
	res := &Result{CompileID: id, Scene: scene.Name, Key: key}

	if prog, ok := b.lookup(ctx, key); ok {
		res.Program = prog
		res.Cached = true
		d := timer.Done(metrics.CompileStatusCached, counts(prog))
		b.logger.InfoContext(ctx, "compiled scene from cache", "key", key[:12], "duration", d)
		return res, nil
	}

	prog, err := b.generator.GenerateProgramContext(ctx, scene)
	if err != nil {
		timer.Failure()
		return nil, err
	}
	res.Program = prog

	status := metrics.CompileStatusSuccess
	if prog.Diagnostics.HasErrors() {
		status = metrics.CompileStatusDiagnostics
	} else {
		b.store(ctx, key, scene.Name, prog)
	}
	d := timer.Done(status, counts(prog))
	b.logger.InfoContext(ctx, "compiled scene",
		"status", status,
		"diagnostics", prog.Diagnostics.Len(),
		"bytes", len(prog.Source),
		"duration", d,
	)
	return res, nil
}

func (b *Builder) lookup(ctx context.Context, key string) (*events.Program, bool) {
	if b.cache == nil {
		return nil, false
	}
	var entry cachedProgram
	err := buildcache.GetJSON(ctx, b.cache, key, &entry)
	if err != nil || entry.Program == nil {
		if err != nil && !errors.Is(err, buildcache.ErrCacheMiss) {
			b.logger.WarnContext(ctx, "build cache read failed", "error", err)
		}
		b.metrics.Compile().RecordCacheLookup(false)
		return nil, false
	}
	b.metrics.Compile().RecordCacheLookup(true)
	entry.Program.Source = []byte(entry.Source)
	if entry.Program.Diagnostics == nil {
		entry.Program.Diagnostics = &events.Diagnostics{}
	}
	return entry.Program, true
}

func (b *Builder) store(ctx context.Context, key, scene string, prog *events.Program) {
	if b.cache == nil {
		return
	}
	entry := cachedProgram{Scene: scene, Source: string(prog.Source), Program: prog}
	if err := buildcache.SetJSON(ctx, b.cache, key, entry, 0); err != nil {
		b.logger.WarnContext(ctx, "build cache write failed", "error", err)
	}
}

// key digests everything a program depends on: the catalog, the generator
// configuration and the scene bytes, under the generator revision.
func (b *Builder) key(data []byte) (string, error) {
	cfg, err := json.Marshal(b.config.Generator)
	if err != nil {
		return "", fmt.Errorf("failed to encode generator config: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(events.Revision))
	h.Write([]byte{0})
	h.Write([]byte(b.catalog.Fingerprint()))
	h.Write([]byte{0})
	h.Write(cfg)
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func counts(prog *events.Program) metrics.Counts {
	return metrics.Counts{
		Events:       prog.Stats.Events,
		Instructions: prog.Stats.Instructions,
		Stubbed:      prog.Stats.Stubbed,
		SourceBytes:  len(prog.Source),
		Diagnostics: map[string]int{
			events.SeverityWarning.String(): prog.Diagnostics.Count(events.SeverityWarning),
			events.SeverityError.String():   prog.Diagnostics.Count(events.SeverityError),
			events.SeverityDefect.String():  prog.Diagnostics.Count(events.SeverityDefect),
		},
	}
}

// FlushMetrics writes the metrics textfile when one is configured.
func (b *Builder) FlushMetrics() error {
	if b.config.Metrics.Textfile == "" {
		return nil
	}
	if err := b.metrics.WriteTextfile(b.config.Metrics.Textfile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// PurgeCache empties the build cache.
func (b *Builder) PurgeCache(ctx context.Context) error {
	if b.cache == nil {
		return nil
	}
	return b.cache.Purge(ctx)
}

// Close releases the build cache when the builder opened it.
func (b *Builder) Close() error {
	if b.cache == nil || b.cacheSet {
		return nil
	}
	return b.cache.Close()
}
