package events

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packages generated code may refer to by their default name.
var knownPackages = map[string]string{
	"log":     "log",
	"math":    "math",
	"slices":  "slices",
	"strings": "strings",
	"scene":   DefaultRuntimeImport,
}

var (
	stdImporter = importer.Default()
	sceneOnce   sync.Once
	scenePkg    *types.Package
	sceneErr    error
)

// sceneImporter resolves the runtime package from its sources and everything
// else from the standard library.
type sceneImporter struct {
	std types.Importer
}

func (i sceneImporter) Import(path string) (*types.Package, error) {
	if path != DefaultRuntimeImport {
		return i.std.Import(path)
	}
	sceneOnce.Do(func() {
		fset := token.NewFileSet()
		files, err := filepath.Glob(filepath.Join("..", "..", "pkg", "scene", "*.go"))
		if err != nil {
			sceneErr = err
			return
		}
		var parsed []*ast.File
		for _, name := range files {
			if strings.HasSuffix(name, "_test.go") {
				continue
			}
			f, err := parser.ParseFile(fset, name, nil, 0)
			if err != nil {
				sceneErr = err
				return
			}
			parsed = append(parsed, f)
		}
		conf := types.Config{Importer: i.std}
		scenePkg, sceneErr = conf.Check(DefaultRuntimeImport, fset, parsed, nil)
	})
	return scenePkg, sceneErr
}

// requireCompilable type-checks statements as the body of a generated step
// function, importing the packages they name.
func requireCompilable(t *testing.T, code string) {
	t.Helper()
	require.NoError(t, checkStatements(code), code)
}

// requireProgramCompiles type-checks a generated file against the runtime
// package.
func requireProgramCompiles(t *testing.T, src []byte) {
	t.Helper()
	require.NoError(t, checkProgram(src), string(src))
}

func checkStatements(code string) error {
	f, err := parser.ParseFile(token.NewFileSet(), "events.go", "package events\n\nfunc run() {\n"+code+"}\n", 0)
	if err != nil {
		return err
	}

	imports := []string{DefaultRuntimeImport}
	ast.Inspect(f, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if id, ok := sel.X.(*ast.Ident); ok {
			if path, known := knownPackages[id.Name]; known && !slices.Contains(imports, path) {
				imports = append(imports, path)
			}
		}
		return true
	})
	slices.Sort(imports)

	var sb strings.Builder
	sb.WriteString("package events\n\nimport (\n")
	for _, path := range imports {
		sb.WriteString("\t" + strconv.Quote(path) + "\n")
	}
	sb.WriteString(")\n\nfunc run(rt scene.Runtime) {\n" + code + "}\n")
	return checkProgram([]byte(sb.String()))
}

func checkProgram(src []byte) error {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "events.go", src, parser.ParseComments)
	if err != nil {
		return err
	}
	conf := types.Config{Importer: sceneImporter{std: stdImporter}}
	_, err = conf.Check("events", fset, []*ast.File{f}, nil)
	return err
}

func TestCheckStatementsRejectsTypeErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"constant division by zero", "rt.SetVariable(\"x\", float64(1)/0)\n"},
		{"unknown runtime method", "rt.Explode()\n"},
		{"unused list", "objectsPlayer := rt.Objects(\"Player\")\n"},
		{"wrong argument type", "rt.SetVariable(\"x\", \"one\")\n"},
		{"missing import", "_ = fmt.Sprint(1)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, checkStatements(tt.code))
		})
	}

	assert.NoError(t, checkStatements("objectsPlayer := rt.Objects(\"Player\")\nlog.Println(len(objectsPlayer), math.Pi)\n"))
}
