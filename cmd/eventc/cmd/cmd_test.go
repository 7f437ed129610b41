package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitest "github.com/bargom/eventc/cmd/eventc/testing"
)

const menuScene = `
name: Menu
events:
  - conditions:
      - type: KeyPressed
        parameters: [Space]
    actions:
      - type: ModVarScene
        parameters: [Score, "+", "10"]
`

const brokenScene = `
name: Broken
events:
  - actions:
      - type: ModVarScene
        parameters: [Score, "+", "1 +"]
`

func TestVersionCommand(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		output, err := clitest.ExecuteCommand(NewRootCmd(), "version")
		require.NoError(t, err)
		assert.Contains(t, output, "eventc v"+Version)
		assert.Contains(t, output, "Git Commit")
	})

	t.Run("json", func(t *testing.T) {
		output, err := clitest.ExecuteCommand(NewRootCmd(), "version", "-o", "json")
		require.NoError(t, err)
		var info VersionInfo
		require.NoError(t, json.Unmarshal([]byte(output), &info))
		assert.Equal(t, Version, info.Version)
	})

	t.Run("rejects arguments", func(t *testing.T) {
		_, err := clitest.ExecuteCommand(NewRootCmd(), "version", "extra")
		assert.Error(t, err)
	})
}

func TestCompileCommand(t *testing.T) {
	scene := clitest.WriteFile(t, "menu.yaml", menuScene)

	t.Run("prints source", func(t *testing.T) {
		stdout, stderr, err := clitest.ExecuteCommandWithErr(NewRootCmd(), "compile", scene, "--package", "menu")
		require.NoError(t, err)
		assert.Contains(t, stdout, "package menu")
		assert.Contains(t, stdout, `rt.KeyPressed("Space")`)
		assert.NotContains(t, stderr, "level=ERROR")
	})

	t.Run("writes file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "menu_events.go")
		stdout, _, err := clitest.ExecuteCommandWithErr(NewRootCmd(), "compile", scene, "-w", out, "--no-cache")
		require.NoError(t, err)
		assert.Empty(t, stdout)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "func Run(rt scene.Runtime)")
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := clitest.ExecuteCommandWithErr(NewRootCmd(), "compile", scene, "-o", "json")
		require.NoError(t, err)

		var res struct {
			Scene  string `json:"scene"`
			Key    string `json:"key"`
			Source string `json:"source"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &res))
		assert.Equal(t, "Menu", res.Scene)
		assert.Len(t, res.Key, 64)
		assert.Contains(t, res.Source, "package events")
	})

	t.Run("verbose logs to stderr", func(t *testing.T) {
		_, stderr, err := clitest.ExecuteCommandWithErr(NewRootCmd(), "compile", scene, "-v")
		require.NoError(t, err)
		assert.Contains(t, stderr, "compiled scene")
		assert.Contains(t, stderr, "scene=Menu")
	})

	t.Run("errors fail the command", func(t *testing.T) {
		broken := clitest.WriteFile(t, "broken.yaml", brokenScene)
		stdout, stderr, err := clitest.ExecuteCommandWithErr(NewRootCmd(), "compile", broken)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "compilation failed")
		assert.Contains(t, stdout, "// invalid action")
		assert.Contains(t, stderr, "broken.yaml: error in event 1 (ModVarScene, parameter 2")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := clitest.ExecuteCommand(NewRootCmd(), "compile", filepath.Join(t.TempDir(), "none.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read scene file")
	})

	t.Run("metrics textfile", func(t *testing.T) {
		prom := filepath.Join(t.TempDir(), "eventc.prom")
		t.Setenv("EVENTC_METRICS_TEXTFILE", prom)
		_, err := clitest.ExecuteCommand(NewRootCmd(), "compile", scene)
		require.NoError(t, err)

		data, err := os.ReadFile(prom)
		require.NoError(t, err)
		assert.Contains(t, string(data), "eventc_compiles_total")
	})
}

func TestSentenceCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "action", args: []string{"ModVarScene", "Score", "+", "10"}, want: "Do +10 to variable Score\n"},
		{name: "condition", args: []string{"--condition", "KeyPressed", "Space"}, want: "Space key is pressed\n"},
		{name: "inverted", args: []string{"--condition", "--inverted", "KeyPressed", "Space"}, want: "Not Space key is pressed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"sentence", "--no-color"}, tt.args...)
			output, err := clitest.ExecuteCommand(NewRootCmd(), args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, output)
		})
	}

	t.Run("json segments", func(t *testing.T) {
		stdout, _, err := clitest.ExecuteCommandWithErr(NewRootCmd(), "sentence", "-o", "json", "ModVarScene", "Score", "+", "10")
		require.NoError(t, err)
		var segs []struct {
			Text string `json:"text"`
			Kind string `json:"kind"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &segs))
		require.NotEmpty(t, segs)
		assert.Equal(t, "Do ", segs[0].Text)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := clitest.ExecuteCommand(NewRootCmd(), "sentence", "--condition", "Nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown condition "Nope"`)
	})
}

func TestExprCommand(t *testing.T) {
	t.Run("number", func(t *testing.T) {
		stdout, err := clitest.ExecuteCommand(NewRootCmd(), "expr", "abs(-2) + 1")
		require.NoError(t, err)
		assert.Contains(t, stdout, "math.Abs(")
		assert.Contains(t, stdout, `// import "math"`)
	})

	t.Run("string json", func(t *testing.T) {
		stdout, err := clitest.ExecuteCommand(NewRootCmd(), "expr", "--kind", "string", "-o", "json", `"a" + "b"`)
		require.NoError(t, err)
		var res exprResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &res))
		assert.Equal(t, "string", res.Type)
		assert.Empty(t, res.Error)
	})

	t.Run("syntax error points at offset", func(t *testing.T) {
		_, stderr, err := clitest.ExecuteCommandWithErr(NewRootCmd(), "expr", "1 +")
		require.Error(t, err)
		assert.Contains(t, stderr, "1 +\n")
		assert.Contains(t, stderr, "^")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := clitest.ExecuteCommand(NewRootCmd(), "expr", "--kind", "color", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown expression kind")
	})
}

func TestCatalogCommand(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		output, err := clitest.ExecuteCommand(NewRootCmd(), "catalog")
		require.NoError(t, err)
		assert.Contains(t, output, "CONDITIONS")
		assert.Contains(t, output, "KeyPressed")
		assert.Contains(t, output, "EXPRESSIONS")
	})

	t.Run("section json", func(t *testing.T) {
		output, err := clitest.ExecuteCommand(NewRootCmd(), "catalog", "--section", "actions", "-o", "json")
		require.NoError(t, err)
		var listing catalogListing
		require.NoError(t, json.Unmarshal([]byte(output), &listing))
		assert.NotEmpty(t, listing.Actions)
		assert.Empty(t, listing.Conditions)
		assert.Contains(t, listing.Extensions, "base")
	})

	t.Run("unknown section", func(t *testing.T) {
		_, err := clitest.ExecuteCommand(NewRootCmd(), "catalog", "--section", "events")
		assert.Error(t, err)
	})
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	config := clitest.WriteFile(t, "eventc.yaml", "cache:\n  type: sqlite\n  path: "+filepath.Join(dir, "cache.db")+"\n")
	scene := clitest.WriteFile(t, "menu.yaml", menuScene)

	_, err := clitest.ExecuteCommand(NewRootCmd(), "--config", config, "compile", scene)
	require.NoError(t, err)

	output, err := clitest.ExecuteCommand(NewRootCmd(), "--config", config, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, output, "Keys:   1")

	output, err = clitest.ExecuteCommand(NewRootCmd(), "--config", config, "cache", "purge")
	require.NoError(t, err)
	assert.Contains(t, output, "purged")

	output, err = clitest.ExecuteCommand(NewRootCmd(), "--config", config, "-o", "json", "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, output, `"keys": 0`)

	t.Setenv("EVENTC_CACHE", "none")
	output, err = clitest.ExecuteCommand(NewRootCmd(), "cache", "purge")
	require.NoError(t, err)
	assert.Contains(t, output, "disabled")
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			output, err := clitest.ExecuteCommand(NewRootCmd(), "completion", shell)
			require.NoError(t, err)
			assert.NotEmpty(t, output)
		})
	}

	_, err := clitest.ExecuteCommand(NewRootCmd(), "completion", "tcsh")
	assert.Error(t, err)
}

func TestFlagsResetBetweenRuns(t *testing.T) {
	root := NewRootCmd()
	_, err := clitest.ExecuteCommand(root, "-o", "json", "version")
	require.NoError(t, err)

	clitest.ResetCommand(root)
	root.PersistentFlags().Set("output", "plain")
	output, err := clitest.ExecuteCommand(root, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "eventc v")
}
