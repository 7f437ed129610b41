package events

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerResult struct {
	Variables map[string]float64 `json:"variables"`
	Deleted   []string           `json:"deleted"`
}

// runProgram builds src together with the runtime package and the runner in
// testdata, steps it once over world and returns the resulting state.
func runProgram(t *testing.T, src []byte, world string) runnerResult {
	t.Helper()
	if testing.Short() {
		t.Skip("builds and runs a generated program")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not available")
	}

	dir := t.TempDir()
	write := func(name string, data []byte) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
	copyFile := func(from, to string) {
		data, err := os.ReadFile(from)
		require.NoError(t, err)
		write(to, data)
	}
	write("go.mod", []byte("module github.com/bargom/eventc\n\ngo 1.22\n"))
	copyFile(filepath.Join("..", "..", "pkg", "scene", "scene.go"), filepath.Join("pkg", "scene", "scene.go"))
	copyFile(filepath.Join("testdata", "runner", "main.go"), "main.go")
	write(filepath.Join("events", "events.go"), src)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(goBin, "run", ".")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GOWORK=off", "GOFLAGS=-mod=mod", "GOTOOLCHAIN=local", "GOPROXY=off")
	cmd.Stdin = bytes.NewBufferString(world)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "%s\n%s", stderr.String(), src)

	var res runnerResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res), stdout.String())
	return res
}

func TestGeneratedProgramRuns(t *testing.T) {
	g := newTestGenerator(t)
	add := func(variable, value string) Instruction { return act("ModVarScene", variable, "+", value) }

	scene := &Scene{
		Name:   "runner",
		Groups: map[string][]string{"Enemies": {"Goblin", "Orc"}},
		Events: []Event{
			&ForEachEvent{Object: "Ghost", Body: Body{Actions: []Instruction{add("ghosts", "1")}}},
			&ForEachEvent{Object: "Player", Body: Body{Actions: []Instruction{add("players", "1"), add("playerX", "Player.X()")}}},
			&WhileEvent{Body: Body{Actions: []Instruction{add("loops", "1")}}},
			&WhileEvent{
				WhileConditions: []Instruction{cond("VarScene", "counted", "<", "5")},
				Body:            Body{Actions: []Instruction{add("counted", "1")}},
			},
			&ForEachEvent{Object: "Enemies", Body: Body{Actions: []Instruction{add("enemies", "1"), add("enemyX", "Enemies.X()")}}},
			&RepeatEvent{RepeatExpression: "3", Body: Body{Actions: []Instruction{add("repeats", "1")}}},
			standard(
				[]Instruction{{Type: "Or", SubInstructions: []Instruction{cond("Visible", "Player"), cond("KeyPressed", "Left")}}},
				[]Instruction{act("Delete", "Player")},
			),
		},
	}
	prog, err := g.GenerateProgram(scene)
	require.NoError(t, err)
	require.Zero(t, prog.Diagnostics.Len(), prog.Diagnostics.Error())
	requireProgramCompiles(t, prog.Source)

	world := `{
		"objects": {
			"Player": [{"x": 1, "visible": true}, {"x": 2}, {"x": 4, "visible": true}],
			"Goblin": [{"x": 1}, {"x": 2}],
			"Orc": [{"x": 10}]
		}
	}`
	res := runProgram(t, prog.Source, world)

	assert.Equal(t, map[string]float64{
		"players": 3,
		"playerX": 7,
		"loops":   1,
		"counted": 5,
		"enemies": 3,
		"enemyX":  13,
		"repeats": 3,
	}, res.Variables, "a for each over nothing runs zero times and a while without loop conditions runs once")
	assert.Equal(t, []string{"Player#0", "Player#2"}, res.Deleted, "or keeps only the instances its true sub-conditions picked")
}
