// Command runner steps a generated event program once against an in-memory
// scene read from stdin and prints the resulting state as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bargom/eventc/events"
	"github.com/bargom/eventc/pkg/scene"
)

type world struct {
	Objects map[string][]struct {
		X       float64 `json:"x"`
		Visible bool    `json:"visible"`
	} `json:"objects"`
	Keys []string `json:"keys"`
}

type result struct {
	Variables map[string]float64 `json:"variables"`
	Deleted   []string           `json:"deleted"`
}

type object struct {
	rt      *runtime
	name    string
	id      int
	x, y    float64
	visible bool
	deleted bool
	vars    map[string]float64
	strs    map[string]string
}

func (o *object) Name() string                           { return o.name }
func (o *object) X() float64                             { return o.x }
func (o *object) SetX(x float64)                         { o.x = x }
func (o *object) Y() float64                             { return o.y }
func (o *object) SetY(y float64)                         { o.y = y }
func (o *object) Visible() bool                          { return o.visible }
func (o *object) Hide()                                  { o.visible = false }
func (o *object) Show()                                  { o.visible = true }
func (o *object) Variable(name string) float64           { return o.vars[name] }
func (o *object) SetVariable(name string, value float64) { o.vars[name] = value }
func (o *object) VariableString(name string) string      { return o.strs[name] }
func (o *object) SetVariableString(name, value string)   { o.strs[name] = value }
func (o *object) Behavior(string) any                    { return nil }

func (o *object) Delete() {
	if !o.deleted {
		o.deleted = true
		o.rt.deleted = append(o.rt.deleted, fmt.Sprintf("%s#%d", o.name, o.id))
	}
}

type runtime struct {
	objects map[string][]*object
	keys    map[string]bool
	vars    map[string]float64
	strs    map[string]string
	globals map[string]*float64
	deleted []string
}

func (r *runtime) Objects(name string) []scene.Object {
	out := []scene.Object{}
	for _, o := range r.objects[name] {
		if !o.deleted {
			out = append(out, o)
		}
	}
	return out
}

func (r *runtime) Variable(name string) float64           { return r.vars[name] }
func (r *runtime) SetVariable(name string, value float64) { r.vars[name] = value }
func (r *runtime) VariableString(name string) string      { return r.strs[name] }
func (r *runtime) SetVariableString(name, value string)   { r.strs[name] = value }
func (r *runtime) TimerElapsed(float64, string) bool      { return false }
func (r *runtime) ResetTimer(string)                      {}
func (r *runtime) TimeDelta() float64                     { return 0.016 }
func (r *runtime) Random(max float64) float64             { return max / 2 }
func (r *runtime) ToString(value float64) string          { return fmt.Sprint(value) }
func (r *runtime) ToNumber(string) float64                { return 0 }
func (r *runtime) KeyPressed(key string) bool             { return r.keys[key] }
func (r *runtime) SceneName() string                      { return "runner" }
func (r *runtime) CreateObject(string, float64, float64)  {}
func (r *runtime) WarnAboutInfiniteLoop() bool            { return true }

func (r *runtime) GlobalVariable(name string) *float64 {
	if r.globals[name] == nil {
		r.globals[name] = new(float64)
	}
	return r.globals[name]
}

func main() {
	var w world
	if err := json.NewDecoder(os.Stdin).Decode(&w); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rt := &runtime{
		objects: make(map[string][]*object),
		keys:    make(map[string]bool),
		vars:    make(map[string]float64),
		strs:    make(map[string]string),
		globals: make(map[string]*float64),
	}
	for name, instances := range w.Objects {
		for i, in := range instances {
			rt.objects[name] = append(rt.objects[name], &object{
				rt: rt, name: name, id: i, x: in.X, visible: in.Visible,
				vars: make(map[string]float64), strs: make(map[string]string),
			})
		}
	}
	for _, k := range w.Keys {
		rt.keys[k] = true
	}

	events.Run(rt)

	if err := json.NewEncoder(os.Stdout).Encode(result{Variables: rt.vars, Deleted: rt.deleted}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
