package events

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// sceneFile is the on-disk form of a scene.
type sceneFile struct {
	Name   string              `yaml:"name" validate:"required"`
	Groups map[string][]string `yaml:"groups,omitempty"`
	Events []eventNode         `yaml:"events" validate:"dive"`
}

// eventNode is the on-disk form of every event variant.
type eventNode struct {
	Type                string        `yaml:"type" validate:"omitempty,oneof=standard while repeat foreach comment"`
	Disabled            bool          `yaml:"disabled,omitempty"`
	Conditions          []Instruction `yaml:"conditions,omitempty" validate:"dive"`
	Actions             []Instruction `yaml:"actions,omitempty" validate:"dive"`
	Events              []eventNode   `yaml:"events,omitempty" validate:"dive"`
	WhileConditions     []Instruction `yaml:"whileConditions,omitempty" validate:"dive"`
	InfiniteLoopWarning *bool         `yaml:"infiniteLoopWarning,omitempty"`
	Repeat              string        `yaml:"repeat,omitempty"`
	Object              string        `yaml:"object,omitempty" validate:"required_if=Type foreach"`
	Comment             string        `yaml:"comment,omitempty"`
}

var validate = validator.New()

// LoadScene reads a scene from a YAML file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	scene, err := DecodeScene(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %s: %w", path, err)
	}
	return scene, nil
}

// DecodeScene decodes and validates a YAML scene. Unknown fields are rejected.
func DecodeScene(r io.Reader) (*Scene, error) {
	var f sceneFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scene")
		}
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	normalizeTypes(f.Events)
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid scene: %w", err)
	}
	return &Scene{
		Name:   f.Name,
		Groups: f.Groups,
		Events: convertEvents(f.Events),
	}, nil
}

// normalizeTypes lowercases event types, so "While" and "while" name the
// same variant.
func normalizeTypes(nodes []eventNode) {
	for i := range nodes {
		nodes[i].Type = strings.ToLower(strings.TrimSpace(nodes[i].Type))
		normalizeTypes(nodes[i].Events)
	}
}

func convertEvents(nodes []eventNode) []Event {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Event, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.event())
	}
	return out
}

func (n eventNode) event() Event {
	body := Body{
		Disabled:   n.Disabled,
		Conditions: n.Conditions,
		Actions:    n.Actions,
		Events:     convertEvents(n.Events),
	}
	switch n.Type {
	case "while":
		warn := true
		if n.InfiniteLoopWarning != nil {
			warn = *n.InfiniteLoopWarning
		}
		return &WhileEvent{Body: body, WhileConditions: n.WhileConditions, InfiniteLoopWarning: warn}
	case "repeat":
		return &RepeatEvent{Body: body, RepeatExpression: n.Repeat}
	case "foreach":
		return &ForEachEvent{Body: body, Object: n.Object}
	case "comment":
		return &CommentEvent{Text: n.Comment}
	default:
		return &StandardEvent{Body: body}
	}
}
