package events

// Instruction is one condition or action occurrence inside an event.
// Parameters are raw text, aligned with the metadata's declared parameters.
type Instruction struct {
	Type            string        `json:"type" yaml:"type" validate:"required"`
	Parameters      []string      `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Inverted        bool          `json:"inverted,omitempty" yaml:"inverted,omitempty"`
	SubInstructions []Instruction `json:"subInstructions,omitempty" yaml:"subInstructions,omitempty" validate:"dive"`
}

// Event is a node of the event tree.
type Event interface {
	// Kind names the event variant.
	Kind() string
	// Executable reports whether the event produces code at all.
	Executable() bool
	// Enabled reports whether the event was left switched on.
	Enabled() bool
	// SubEvents returns the children run when the event's conditions hold.
	SubEvents() []Event
}

// Body holds what every executable event carries.
type Body struct {
	Disabled   bool
	Conditions []Instruction
	Actions    []Instruction
	Events     []Event
}

func (b *Body) Executable() bool   { return true }
func (b *Body) Enabled() bool      { return !b.Disabled }
func (b *Body) SubEvents() []Event { return b.Events }

// StandardEvent runs its conditions, actions and sub-events once.
type StandardEvent struct {
	Body
}

// WhileEvent repeats its body as long as its loop conditions hold.
type WhileEvent struct {
	Body
	WhileConditions     []Instruction
	InfiniteLoopWarning bool
}

// RepeatEvent runs its body a computed number of times.
type RepeatEvent struct {
	Body
	RepeatExpression string
}

// ForEachEvent runs its body once per instance of an object or group.
type ForEachEvent struct {
	Body
	Object string
}

// CommentEvent documents the event sheet and never produces code.
type CommentEvent struct {
	Text string
}

func (e *StandardEvent) Kind() string { return "standard" }
func (e *WhileEvent) Kind() string    { return "while" }
func (e *RepeatEvent) Kind() string   { return "repeat" }
func (e *ForEachEvent) Kind() string  { return "foreach" }
func (e *CommentEvent) Kind() string  { return "comment" }

func (e *CommentEvent) Executable() bool   { return false }
func (e *CommentEvent) Enabled() bool      { return true }
func (e *CommentEvent) SubEvents() []Event { return nil }

// Scene is a complete event sheet with the object groups it can refer to.
type Scene struct {
	Name   string
	Groups map[string][]string
	Events []Event
}

// useful reports whether e produces code.
func useful(e Event) bool {
	return e != nil && e.Executable() && e.Enabled()
}
