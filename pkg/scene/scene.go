// Package scene declares the runtime surface that generated event programs
// are compiled against. Hosts implement these interfaces.
package scene

// Runtime is the scene being stepped. Generated code receives it as rt.
type Runtime interface {
	// Objects returns the live instances of an object or group name.
	// The returned slice is owned by the caller.
	Objects(name string) []Object

	Variable(name string) float64
	SetVariable(name string, value float64)
	VariableString(name string) string
	SetVariableString(name string, value string)
	// GlobalVariable returns a pointer to a variable shared by every scene.
	GlobalVariable(name string) *float64

	TimerElapsed(seconds float64, name string) bool
	ResetTimer(name string)
	TimeDelta() float64
	Random(max float64) float64
	ToString(value float64) string
	ToNumber(value string) float64
	KeyPressed(key string) bool
	SceneName() string

	CreateObject(name string, x, y float64)

	// WarnAboutInfiniteLoop is called when a while loop runs suspiciously
	// long. Returning true stops the loop.
	WarnAboutInfiniteLoop() bool
}

// Object is an instance placed in a scene.
type Object interface {
	Name() string
	X() float64
	SetX(x float64)
	Y() float64
	SetY(y float64)
	Visible() bool
	Hide()
	Show()
	Delete()
	Variable(name string) float64
	SetVariable(name string, value float64)
	VariableString(name string) string
	SetVariableString(name string, value string)
	// Behavior returns the named behavior attached to the object.
	Behavior(name string) any
}

// Text is an object displaying a string.
type Text interface {
	Object
	Text() string
	SetText(text string)
}

// Movement is a behavior moving its object.
type Movement interface {
	Speed() float64
	SetSpeed(speed float64)
	IsMoving() bool
}
