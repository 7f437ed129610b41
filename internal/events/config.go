package events

// DefaultRuntimeImport is the package declaring the runtime interfaces.
const DefaultRuntimeImport = "github.com/bargom/eventc/pkg/scene"

// Revision changes whenever the same input generates different code, so
// cached programs from older generators are not reused.
const Revision = "2"

// Config holds configuration for the event code generator.
type Config struct {
	// Package is the package clause of generated programs
	Package string `json:"package" yaml:"package" validate:"required"`

	// Function is the name of the generated entry point
	Function string `json:"function" yaml:"function" validate:"required"`

	// RuntimeVar is the parameter name of the runtime inside generated code
	RuntimeVar string `json:"runtimeVar" yaml:"runtimeVar" validate:"required"`

	// RuntimeType is the Go type of the runtime parameter
	RuntimeType string `json:"runtimeType" yaml:"runtimeType" validate:"required"`

	// RuntimeImport is the import path declaring RuntimeType
	RuntimeImport string `json:"runtimeImport" yaml:"runtimeImport"`

	// LoopGuardThreshold is the iteration count at which while loops ask the
	// runtime whether to go on
	LoopGuardThreshold int `json:"loopGuardThreshold" yaml:"loopGuardThreshold" validate:"gt=0"`

	// Format runs generated programs through gofmt
	Format bool `json:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Package:            "events",
		Function:           "Run",
		RuntimeVar:         "rt",
		RuntimeType:        "scene.Runtime",
		RuntimeImport:      DefaultRuntimeImport,
		LoopGuardThreshold: 100000,
		Format:             true,
	}
}
