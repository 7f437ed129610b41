package events

import (
	"fmt"
	"strings"
)

// Severity ranks a diagnostic.
type Severity int

const (
	// SeverityWarning marks input that was silently corrected.
	SeverityWarning Severity = iota
	// SeverityError marks an instruction that was replaced by a stub.
	SeverityError
	// SeverityDefect marks inconsistent metadata rather than bad input.
	SeverityDefect
)

var severityNames = map[Severity]string{
	SeverityWarning: "warning",
	SeverityError:   "error",
	SeverityDefect:  "defect",
}

// String returns the severity name.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	for sev, name := range severityNames {
		if strings.EqualFold(name, string(text)) {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// Diagnostic is one problem found while generating code.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	// Path locates the event, e.g. "2.1" is the first sub-event of the second event.
	Path        string `json:"path,omitempty"`
	Instruction string `json:"instruction,omitempty"`
	// Parameter is the index of the failing parameter, or -1.
	Parameter int `json:"parameter"`
	// Offset is the byte offset inside the parameter text, or -1.
	Offset  int    `json:"offset"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	var sb strings.Builder
	sb.WriteString(d.Severity.String())
	if d.Path != "" {
		sb.WriteString(" in event ")
		sb.WriteString(d.Path)
	}
	if d.Instruction != "" {
		fmt.Fprintf(&sb, " (%s", d.Instruction)
		if d.Parameter >= 0 {
			fmt.Fprintf(&sb, ", parameter %d", d.Parameter)
		}
		if d.Offset >= 0 {
			fmt.Fprintf(&sb, ", offset %d", d.Offset)
		}
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

// Diagnostics aggregates the problems of one generation pass.
type Diagnostics struct {
	Items []*Diagnostic `json:"items"`
}

// Add appends a diagnostic.
func (ds *Diagnostics) Add(d *Diagnostic) {
	ds.Items = append(ds.Items, d)
}

// Len returns the number of diagnostics.
func (ds *Diagnostics) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.Items)
}

// Count returns the number of diagnostics with the given severity.
func (ds *Diagnostics) Count(s Severity) int {
	if ds == nil {
		return 0
	}
	n := 0
	for _, d := range ds.Items {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// HasErrors reports whether any diagnostic is an error or a defect.
func (ds *Diagnostics) HasErrors() bool {
	return ds.Count(SeverityError)+ds.Count(SeverityDefect) > 0
}

// Error implements the error interface, formatting all diagnostics.
func (ds *Diagnostics) Error() string {
	switch ds.Len() {
	case 0:
		return "no diagnostics"
	case 1:
		return ds.Items[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d diagnostics:\n", len(ds.Items))
	for i, d := range ds.Items {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, d.Error())
	}
	return sb.String()
}

// Unwrap returns the diagnostics for errors.Is/As compatibility.
func (ds *Diagnostics) Unwrap() []error {
	if ds == nil {
		return nil
	}
	errs := make([]error, len(ds.Items))
	for i, d := range ds.Items {
		errs[i] = d
	}
	return errs
}

// Err returns ds when it holds errors or defects, and nil otherwise.
func (ds *Diagnostics) Err() error {
	if ds.HasErrors() {
		return ds
	}
	return nil
}
