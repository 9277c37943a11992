package validate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FieldError is one rendering-agnostic validation report entry.
type FieldError struct {
	Field       string `json:"field"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

// Error carries every violation found in one validation pass, keyed by
// field. It is the only error kind in this module that holds multiple
// independent causes at once.
type Error struct {
	Courier      string
	Fields       map[string][]string
	Descriptions map[string]string
}

// Error implements the error interface with a single formatted summary.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Courier != "" {
		fmt.Fprintf(&b, "%s: ", e.Courier)
	}
	b.WriteString("validation failed")
	for _, item := range e.Items() {
		fmt.Fprintf(&b, "; %s: %s", item.Field, item.Message)
	}
	return b.String()
}

// Items returns one entry per failing field, sorted by field name for
// deterministic rendering. Presenters build their output from these.
func (e *Error) Items() []FieldError {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	items := make([]FieldError, 0, len(fields))
	for _, field := range fields {
		items = append(items, FieldError{
			Field:       field,
			Message:     strings.Join(e.Fields[field], " "),
			Description: e.Descriptions[field],
		})
	}
	return items
}

// Render produces a multi-line plain-text report with long-form field
// descriptions where available.
func (e *Error) Render() string {
	var b strings.Builder
	if e.Courier != "" {
		fmt.Fprintf(&b, "Validation failed for courier %q:\n", e.Courier)
	} else {
		b.WriteString("Validation failed:\n")
	}
	for _, item := range e.Items() {
		fmt.Fprintf(&b, "  %s: %s\n", item.Field, item.Message)
		if item.Description != "" {
			fmt.Fprintf(&b, "    %s\n", item.Description)
		}
	}
	return b.String()
}

// MarshalJSON renders the structured report for programmatic consumers.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Courier string       `json:"courier,omitempty"`
		Errors  []FieldError `json:"errors"`
	}{
		Courier: e.Courier,
		Errors:  e.Items(),
	})
}
