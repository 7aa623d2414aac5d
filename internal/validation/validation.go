// Package validation provides input validation utilities
package validation

import "sort"

// FieldErrors collects messages per form field. A nil or empty value means
// the form is valid.
type FieldErrors map[string][]string

// Add records msg against field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Merge copies every message from other into fe.
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		fe[field] = append(fe[field], msgs...)
	}
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Fields returns the invalid field names in sorted order.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
