package medicover

import (
	"fmt"
	"strings"
)

// FieldName identifies one selectable dimension of the search form, e.g.
// "regions" or "clinics".
type FieldName string

const (
	FieldRegions         FieldName = "regions"
	FieldBookingTypes    FieldName = "booking_types"
	FieldSpecializations FieldName = "specializations"
	FieldClinics         FieldName = "clinics"
	FieldLanguages       FieldName = "languages"
	FieldDoctors         FieldName = "doctors"
)

// fieldOrder is the presentation order of the well-known fields. It mirrors
// the order in which the website expects a user to narrow the form down; it
// is a UI convention, not an enforced dependency chain.
var fieldOrder = []FieldName{
	FieldRegions,
	FieldBookingTypes,
	FieldSpecializations,
	FieldClinics,
	FieldLanguages,
	FieldDoctors,
}

// fieldParams maps a field to the query parameter the backend expects for
// its selected option.
var fieldParams = map[FieldName]string{
	FieldRegions:            "regionId",
	FieldBookingTypes:       "bookingTypeId",
	FieldSpecializations:    "specializationId",
	FieldClinics:            "clinicId",
	FieldLanguages:          "languageId",
	FieldDoctors:            "doctorId",
	"diagnostic_procedures": "diagnosticProcedureId",
}

// ParamName returns the remote query parameter carrying this field's
// selection. Fields outside the known set derive their parameter the way
// the backend names them: singular camel case plus an "Id" suffix
// (booking_types -> bookingTypeId).
func (n FieldName) ParamName() string {
	if param, ok := fieldParams[n]; ok {
		return param
	}
	parts := strings.Split(string(n), "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.TrimSuffix(strings.Join(parts, ""), "s") + "Id"
}

// Option is one selectable value within a field.
type Option struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Field holds one form field together with its currently valid options and
// an optional selection.
type Field struct {
	name     FieldName
	options  []Option
	selected *Option
	stale    bool
}

// NewField creates a field with the given option list and no selection.
func NewField(name FieldName, options []Option) *Field {
	return &Field{name: name, options: options}
}

// Name returns the field's canonical name.
func (f *Field) Name() FieldName {
	return f.name
}

// Options returns a copy of the currently valid options.
func (f *Field) Options() []Option {
	options := make([]Option, len(f.options))
	copy(options, f.options)
	return options
}

// Selected returns the currently selected option, or nil.
func (f *Field) Selected() *Option {
	if f.selected == nil {
		return nil
	}
	selected := *f.selected
	return &selected
}

// Stale reports whether the selected option has disappeared from the option
// list after a reconciliation. A stale selection is still sent to the
// backend with the next search.
func (f *Field) Stale() bool {
	return f.stale
}

// Select marks the option at index as selected and returns it.
func (f *Field) Select(index int) (Option, error) {
	if index < 0 || index >= len(f.options) {
		return Option{}, fmt.Errorf("field %s has %d options: %w", f.name, len(f.options), ErrIndexOutOfRange)
	}
	selected := f.options[index]
	f.selected = &selected
	f.stale = false
	return selected, nil
}

// SelectByText selects the single option whose text contains the given
// substring. The match is case-sensitive. Zero or multiple matches fail
// with a SearchError describing the outcome.
func (f *Field) SelectByText(substring string) (Option, error) {
	var matches []int
	for i, option := range f.options {
		if strings.Contains(option.Text, substring) {
			matches = append(matches, i)
		}
	}
	if len(matches) != 1 {
		err := &SearchError{Field: f.name, Query: substring}
		for _, i := range matches {
			err.Matches = append(err.Matches, f.options[i])
		}
		return Option{}, err
	}
	return f.Select(matches[0])
}

// FormatOptions renders the options as an enumerated "index: text" list,
// one option per line.
func (f *Field) FormatOptions() string {
	lines := make([]string, 0, len(f.options))
	for i, option := range f.options {
		lines = append(lines, fmt.Sprintf("%d: %s", i, option.Text))
	}
	return strings.Join(lines, "\n")
}

// replaceOptions swaps in a freshly fetched option list, preserving the
// current selection. It reports whether the selection just became stale.
func (f *Field) replaceOptions(options []Option) bool {
	f.options = options
	if f.selected == nil || f.stale {
		return false
	}
	for _, option := range options {
		if option.ID == f.selected.ID {
			return false
		}
	}
	f.stale = true
	return true
}
