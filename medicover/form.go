package medicover

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// nextSinceOffset is added to the first visible result's timestamp to build
// the "load more" cursor. The 22-hour value matches the backend's day
// boundary semantics and must not be changed.
const nextSinceOffset = 22 * time.Hour

// searchForNextSinceParam is the request parameter carrying the pagination
// cursor.
const searchForNextSinceParam = "searchForNextSince"

// SearchForm models the server-driven cascading search form. The server
// owns all cross-field constraints: after every selection the form
// definition is fetched again with the accumulated parameters, and the
// returned option lists replace the local ones. The form also carries the
// search results and the pagination/booking operations built on them.
type SearchForm struct {
	client *Client
	logger *zap.Logger

	fields        map[FieldName]*Field
	requestParams url.Values
	canSearch     bool

	results  []AvailableVisit
	warnings []string
}

// NewSearchForm bootstraps a form: it fetches the unconstrained form
// definition once and populates the initial field set.
func NewSearchForm(ctx context.Context, client *Client, logger *zap.Logger) (*SearchForm, error) {
	f := &SearchForm{
		client:        client,
		logger:        logger,
		fields:        make(map[FieldName]*Field),
		requestParams: url.Values{},
	}
	if err := f.refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to bootstrap search form: %w", err)
	}
	return f, nil
}

// refresh fetches the form definition with the accumulated parameters and
// reconciles every field against the response.
func (f *SearchForm) refresh(ctx context.Context) error {
	data, err := f.client.FormModel(ctx, f.requestParams)
	if err != nil {
		return err
	}
	f.apply(data)
	return nil
}

func (f *SearchForm) apply(data FormData) {
	for name, options := range data.Fields {
		field, ok := f.fields[name]
		if !ok {
			f.fields[name] = NewField(name, options)
			continue
		}
		if field.replaceOptions(options) {
			// The selection stays active and its parameter is still sent
			// with the next search; the user just has to know the dropdown
			// no longer offers it.
			warning := fmt.Sprintf("previously selected value for %q is not available with the current selection", name)
			f.warnings = append(f.warnings, warning)
			f.logger.Warn("selected option no longer available", zap.String("field", string(name)))
		}
	}
	f.canSearch = data.CanSearch
}

// FieldNames returns the form's fields: the well-known ones first in their
// presentation order, then any ad-hoc fields the server added, sorted by
// name.
func (f *SearchForm) FieldNames() []FieldName {
	names := make([]FieldName, 0, len(f.fields))
	seen := make(map[FieldName]bool, len(f.fields))
	for _, name := range fieldOrder {
		if _, ok := f.fields[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	var extra []FieldName
	for name := range f.fields {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(names, extra...)
}

// Field returns the named field or ErrUnknownField.
func (f *SearchForm) Field(name FieldName) (*Field, error) {
	field, ok := f.fields[name]
	if !ok {
		return nil, fmt.Errorf("field %q: %w", name, ErrUnknownField)
	}
	return field, nil
}

// CanSearch reports whether the server considers the current selections
// sufficient to search. The value comes from the form definition response,
// never from local reasoning.
func (f *SearchForm) CanSearch() bool {
	return f.canSearch
}

// Select selects the option at index on the named field and immediately
// re-fetches the form definition so every other field narrows down to the
// options compatible with the new selection.
func (f *SearchForm) Select(ctx context.Context, name FieldName, index int) error {
	field, err := f.Field(name)
	if err != nil {
		return err
	}
	option, err := field.Select(index)
	if err != nil {
		return err
	}
	return f.applySelection(ctx, name, option)
}

// SelectByText selects the single option of the named field whose text
// contains substring, then narrows the form exactly like Select.
func (f *SearchForm) SelectByText(ctx context.Context, name FieldName, substring string) error {
	field, err := f.Field(name)
	if err != nil {
		return err
	}
	option, err := field.SelectByText(substring)
	if err != nil {
		return err
	}
	return f.applySelection(ctx, name, option)
}

func (f *SearchForm) applySelection(ctx context.Context, name FieldName, option Option) error {
	f.requestParams.Set(name.ParamName(), strconv.Itoa(option.ID))
	f.logger.Debug("option selected",
		zap.String("field", string(name)),
		zap.Int("optionID", option.ID),
		zap.String("optionText", option.Text))
	return f.refresh(ctx)
}

// Search fetches the slots matching the accumulated parameters and replaces
// the current results. When the server has not enabled searching yet this
// is a no-op: no request is made and the results stay untouched.
func (f *SearchForm) Search(ctx context.Context) error {
	if !f.canSearch {
		f.logger.Debug("search skipped, form is not searchable yet")
		return nil
	}

	visits, err := f.fetchVisits(ctx)
	if err != nil {
		return err
	}
	f.results = visits
	return nil
}

// LoadMore extends the current results with the next page. The cursor is
// derived from the first visible result: its timestamp plus 22 hours, which
// is how the backend addresses the following day. A load on empty results
// is a no-op.
func (f *SearchForm) LoadMore(ctx context.Context) error {
	if len(f.results) == 0 {
		return nil
	}
	if !f.canSearch {
		return nil
	}

	since := f.results[0].Date.Add(nextSinceOffset).Format(nextSinceLayout)
	f.requestParams.Set(searchForNextSinceParam, since)
	f.logger.Debug("loading more results", zap.String("since", since))

	visits, err := f.fetchVisits(ctx)
	if err != nil {
		return err
	}
	f.results = append(f.results, visits...)
	return nil
}

func (f *SearchForm) fetchVisits(ctx context.Context) ([]AvailableVisit, error) {
	items, err := f.client.AvailableVisits(ctx, f.requestParams)
	if err != nil {
		return nil, err
	}
	visits := make([]AvailableVisit, 0, len(items))
	for _, item := range items {
		visit, err := parseVisit(item)
		if err != nil {
			return nil, err
		}
		visits = append(visits, visit)
	}
	return visits, nil
}

// Results returns the current result list: replaced wholesale by Search,
// extended by LoadMore.
func (f *SearchForm) Results() []AvailableVisit {
	results := make([]AvailableVisit, len(f.results))
	copy(results, f.results)
	return results
}

// Book books the result at index and reports whether the backend accepted
// the submission.
func (f *SearchForm) Book(ctx context.Context, index int) (bool, error) {
	if index < 0 || index >= len(f.results) {
		return false, fmt.Errorf("result list has %d entries: %w", len(f.results), ErrIndexOutOfRange)
	}
	return f.client.BookVisit(ctx, f.results[index].ID)
}

// Warnings drains the pending reconciliation warnings.
func (f *SearchForm) Warnings() []string {
	warnings := f.warnings
	f.warnings = nil
	return warnings
}
