package medicover

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthentication is returned when the login endpoint does not answer
	// with a redirect. The backend signals a successful login with HTTP 302;
	// anything else means the credentials were rejected.
	ErrAuthentication = errors.New("medicover: authentication failed")

	// ErrIndexOutOfRange is returned for numeric selections that do not
	// address an existing option or search result.
	ErrIndexOutOfRange = errors.New("medicover: index out of range")

	// ErrUnknownField is returned when a field name does not exist on the
	// current form.
	ErrUnknownField = errors.New("medicover: unknown field")
)

// SearchError reports a failed text-based option lookup. Matches is empty
// when nothing matched and holds every candidate when the query was
// ambiguous.
type SearchError struct {
	Field   FieldName
	Query   string
	Matches []Option
}

func (e *SearchError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("no option matching %q in field %s", e.Query, e.Field)
	}
	texts := make([]string, 0, len(e.Matches))
	for _, option := range e.Matches {
		texts = append(texts, option.Text)
	}
	return fmt.Sprintf("ambiguous option %q in field %s, matches: %s", e.Query, e.Field, strings.Join(texts, "; "))
}
