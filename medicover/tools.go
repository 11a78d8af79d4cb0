package medicover

import (
	"strings"
	"unicode"
)

// camelToUnderscore converts a camel-cased name to lower case with
// underscores: a word boundary sits before every lowercase-to-uppercase and
// digit-to-uppercase transition (BookingTypes -> booking_types,
// DiagnosticProcedures -> diagnostic_procedures).
func camelToUnderscore(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			next := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (next && !unicode.IsLower(prev) && prev != '_') {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
