package medicover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitAt(t *testing.T, value string) AvailableVisit {
	t.Helper()
	date, err := time.Parse(visitDateLayout, value)
	require.NoError(t, err)
	return AvailableVisit{ID: 1, Date: date}
}

func TestVisitPreferenceMatches(t *testing.T) {
	// 2026-09-02 is a Wednesday.
	visit := visitAt(t, "2026-09-02T10:30:00")

	wednesday := time.Wednesday
	monday := time.Monday
	nine := DayTime{Hour: 9, Minute: 0}
	halfPastTen := DayTime{Hour: 10, Minute: 30}
	eleven := DayTime{Hour: 11, Minute: 0}
	sept1 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	sept3 := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		pref VisitPreference
		want bool
	}{
		{"empty preference matches everything", VisitPreference{}, true},
		{"weekday match", VisitPreference{Weekday: &wednesday}, true},
		{"weekday mismatch", VisitPreference{Weekday: &monday}, false},
		{"time window contains visit", VisitPreference{TimeFrom: &nine, TimeTo: &eleven}, true},
		{"time from is exclusive", VisitPreference{TimeFrom: &halfPastTen}, false},
		{"time to is exclusive", VisitPreference{TimeTo: &halfPastTen}, false},
		{"date window contains visit", VisitPreference{DateFrom: &sept1, DateTo: &sept3}, true},
		{"date from rejects earlier visits", VisitPreference{DateFrom: &sept3}, false},
		{"date to rejects later visits", VisitPreference{DateTo: &sept1}, false},
		{
			"all constraints combine with AND",
			VisitPreference{Weekday: &wednesday, TimeFrom: &nine, DateTo: &sept1},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pref.Matches(visit))
		})
	}
}

func TestParseDayTime(t *testing.T) {
	parsed, err := ParseDayTime("09:45")
	require.NoError(t, err)
	assert.Equal(t, DayTime{Hour: 9, Minute: 45}, parsed)

	for _, invalid := range []string{"9", "25:00", "12:60", "ab:cd", "12:30:00"} {
		_, err := ParseDayTime(invalid)
		assert.Error(t, err, "input %q", invalid)
	}
}

func TestParsePreferenceDate(t *testing.T) {
	parsed, err := ParsePreferenceDate("01.09.2026")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), parsed)

	_, err = ParsePreferenceDate("2026-09-01")
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	weekday, err := ParseWeekday("Wednesday")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, weekday)

	// Monday must be matchable even though it is the zero-adjacent value.
	weekday, err = ParseWeekday("monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, weekday)

	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}
