package medicover

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// preferenceDateLayout is the date format users supply preferences in.
const preferenceDateLayout = "02.01.2006"

// DayTime is a time of day without a date, minute precision.
type DayTime struct {
	Hour   int
	Minute int
}

// ParseDayTime parses "HH:MM".
func ParseDayTime(s string) (DayTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return DayTime{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return DayTime{}, fmt.Errorf("invalid hour in %q, expected HH:MM", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return DayTime{}, fmt.Errorf("invalid minute in %q, expected HH:MM", s)
	}
	return DayTime{Hour: hour, Minute: minute}, nil
}

// ParsePreferenceDate parses "DD.MM.YYYY".
func ParsePreferenceDate(s string) (time.Time, error) {
	date, err := time.Parse(preferenceDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected DD.MM.YYYY", s)
	}
	return date, nil
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseWeekday parses a full English weekday name, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	weekday, ok := weekdays[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("incorrect weekday name %q", s)
	}
	return weekday, nil
}

func (t DayTime) before(hour, minute int) bool {
	return t.Hour < hour || (t.Hour == hour && t.Minute < minute)
}

func (t DayTime) after(hour, minute int) bool {
	return t.Hour > hour || (t.Hour == hour && t.Minute > minute)
}

// VisitPreference is an optional bundle of constraints a visit has to
// satisfy. Unset constraints are nil; the set ones combine with AND.
type VisitPreference struct {
	Weekday  *time.Weekday
	TimeFrom *DayTime
	TimeTo   *DayTime
	DateFrom *time.Time
	DateTo   *time.Time
}

// Matches reports whether the visit satisfies every set constraint. The
// time-of-day bounds are exclusive: a visit exactly at TimeFrom or TimeTo
// is rejected.
func (p VisitPreference) Matches(visit AvailableVisit) bool {
	hour, minute := visit.Date.Hour(), visit.Date.Minute()

	if p.Weekday != nil && *p.Weekday != visit.Date.Weekday() {
		return false
	}
	if p.TimeFrom != nil && !p.TimeFrom.before(hour, minute) {
		return false
	}
	if p.TimeTo != nil && !p.TimeTo.after(hour, minute) {
		return false
	}
	if p.DateFrom != nil && p.DateFrom.After(visit.Date) {
		return false
	}
	if p.DateTo != nil && p.DateTo.Before(visit.Date) {
		return false
	}
	return true
}
