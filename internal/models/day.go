package models

import "strings"

// Day is a weekday label as written in program spreadsheets.
type Day string

// Canonical day labels. Matching is case-sensitive.
const (
	Mon Day = "Mon"
	Tue Day = "Tue"
	Wed Day = "Wed"
	Thu Day = "Thu"
	Fri Day = "Fri"
	Sat Day = "Sat"
	Sun Day = "Sun"
)

// Weekdays lists the day labels in calendar order, Monday first.
var Weekdays = []Day{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

// ParseDay returns the Day for a trimmed cell value. The second result is
// false when the value is not one of the seven labels.
func ParseDay(s string) (Day, bool) {
	d := Day(strings.TrimSpace(s))
	for _, w := range Weekdays {
		if d == w {
			return d, true
		}
	}
	return "", false
}

// Index returns the position of d in Weekdays, or -1.
func (d Day) Index() int {
	for i, w := range Weekdays {
		if d == w {
			return i
		}
	}
	return -1
}
