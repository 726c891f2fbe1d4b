package timehelper

import "time"

const displayLayout = "02/01/2006, 15:04:05"

// FormatTimestamp renders a bet timestamp the way the site shows it, in loc
// when given and in UTC otherwise.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(displayLayout)
}

