package settings

import "time"

// Contains reports whether the given local time falls inside the quiet
// window. The interval is closed on both ends. A window whose start is after
// its end spans midnight (22:00-08:00 suppresses from 22:00 through 08:00
// the next morning). Any missing or unparsable time string disables
// suppression entirely: a broken setting must never silence alerts.
func (q *QuietHours) Contains(now time.Time) bool {
	if q == nil || q.Start == "" || q.End == "" {
		return false
	}

	start, err := time.Parse("15:04", q.Start)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", q.End)
	if err != nil {
		return false
	}

	cur := now.Hour()*3600 + now.Minute()*60 + now.Second()
	s := (start.Hour()*60 + start.Minute()) * 60
	e := (end.Hour()*60 + end.Minute()) * 60

	if s <= e {
		return s <= cur && cur <= e
	}
	// Overnight span
	return cur >= s || cur <= e
}
