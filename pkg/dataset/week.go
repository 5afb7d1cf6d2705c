package dataset

import "time"

// WeekStart returns the Monday at local midnight on or before d. Calling it
// on its own result returns the same date, so derived week keys are stable.
func WeekStart(d time.Time) time.Time {
	y, m, day := d.Date()
	t := time.Date(y, m, day, 0, 0, 0, 0, d.Location())
	if wd := t.Weekday(); wd == time.Sunday {
		t = t.AddDate(0, 0, -6)
	} else {
		t = t.AddDate(0, 0, -int(wd-time.Monday))
	}
	return t
}

// WeekLabel formats a week start the way the chart axes show it (M/D/YYYY,
// no leading zeros).
func WeekLabel(d time.Time) string {
	return d.Format("1/2/2006")
}
