// Package aggregate folds normalized activity records into the per-week
// series the dashboard charts consume. Everything here is a pure projection:
// equal inputs produce identical output, nothing reads the clock, and the
// source record slice is never mutated.
package aggregate

import (
	"math"
	"sort"
	"time"

	"dealscope/pkg/dataset"
)

// Filter narrows records and the week window before aggregation. Zero values
// mean "everyone" / "all time". Month follows the dashboard dropdown and is
// only honored when Year is set.
type Filter struct {
	Associate string
	Year      int
	Month     time.Month
}

// ErrorKind selects which flag an error-rate series counts.
type ErrorKind int

const (
	AssociateErrors ErrorKind = iota
	TeamErrors
)

// RatePoint is one week of an error-rate series. Rate is a percentage
// rounded to one decimal; weeks in the window with no matching rows get an
// explicit zero rather than a divide-by-zero.
type RatePoint struct {
	Week      string    `json:"week"`
	WeekStart time.Time `json:"weekStart"`
	Total     int       `json:"total"`
	Errors    int       `json:"errors"`
	Rate      float64   `json:"rate"`
}

// TypePoint is one week of the error-type breakdown.
type TypePoint struct {
	Week      string         `json:"week"`
	WeekStart time.Time      `json:"weekStart"`
	Counts    map[string]int `json:"counts"`
}

// DurationPoint is one week of averaged completion time, rounded to two
// decimals.
type DurationPoint struct {
	Week      string    `json:"week"`
	WeekStart time.Time `json:"weekStart"`
	Count     int       `json:"count"`
	Average   float64   `json:"average"`
}

// DurationUpdate is a single record's completion time, one point per update,
// annotated with its week for axis labeling.
type DurationUpdate struct {
	Week       string    `json:"week"`
	OccurredOn time.Time `json:"occurredOn"`
	Associate  string    `json:"associate"`
	ItemLabel  string    `json:"itemLabel,omitempty"`
	Minutes    float64   `json:"minutes"`
}

// filterRecords applies the associate part of the filter.
func filterRecords(records []dataset.ActivityRecord, f Filter) []dataset.ActivityRecord {
	if f.Associate == "" {
		return records
	}
	out := make([]dataset.ActivityRecord, 0, len(records))
	for _, r := range records {
		if r.Associate == f.Associate {
			out = append(out, r)
		}
	}
	return out
}

func inWindow(f Filter, week time.Time) bool {
	if f.Year == 0 {
		return true
	}
	if week.Year() != f.Year {
		return false
	}
	if f.Month == 0 {
		return true
	}
	return week.Month() == f.Month
}

// WeekWindow returns the ordered distinct week starts present in records,
// narrowed by the filter's year/month. The associate filter deliberately
// does not shrink the window: an associate's quiet weeks still appear in the
// charts at a zero rate.
func WeekWindow(records []dataset.ActivityRecord, f Filter) []time.Time {
	seen := make(map[time.Time]bool)
	var weeks []time.Time
	for _, r := range records {
		if seen[r.WeekStart] || !inWindow(f, r.WeekStart) {
			continue
		}
		seen[r.WeekStart] = true
		weeks = append(weeks, r.WeekStart)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// ErrorRateSeries groups filtered records by week and computes the error
// percentage per window week. The denominator is one count per source row
// (fan index zero), not per fanned-out error tag — ErrorTypeSeries is
// deliberately denominated the other way.
func ErrorRateSeries(records []dataset.ActivityRecord, window []time.Time, f Filter, kind ErrorKind) []RatePoint {
	type bucket struct{ total, errors int }
	byWeek := make(map[time.Time]*bucket)
	for _, r := range filterRecords(records, f) {
		if r.FanIndex != 0 {
			continue
		}
		b := byWeek[r.WeekStart]
		if b == nil {
			b = &bucket{}
			byWeek[r.WeekStart] = b
		}
		b.total++
		flagged := r.HasAssociateError
		if kind == TeamErrors {
			flagged = r.HasTeamError
		}
		if flagged {
			b.errors++
		}
	}

	out := make([]RatePoint, 0, len(window))
	for _, w := range window {
		p := RatePoint{Week: dataset.WeekLabel(w), WeekStart: w}
		if b := byWeek[w]; b != nil && b.total > 0 {
			p.Total = b.total
			p.Errors = b.errors
			p.Rate = round1(float64(b.errors) / float64(b.total) * 100)
		}
		out = append(out, p)
	}
	return out
}

// ErrorTypeSeries counts error-type occurrences per week, restricted to
// records flagged with an associate error. It consumes the fanned-out
// records, so a row listing two types contributes two counts here while
// counting once in the rate denominator; that asymmetry is how the source
// sheets are read and is covered by tests, not something to "fix".
func ErrorTypeSeries(records []dataset.ActivityRecord, window []time.Time, f Filter) []TypePoint {
	byWeek := make(map[time.Time]map[string]int)
	for _, r := range filterRecords(records, f) {
		if !r.HasAssociateError {
			continue
		}
		counts := byWeek[r.WeekStart]
		if counts == nil {
			counts = make(map[string]int)
			byWeek[r.WeekStart] = counts
		}
		counts[r.ErrorType]++
	}

	out := make([]TypePoint, 0, len(window))
	for _, w := range window {
		counts := byWeek[w]
		if counts == nil {
			counts = map[string]int{}
		}
		out = append(out, TypePoint{Week: dataset.WeekLabel(w), WeekStart: w, Counts: counts})
	}
	return out
}

// DurationSeries averages completion minutes per window week. Records
// without a parsed duration are excluded entirely, they do not drag the
// average toward zero. Row-denominated like the rate series.
func DurationSeries(records []dataset.ActivityRecord, window []time.Time, f Filter) []DurationPoint {
	type bucket struct {
		sum   float64
		count int
	}
	byWeek := make(map[time.Time]*bucket)
	for _, r := range filterRecords(records, f) {
		if r.FanIndex != 0 || r.CompletionMinutes == nil {
			continue
		}
		b := byWeek[r.WeekStart]
		if b == nil {
			b = &bucket{}
			byWeek[r.WeekStart] = b
		}
		b.sum += *r.CompletionMinutes
		b.count++
	}

	out := make([]DurationPoint, 0, len(window))
	for _, w := range window {
		p := DurationPoint{Week: dataset.WeekLabel(w), WeekStart: w}
		if b := byWeek[w]; b != nil && b.count > 0 {
			p.Count = b.count
			p.Average = round2(b.sum / float64(b.count))
		}
		out = append(out, p)
	}
	return out
}

// DurationUpdates preserves one point per record with a duration, sorted
// chronologically (stable, so equal dates keep feed order), limited to the
// window weeks.
func DurationUpdates(records []dataset.ActivityRecord, window []time.Time, f Filter) []DurationUpdate {
	inWin := make(map[time.Time]bool, len(window))
	for _, w := range window {
		inWin[w] = true
	}

	var out []DurationUpdate
	for _, r := range filterRecords(records, f) {
		if r.FanIndex != 0 || r.CompletionMinutes == nil || !inWin[r.WeekStart] {
			continue
		}
		out = append(out, DurationUpdate{
			Week:       dataset.WeekLabel(r.WeekStart),
			OccurredOn: r.OccurredOn,
			Associate:  r.Associate,
			ItemLabel:  r.ItemLabel,
			Minutes:    *r.CompletionMinutes,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredOn.Before(out[j].OccurredOn) })
	return out
}

// Associates returns the distinct associate names, sorted.
func Associates(records []dataset.ActivityRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !seen[r.Associate] {
			seen[r.Associate] = true
			out = append(out, r.Associate)
		}
	}
	sort.Strings(out)
	return out
}

// Years returns the distinct week-start years, newest first, matching the
// dashboard's year dropdown.
func Years(records []dataset.ActivityRecord) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range records {
		y := r.WeekStart.Year()
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// Months returns the distinct week-start months within year, ascending.
func Months(records []dataset.ActivityRecord, year int) []time.Month {
	seen := make(map[time.Month]bool)
	var out []time.Month
	for _, r := range records {
		if r.WeekStart.Year() != year {
			continue
		}
		m := r.WeekStart.Month()
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
