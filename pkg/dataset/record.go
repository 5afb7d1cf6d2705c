package dataset

import "time"

// ErrorTypeNone is the sentinel error type for rows that report no error.
const ErrorTypeNone = "None"

// ActivityRecord is one normalized row from a processing-log feed.
//
// A source row that lists several comma-separated error types is fanned out
// into one record per type. Fanned-out records share every field except
// ErrorType and FanIndex; FanIndex 0 identifies the source row itself, which
// is what row-denominated aggregates (error rates, durations) count.
type ActivityRecord struct {
	Associate         string    `json:"associate"`
	OccurredOn        time.Time `json:"occurredOn"`
	WeekStart         time.Time `json:"weekStart"`
	HasAssociateError bool      `json:"hasAssociateError"`
	HasTeamError      bool      `json:"hasTeamError"`
	ErrorType         string    `json:"errorType"`
	FanIndex          int       `json:"fanIndex"`
	CompletionMinutes *float64  `json:"completionMinutes,omitempty"`
	ItemLabel         string    `json:"itemLabel,omitempty"`
}
