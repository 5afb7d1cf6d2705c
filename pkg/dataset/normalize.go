package dataset

import "strings"

// Truthy reports whether a hand-entered flag cell marks an error. The sheets
// contain TRUE/true/yes/1 variants depending on who filled the row in.
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// NormalizeRow converts one raw feed row into zero or more ActivityRecords.
// Rows without an associate or a parseable date are manual-entry noise and
// produce nothing. A row listing several comma-separated error types fans
// out into one record per type, all other fields identical.
func NormalizeRow(cm ColumnMap, row []string) []ActivityRecord {
	associate := cell(row, cm.Associate)
	if associate == "" {
		return nil
	}
	occurred, ok := ParseCalendarDate(cell(row, cm.Date))
	if !ok {
		return nil
	}

	base := ActivityRecord{
		Associate:         associate,
		OccurredOn:        occurred,
		WeekStart:         WeekStart(occurred),
		HasAssociateError: Truthy(cell(row, cm.AssociateError)),
		HasTeamError:      Truthy(cell(row, cm.TeamError)),
		ItemLabel:         cell(row, cm.ItemName),
	}
	if minutes, ok := ParseDurationMinutes(cell(row, cm.Duration)); ok {
		m := minutes
		base.CompletionMinutes = &m
	}

	rawTypes := cell(row, cm.ErrorType)
	if rawTypes == "" || strings.EqualFold(rawTypes, ErrorTypeNone) {
		base.ErrorType = ErrorTypeNone
		return []ActivityRecord{base}
	}

	tags := strings.Split(rawTypes, ",")
	out := make([]ActivityRecord, 0, len(tags))
	for i, tag := range tags {
		rec := base
		rec.FanIndex = i
		rec.ErrorType = strings.TrimSpace(tag)
		if rec.ErrorType == "" {
			rec.ErrorType = ErrorTypeNone
		}
		out = append(out, rec)
	}
	return out
}

// NormalizeTable runs the row normalizer over every row of a feed table.
// Malformed rows are dropped silently; a table where nothing normalizes is
// still a valid (empty) dataset.
func NormalizeTable(cm ColumnMap, rows [][]string) []ActivityRecord {
	var out []ActivityRecord
	for _, row := range rows {
		out = append(out, NormalizeRow(cm, row)...)
	}
	return out
}
