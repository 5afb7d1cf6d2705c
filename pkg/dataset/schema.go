package dataset

import (
	"fmt"
	"strings"
)

// Schema names the logical columns of a processing-log feed. Values are
// header names as the sheet spells them; resolution against the actual
// header row is case-insensitive and whitespace-trimmed, so per-feed
// overrides are only needed when the wording differs entirely (the error
// type vocabulary varies across sheets).
type Schema struct {
	Associate      string
	Date           string
	AssociateError string
	TeamError      string
	ErrorType      string
	Duration       string
	ItemName       string
}

// DefaultSchema matches the column names the deal-processing sheet uses.
func DefaultSchema() Schema {
	return Schema{
		Associate:      "Associate",
		Date:           "Date",
		AssociateError: "Associate Error T/F",
		TeamError:      "Team Error T/F",
		ErrorType:      "Error Type",
		Duration:       "Completion Time",
		ItemName:       "Deal Name",
	}
}

// ColumnMap holds resolved header indexes for the logical schema. Optional
// columns that the feed doesn't carry stay at -1.
type ColumnMap struct {
	Associate      int
	Date           int
	AssociateError int
	TeamError      int
	ErrorType      int
	Duration       int
	ItemName       int
}

// canonicalName collapses case and internal whitespace so "  error TYPE "
// matches "Error Type".
func canonicalName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ResolveColumns matches the logical schema against a feed's header row.
// Associate and Date are required: without them no row can normalize, so a
// header missing either is treated as a malformed table. The item-name
// column falls back to the first column when nothing matches, since every
// sheet leads with the deal/CLO name.
func ResolveColumns(schema Schema, header []string) (ColumnMap, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := canonicalName(name)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	lookup := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := index[canonicalName(name)]; ok {
			return i
		}
		return -1
	}

	cm := ColumnMap{
		Associate:      lookup(schema.Associate),
		Date:           lookup(schema.Date),
		AssociateError: lookup(schema.AssociateError),
		TeamError:      lookup(schema.TeamError),
		ErrorType:      lookup(schema.ErrorType),
		Duration:       lookup(schema.Duration),
		ItemName:       lookup(schema.ItemName),
	}

	if cm.Associate < 0 {
		return cm, fmt.Errorf("header has no %q column", schema.Associate)
	}
	if cm.Date < 0 {
		return cm, fmt.Errorf("header has no %q column", schema.Date)
	}
	if cm.ItemName < 0 && len(header) > 0 {
		cm.ItemName = 0
	}
	return cm, nil
}
