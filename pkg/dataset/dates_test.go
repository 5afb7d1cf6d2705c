package dataset

import (
	"testing"
	"time"
)

func TestParseCalendarDate_USPattern(t *testing.T) {
	got, ok := ParseCalendarDate("1/1/2024")
	if !ok {
		t.Fatal("expected 1/1/2024 to parse")
	}
	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseCalendarDate_TwoDigitYear(t *testing.T) {
	got, ok := ParseCalendarDate("3/15/24")
	if !ok {
		t.Fatal("expected 3/15/24 to parse")
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 15 {
		t.Fatalf("expected 2024-03-15, got %v", got)
	}
}

func TestParseCalendarDate_DashSeparator(t *testing.T) {
	got, ok := ParseCalendarDate("12-31-2023")
	if !ok {
		t.Fatal("expected 12-31-2023 to parse")
	}
	if got.Month() != time.December || got.Day() != 31 {
		t.Fatalf("expected December 31, got %v", got)
	}
}

func TestParseCalendarDate_ISO(t *testing.T) {
	got, ok := ParseCalendarDate("2024-02-05")
	if !ok {
		t.Fatal("expected ISO date to parse")
	}
	if got.Month() != time.February || got.Day() != 5 {
		t.Fatalf("expected February 5, got %v", got)
	}
}

func TestParseCalendarDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "  ", "not a date", "13/40/2024", "0/5/2024", "2/30/2024", "1/2/3/4"} {
		if _, ok := ParseCalendarDate(s); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestParseCalendarDate_MidnightLocal(t *testing.T) {
	got, _ := ParseCalendarDate("6/7/2024")
	h, m, s := got.Clock()
	if h != 0 || m != 0 || s != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
	if got.Location() != time.Local {
		t.Fatalf("expected local time, got %v", got.Location())
	}
}
