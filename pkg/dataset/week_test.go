package dataset

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestWeekStart_MondayMapsToItself(t *testing.T) {
	monday := date(2024, time.January, 1) // Jan 1 2024 is a Monday
	if got := WeekStart(monday); !got.Equal(monday) {
		t.Fatalf("expected %v, got %v", monday, got)
	}
}

func TestWeekStart_SundayMapsBackSixDays(t *testing.T) {
	sunday := date(2024, time.January, 7)
	want := date(2024, time.January, 1)
	if got := WeekStart(sunday); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWeekStart_YearBoundary(t *testing.T) {
	// Jan 3 2025 is a Friday; its week starts Monday Dec 30 2024.
	friday := date(2025, time.January, 3)
	want := date(2024, time.December, 30)
	if got := WeekStart(friday); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWeekStart_AlwaysMondayAndIdempotent(t *testing.T) {
	d := date(2023, time.November, 1)
	for i := 0; i < 500; i++ {
		ws := WeekStart(d)
		if ws.Weekday() != time.Monday {
			t.Fatalf("WeekStart(%v) = %v, not a Monday", d, ws)
		}
		if ws.After(d) {
			t.Fatalf("WeekStart(%v) = %v is after the input", d, ws)
		}
		if again := WeekStart(ws); !again.Equal(ws) {
			t.Fatalf("WeekStart not idempotent: %v -> %v", ws, again)
		}
		h, m, s := ws.Clock()
		if h != 0 || m != 0 || s != 0 {
			t.Fatalf("WeekStart(%v) = %v, not midnight", d, ws)
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestWeekStart_StripsTimeOfDay(t *testing.T) {
	noon := time.Date(2024, time.June, 5, 12, 30, 45, 0, time.Local) // Wednesday
	want := date(2024, time.June, 3)
	if got := WeekStart(noon); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWeekLabel(t *testing.T) {
	if got := WeekLabel(date(2024, time.January, 1)); got != "1/1/2024" {
		t.Fatalf("expected 1/1/2024, got %s", got)
	}
	if got := WeekLabel(date(2024, time.December, 30)); got != "12/30/2024" {
		t.Fatalf("expected 12/30/2024, got %s", got)
	}
}
