package dataset

import "testing"

func TestParseDurationMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"45", 45},
		{"45.5", 45.5},
		{"0", 0},
		{"1:30", 1.5},       // MM:SS
		{"1:02:30", 62.5},   // H:MM:SS
		{"0:00", 0},
		{"2:00:00", 120},
		{" 10 ", 10},
	}
	for _, c := range cases {
		got, ok := ParseDurationMinutes(c.in)
		if !ok {
			t.Fatalf("expected %q to parse", c.in)
		}
		if got != c.want {
			t.Fatalf("ParseDurationMinutes(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseDurationMinutes_Invalid(t *testing.T) {
	for _, s := range []string{"", "   ", "abc", "1:xx", "1:2:3:4", ":", "1:"} {
		if _, ok := ParseDurationMinutes(s); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestParseDurationMinutes_ZeroIsValid(t *testing.T) {
	// A duration of exactly zero is real data and must be distinguishable
	// from a blank cell.
	got, ok := ParseDurationMinutes("0")
	if !ok || got != 0 {
		t.Fatalf("expected (0, true), got (%v, %v)", got, ok)
	}
	if _, ok := ParseDurationMinutes(""); ok {
		t.Fatal("expected blank cell to be rejected")
	}
}
