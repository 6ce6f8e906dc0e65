package date

import (
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestOf(t *testing.T) {
	morning := time.Date(2025, time.March, 4, 0, 0, 1, 0, time.Local)
	night := time.Date(2025, time.March, 4, 23, 59, 59, 0, time.Local)
	if Of(morning) != Of(night) {
		t.Errorf("Of(%v) = %v, Of(%v) = %v, want the same day", morning, Of(morning), night, Of(night))
	}
	if got, want := Of(night.Add(2*time.Second)), New(2025, time.March, 5); got != want {
		t.Errorf("Of(midnight) = %v, want %v", got, want)
	}
}

func TestStartEnd(t *testing.T) {
	d := New(2025, time.December, 31)
	if got := Of(d.Start()); got != d {
		t.Errorf("Of(Start()) = %v, want %v", got, d)
	}
	if got := Of(d.End()); got != d {
		t.Errorf("Of(End()) = %v, want %v", got, d)
	}
	if got := Of(d.End().Add(time.Nanosecond)); got != New(2026, time.January, 1) {
		t.Errorf("Of(End()+1ns) = %v, want 2026-01-01", got)
	}
}

func TestParse(t *testing.T) {
	today := Today()
	testCases := []struct {
		in   string
		want Date
	}{
		{"2025-07-01", New(2025, time.July, 1)},
		{"2025-7-1", New(2025, time.July, 1)},
		{"0d", today},
		{"-1d", today.Add(-1)},
		{"+1w", today.Add(7)},
		{"31/12/2024", New(2024, time.December, 31)},
		{"1/2", New(today.Year(), time.February, 1)},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	for _, bad := range []string{"", "yesterday", "32/01/2025", "2025-13-01"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) expected an error", bad)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := New(2025, time.September, 8)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(b) != `"2025-09-08"` {
		t.Errorf("MarshalJSON() = %s", b)
	}
	var got Date
	if err := got.UnmarshalJSON([]byte(`"2025-9-8"`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if got != d {
		t.Errorf("UnmarshalJSON() = %v, want %v", got, d)
	}
	if err := got.UnmarshalJSON([]byte(`"-1d"`)); err == nil {
		t.Errorf("UnmarshalJSON() accepted a relative date")
	}
}

func TestRangeContains(t *testing.T) {
	from, to := New(2025, time.May, 10), New(2025, time.May, 12)
	r := Between(to, from)
	if r.From != from || r.To != to {
		t.Fatalf("Between() did not order boundaries: %v", r)
	}
	for d, want := range map[Date]bool{
		from.Add(-1): false,
		from:         true,
		from.Add(1):  true,
		to:           true,
		to.Add(1):    false,
	} {
		if got := r.Contains(d); got != want {
			t.Errorf("%v.Contains(%v) = %v, want %v", r.Identifier(), d, got, want)
		}
	}
	if !(Range{}).Contains(from) {
		t.Errorf("zero range must contain every date")
	}
	if !(Range{From: from}).Contains(to.Add(100)) {
		t.Errorf("open ended range must contain later dates")
	}
}
