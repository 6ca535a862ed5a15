package ranges

import (
	"testing"
	"time"

	"github.com/panelcast/panelcast/internal/panel"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Frequency
		ok   bool
	}{
		{"1d", Frequency{1, UnitDay}, true},
		{"15m", Frequency{15, UnitMinute}, true},
		{"1mo", Frequency{1, UnitMonth}, true},
		{"1i", Frequency{1, UnitIndex}, true},
		{"1bd", Frequency{1, UnitBusinessDay}, true},
		{"2q", Frequency{2, UnitQuarter}, true},
		{"0d", Frequency{}, false},
		{"d", Frequency{}, false},
		{"1x", Frequency{}, false},
		{"", Frequency{}, false},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("Parse(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("Parse(%q) should fail", tt.in)
		}
	}
}

func TestFrequencyString_RoundTrip(t *testing.T) {
	for _, s := range []string{"1d", "15m", "1mo", "3h", "1bd", "1i"} {
		f, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if f.String() != s {
			t.Errorf("String() = %q, want %q", f.String(), s)
		}
	}
}

func TestFutureRange_Daily(t *testing.T) {
	last := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	times, err := FutureRange(last, Frequency{1, UnitDay}, 3)
	if err != nil {
		t.Fatalf("FutureRange failed: %v", err)
	}
	want := []time.Time{
		time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	}
	for i := range want {
		if !times[i].Equal(want[i]) {
			t.Errorf("step %d: got %v, want %v", i, times[i], want[i])
		}
	}
}

func TestFutureRange_MonthEndAware(t *testing.T) {
	last := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	times, err := FutureRange(last, Frequency{1, UnitMonth}, 2)
	if err != nil {
		t.Fatalf("FutureRange failed: %v", err)
	}
	// AddDate normalization: Jan 31 + 1mo = Mar 2 (2024 is a leap year).
	if times[0].Month() != time.March {
		t.Errorf("expected normalized month arithmetic, got %v", times[0])
	}
}

func TestFutureRange_BusinessDaySkipsWeekend(t *testing.T) {
	// Friday 2024-03-01.
	last := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	times, err := FutureRange(last, Frequency{1, UnitBusinessDay}, 3)
	if err != nil {
		t.Fatalf("FutureRange failed: %v", err)
	}
	want := []int{4, 5, 6} // Mon, Tue, Wed
	for i, day := range want {
		if times[i].Day() != day {
			t.Errorf("step %d: got day %d, want %d", i, times[i].Day(), day)
		}
		wd := times[i].Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			t.Errorf("step %d fell on weekend: %v", i, times[i])
		}
	}
}

func TestFutureRange_InvalidInputs(t *testing.T) {
	last := time.Now()
	if _, err := FutureRange(last, Frequency{1, UnitDay}, 0); err == nil {
		t.Error("expected error for zero horizon")
	}
	if _, err := FutureRange(last, Frequency{0, UnitDay}, 3); err == nil {
		t.Error("expected error for invalid frequency")
	}
}

func TestFutureGrid_PerEntityAnchoring(t *testing.T) {
	lastTimes := map[string]time.Time{
		"a": time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		"b": time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
	}
	grid, err := FutureGrid([]string{"a", "b"}, lastTimes, Frequency{1, UnitDay}, 2)
	if err != nil {
		t.Fatalf("FutureGrid failed: %v", err)
	}
	if len(grid) != 2 {
		t.Fatalf("expected 2 entity ranges, got %d", len(grid))
	}
	if grid[0].Times[0].Day() != 11 {
		t.Errorf("entity a grid should anchor to its own history, got %v", grid[0].Times[0])
	}
	if grid[1].Times[0].Day() != 21 {
		t.Errorf("entity b grid should anchor to its own history, got %v", grid[1].Times[0])
	}

	keys := grid.Keys()
	if len(keys) != 4 || keys[0].Entity != "a" || keys[2].Entity != "b" {
		t.Errorf("unexpected grid keys: %v", keys)
	}
}

func TestFutureGrid_MissingEntity(t *testing.T) {
	_, err := FutureGrid([]string{"a"}, map[string]time.Time{}, Frequency{1, UnitDay}, 1)
	if err == nil {
		t.Error("expected error for entity with no last timestamp")
	}
}

func TestFutureRange_IndexFrequency(t *testing.T) {
	last := panel.IndexTime(11)
	times, err := FutureRange(last, Frequency{1, UnitIndex}, 3)
	if err != nil {
		t.Fatalf("FutureRange failed: %v", err)
	}
	for i, ts := range times {
		if panel.TimeIndex(ts) != int64(12+i) {
			t.Errorf("step %d: got index %d, want %d", i, panel.TimeIndex(ts), 12+i)
		}
	}
}
