package timeutil

import (
	"testing"

	"campusbus/internal/domain"
)

func TestToMinuteOfDayRoundTrip(t *testing.T) {
	cases := []struct {
		clock  string
		minute int
	}{
		{"00:00", 0},
		{"00:15", 15},
		{"06:00", 360},
		{"08:30", 510},
		{"12:00", 720},
		{"23:59", 1439},
	}

	for _, tc := range cases {
		got, err := ToMinuteOfDay(tc.clock)
		if err != nil {
			t.Fatalf("ToMinuteOfDay(%q): %v", tc.clock, err)
		}
		if got != tc.minute {
			t.Errorf("ToMinuteOfDay(%q) = %d, want %d", tc.clock, got, tc.minute)
		}
		if back := MinuteToClock(got); back != tc.clock {
			t.Errorf("MinuteToClock(%d) = %q, want %q", got, back, tc.clock)
		}
	}
}

func TestToMinuteOfDayRejectsMalformed(t *testing.T) {
	for _, clock := range []string{"", "8:30", "08:3", "24:00", "12:60", "ab:cd", "08-30", "08:30 ", "0830"} {
		if _, err := ToMinuteOfDay(clock); err == nil {
			t.Errorf("ToMinuteOfDay(%q) accepted malformed input", clock)
		}
	}
}

func TestNormalizeForOrderingRollover(t *testing.T) {
	night, err := NormalizeForOrdering("00:15")
	if err != nil {
		t.Fatal(err)
	}
	evening, err := NormalizeForOrdering("23:50")
	if err != nil {
		t.Fatal(err)
	}
	if night <= evening {
		t.Errorf("00:15 should order after 23:50: got %d <= %d", night, evening)
	}

	morning, _ := NormalizeForOrdering("06:00")
	if morning != 360 {
		t.Errorf("06:00 is on the cutoff and must not shift, got %d", morning)
	}
	beforeCutoff, _ := NormalizeForOrdering("05:59")
	if beforeCutoff != 359+MinutesPerDay {
		t.Errorf("05:59 must shift by a full day, got %d", beforeCutoff)
	}
}

func TestSortByDeparture(t *testing.T) {
	input := []domain.Schedule{
		{Source: domain.SourceShuttle, Time: "00:15"},
		{Source: domain.SourceAuthority, Time: "08:00"},
		{Source: domain.SourceShuttle, Time: "23:50"},
		{Source: domain.SourceAuthority, Time: "06:00"},
	}

	sorted := SortByDeparture(input)

	want := []string{"06:00", "08:00", "23:50", "00:15"}
	for i, w := range want {
		if sorted[i].Time != w {
			t.Fatalf("position %d: got %q, want %q (full order %v)", i, sorted[i].Time, w, times(sorted))
		}
	}

	// Input must not be reordered in place.
	if input[0].Time != "00:15" {
		t.Error("SortByDeparture mutated its input")
	}

	// Idempotence: sorting the sorted sequence is a no-op.
	again := SortByDeparture(sorted)
	for i := range sorted {
		if again[i] != sorted[i] {
			t.Fatalf("sort not idempotent at %d: %v vs %v", i, again[i], sorted[i])
		}
	}
}

func TestSortByDepartureStable(t *testing.T) {
	input := []domain.Schedule{
		{Source: domain.SourceAuthority, Time: "08:00", Direction: domain.DirectionCampusToMetro},
		{Source: domain.SourceShuttle, Time: "08:00", Direction: domain.DirectionMetroToCampus},
	}
	sorted := SortByDeparture(input)
	if sorted[0].Source != domain.SourceAuthority || sorted[1].Source != domain.SourceShuttle {
		t.Error("equal times must keep input order")
	}
}

func TestMinutesUntil(t *testing.T) {
	cases := []struct {
		name    string
		current int
		target  string
		want    int
	}{
		{"same side of day", 495, "08:30", 15}, // 08:15 -> 08:30
		{"urgent window", 505, "08:30", 5},     // 08:25 -> 08:30
		{"across midnight", 1435, "00:15", 20}, // 23:55 -> 00:15
		{"already passed", 510, "08:00", -30},  // 08:30 -> 08:00
		{"night to night", 10, "00:30", 20},    // 00:10 -> 00:30
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MinutesUntil(tc.current, tc.target)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("MinutesUntil(%d, %q) = %d, want %d", tc.current, tc.target, got, tc.want)
			}
		})
	}
}

func TestFormatWait(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "0 min"},
		{5, "5 min"},
		{59, "59 min"},
		{60, "1 h"},
		{65, "1 h 5 min"},
		{125, "2 h 5 min"},
	}
	for _, tc := range cases {
		if got := FormatWait(tc.minutes); got != tc.want {
			t.Errorf("FormatWait(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func times(schedules []domain.Schedule) []string {
	out := make([]string, len(schedules))
	for i, s := range schedules {
		out[i] = s.Time
	}
	return out
}
