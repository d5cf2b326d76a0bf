package timeutil

import (
	"fmt"
	"sort"

	"campusbus/internal/domain"
)

const (
	// MinutesPerDay is one service day in minutes.
	MinutesPerDay = 24 * 60

	// RolloverCutoff is the minute-of-day below which a departure is
	// treated as belonging to the previous service day. Night services
	// log their last trips as 00:xx-05:xx of the next calendar day;
	// without the shift those trips would sort before the first morning
	// trip. Fixed policy, not configurable.
	RolloverCutoff = 6 * 60
)

// ToMinuteOfDay parses a strict HH:MM clock string into [0, 1439].
func ToMinuteOfDay(clock string) (int, error) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, fmt.Errorf("invalid clock time %q", clock)
	}
	h, ok1 := twoDigits(clock[0], clock[1])
	m, ok2 := twoDigits(clock[3], clock[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", clock)
	}
	return h*60 + m, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// MinuteToClock formats a minute-of-day back into HH:MM. It is the
// inverse of ToMinuteOfDay for values in [0, 1439].
func MinuteToClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// NormalizeMinute shifts early-morning minutes past the end of the day so
// that night trips order after the late-evening ones. Ordering only; it
// never advances a calendar day.
func NormalizeMinute(minute int) int {
	if minute < RolloverCutoff {
		return minute + MinutesPerDay
	}
	return minute
}

// NormalizeForOrdering parses a clock string and applies the rollover
// shift.
func NormalizeForOrdering(clock string) (int, error) {
	minute, err := ToMinuteOfDay(clock)
	if err != nil {
		return 0, err
	}
	return NormalizeMinute(minute), nil
}

// SortByDeparture returns a new slice sorted ascending by rollover-aware
// departure time. The sort is stable: equal times keep their input order.
// Input records are assumed to carry valid times (adapter invariant); a
// record that somehow does not sorts last.
func SortByDeparture(schedules []domain.Schedule) []domain.Schedule {
	type keyed struct {
		key int
		s   domain.Schedule
	}
	items := make([]keyed, len(schedules))
	for i, s := range schedules {
		key, err := NormalizeForOrdering(s.Time)
		if err != nil {
			key = 2 * MinutesPerDay
		}
		items[i] = keyed{key: key, s: s}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].key < items[j].key
	})

	sorted := make([]domain.Schedule, len(items))
	for i, it := range items {
		sorted[i] = it.s
	}
	return sorted
}

// MinutesUntil computes how many minutes remain from the current
// minute-of-day to the target clock time, with the rollover shift applied
// to both operands. A negative result means the target already passed
// today; it is not reinterpreted as tomorrow.
func MinutesUntil(currentMinute int, target string) (int, error) {
	targetNorm, err := NormalizeForOrdering(target)
	if err != nil {
		return 0, err
	}
	return targetNorm - NormalizeMinute(currentMinute), nil
}

// FormatWait renders a minute count for display: "5 min", "1 h", "1 h 5 min".
func FormatWait(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%d h", h)
	}
	return fmt.Sprintf("%d h %d min", h, m)
}
