// Package resolver computes the next upcoming departure per direction
// against an explicit wall-clock instant. It never errors: having no
// departure left today is a normal outcome.
package resolver

import (
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/timeutil"
)

// UrgentThreshold marks a departure as urgent when it leaves within this
// many minutes.
const UrgentThreshold = 10

// NextDeparture is the resolver's answer for one direction.
type NextDeparture struct {
	Direction    domain.Direction `json:"direction"`
	Found        bool             `json:"found"`
	Time         string           `json:"time,omitempty"`
	MinutesUntil int              `json:"minutesUntil,omitempty"`
	Urgent       bool             `json:"urgent,omitempty"`
	Wait         string           `json:"wait,omitempty"`
	// NextDayType is the bucket to consult when nothing remains today.
	// It names a bucket, not a date.
	NextDayType domain.DayType `json:"nextDayType,omitempty"`
}

// TodayDayType classifies a wall-clock instant in the three-way taxonomy.
func TodayDayType(now time.Time) domain.DayType {
	switch now.Weekday() {
	case time.Saturday:
		return domain.DayTypeSaturday
	case time.Sunday:
		return domain.DayTypeSunday
	default:
		return domain.DayTypeWeekday
	}
}

// rolloverDayType is the bucket to show once today's departures are
// exhausted. The three-way taxonomy makes this more than a weekday/weekend
// toggle: only Friday rolls into the weekend, Saturday rolls to Sunday,
// Sunday rolls back to the weekday timetable.
func rolloverDayType(now time.Time) domain.DayType {
	switch now.Weekday() {
	case time.Friday:
		return domain.DayTypeSaturday
	case time.Saturday:
		return domain.DayTypeSunday
	case time.Sunday:
		return domain.DayTypeWeekday
	default:
		return domain.DayTypeWeekday
	}
}

// runsOn reports whether a record's timetable covers the given day type.
// Authority records carry the three-way detail and match it exactly;
// shuttle records only know the two-way bucket.
func runsOn(s domain.Schedule, today domain.DayType) bool {
	if s.DayType != "" {
		return s.DayType == today
	}
	return s.IsWeekend == today.IsWeekend()
}

// Next finds the first departure for dir strictly after now within today's
// day-type bucket. schedules must already be sorted by departure
// (aggregator contract); records are only read, never mutated.
func Next(schedules []domain.Schedule, dir domain.Direction, now time.Time) NextDeparture {
	return NextForDay(schedules, dir, now, TodayDayType(now))
}

// NextForDay resolves against an explicit day-type bucket instead of the
// one now implies. The clock still comes from now.
func NextForDay(schedules []domain.Schedule, dir domain.Direction, now time.Time, today domain.DayType) NextDeparture {
	currentMinute := now.Hour()*60 + now.Minute()

	for _, s := range schedules {
		if s.Direction != dir || !runsOn(s, today) {
			continue
		}
		wait, err := timeutil.MinutesUntil(currentMinute, s.Time)
		if err != nil {
			// Times are validated at the adapter boundary.
			continue
		}
		if wait <= 0 {
			// Departed, or departing this very minute.
			continue
		}

		return NextDeparture{
			Direction:    dir,
			Found:        true,
			Time:         s.Time,
			MinutesUntil: wait,
			Urgent:       wait <= UrgentThreshold,
			Wait:         timeutil.FormatWait(wait),
		}
	}

	return NextDeparture{
		Direction:   dir,
		NextDayType: rolloverDayType(now),
	}
}

// NextAll resolves every canonical direction at once.
func NextAll(schedules []domain.Schedule, now time.Time) map[domain.Direction]NextDeparture {
	return NextAllForDay(schedules, now, TodayDayType(now))
}

// NextAllForDay resolves every canonical direction against an explicit
// day-type bucket.
func NextAllForDay(schedules []domain.Schedule, now time.Time, today domain.DayType) map[domain.Direction]NextDeparture {
	out := make(map[domain.Direction]NextDeparture, len(domain.Directions))
	for _, dir := range domain.Directions {
		out[dir] = NextForDay(schedules, dir, now, today)
	}
	return out
}
