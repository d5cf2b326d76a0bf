package domain

// Source identifies which upstream feed a schedule record came from.
type Source string

const (
	SourceAuthority Source = "iett"
	SourceShuttle   Source = "shuttle"
)

// Direction is the canonical travel direction along the corridor.
type Direction string

const (
	DirectionCampusToMetro Direction = "campus-to-metro"
	DirectionMetroToCampus Direction = "metro-to-campus"
)

// Directions lists all canonical directions in display order.
var Directions = []Direction{DirectionCampusToMetro, DirectionMetroToCampus}

// ParseDirection resolves a query-string value to a canonical direction.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirectionCampusToMetro:
		return DirectionCampusToMetro, true
	case DirectionMetroToCampus:
		return DirectionMetroToCampus, true
	}
	return "", false
}

// DayType preserves the authority feed's three-way service-day split.
// Shuttle records only carry the two-way weekday/weekend split and leave
// this field empty.
type DayType string

const (
	DayTypeWeekday  DayType = "weekday"
	DayTypeSaturday DayType = "saturday"
	DayTypeSunday   DayType = "sunday"
)

// IsWeekend reports whether the day type falls in the weekend bucket.
func (d DayType) IsWeekend() bool {
	return d == DayTypeSaturday || d == DayTypeSunday
}

// Schedule is the canonical departure record. All downstream logic works on
// this shape regardless of which upstream produced it. Records are built
// once by an adapter and never mutated afterwards.
type Schedule struct {
	Source    Source    `json:"source"`
	Time      string    `json:"time"` // HH:MM, validated at the adapter boundary
	IsWeekend bool      `json:"isWeekend"`
	Direction Direction `json:"direction"`
	// DayType is set for authority records only; it keeps the
	// Saturday/Sunday distinction the two-way bucket flattens.
	DayType       DayType `json:"dayType,omitempty"`
	VariantMarker string  `json:"variantMarker,omitempty"`
}
