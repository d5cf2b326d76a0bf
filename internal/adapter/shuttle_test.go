package adapter

import (
	"context"
	"errors"
	"testing"

	"campusbus/internal/domain"
	"campusbus/pkg/shuttleapi"
)

type fakeShuttle struct {
	responses map[int]*shuttleapi.Response
	errs      map[int]error
}

func (f *fakeShuttle) Schedules(_ context.Context, directionID int) (*shuttleapi.Response, error) {
	if err := f.errs[directionID]; err != nil {
		return nil, err
	}
	return f.responses[directionID], nil
}

func bucketResponse(buckets ...shuttleapi.TimeBucket) *shuttleapi.Response {
	return &shuttleapi.Response{
		Status: 200,
		Data:   []shuttleapi.ScheduleGroup{{TitleTR: "Çekmeköy", Data: buckets}},
	}
}

func TestShuttleMapsBothDirections(t *testing.T) {
	fake := &fakeShuttle{responses: map[int]*shuttleapi.Response{
		shuttleapi.DirectionIDCampusToMetro: bucketResponse(
			shuttleapi.TimeBucket{TitleTR: "HAFTA İÇİ", Data: []string{"08:00", "08:30"}},
			shuttleapi.TimeBucket{TitleTR: "HAFTA SONU", Data: []string{"10:00"}},
		),
		shuttleapi.DirectionIDMetroToCampus: bucketResponse(
			shuttleapi.TimeBucket{TitleTR: "HAFTA İÇİ", Data: []string{"17:30"}},
		),
	}}
	s := NewShuttle(fake, discard())

	got, err := s.Schedules(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 records, got %d: %+v", len(got), got)
	}

	var campusWeekday, campusWeekend, metroWeekday int
	for _, rec := range got {
		if rec.Source != domain.SourceShuttle {
			t.Errorf("wrong source: %+v", rec)
		}
		if rec.DayType != "" {
			t.Errorf("shuttle records carry no three-way day type: %+v", rec)
		}
		switch {
		case rec.Direction == domain.DirectionCampusToMetro && !rec.IsWeekend:
			campusWeekday++
		case rec.Direction == domain.DirectionCampusToMetro && rec.IsWeekend:
			campusWeekend++
		case rec.Direction == domain.DirectionMetroToCampus && !rec.IsWeekend:
			metroWeekday++
		default:
			t.Errorf("unexpected record: %+v", rec)
		}
	}
	if campusWeekday != 2 || campusWeekend != 1 || metroWeekday != 1 {
		t.Errorf("bucket counts wrong: %d/%d/%d", campusWeekday, campusWeekend, metroWeekday)
	}
}

func TestShuttleMissingWeekendBucket(t *testing.T) {
	// Weekend service omitted upstream: zero weekend records, no error.
	fake := &fakeShuttle{responses: map[int]*shuttleapi.Response{
		shuttleapi.DirectionIDCampusToMetro: bucketResponse(
			shuttleapi.TimeBucket{TitleTR: "HAFTA İÇİ", Data: []string{"08:00", "08:30"}},
			shuttleapi.TimeBucket{TitleTR: "HAFTA SONU", Data: []string{}},
		),
		shuttleapi.DirectionIDMetroToCampus: bucketResponse(),
	}}
	s := NewShuttle(fake, discard())

	got, err := s.Schedules(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range got {
		if rec.IsWeekend {
			t.Errorf("no weekend records expected, got %+v", rec)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 weekday records, got %d", len(got))
	}
}

func TestShuttleIgnoresUnknownBucketLabels(t *testing.T) {
	fake := &fakeShuttle{responses: map[int]*shuttleapi.Response{
		shuttleapi.DirectionIDCampusToMetro: bucketResponse(
			shuttleapi.TimeBucket{TitleTR: "BAYRAM", Data: []string{"09:00"}},
		),
		shuttleapi.DirectionIDMetroToCampus: bucketResponse(),
	}}
	s := NewShuttle(fake, discard())

	got, err := s.Schedules(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("unknown bucket labels must yield no records, got %+v", got)
	}
}

func TestShuttleTransportFailure(t *testing.T) {
	fake := &fakeShuttle{
		responses: map[int]*shuttleapi.Response{
			shuttleapi.DirectionIDCampusToMetro: bucketResponse(),
		},
		errs: map[int]error{
			shuttleapi.DirectionIDMetroToCampus: errors.New("timeout"),
		},
	}
	s := NewShuttle(fake, discard())

	if _, err := s.Schedules(context.Background()); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("want ErrUpstreamUnavailable, got %v", err)
	}
}

func TestShuttleMalformedTime(t *testing.T) {
	fake := &fakeShuttle{responses: map[int]*shuttleapi.Response{
		shuttleapi.DirectionIDCampusToMetro: bucketResponse(
			shuttleapi.TimeBucket{TitleTR: "HAFTA İÇİ", Data: []string{"8h30"}},
		),
		shuttleapi.DirectionIDMetroToCampus: bucketResponse(),
	}}
	s := NewShuttle(fake, discard())

	if _, err := s.Schedules(context.Background()); !errors.Is(err, domain.ErrMapping) {
		t.Errorf("want ErrMapping, got %v", err)
	}
}
