package adapter

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"campusbus/internal/domain"
	"campusbus/pkg/iettapi"
)

type fakeIett struct {
	rows []iettapi.ScheduleRow
	err  error
	code string
}

func (f *fakeIett) PlannedDepartures(_ context.Context, routeCode string) ([]iettapi.ScheduleRow, error) {
	f.code = routeCode
	return f.rows, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestAuthorityMapsRows(t *testing.T) {
	fake := &fakeIett{rows: []iettapi.ScheduleRow{
		{DirectionCode: "G", DayTypeCode: "I", DepartureTime: "08:00", VariantMarker: "(-1) "},
		{DirectionCode: "D", DayTypeCode: "C", DepartureTime: "10:30"},
		{DirectionCode: "G", DayTypeCode: "P", DepartureTime: "22:15"},
	}}
	a := NewAuthority(fake, "ÇM44", "", discard())

	got, err := a.Schedules(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if fake.code != "ÇM44" {
		t.Errorf("queried route %q, want ÇM44", fake.code)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 schedules, got %d", len(got))
	}

	first := got[0]
	if first.Source != domain.SourceAuthority ||
		first.Direction != domain.DirectionCampusToMetro ||
		first.DayType != domain.DayTypeWeekday ||
		first.IsWeekend ||
		first.Time != "08:00" ||
		first.VariantMarker != "(-1) " {
		t.Errorf("unexpected first record: %+v", first)
	}

	if got[1].Direction != domain.DirectionMetroToCampus || got[1].DayType != domain.DayTypeSaturday || !got[1].IsWeekend {
		t.Errorf("Saturday row mapped wrong: %+v", got[1])
	}
	if got[2].DayType != domain.DayTypeSunday || !got[2].IsWeekend {
		t.Errorf("Sunday row mapped wrong: %+v", got[2])
	}
}

func TestAuthorityMarkerFilter(t *testing.T) {
	fake := &fakeIett{rows: []iettapi.ScheduleRow{
		{DirectionCode: "G", DayTypeCode: "P", DepartureTime: "12:00"},
		{DirectionCode: "G", DayTypeCode: "P", DepartureTime: "14:50", VariantMarker: "X"},
		{DirectionCode: "G", DayTypeCode: "I", DepartureTime: "19:35", VariantMarker: "X"},
	}}
	a := NewAuthority(fake, "ÇM44", "", discard())

	got, err := a.SchedulesForRoute(context.Background(), "ÇM44", "X")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 marker-tagged records, got %d", len(got))
	}
	for _, s := range got {
		if s.VariantMarker != "X" {
			t.Errorf("record without marker survived filter: %+v", s)
		}
	}
	// The unmarked 12:00 row must be gone; marker comparison is exact.
	for _, s := range got {
		if s.Time == "12:00" {
			t.Error("unmarked row must not wildcard-match a marker filter")
		}
	}
}

func TestAuthorityErrorKinds(t *testing.T) {
	t.Run("transport failure", func(t *testing.T) {
		fake := &fakeIett{err: errors.New("connection refused")}
		a := NewAuthority(fake, "ÇM44", "", discard())
		_, err := a.Schedules(context.Background())
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			t.Errorf("want ErrUpstreamUnavailable, got %v", err)
		}
		if errors.Is(err, domain.ErrRouteNotFound) {
			t.Error("transport failure must not look like route-not-found")
		}
	})

	t.Run("empty result", func(t *testing.T) {
		fake := &fakeIett{}
		a := NewAuthority(fake, "ÇM99", "", discard())
		_, err := a.Schedules(context.Background())
		if !errors.Is(err, domain.ErrRouteNotFound) {
			t.Errorf("want ErrRouteNotFound, got %v", err)
		}
	})

	t.Run("unknown direction code", func(t *testing.T) {
		fake := &fakeIett{rows: []iettapi.ScheduleRow{
			{DirectionCode: "X", DayTypeCode: "I", DepartureTime: "08:00"},
		}}
		a := NewAuthority(fake, "ÇM44", "", discard())
		_, err := a.Schedules(context.Background())
		if !errors.Is(err, domain.ErrMapping) {
			t.Errorf("want ErrMapping, got %v", err)
		}
	})

	t.Run("unknown day-type code", func(t *testing.T) {
		fake := &fakeIett{rows: []iettapi.ScheduleRow{
			{DirectionCode: "G", DayTypeCode: "Z", DepartureTime: "08:00"},
		}}
		a := NewAuthority(fake, "ÇM44", "", discard())
		if _, err := a.Schedules(context.Background()); !errors.Is(err, domain.ErrMapping) {
			t.Errorf("want ErrMapping, got %v", err)
		}
	})

	t.Run("malformed time fails the batch", func(t *testing.T) {
		fake := &fakeIett{rows: []iettapi.ScheduleRow{
			{DirectionCode: "G", DayTypeCode: "I", DepartureTime: "08:00"},
			{DirectionCode: "G", DayTypeCode: "I", DepartureTime: "25:99"},
		}}
		a := NewAuthority(fake, "ÇM44", "", discard())
		got, err := a.Schedules(context.Background())
		if !errors.Is(err, domain.ErrMapping) {
			t.Errorf("want ErrMapping, got %v", err)
		}
		if got != nil {
			t.Error("a failed batch must not return partial records")
		}
	})
}
