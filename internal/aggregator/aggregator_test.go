package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"campusbus/internal/domain"
)

type fakeSource struct {
	schedules []domain.Schedule
	err       error
	delay     time.Duration
}

func (f *fakeSource) Schedules(ctx context.Context) ([]domain.Schedule, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.schedules, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func ptr[T any](v T) *T { return &v }

func TestMergedSortsAcrossSources(t *testing.T) {
	authority := &fakeSource{schedules: []domain.Schedule{
		{Source: domain.SourceAuthority, Time: "00:15", Direction: domain.DirectionCampusToMetro},
		{Source: domain.SourceAuthority, Time: "09:00", Direction: domain.DirectionCampusToMetro},
	}}
	shuttle := &fakeSource{schedules: []domain.Schedule{
		{Source: domain.SourceShuttle, Time: "23:30", Direction: domain.DirectionCampusToMetro},
		{Source: domain.SourceShuttle, Time: "08:00", Direction: domain.DirectionCampusToMetro},
	}}

	agg := New(authority, shuttle, discard())
	got, err := agg.Merged(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"08:00", "09:00", "23:30", "00:15"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Time != w {
			t.Errorf("position %d: got %q, want %q", i, got[i].Time, w)
		}
	}
}

func TestMergedFailsFast(t *testing.T) {
	boom := errors.New("iett down")
	authority := &fakeSource{err: boom}
	shuttle := &fakeSource{schedules: []domain.Schedule{
		{Source: domain.SourceShuttle, Time: "08:00"},
	}}

	agg := New(authority, shuttle, discard())
	got, err := agg.Merged(context.Background(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected adapter error, got %v", err)
	}
	if got != nil {
		t.Error("a failed aggregation must not return partial results")
	}
}

func TestMergedFilters(t *testing.T) {
	authority := &fakeSource{schedules: []domain.Schedule{
		{Source: domain.SourceAuthority, Time: "12:00", Direction: domain.DirectionCampusToMetro, IsWeekend: true, DayType: domain.DayTypeSunday},
		{Source: domain.SourceAuthority, Time: "14:50", Direction: domain.DirectionCampusToMetro, IsWeekend: true, DayType: domain.DayTypeSunday, VariantMarker: "X"},
		{Source: domain.SourceAuthority, Time: "19:35", Direction: domain.DirectionCampusToMetro, IsWeekend: false, DayType: domain.DayTypeWeekday, VariantMarker: "X"},
	}}
	shuttle := &fakeSource{schedules: []domain.Schedule{
		{Source: domain.SourceShuttle, Time: "08:00", Direction: domain.DirectionMetroToCampus, IsWeekend: false},
	}}
	agg := New(authority, shuttle, discard())

	t.Run("by direction", func(t *testing.T) {
		got, err := agg.Merged(context.Background(), &Filter{Direction: ptr(domain.DirectionMetroToCampus)})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Source != domain.SourceShuttle {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("by weekend bucket", func(t *testing.T) {
		got, err := agg.Merged(context.Background(), &Filter{IsWeekend: ptr(true)})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 weekend records, got %+v", got)
		}
	})

	t.Run("by marker keeps day types apart", func(t *testing.T) {
		got, err := agg.Merged(context.Background(), &Filter{VariantMarker: ptr("X")})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("expected exactly the marker-tagged records, got %+v", got)
		}
		// The unmarked Sunday 12:00 row must not wildcard-match.
		for _, s := range got {
			if s.VariantMarker != "X" {
				t.Errorf("unmarked record leaked through marker filter: %+v", s)
			}
		}
		// One weekday record, one Sunday record; the marker filter must
		// not have merged them into one day bucket.
		var weekday, sunday bool
		for _, s := range got {
			switch s.DayType {
			case domain.DayTypeWeekday:
				weekday = s.Time == "19:35"
			case domain.DayTypeSunday:
				sunday = s.Time == "14:50"
			}
		}
		if !weekday || !sunday {
			t.Errorf("day-type split lost under marker filter: %+v", got)
		}
	})
}

func TestMergedEmptyFilterResult(t *testing.T) {
	authority := &fakeSource{schedules: []domain.Schedule{
		{Source: domain.SourceAuthority, Time: "12:00", Direction: domain.DirectionCampusToMetro},
	}}
	shuttle := &fakeSource{schedules: nil}
	agg := New(authority, shuttle, discard())

	got, err := agg.Merged(context.Background(), &Filter{VariantMarker: ptr("nope")})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}
