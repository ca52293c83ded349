package utils

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return loc
}

func TestResolveLocalHour(t *testing.T) {
	kyiv := mustZone(t, "Europe/Kyiv")

	cases := []struct {
		name  string
		loc   *time.Location
		month time.Month
		day   int
		hour  int
		want  string
		ok    bool
	}{
		{name: "winter", loc: kyiv, month: time.March, day: 25, hour: 9, want: "2024-03-25T07:00:00Z", ok: true},
		{name: "summer", loc: kyiv, month: time.June, day: 10, hour: 9, want: "2024-06-10T06:00:00Z", ok: true},
		{name: "before spring gap", loc: kyiv, month: time.March, day: 31, hour: 2, want: "2024-03-31T00:00:00Z", ok: true},
		{name: "spring gap", loc: kyiv, month: time.March, day: 31, hour: 3, ok: false},
		{name: "after spring gap", loc: kyiv, month: time.March, day: 31, hour: 4, want: "2024-03-31T01:00:00Z", ok: true},
		{name: "fall overlap takes first", loc: kyiv, month: time.October, day: 27, hour: 3, want: "2024-10-27T00:00:00Z", ok: true},
		{name: "after fall overlap", loc: kyiv, month: time.October, day: 27, hour: 4, want: "2024-10-27T02:00:00Z", ok: true},
		{name: "utc midnight", loc: time.UTC, month: time.January, day: 1, hour: 0, want: "2024-01-01T00:00:00Z", ok: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolveLocalHour(tc.loc, 2024, tc.month, tc.day, tc.hour)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v (got %s)", ok, tc.ok, got)
			}
			if !ok {
				return
			}
			if got.Location() != time.UTC {
				t.Fatalf("result not in UTC: %s", got.Location())
			}
			if got.Format(time.RFC3339) != tc.want {
				t.Fatalf("got %s, want %s", got.Format(time.RFC3339), tc.want)
			}
		})
	}
}

func TestResolveLocalHourFarFromUTC(t *testing.T) {
	auckland := mustZone(t, "Pacific/Auckland")

	got, ok := ResolveLocalHour(auckland, 2024, time.January, 15, 10)
	if !ok {
		t.Fatalf("expected 10:00 to exist in Auckland")
	}
	if want := "2024-01-14T21:00:00Z"; got.Format(time.RFC3339) != want {
		t.Fatalf("got %s, want %s", got.Format(time.RFC3339), want)
	}
}
