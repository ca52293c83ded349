package utils

import "time"

// offset probes around the naive instant; every real zone offset is
// within +-14h, so a transition near the wall time is always bracketed.
var offsetProbes = []time.Duration{
	-24 * time.Hour, -12 * time.Hour, -6 * time.Hour, 0,
	6 * time.Hour, 12 * time.Hour, 24 * time.Hour,
}

// ResolveLocalHour converts the wall-clock hour hh:00 on the given date in
// loc to a UTC instant.
//
// A wall time skipped by a forward transition reports ok=false. A wall
// time repeated by a backward transition resolves to its first occurrence.
func ResolveLocalHour(loc *time.Location, year int, month time.Month, day, hour int) (time.Time, bool) {
	naive := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	want := naive

	var first time.Time
	found := false
	seen := make(map[int]bool, 2)
	for _, probe := range offsetProbes {
		_, offset := naive.Add(probe).In(loc).Zone()
		if seen[offset] {
			continue
		}
		seen[offset] = true

		candidate := naive.Add(-time.Duration(offset) * time.Second)
		if !sameWallClock(candidate.In(loc), want) {
			continue
		}
		if !found || candidate.Before(first) {
			first, found = candidate, true
		}
	}
	if !found {
		return time.Time{}, false
	}
	return first.UTC(), true
}

func sameWallClock(local, want time.Time) bool {
	return local.Year() == want.Year() &&
		local.Month() == want.Month() &&
		local.Day() == want.Day() &&
		local.Hour() == want.Hour() &&
		local.Minute() == want.Minute()
}
